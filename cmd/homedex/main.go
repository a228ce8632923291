// Package main provides the entry point for the homedex CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var addrFlag string

func main() {
	rootCmd := &cobra.Command{
		Use:   "homedex",
		Short: "Notion-backed household inventory",
		Long:  "homedex serves a household inventory stored in Notion over HTTP and in the terminal.",
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addrFlag, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().BoolVar(&offline, "offline", false, "serve cached snapshots without calling Notion")
	rootCmd.AddCommand(serveCmd)

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Verify Notion connectivity and database access",
		RunE:  runCheck,
	}
	rootCmd.AddCommand(checkCmd)

	roomsCmd := &cobra.Command{
		Use:   "rooms",
		Short: "List rooms from the rooms database",
		RunE:  runRooms,
	}
	rootCmd.AddCommand(roomsCmd)

	browseCmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse inventory items in the terminal",
		RunE:  runBrowse,
	}
	browseCmd.Flags().BoolVar(&offline, "offline", false, "browse cached snapshots without calling Notion")
	rootCmd.AddCommand(browseCmd)

	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the offline snapshot cache",
	}
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove all cached snapshots",
		RunE:  runCacheClear,
	})
	rootCmd.AddCommand(cacheCmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println("homedex version 0.1.0")
		},
	}
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
