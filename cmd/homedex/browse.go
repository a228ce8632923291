package main

import (
	"github.com/spf13/cobra"

	"github.com/okibler/homedex/internal/tui"
)

func runBrowse(_ *cobra.Command, _ []string) error {
	logger := setupLogger(nil, verbose)

	a, err := buildApp(logger)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	return tui.Run(ctx, a.service, a.offlineFlag())
}
