package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func runRooms(_ *cobra.Command, _ []string) error {
	logger := setupLogger(nil, verbose)

	a, err := buildApp(logger)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	rooms, err := a.service.ListRooms(ctx)
	if err != nil {
		return fmt.Errorf("listing rooms: %w", err)
	}

	if len(rooms) == 0 {
		fmt.Println("No rooms found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSLUG\tITEMS\tDESCRIPTION")
	for _, room := range rooms {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", room.Name, room.Slug, room.ItemCount, room.Description)
	}
	return w.Flush()
}
