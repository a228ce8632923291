package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func runCacheClear(_ *cobra.Command, _ []string) error {
	logger := setupLogger(nil, verbose)

	a, err := buildApp(logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.snapshots.Clear(); err != nil {
		return fmt.Errorf("clearing snapshot cache: %w", err)
	}

	logger.Info("snapshot cache cleared", "path", a.snapshots.Path())
	return nil
}
