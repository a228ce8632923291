package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func runCheck(_ *cobra.Command, _ []string) error {
	logger := setupLogger(nil, verbose)

	a, err := buildApp(logger)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	user, err := a.client.GetCurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("authenticating with Notion: %w", err)
	}
	logger.Info("authenticated", "integration", user.Name)

	info, err := a.client.GetDatabaseInfo(ctx, a.cfg.DatabaseID)
	if err != nil {
		return fmt.Errorf("retrieving items database: %w", err)
	}
	title := info.Title
	if info.Icon != "" {
		title = info.Icon + " " + title
	}
	logger.Info("items database reachable",
		"id", info.ID,
		"title", title,
		"last_edited", info.LastEditedTime,
	)

	if a.cfg.RoomsDatabaseID != "" {
		rooms, err := a.service.ListRooms(ctx)
		if err != nil {
			return fmt.Errorf("retrieving rooms database: %w", err)
		}
		logger.Info("rooms database reachable", "rooms", len(rooms))
	} else {
		logger.Warn("rooms database not configured, room endpoints disabled")
	}

	return nil
}
