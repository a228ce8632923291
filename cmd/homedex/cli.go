package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"

	"github.com/okibler/homedex/internal/cache"
	"github.com/okibler/homedex/internal/config"
	"github.com/okibler/homedex/internal/inventory"
	"github.com/okibler/homedex/internal/notion"
)

// Shared flag variables for all commands.
var (
	configPath string
	verbose    bool
	offline    bool
)

// setupLogger creates and sets the default logger.
// If output is nil, logs go to stderr.
func setupLogger(output io.Writer, verbose bool) *slog.Logger {
	if output == nil {
		output = os.Stderr
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(tint.NewHandler(output, &tint.Options{
		Level: level,
	}))
	slog.SetDefault(logger)

	return logger
}

// setupSignalHandler creates a context that cancels on SIGINT/SIGTERM.
// The returned cancel function should be deferred.
func setupSignalHandler(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		logger.Info("received shutdown signal, shutting down...")
		cancel()
	}()

	return ctx, cancel
}

// app bundles the wired dependencies behind every command.
type app struct {
	cfg       *config.Config
	client    *notion.Client
	service   *inventory.Service
	snapshots *cache.Store
}

// buildApp loads configuration and wires the client, resolver, snapshot
// store, and service. The caller must Close the returned app.
func buildApp(logger *slog.Logger) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	client := notion.NewClient(cfg.NotionToken, logger)

	snapshots, err := cache.NewStore(cfg.Cache.Path)
	if err != nil {
		return nil, err
	}

	resolver := inventory.NewResolver(client, notion.DefaultWorkerPool(client), logger)
	if cfg.Rooms.EnableHeuristics {
		resolver.EnableHeuristics()
	}

	service := inventory.NewService(client, resolver, snapshots, inventory.Databases{
		Items:     cfg.DatabaseID,
		Rooms:     cfg.RoomsDatabaseID,
		RoomItems: cfg.ItemsDatabaseID,
	}, logger)

	return &app{
		cfg:       cfg,
		client:    client,
		service:   service,
		snapshots: snapshots,
	}, nil
}

func (a *app) Close() error {
	return a.snapshots.Close()
}

// offlineFlag resolves the effective offline mode: the --offline flag wins
// over the config default.
func (a *app) offlineFlag() bool {
	return offline || a.cfg.Offline
}
