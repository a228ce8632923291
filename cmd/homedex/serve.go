package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/okibler/homedex/internal/httpapi"
)

// shutdownTimeout bounds how long in-flight requests may finish after a
// shutdown signal.
const shutdownTimeout = 10 * time.Second

func runServe(_ *cobra.Command, _ []string) error {
	logger := setupLogger(nil, verbose)

	a, err := buildApp(logger)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.cfg.Server.Addr
	if addrFlag != "" {
		addr = addrFlag
	}

	api := httpapi.NewServer(a.service, httpapi.Options{
		OfflineDefault: a.offlineFlag(),
		Logger:         logger,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving inventory API", "addr", addr, "offline", a.offlineFlag())
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)

	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		logger.Info("server stopped")
		return nil
	}
}
