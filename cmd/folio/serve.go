package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpserver "github.com/fyrsmithlabs/folio/internal/http"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the folio HTTP server.

The server exposes POST /api/diagnose, GET /api/stats, /health and /metrics.
Setting admin.token (FOLIO_ADMIN_TOKEN) enables the /api/admin routes for
curating patterns and reviewing diagnostic logs.

Examples:
  # Start with defaults
  folio serve

  # Use a specific config file
  folio serve --config /etc/folio/config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, *configPath)
		},
	}
}

// run starts the server and blocks until ctx is cancelled or the listener fails.
//
// This function:
//  1. Wires configuration, telemetry, logging, store and service
//  2. Seeds the embedded pattern catalog when database.seed_on_start is set
//  3. Starts the HTTP server
//  4. Performs graceful shutdown on context cancellation
func run(ctx context.Context, configPath string) error {
	a, err := newApp(ctx, configPath, appOptions{telemetry: true})
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.cfg

	a.logger.Info(ctx, "starting folio",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.Bool("admin_enabled", cfg.Admin.Token.IsSet()),
		zap.Bool("telemetry_enabled", a.tel.IsEnabled()),
		zap.Duration("shutdown_timeout", cfg.Server.ShutdownTimeout))

	if cfg.Database.SeedOnStart {
		added, total, err := a.seed(ctx, "")
		if err != nil {
			return err
		}
		a.logger.Info(ctx, "seed catalog applied", zap.Int("added", added), zap.Int("catalog", total))
	}

	srv, err := httpserver.NewServer(a.svc, a.store, a.logger.Underlying(), httpserver.ConfigFrom(cfg))
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		a.logger.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	if err := <-errCh; err != nil {
		return fmt.Errorf("http server: %w", err)
	}

	a.logger.Info(shutdownCtx, "server shutdown complete")
	return nil
}
