package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/folio/internal/config"
	"github.com/fyrsmithlabs/folio/internal/diagnose"
	"github.com/fyrsmithlabs/folio/internal/logging"
	"github.com/fyrsmithlabs/folio/internal/sanitize"
	"github.com/fyrsmithlabs/folio/internal/secrets"
	"github.com/fyrsmithlabs/folio/internal/store"
	"github.com/fyrsmithlabs/folio/internal/telemetry"
)

// app holds the wired dependencies shared by every command.
type app struct {
	cfg    *config.Config
	tel    *telemetry.Telemetry
	logger *logging.Logger
	store  *store.Store
	svc    diagnose.Service
}

// appOptions tune initialization per command.
type appOptions struct {
	// quiet raises the log level to warn so command output stays readable.
	quiet bool
	// telemetry installs OTLP exporters when enabled in config.
	telemetry bool
}

// newApp loads configuration and wires store, sanitizer and diagnose service.
//
// This function:
//  1. Loads and validates configuration
//  2. Initializes telemetry and the logger
//  3. Opens the SQLite store
//  4. Builds the sanitizer and diagnose service
func newApp(ctx context.Context, configPath string, opts appOptions) (*app, error) {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	a := &app{cfg: cfg}

	telCfg := telemetry.FromAppConfig(cfg.Telemetry, version)
	if !opts.telemetry {
		telCfg.Enabled = false
	}
	if a.tel, err = telemetry.New(ctx, telCfg); err != nil {
		return nil, err
	}

	logCfg, err := logging.FromAppConfig(cfg.Logging, telCfg.Enabled)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("invalid logging configuration: %w", err)
	}
	if opts.quiet && logCfg.Level < zapcore.WarnLevel {
		logCfg.Level = zapcore.WarnLevel
	}
	if a.logger, err = logging.NewLogger(logCfg, a.tel.LoggerProvider()); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger := a.logger.Underlying()

	if h := a.tel.Health(); h.Degraded {
		a.logger.Warn(ctx, "telemetry degraded", zap.Strings("reasons", h.Reasons))
	}

	if a.store, err = store.Open(ctx, cfg.Database, logger); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	scrubber, err := secrets.New(nil)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create secret scrubber: %w", err)
	}

	a.svc, err = diagnose.NewService(a.store, a.store, sanitize.New(scrubber), nil, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create diagnose service: %w", err)
	}

	return a, nil
}

// seed loads a seed catalog (empty path for the embedded default) into the store.
func (a *app) seed(ctx context.Context, path string) (added, total int, err error) {
	patterns, err := store.LoadSeed(path)
	if err != nil {
		return 0, 0, err
	}
	added, err = a.svc.SeedPatterns(ctx, patterns)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to seed patterns: %w", err)
	}
	return added, len(patterns), nil
}

// Close releases all resources. Safe on a partially built app.
func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil && a.logger != nil {
			a.logger.Underlying().Warn("failed to close store", zap.Error(err))
		}
	}
	if a.tel != nil {
		_ = a.tel.Shutdown(context.Background())
	}
	if a.logger != nil {
		_ = a.logger.Sync() // Best-effort sync on shutdown
	}
}
