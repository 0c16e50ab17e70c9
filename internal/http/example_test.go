package http_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/config"
	"github.com/fyrsmithlabs/folio/internal/diagnose"
	httpserver "github.com/fyrsmithlabs/folio/internal/http"
	"github.com/fyrsmithlabs/folio/internal/sanitize"
	"github.com/fyrsmithlabs/folio/internal/secrets"
	"github.com/fyrsmithlabs/folio/internal/store"
)

// ExampleServer demonstrates how to wire and start the HTTP server.
func ExampleServer() {
	ctx := context.Background()
	logger := zap.NewNop()

	dir, err := os.MkdirTemp("", "folio-example")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	st, err := store.Open(ctx, config.DatabaseConfig{Path: filepath.Join(dir, "folio.db")}, logger)
	if err != nil {
		panic(err)
	}
	defer st.Close()

	scrubber, err := secrets.New(nil)
	if err != nil {
		panic(err)
	}

	svc, err := diagnose.NewService(st, st, sanitize.New(scrubber), nil, logger)
	if err != nil {
		panic(err)
	}

	cfg := httpserver.ConfigFrom(config.Default())
	cfg.Port = 18089

	server, err := httpserver.NewServer(svc, st, logger, cfg)
	if err != nil {
		panic(err)
	}

	go func() {
		if err := server.Start(); err != nil {
			logger.Error("server error", zap.Error(err))
		}
	}()

	// Give server time to start
	time.Sleep(100 * time.Millisecond)

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	fmt.Println("Server started and stopped successfully")
	// Output: Server started and stopped successfully
}
