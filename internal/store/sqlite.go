// Package store persists issue patterns and diagnostic logs in SQLite.
//
// The pure-Go modernc.org/sqlite driver is used so the binary stays CGO-free.
// The database runs in WAL mode with a busy timeout, so concurrent diagnose
// requests can append logs while admin reads are in flight.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/fyrsmithlabs/folio/internal/config"
	"github.com/fyrsmithlabs/folio/internal/diagnose"
)

const schema = `
CREATE TABLE IF NOT EXISTS issue_patterns (
	id                  TEXT PRIMARY KEY,
	keywords            TEXT NOT NULL,
	possible_causes     TEXT NOT NULL,
	debug_steps         TEXT NOT NULL,
	complexity          TEXT NOT NULL,
	recommended_service TEXT NOT NULL,
	created_at          INTEGER NOT NULL,
	updated_at          INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS diagnostic_logs (
	id                 TEXT PRIMARY KEY,
	description        TEXT NOT NULL,
	tech_stack         TEXT NOT NULL DEFAULT '',
	error_message      TEXT NOT NULL DEFAULT '',
	environment        TEXT NOT NULL DEFAULT '',
	matched_pattern_id TEXT,
	created_at         INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_logs_created ON diagnostic_logs(created_at);
CREATE INDEX IF NOT EXISTS idx_logs_matched ON diagnostic_logs(matched_pattern_id);
`

// Store implements diagnose.PatternStore and diagnose.LogStore.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

var (
	_ diagnose.PatternStore = (*Store)(nil)
	_ diagnose.LogStore     = (*Store)(nil)
)

// Open opens (creating if needed) the database described by cfg and applies the schema.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	path, err := config.ExpandPath(cfg.Path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	db, err := sql.Open("sqlite", dsn(path, busy))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, path: path, logger: logger}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("database opened", zap.String("path", path))
	return s, nil
}

// dsn builds a modernc connection string. Pragmas are applied to every pooled connection.
func dsn(path string, busy time.Duration) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy.Milliseconds()))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	return "file:" + path + "?" + q.Encode()
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Path returns the resolved database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// notFound maps sql.ErrNoRows to diagnose.ErrNotFound.
func notFound(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %q: %w", what, id, diagnose.ErrNotFound)
	}
	return err
}

func toUnix(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
