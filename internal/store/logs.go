package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fyrsmithlabs/folio/internal/diagnose"
)

const logColumns = `id, description, tech_stack, error_message, environment, matched_pattern_id, created_at`

func scanLog(row rowScanner) (*diagnose.DiagnosticLog, error) {
	var (
		l         diagnose.DiagnosticLog
		matched   sql.NullString
		createdAt int64
	)
	if err := row.Scan(&l.ID, &l.Description, &l.TechStack, &l.ErrorMessage, &l.Environment, &matched, &createdAt); err != nil {
		return nil, err
	}
	if matched.Valid {
		l.MatchedPatternID = &matched.String
	}
	l.CreatedAt = fromUnix(createdAt)
	return &l, nil
}

// InsertLog appends a diagnostic log. matched_pattern_id carries no foreign key,
// so logs outlive the patterns they reference.
func (s *Store) InsertLog(ctx context.Context, l *diagnose.DiagnosticLog) error {
	var matched sql.NullString
	if l.MatchedPatternID != nil {
		matched = sql.NullString{String: *l.MatchedPatternID, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO diagnostic_logs (`+logColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Description, l.TechStack, l.ErrorMessage, l.Environment, matched, toUnix(l.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert diagnostic log %s: %w", l.ID, err)
	}
	return nil
}

func (s *Store) GetLog(ctx context.Context, id string) (*diagnose.DiagnosticLog, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+logColumns+` FROM diagnostic_logs WHERE id = ?`, id)
	l, err := scanLog(row)
	if err != nil {
		return nil, notFound(err, "diagnostic log", id)
	}
	return l, nil
}

// ListLogs returns logs newest first.
func (s *Store) ListLogs(ctx context.Context, filter diagnose.LogFilter) ([]diagnose.DiagnosticLog, error) {
	query := `SELECT ` + logColumns + ` FROM diagnostic_logs`
	if filter.UnmatchedOnly {
		query += ` WHERE matched_pattern_id IS NULL`
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`

	limit := filter.Limit
	if limit <= 0 {
		limit = diagnose.DefaultLogLimit
	}
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query diagnostic logs: %w", err)
	}
	defer rows.Close()

	var out []diagnose.DiagnosticLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

// CountLogs returns the total number of logs and how many matched a curated pattern.
func (s *Store) CountLogs(ctx context.Context) (total, matched int, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(matched_pattern_id) FROM diagnostic_logs`).Scan(&total, &matched)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count diagnostic logs: %w", err)
	}
	return total, matched, nil
}
