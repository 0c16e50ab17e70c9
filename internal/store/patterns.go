package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fyrsmithlabs/folio/internal/diagnose"
)

const patternColumns = `id, keywords, possible_causes, debug_steps, complexity, recommended_service, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPattern(row rowScanner) (*diagnose.IssuePattern, error) {
	var (
		p                       diagnose.IssuePattern
		keywords, causes, steps string
		complexity              string
		createdAt, updatedAt    int64
	)
	if err := row.Scan(&p.ID, &keywords, &causes, &steps, &complexity, &p.RecommendedService, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(keywords), &p.Keywords); err != nil {
		return nil, fmt.Errorf("pattern %s: decoding keywords: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(causes), &p.PossibleCauses); err != nil {
		return nil, fmt.Errorf("pattern %s: decoding causes: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(steps), &p.DebugSteps); err != nil {
		return nil, fmt.Errorf("pattern %s: decoding steps: %w", p.ID, err)
	}
	p.Complexity = diagnose.Complexity(complexity)
	p.CreatedAt = fromUnix(createdAt)
	p.UpdatedAt = fromUnix(updatedAt)
	return &p, nil
}

func encodeLists(p *diagnose.IssuePattern) (keywords, causes, steps string, err error) {
	var b []byte
	if b, err = json.Marshal(p.Keywords); err != nil {
		return
	}
	keywords = string(b)
	if b, err = json.Marshal(p.PossibleCauses); err != nil {
		return
	}
	causes = string(b)
	if b, err = json.Marshal(p.DebugSteps); err != nil {
		return
	}
	steps = string(b)
	return
}

// ListPatterns returns every pattern in insertion order.
func (s *Store) ListPatterns(ctx context.Context) ([]diagnose.IssuePattern, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+patternColumns+` FROM issue_patterns ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query patterns: %w", err)
	}
	defer rows.Close()

	var out []diagnose.IssuePattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *Store) GetPattern(ctx context.Context, id string) (*diagnose.IssuePattern, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+patternColumns+` FROM issue_patterns WHERE id = ?`, id)
	p, err := scanPattern(row)
	if err != nil {
		return nil, notFound(err, "pattern", id)
	}
	return p, nil
}

func (s *Store) CreatePattern(ctx context.Context, p *diagnose.IssuePattern) error {
	keywords, causes, steps, err := encodeLists(p)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO issue_patterns (`+patternColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, keywords, causes, steps, string(p.Complexity), p.RecommendedService,
		toUnix(p.CreatedAt), toUnix(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert pattern %s: %w", p.ID, err)
	}
	return nil
}

func (s *Store) UpdatePattern(ctx context.Context, p *diagnose.IssuePattern) error {
	keywords, causes, steps, err := encodeLists(p)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE issue_patterns
		SET keywords = ?, possible_causes = ?, debug_steps = ?, complexity = ?,
		    recommended_service = ?, updated_at = ?
		WHERE id = ?`,
		keywords, causes, steps, string(p.Complexity), p.RecommendedService,
		toUnix(p.UpdatedAt), p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update pattern %s: %w", p.ID, err)
	}
	return expectOne(res, "pattern", p.ID)
}

func (s *Store) DeletePattern(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM issue_patterns WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pattern %s: %w", id, err)
	}
	return expectOne(res, "pattern", id)
}

func (s *Store) CountPatterns(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM issue_patterns`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count patterns: %w", err)
	}
	return n, nil
}

func expectOne(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(sql.ErrNoRows, what, id)
	}
	return nil
}
