package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/config"
	"github.com/fyrsmithlabs/folio/internal/diagnose"
	"github.com/fyrsmithlabs/folio/internal/sanitize"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), config.DatabaseConfig{
		Path:        filepath.Join(t.TempDir(), "nested", "folio.db"),
		BusyTimeout: time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testPattern(id string, created time.Time) *diagnose.IssuePattern {
	return &diagnose.IssuePattern{
		ID:                 id,
		Keywords:           []string{"cors", "preflight"},
		PossibleCauses:     []string{"missing header"},
		DebugSteps:         []string{"inspect OPTIONS", "check origin list"},
		Complexity:         diagnose.ComplexityMedium,
		RecommendedService: "Backend Debugging",
		CreatedAt:          created,
		UpdatedAt:          created,
	}
}

func TestOpen(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Ping(context.Background()))

	_, err := os.Stat(s.Path())
	assert.NoError(t, err)

	// Reopening an existing database keeps the schema
	s2, err := Open(context.Background(), config.DatabaseConfig{Path: s.Path()}, nil)
	require.NoError(t, err)
	defer s2.Close()
	n, err := s2.CountPatterns(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDSN(t *testing.T) {
	got := dsn("/tmp/folio.db", 2500*time.Millisecond)
	assert.Contains(t, got, "file:/tmp/folio.db?")
	assert.Contains(t, got, "busy_timeout%282500%29")
	assert.Contains(t, got, "journal_mode%28WAL%29")
}

func TestPatternsCRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 9, 30, 0, 123, time.UTC)

	p := testPattern("pattern_a", now)
	require.NoError(t, s.CreatePattern(ctx, p))

	got, err := s.GetPattern(ctx, "pattern_a")
	require.NoError(t, err)
	assert.Equal(t, p, got)

	assert.Error(t, s.CreatePattern(ctx, p), "duplicate id")

	p.Keywords = []string{"401"}
	p.Complexity = diagnose.ComplexityHigh
	p.UpdatedAt = now.Add(time.Hour)
	require.NoError(t, s.UpdatePattern(ctx, p))

	got, err = s.GetPattern(ctx, "pattern_a")
	require.NoError(t, err)
	assert.Equal(t, []string{"401"}, got.Keywords)
	assert.Equal(t, diagnose.ComplexityHigh, got.Complexity)
	assert.Equal(t, now, got.CreatedAt)
	assert.Equal(t, now.Add(time.Hour), got.UpdatedAt)

	n, err := s.CountPatterns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.DeletePattern(ctx, "pattern_a"))
	assert.ErrorIs(t, s.DeletePattern(ctx, "pattern_a"), diagnose.ErrNotFound)
	_, err = s.GetPattern(ctx, "pattern_a")
	assert.ErrorIs(t, err, diagnose.ErrNotFound)
	assert.ErrorIs(t, s.UpdatePattern(ctx, p), diagnose.ErrNotFound)
}

func TestListPatterns_InsertionOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	same := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// Equal timestamps fall back to rowid.
	for _, id := range []string{"pattern_z", "pattern_a", "pattern_m"} {
		require.NoError(t, s.CreatePattern(ctx, testPattern(id, same)))
	}
	require.NoError(t, s.CreatePattern(ctx, testPattern("pattern_early", same.Add(-time.Minute))))

	patterns, err := s.ListPatterns(ctx)
	require.NoError(t, err)
	ids := make([]string, len(patterns))
	for i := range patterns {
		ids[i] = patterns[i].ID
	}
	assert.Equal(t, []string{"pattern_early", "pattern_z", "pattern_a", "pattern_m"}, ids)
}

func TestLogs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	matchedID := "pattern_cors"
	for i := 0; i < 6; i++ {
		l := &diagnose.DiagnosticLog{
			ID:          fmt.Sprintf("diag_%d", i),
			Description: fmt.Sprintf("question %d", i),
			TechStack:   "Go",
			Environment: "production",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		if i%3 == 0 {
			l.MatchedPatternID = &matchedID
		}
		require.NoError(t, s.InsertLog(ctx, l))
	}

	got, err := s.GetLog(ctx, "diag_3")
	require.NoError(t, err)
	assert.Equal(t, "question 3", got.Description)
	assert.Equal(t, "Go", got.TechStack)
	assert.Equal(t, "", got.ErrorMessage)
	require.NotNil(t, got.MatchedPatternID)
	assert.Equal(t, matchedID, *got.MatchedPatternID)
	assert.Equal(t, base.Add(3*time.Minute), got.CreatedAt)

	got, err = s.GetLog(ctx, "diag_1")
	require.NoError(t, err)
	assert.Nil(t, got.MatchedPatternID)

	_, err = s.GetLog(ctx, "diag_missing")
	assert.ErrorIs(t, err, diagnose.ErrNotFound)

	all, err := s.ListLogs(ctx, diagnose.LogFilter{Limit: 4})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "diag_5", all[0].ID)
	assert.Equal(t, "diag_2", all[3].ID)

	unmatched, err := s.ListLogs(ctx, diagnose.LogFilter{UnmatchedOnly: true})
	require.NoError(t, err)
	ids := make([]string, len(unmatched))
	for i := range unmatched {
		ids[i] = unmatched[i].ID
	}
	assert.Equal(t, []string{"diag_5", "diag_4", "diag_2", "diag_1"}, ids)

	total, matched, err := s.CountLogs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, total)
	assert.Equal(t, 2, matched)
}

func TestInsertLog_Concurrent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.InsertLog(ctx, &diagnose.DiagnosticLog{
				ID:          fmt.Sprintf("diag_c%d", i),
				Description: "concurrent",
				CreatedAt:   time.Now(),
			})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	total, _, err := s.CountLogs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, total)
}

func TestLoadSeed_Default(t *testing.T) {
	patterns, err := LoadSeed("")
	require.NoError(t, err)
	require.NotEmpty(t, patterns)

	cors := patterns[0]
	assert.Equal(t, "pattern_cors", cors.ID)
	assert.Equal(t, []string{"cors", "access-control-allow-origin", "preflight", "blocked by cors policy"}, cors.Keywords)
	assert.Equal(t, diagnose.ComplexityMedium, cors.Complexity)
	assert.Equal(t, "Backend Debugging", cors.RecommendedService)

	for _, p := range patterns {
		p.Normalize()
		assert.NoError(t, p.Validate(), p.ID)
	}
}

func TestLoadSeed_File(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
patterns:
  - id: custom
    keywords: [oom]
    possibleCauses: [heap too small]
    debugSteps: [raise the limit]
    complexity: Low
    recommendedService: DevOps & Deployment
`), 0600))
	patterns, err := LoadSeed(path)
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.Equal(t, "custom", patterns[0].ID)

	_, err = LoadSeed(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = ParseSeed([]byte("patterns:\n  - keywords: [x]\n"))
	assert.ErrorContains(t, err, "id is required")

	_, err = ParseSeed([]byte("patterns:\n  - id: a\n  - id: a\n"))
	assert.ErrorContains(t, err, "duplicate id")
}

// End-to-end: seeded catalog, real sanitizer, real SQLite.
func TestDiagnose_SeededCORS(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	svc, err := diagnose.NewService(s, s, sanitize.New(nil), nil, zap.NewNop())
	require.NoError(t, err)

	seed, err := LoadSeed("")
	require.NoError(t, err)
	n, err := svc.SeedPatterns(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, len(seed), n)

	res, err := svc.Diagnose(ctx, diagnose.Request{
		Description: "Getting CORS error, access-control-allow-origin missing",
	})
	require.NoError(t, err)
	assert.True(t, res.IsMatch)
	assert.Equal(t, "Backend Debugging", res.RecommendedService)
	assert.Equal(t, diagnose.ComplexityMedium, res.Complexity)

	entry, err := s.GetLog(ctx, res.ID)
	require.NoError(t, err)
	require.NotNil(t, entry.MatchedPatternID)
	assert.Equal(t, "pattern_cors", *entry.MatchedPatternID)

	res, err = svc.Diagnose(ctx, diagnose.Request{Description: "my widget looks wrong"})
	require.NoError(t, err)
	assert.False(t, res.IsMatch)
	assert.Equal(t, "Backend Debugging", res.RecommendedService)

	_, err = svc.Diagnose(ctx, diagnose.Request{Description: "   "})
	assert.ErrorIs(t, err, diagnose.ErrValidation)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &diagnose.Stats{DiagRuns: 2, PatternsMatched: 1, Patterns: len(seed)}, stats)

	// Re-seeding is a no-op.
	n, err = svc.SeedPatterns(ctx, seed)
	require.NoError(t, err)
	assert.Zero(t, n)
}
