package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/folio/internal/diagnose"
)

// setupEnv isolates HOME and the database under a temp dir.
func setupEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	dbPath := filepath.Join(home, "data", "folio.db")
	t.Setenv("FOLIO_DATABASE_PATH", dbPath)
	return dbPath
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute(), out.String())
	return out.String()
}

func TestVersionCmd(t *testing.T) {
	out := execute(t, "version")
	assert.Contains(t, out, "folio by Fyrsmith Labs")
	assert.Contains(t, out, "Version:    dev")
}

func TestSeedAndStats(t *testing.T) {
	dbPath := setupEnv(t)

	out := execute(t, "seed")
	assert.Contains(t, out, "already present")
	assert.Regexp(t, `Seeded [1-9]\d* of [1-9]\d* patterns \(0 already present\)`, out)

	// Seeding again adds nothing.
	out = execute(t, "seed")
	assert.Regexp(t, `Seeded 0 of ([1-9]\d*) patterns \([1-9]\d* already present\)`, out)

	out = execute(t, "stats", "--json")
	var stats diagnose.Stats
	require.NoError(t, json.Unmarshal([]byte(out[bytes.IndexByte([]byte(out), '{'):]), &stats))
	assert.Equal(t, 0, stats.DiagRuns)
	assert.Positive(t, stats.Patterns)

	out = execute(t, "stats")
	assert.Contains(t, out, dbPath)
	assert.Contains(t, out, "Diagnoses:")
}

func TestSeedCmd_CustomFile(t *testing.T) {
	setupEnv(t)

	file := filepath.Join(t.TempDir(), "patterns.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`patterns:
  - id: pattern_carousel
    keywords: [carousel]
    possibleCauses: ["Slide width is computed before images load"]
    debugSteps: ["Recalculate the track width after the load event"]
    complexity: Low
    recommendedService: Frontend Development
`), 0600))

	out := execute(t, "seed", "--file", file)
	assert.Contains(t, out, "Seeded 1 of 1 patterns")
}

func TestSeedCmd_MissingFile(t *testing.T) {
	setupEnv(t)

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"seed", "--file", filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, root.Execute())
}

func TestRunIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	setupEnv(t)
	t.Setenv("FOLIO_SERVER_HTTP_PORT", "18084")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx, "")
	}()

	var resp *http.Response
	require.Eventually(t, func() bool {
		var err error
		resp, err = http.Get("http://localhost:18084/health")
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err := http.Post("http://localhost:18084/api/diagnose", "application/json",
		bytes.NewBufferString(`{"description":"Request blocked by CORS policy"}`))
	require.NoError(t, err)
	var res diagnose.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	resp.Body.Close()
	assert.True(t, res.IsMatch)
	assert.Equal(t, "Backend Debugging", res.RecommendedService)

	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shutdown in time")
	}
}
