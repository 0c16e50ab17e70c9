package store

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fyrsmithlabs/folio/internal/diagnose"
)

//go:embed seed_patterns.yaml
var defaultSeed []byte

// maxSeedSize caps seed files read from disk.
const maxSeedSize = 1024 * 1024

type seedFile struct {
	Patterns []diagnose.IssuePattern `yaml:"patterns"`
}

// LoadSeed reads a seed catalog. An empty path returns the embedded default catalog.
func LoadSeed(path string) ([]diagnose.IssuePattern, error) {
	data := defaultSeed
	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat seed file: %w", err)
		}
		if info.Size() > maxSeedSize {
			return nil, fmt.Errorf("seed file too large: %d bytes (max %d)", info.Size(), maxSeedSize)
		}
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("failed to read seed file: %w", err)
		}
	}
	return ParseSeed(data)
}

// ParseSeed decodes a seed catalog document. Every entry needs an id.
func ParseSeed(data []byte) ([]diagnose.IssuePattern, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed catalog: %w", err)
	}
	seen := make(map[string]bool, len(f.Patterns))
	for i, p := range f.Patterns {
		if p.ID == "" {
			return nil, fmt.Errorf("seed pattern %d: id is required", i)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("seed pattern %q: duplicate id", p.ID)
		}
		seen[p.ID] = true
	}
	return f.Patterns, nil
}
