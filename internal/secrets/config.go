package secrets

import (
	"fmt"
	"regexp"
	"strings"
)

const defaultMarker = "[REDACTED:%s]"

// Config controls credential redaction.
type Config struct {
	Enabled bool
	// Marker replaces each secret; %s receives the gitleaks rule id.
	Marker string
	// Allow lists patterns for values that stay visible even when a rule fires,
	// e.g. documented example keys.
	Allow []string
}

// DefaultConfig enables redaction with the standard marker and no allow list.
func DefaultConfig() *Config {
	return &Config{Enabled: true, Marker: defaultMarker}
}

func (c *Config) marker() string {
	if c.Marker == "" {
		return defaultMarker
	}
	return c.Marker
}

// compileAllow checks the marker and compiles the allow list.
func (c *Config) compileAllow() ([]*regexp.Regexp, error) {
	if strings.Count(c.marker(), "%s") != 1 {
		return nil, fmt.Errorf("marker %q must contain exactly one %%s", c.Marker)
	}
	out := make([]*regexp.Regexp, len(c.Allow))
	for i, p := range c.Allow {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("allow[%d]: %w", i, err)
		}
		out[i] = re
	}
	return out, nil
}
