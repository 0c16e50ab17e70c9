package secrets

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/zricethezav/gitleaks/v8/detect"
	"github.com/zricethezav/gitleaks/v8/report"
)

// Scrubber redacts credentials from text.
type Scrubber interface {
	Scrub(text string) Redaction
	Enabled() bool
}

// Redaction is the outcome of one scan. Findings never carry the secret itself.
type Redaction struct {
	Text     string
	Findings []Finding
}

// Finding records which rule fired and where.
type Finding struct {
	Rule        string
	Description string
	Line        int
}

// Found reports whether anything was redacted.
func (r Redaction) Found() bool { return len(r.Findings) > 0 }

// Rules returns the distinct rule ids that fired, sorted.
func (r Redaction) Rules() []string {
	seen := make(map[string]struct{}, len(r.Findings))
	var rules []string
	for _, f := range r.Findings {
		if _, ok := seen[f.Rule]; ok {
			continue
		}
		seen[f.Rule] = struct{}{}
		rules = append(rules, f.Rule)
	}
	sort.Strings(rules)
	return rules
}

type gitleaksScrubber struct {
	marker string
	allow  []*regexp.Regexp

	// detect.Detector keeps per-scan state and is not safe for concurrent use.
	mu       sync.Mutex
	detector *detect.Detector
}

// New builds a Scrubber backed by the default gitleaks rule set. A nil cfg
// means DefaultConfig. Compiling the rules is slow; build one and share it.
func New(cfg *Config) (Scrubber, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if !cfg.Enabled {
		return Passthrough{}, nil
	}
	allow, err := cfg.compileAllow()
	if err != nil {
		return nil, fmt.Errorf("invalid secrets config: %w", err)
	}

	detector, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to build gitleaks detector: %w", err)
	}

	return &gitleaksScrubber{marker: cfg.marker(), allow: allow, detector: detector}, nil
}

func (s *gitleaksScrubber) Scrub(text string) Redaction {
	out := Redaction{Text: text}
	if text == "" {
		return out
	}

	s.mu.Lock()
	hits := s.detector.DetectString(text)
	s.mu.Unlock()

	markers := make(map[string]string, len(hits))
	for _, h := range hits {
		value := secretOf(h)
		if value == "" || s.allowed(value) {
			continue
		}
		out.Findings = append(out.Findings, Finding{Rule: h.RuleID, Description: h.Description, Line: h.StartLine})
		if _, ok := markers[value]; !ok {
			markers[value] = fmt.Sprintf(s.marker, h.RuleID)
		}
	}
	out.Text = replaceAll(text, markers)
	return out
}

func (s *gitleaksScrubber) Enabled() bool { return true }

func (s *gitleaksScrubber) allowed(value string) bool {
	for _, re := range s.allow {
		if re.MatchString(value) {
			return true
		}
	}
	return false
}

// secretOf returns the rule's secret capture group, or the whole match when
// the rule has none.
func secretOf(f report.Finding) string {
	if f.Secret != "" {
		return f.Secret
	}
	return f.Match
}

// replaceAll substitutes longer secrets first so one that embeds another is
// replaced whole.
func replaceAll(text string, markers map[string]string) string {
	if len(markers) == 0 {
		return text
	}
	values := make([]string, 0, len(markers))
	for v := range markers {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		if len(values[i]) == len(values[j]) {
			return values[i] < values[j]
		}
		return len(values[i]) > len(values[j])
	})

	pairs := make([]string, 0, 2*len(values))
	for _, v := range values {
		pairs = append(pairs, v, markers[v])
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// Passthrough leaves text untouched.
type Passthrough struct{}

func (Passthrough) Scrub(text string) Redaction { return Redaction{Text: text} }
func (Passthrough) Enabled() bool               { return false }

var (
	_ Scrubber = (*gitleaksScrubber)(nil)
	_ Scrubber = Passthrough{}
)
