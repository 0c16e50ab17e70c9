package diagnose

import (
	"fmt"
	"strings"
	"time"
)

// Complexity rates how involved a fix is likely to be.
type Complexity string

const (
	ComplexityLow    Complexity = "Low"
	ComplexityMedium Complexity = "Medium"
	ComplexityHigh   Complexity = "High"
)

// Valid reports whether c is one of the known ratings.
func (c Complexity) Valid() bool {
	switch c {
	case ComplexityLow, ComplexityMedium, ComplexityHigh:
		return true
	}
	return false
}

// IssuePattern is a curated knowledge-base entry authored by an administrator.
type IssuePattern struct {
	ID                 string     `json:"id" yaml:"id"`
	Keywords           []string   `json:"keywords" yaml:"keywords"`
	PossibleCauses     []string   `json:"possibleCauses" yaml:"possibleCauses"`
	DebugSteps         []string   `json:"debugSteps" yaml:"debugSteps"`
	Complexity         Complexity `json:"complexity" yaml:"complexity"`
	RecommendedService string     `json:"recommendedService" yaml:"recommendedService"`
	CreatedAt          time.Time  `json:"createdAt" yaml:"-"`
	UpdatedAt          time.Time  `json:"updatedAt" yaml:"-"`
}

// Normalize lowercases and trims keywords, dropping empty and duplicate entries,
// and trims the remaining text fields.
func (p *IssuePattern) Normalize() {
	p.ID = strings.TrimSpace(p.ID)
	seen := make(map[string]bool, len(p.Keywords))
	keywords := make([]string, 0, len(p.Keywords))
	for _, kw := range p.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		keywords = append(keywords, kw)
	}
	p.Keywords = keywords
	p.PossibleCauses = trimAll(p.PossibleCauses)
	p.DebugSteps = trimAll(p.DebugSteps)
	p.RecommendedService = strings.TrimSpace(p.RecommendedService)
}

// Validate checks the pattern invariants. Call Normalize first.
func (p *IssuePattern) Validate() error {
	if len(p.Keywords) == 0 {
		return fmt.Errorf("%w: at least one keyword is required", ErrInvalidPattern)
	}
	if len(p.PossibleCauses) == 0 {
		return fmt.Errorf("%w: at least one possible cause is required", ErrInvalidPattern)
	}
	if len(p.DebugSteps) == 0 {
		return fmt.Errorf("%w: at least one debug step is required", ErrInvalidPattern)
	}
	if !p.Complexity.Valid() {
		return fmt.Errorf("%w: complexity must be Low, Medium or High, got %q", ErrInvalidPattern, p.Complexity)
	}
	if p.RecommendedService == "" {
		return fmt.Errorf("%w: recommended service is required", ErrInvalidPattern)
	}
	return nil
}

// DiagnosticLog records one served diagnosis. Rows are append-only.
type DiagnosticLog struct {
	ID               string    `json:"id"`
	Description      string    `json:"description"`
	TechStack        string    `json:"techStack,omitempty"`
	ErrorMessage     string    `json:"errorMessage,omitempty"`
	Environment      string    `json:"environment,omitempty"`
	MatchedPatternID *string   `json:"matchedPatternId"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Matched reports whether a curated pattern fired for this log.
func (l *DiagnosticLog) Matched() bool {
	return l.MatchedPatternID != nil
}

// Request is the visitor-supplied input to Diagnose.
type Request struct {
	Description  string `json:"description"`
	TechStack    string `json:"techStack,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	Environment  string `json:"environment,omitempty"`
}

// Result is the diagnosis returned to the visitor.
type Result struct {
	PossibleCauses     []string   `json:"possibleCauses"`
	DebugSteps         []string   `json:"debugSteps"`
	Complexity         Complexity `json:"complexity"`
	RecommendedService string     `json:"recommendedService"`
	IsMatch            bool       `json:"isMatch"`
	IsHeuristic        bool       `json:"isHeuristic,omitempty"`

	// ID is the diagnostic log written for this result.
	ID string `json:"id,omitempty"`
}

// Outcome names which tier produced a result.
func (r *Result) Outcome() string {
	switch {
	case r.IsMatch:
		return OutcomeMatched
	case r.IsHeuristic:
		return OutcomeHeuristic
	default:
		return OutcomeGeneric
	}
}

// Outcome labels, used in logs and metrics.
const (
	OutcomeMatched   = "matched"
	OutcomeHeuristic = "heuristic"
	OutcomeGeneric   = "generic"
)

// LogFilter narrows ListLogs.
type LogFilter struct {
	UnmatchedOnly bool
	Limit         int
}

// Log listing bounds.
const (
	DefaultLogLimit = 50
	MaxLogLimit     = 500
)

// Stats aggregates diagnostic activity for the stats endpoint.
type Stats struct {
	DiagRuns        int `json:"diagRuns"`
	PatternsMatched int `json:"patternsMatched"`
	Patterns        int `json:"patterns"`
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
