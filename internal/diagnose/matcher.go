package diagnose

import (
	"slices"
	"strings"

	"github.com/fyrsmithlabs/folio/internal/sanitize"
)

// Tier orders rule evaluation. Lower tiers are consulted first.
type Tier int

const (
	TierCurated Tier = iota
	TierHeuristic
	TierGeneric
)

func (t Tier) String() string {
	switch t {
	case TierCurated:
		return "curated"
	case TierHeuristic:
		return "heuristic"
	case TierGeneric:
		return "generic"
	}
	return "unknown"
}

// Template is the response content a rule produces when it fires.
type Template struct {
	PossibleCauses     []string
	DebugSteps         []string
	Complexity         Complexity
	RecommendedService string
}

// Rule is one entry of the ranked rule list. A rule with no keywords always fires.
type Rule struct {
	Tier Tier
	Name string

	// PatternID is set for curated rules.
	PatternID string

	Keywords []string
	Template Template
}

// RuleFromPattern builds a curated rule.
func RuleFromPattern(p IssuePattern) Rule {
	return Rule{
		Tier:      TierCurated,
		Name:      p.ID,
		PatternID: p.ID,
		Keywords:  p.Keywords,
		Template: Template{
			PossibleCauses:     p.PossibleCauses,
			DebugSteps:         p.DebugSteps,
			Complexity:         p.Complexity,
			RecommendedService: p.RecommendedService,
		},
	}
}

// Score counts how many of the rule's keywords occur in text.
// text must already be lowercased.
func (r *Rule) Score(text string) int {
	n := 0
	for _, kw := range r.Keywords {
		if kw != "" && strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

// Match is the rule selected for a description.
type Match struct {
	Rule  Rule
	Score int
}

// Result renders the match as a visitor response.
func (m Match) Result() *Result {
	t := m.Rule.Template
	return &Result{
		PossibleCauses:     slices.Clone(t.PossibleCauses),
		DebugSteps:         slices.Clone(t.DebugSteps),
		Complexity:         t.Complexity,
		RecommendedService: t.RecommendedService,
		IsMatch:            m.Rule.Tier == TierCurated,
		IsHeuristic:        m.Rule.Tier == TierHeuristic,
	}
}

// Matcher evaluates curated rules followed by the catalog rules.
type Matcher struct {
	fallback []Rule
}

// NewMatcher builds a matcher over catalog. A nil catalog uses the embedded one.
func NewMatcher(catalog *Catalog) (*Matcher, error) {
	if catalog == nil {
		var err error
		if catalog, err = BuiltinCatalog(); err != nil {
			return nil, err
		}
	}
	return &Matcher{fallback: catalog.rules()}, nil
}

// Match selects the winning rule for text, which must already be normalized.
//
// Within the curated tier the highest keyword count wins and ties keep the
// earlier rule. Within the heuristic tier the first rule with any hit wins.
// The generic tier always fires, so Match never comes back empty.
func (m *Matcher) Match(text string, curated []Rule) Match {
	if best, ok := bestOf(text, curated); ok {
		return best
	}
	for i := range m.fallback {
		r := &m.fallback[i]
		if len(r.Keywords) == 0 {
			return Match{Rule: *r}
		}
		if score := r.Score(text); score > 0 {
			return Match{Rule: *r, Score: score}
		}
	}
	// Unreachable with a validated catalog.
	return Match{}
}

func bestOf(text string, rules []Rule) (Match, bool) {
	var best Match
	found := false
	for i := range rules {
		score := rules[i].Score(text)
		if score > 0 && score > best.Score {
			best = Match{Rule: rules[i], Score: score}
			found = true
		}
	}
	return best, found
}

// Normalize prepares sanitized text for keyword matching. Entities escaped by the
// sanitizer are decoded so that "can&#39;t" matches the keyword "can't".
func Normalize(sanitized string) string {
	return strings.ToLower(sanitize.Plain(sanitized))
}
