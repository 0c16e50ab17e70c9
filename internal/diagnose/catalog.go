package diagnose

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog/heuristics.yaml
var builtinCatalog []byte

// Heuristic is one built-in problem category.
type Heuristic struct {
	Name               string     `yaml:"name"`
	Triggers           []string   `yaml:"triggers"`
	Cause              string     `yaml:"cause"`
	Step               string     `yaml:"step"`
	Complexity         Complexity `yaml:"complexity"`
	RecommendedService string     `yaml:"recommendedService"`
}

// Catalog holds the built-in heuristic and generic knowledge.
type Catalog struct {
	Heuristics []Heuristic `yaml:"heuristics"`
	Filler     struct {
		Causes []string `yaml:"causes"`
		Steps  []string `yaml:"steps"`
	} `yaml:"filler"`
	Generic struct {
		PossibleCauses     []string   `yaml:"possibleCauses"`
		DebugSteps         []string   `yaml:"debugSteps"`
		Complexity         Complexity `yaml:"complexity"`
		RecommendedService string     `yaml:"recommendedService"`
	} `yaml:"generic"`
}

var (
	builtinOnce sync.Once
	builtin     *Catalog
	builtinErr  error
)

// BuiltinCatalog returns the embedded catalog, parsed on first use.
func BuiltinCatalog() (*Catalog, error) {
	builtinOnce.Do(func() {
		builtin, builtinErr = ParseCatalog(builtinCatalog)
	})
	return builtin, builtinErr
}

// ParseCatalog decodes and validates a catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	var errs []error
	for i := range c.Heuristics {
		h := &c.Heuristics[i]
		for j, t := range h.Triggers {
			h.Triggers[j] = strings.ToLower(strings.TrimSpace(t))
		}
		h.Triggers = trimAll(h.Triggers)
		if h.Name == "" {
			errs = append(errs, fmt.Errorf("heuristic %d: name is required", i))
		}
		if len(h.Triggers) == 0 {
			errs = append(errs, fmt.Errorf("heuristic %q: no triggers", h.Name))
		}
		if h.Cause == "" || h.Step == "" {
			errs = append(errs, fmt.Errorf("heuristic %q: cause and step are required", h.Name))
		}
		if !h.Complexity.Valid() {
			errs = append(errs, fmt.Errorf("heuristic %q: invalid complexity %q", h.Name, h.Complexity))
		}
		if h.RecommendedService == "" {
			errs = append(errs, fmt.Errorf("heuristic %q: recommended service is required", h.Name))
		}
	}
	if len(c.Generic.PossibleCauses) == 0 || len(c.Generic.DebugSteps) == 0 {
		errs = append(errs, errors.New("generic: causes and steps are required"))
	}
	if !c.Generic.Complexity.Valid() {
		errs = append(errs, fmt.Errorf("generic: invalid complexity %q", c.Generic.Complexity))
	}
	if c.Generic.RecommendedService == "" {
		errs = append(errs, errors.New("generic: recommended service is required"))
	}
	return errors.Join(errs...)
}

// rules converts the catalog into tier-1 and tier-2 rules, in evaluation order.
func (c *Catalog) rules() []Rule {
	out := make([]Rule, 0, len(c.Heuristics)+1)
	for _, h := range c.Heuristics {
		causes := append([]string{h.Cause}, c.Filler.Causes...)
		steps := append([]string{h.Step}, c.Filler.Steps...)
		out = append(out, Rule{
			Tier:     TierHeuristic,
			Name:     h.Name,
			Keywords: h.Triggers,
			Template: Template{
				PossibleCauses:     causes,
				DebugSteps:         steps,
				Complexity:         h.Complexity,
				RecommendedService: h.RecommendedService,
			},
		})
	}
	out = append(out, Rule{
		Tier: TierGeneric,
		Name: "generic",
		Template: Template{
			PossibleCauses:     c.Generic.PossibleCauses,
			DebugSteps:         c.Generic.DebugSteps,
			Complexity:         c.Generic.Complexity,
			RecommendedService: c.Generic.RecommendedService,
		},
	})
	return out
}
