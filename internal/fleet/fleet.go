// Package fleet loads the fleet configuration exported from the dashboard's
// Configure Fleets modal (fleet_config.json) and flattens inspection rules
// for the classification engine.
package fleet

import (
	"encoding/json"
	"fmt"
	"os"
)

// Type identifies how a fleet's due list is tracked
type Type string

const (
	// TypePhase tracks specific phase-inspection intervals, one slot per rule
	TypePhase Type = "phase"
	// TypeAll tracks every inspection matching a rule plus in-window components
	TypeAll Type = "all"
)

// MatchMode selects how a rule's pattern is compared against ATA text
type MatchMode string

const (
	// MatchContains matches when the pattern appears anywhere in the ATA text
	MatchContains MatchMode = "contains"
	// MatchExact matches the full ATA text or one whitespace-delimited token
	MatchExact MatchMode = "exact"
	// MatchStripChapter strips the leading chapter code from both sides first
	MatchStripChapter MatchMode = "strip-chapter"
)

// Rule is one configured inspection rule. Patterns may arrive under either
// the "ataMatch" or the legacy "match" key.
type Rule struct {
	Label    string    `json:"label"`
	ATAMatch string    `json:"ataMatch"`
	Match    string    `json:"match"`
	Mode     MatchMode `json:"mode"`

	// Group is the owning group label, set during flattening. Empty for
	// rules declared flat.
	Group string `json:"-"`
}

// Pattern returns the rule's match pattern, preferring ataMatch over the
// legacy match key.
func (r Rule) Pattern() string {
	if r.ATAMatch != "" {
		return r.ATAMatch
	}
	return r.Match
}

// Group is a named collection of inspection rules
type Group struct {
	Label       string `json:"label"`
	Inspections []Rule `json:"inspections"`
}

// Thresholds are the urgency classification boundaries for a fleet
type Thresholds struct {
	CriticalDays    float64 `json:"criticalDays"`
	ComingDays      float64 `json:"comingDays"`
	CriticalHrs     float64 `json:"criticalHrs"`
	ComingHrs       float64 `json:"comingHrs"`
	ComponentWindow float64 `json:"componentWindow"`
}

// DefaultThresholds returns the standard classification boundaries
func DefaultThresholds() Thresholds {
	return Thresholds{
		CriticalDays:    7,
		ComingDays:      30,
		CriticalHrs:     25,
		ComingHrs:       100,
		ComponentWindow: 200,
	}
}

// UnmarshalJSON fills any omitted threshold with its default so partial
// configs classify the same way the frontend does.
func (t *Thresholds) UnmarshalJSON(data []byte) error {
	raw := struct {
		CriticalDays    *float64 `json:"criticalDays"`
		ComingDays      *float64 `json:"comingDays"`
		CriticalHrs     *float64 `json:"criticalHrs"`
		ComingHrs       *float64 `json:"comingHrs"`
		ComponentWindow *float64 `json:"componentWindow"`
	}{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = DefaultThresholds()
	if raw.CriticalDays != nil {
		t.CriticalDays = *raw.CriticalDays
	}
	if raw.ComingDays != nil {
		t.ComingDays = *raw.ComingDays
	}
	if raw.CriticalHrs != nil {
		t.CriticalHrs = *raw.CriticalHrs
	}
	if raw.ComingHrs != nil {
		t.ComingHrs = *raw.ComingHrs
	}
	if raw.ComponentWindow != nil {
		t.ComponentWindow = *raw.ComponentWindow
	}
	return nil
}

// Fleet is one configured aircraft fleet
type Fleet struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Type       Type       `json:"type"`
	Thresholds Thresholds `json:"thresholds"`

	// Either Inspections (flat) or Groups (grouped) is supplied
	Inspections []Rule  `json:"inspections"`
	Groups      []Group `json:"inspection_groups"`

	// Aircraft lists the fleet's tail numbers for position fetching
	Aircraft []string `json:"aircraft"`
}

// DisplayName returns the fleet name, falling back to its ID
func (f *Fleet) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return f.ID
}

// FlatRules returns the fleet's rules as a flat list in configured order,
// each tagged with its owning group label (empty for ungrouped rules).
// Grouped rules take precedence when both forms are present.
func (f *Fleet) FlatRules() []Rule {
	if len(f.Groups) > 0 {
		var flat []Rule
		for _, grp := range f.Groups {
			for _, rule := range grp.Inspections {
				rule.Group = grp.Label
				flat = append(flat, rule)
			}
		}
		return flat
	}
	rules := make([]Rule, len(f.Inspections))
	copy(rules, f.Inspections)
	return rules
}

// Config is the top-level fleet configuration document
type Config struct {
	Fleets []Fleet `json:"fleets"`
}

// Load reads and validates a fleet_config.json file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fleet config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse fleet config: %w", err)
	}

	for i := range cfg.Fleets {
		f := &cfg.Fleets[i]
		if f.ID == "" {
			return nil, fmt.Errorf("fleet at index %d has no id", i)
		}
		if f.Type == "" {
			f.Type = TypeAll
		}
		if f.Type != TypePhase && f.Type != TypeAll {
			return nil, fmt.Errorf("fleet %s: unknown type %q", f.ID, f.Type)
		}
		// Thresholds block omitted entirely
		if f.Thresholds == (Thresholds{}) {
			f.Thresholds = DefaultThresholds()
		}
	}

	return &cfg, nil
}

// Find returns the fleet with the given ID, or nil
func (c *Config) Find(id string) *Fleet {
	for i := range c.Fleets {
		if c.Fleets[i].ID == id {
			return &c.Fleets[i]
		}
	}
	return nil
}
