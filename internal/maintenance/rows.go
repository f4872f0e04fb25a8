package maintenance

import (
	"regexp"
	"strings"

	"github.com/ihcair/fleetdash/internal/fleet"
)

// Item types that can become due items; everything else is dropped
const (
	itemTypeInspection = "INSPECTION"
	itemTypePart       = "PART"
)

// Remaining-days window for components with no hours figure
const componentDaysWindow = 60

// DefaultRetirementKeywords flag retirement/overhaul-style component items
// in descriptions. Injected so fleets can customize the list.
func DefaultRetirementKeywords() []string {
	return []string{
		"RETIRE", "OVERHAUL", "DISCARD", "LIFE LIMIT", "TBO",
		"REPLACEMENT", "REPLACE", "CHANGE OIL", "NOZZLE",
		"BATTERY", "CARTRIDGE", "BELT", "FILTER",
	}
}

var (
	riiParenPrefix = regexp.MustCompile(`(?i)^\(RII\)\s*`)
	riiWordPrefix  = regexp.MustCompile(`(?i)^RII\s+`)
)

// stripRIIPrefix removes a leading "(RII)" or "RII " marker from a
// description to form the display label.
func stripRIIPrefix(desc string) string {
	s := riiParenPrefix.ReplaceAllString(desc, "")
	s = riiWordPrefix.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Candidate is one due item produced from a row. RuleLabel is set for phase
// candidates and names the slot the item competes for; it is empty for
// all/part items, which accumulate without deduplication.
type Candidate struct {
	RuleLabel string
	Item      DueItem
}

// RowProcessor decides, per due-list row and fleet type, whether and how a
// row becomes a due-item candidate.
type RowProcessor struct {
	fleetType  fleet.Type
	rules      []fleet.Rule
	thresholds fleet.Thresholds
	keywords   []string
}

// NewRowProcessor creates a row processor for one fleet. A nil keyword list
// selects the default retirement keywords.
func NewRowProcessor(fleetType fleet.Type, rules []fleet.Rule, thresholds fleet.Thresholds, keywords []string) *RowProcessor {
	if keywords == nil {
		keywords = DefaultRetirementKeywords()
	}
	return &RowProcessor{
		fleetType:  fleetType,
		rules:      rules,
		thresholds: thresholds,
		keywords:   keywords,
	}
}

// Process returns the due-item candidates a row produces. Rows whose item
// type is neither INSPECTION nor PART produce nothing. A phase-fleet
// inspection row yields one candidate per matching rule; all-fleet and part
// rows yield at most one.
func (p *RowProcessor) Process(row Row) []Candidate {
	itemType := strings.ToUpper(strings.TrimSpace(row.ItemType))
	if itemType != itemTypeInspection && itemType != itemTypePart {
		return nil
	}

	status := Classify(row.RemainingDays, row.RemainingHours, p.thresholds)
	rii := containsFold(row.Disposition, "RII") || containsFold(row.Description, "RII")

	if itemType == itemTypePart {
		return p.processPart(row, status, rii)
	}

	switch p.fleetType {
	case fleet.TypePhase:
		return p.processPhaseInspection(row, status, rii)
	default:
		return p.processAllInspection(row, status, rii)
	}
}

// processPhaseInspection builds a slot candidate for every rule the row's
// ATA text matches. Non-matching rows produce nothing.
func (p *RowProcessor) processPhaseInspection(row Row, status Status, rii bool) []Candidate {
	var out []Candidate
	for _, rule := range p.rules {
		if !MatchesRule(row.ATA, rule) {
			continue
		}
		out = append(out, Candidate{
			RuleLabel: rule.Label,
			Item: DueItem{
				Label:          rule.Label,
				Group:          rule.Group,
				ATA:            row.ATA,
				Description:    row.Description,
				RemainingHours: row.RemainingHours,
				RemainingDays:  row.RemainingDays,
				StatusRaw:      row.StatusRaw,
				Status:         status,
				Tracked:        true,
				TrackedLabel:   rule.Label,
				RII:            rii,
			},
		})
	}
	return out
}

// processAllInspection includes a row when a rule tracks it, or when it
// looks like a retirement/overhaul component inside the due window.
func (p *RowProcessor) processAllInspection(row Row, status Status, rii bool) []Candidate {
	var trackedLabel, trackedGroup string
	tracked := false
	for _, rule := range p.rules {
		if MatchesRule(row.ATA, rule) {
			trackedLabel = rule.Label
			trackedGroup = rule.Group
			tracked = true
			break
		}
	}

	if !tracked && !(p.hasRetirementKeyword(row.Description) && p.inWindow(row)) {
		return nil
	}

	label := stripRIIPrefix(row.Description)
	if label == "" {
		label = row.Description
	}

	return []Candidate{{
		Item: DueItem{
			Label:          label,
			Group:          trackedGroup,
			ATA:            row.ATA,
			Description:    label,
			RemainingHours: row.RemainingHours,
			RemainingDays:  row.RemainingDays,
			StatusRaw:      row.StatusRaw,
			Status:         status,
			Tracked:        tracked,
			TrackedLabel:   trackedLabel,
			RII:            rii,
		},
	}}
}

// processPart includes a part row under the same due-window test, always
// untracked. Applies to every fleet type.
func (p *RowProcessor) processPart(row Row, status Status, rii bool) []Candidate {
	if !p.inWindow(row) {
		return nil
	}

	label := stripRIIPrefix(row.Description)
	if label == "" {
		label = row.Description
	}

	return []Candidate{{
		Item: DueItem{
			Label:          label,
			ATA:            row.ATA,
			Description:    label,
			RemainingHours: row.RemainingHours,
			RemainingDays:  row.RemainingDays,
			StatusRaw:      row.StatusRaw,
			Status:         status,
			Tracked:        false,
			RII:            rii,
		},
	}}
}

// inWindow reports whether a component-style row is close enough to due to
// surface: remaining hours within the component window, or remaining days
// within 60 when hours are unknown, or the raw status says PAST DUE.
func (p *RowProcessor) inWindow(row Row) bool {
	if row.RemainingHours != nil && *row.RemainingHours <= p.thresholds.ComponentWindow {
		return true
	}
	if row.RemainingHours == nil && row.RemainingDays != nil && *row.RemainingDays <= componentDaysWindow {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(row.StatusRaw), "PAST DUE")
}

func (p *RowProcessor) hasRetirementKeyword(desc string) bool {
	d := strings.ToUpper(desc)
	for _, kw := range p.keywords {
		if strings.Contains(d, kw) {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToUpper(s), strings.ToUpper(substr))
}
