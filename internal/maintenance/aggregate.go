package maintenance

import (
	"sort"
	"strings"

	"github.com/ihcair/fleetdash/internal/fleet"
)

// Aggregator accumulates per-tail due items across all rows of one
// snapshot. Phase fleets keep one candidate slot per configured rule label;
// all fleets accumulate everything and sort by urgency at the end. Final
// phase content and final all-mode order do not depend on row order.
type Aggregator struct {
	fleetType fleet.Type
	rules     []fleet.Rule
	aircraft  map[string]*aircraftState
}

type aircraftState struct {
	record *AircraftRecord
	// slots holds the current phase candidate per rule label
	slots map[string]DueItem
}

// NewAggregator creates an aggregator for one snapshot scan
func NewAggregator(fleetType fleet.Type, rules []fleet.Rule) *Aggregator {
	return &Aggregator{
		fleetType: fleetType,
		rules:     rules,
		aircraft:  make(map[string]*aircraftState),
	}
}

// Add records one decoded row and the candidates it produced. Airframe
// metadata is captured from the first row seen for a tail and never
// overwritten, even by rows that produce no items.
func (a *Aggregator) Add(row Row, candidates []Candidate) {
	tail := strings.TrimSpace(row.Registration)
	if tail == "" {
		return
	}

	state, ok := a.aircraft[tail]
	if !ok {
		state = &aircraftState{
			record: &AircraftRecord{
				AirframeHours:      row.AirframeHours,
				AirframeReportDate: row.AirframeReportDate,
				Items:              []DueItem{},
			},
			slots: make(map[string]DueItem),
		}
		a.aircraft[tail] = state
	}

	for _, cand := range candidates {
		if cand.RuleLabel != "" {
			existing, occupied := state.slots[cand.RuleLabel]
			if !occupied || moreUrgent(cand.Item, existing) {
				state.slots[cand.RuleLabel] = cand.Item
			}
			continue
		}
		state.record.Items = append(state.record.Items, cand.Item)
	}
}

// Finalize materializes the snapshot. Phase slots are emitted in configured
// rule order, omitting unmatched rules; all-mode items are stable-sorted by
// urgency. The aggregator must not be reused afterwards.
func (a *Aggregator) Finalize() Snapshot {
	snapshot := make(Snapshot, len(a.aircraft))
	for tail, state := range a.aircraft {
		if a.fleetType == fleet.TypePhase {
			items := make([]DueItem, 0, len(state.slots))
			for _, rule := range a.rules {
				if item, ok := state.slots[rule.Label]; ok {
					items = append(items, item)
				}
			}
			state.record.Items = items
		} else {
			items := state.record.Items
			sort.SliceStable(items, func(i, j int) bool {
				return LessUrgent(items[i], items[j])
			})
		}
		snapshot[tail] = state.record
	}
	return snapshot
}

// moreUrgent reports whether a new phase candidate beats the existing slot
// holder. An hours-bearing candidate always beats a days-only one: hours
// are treated as the authoritative figure for phase intervals.
func moreUrgent(candidate, existing DueItem) bool {
	ch, eh := candidate.RemainingHours, existing.RemainingHours
	if ch != nil && eh != nil {
		return *ch < *eh
	}
	if ch != nil && eh == nil {
		return true
	}
	cd, ed := candidate.RemainingDays, existing.RemainingDays
	if cd != nil && ed != nil {
		return *cd < *ed
	}
	return false
}
