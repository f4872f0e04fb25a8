package maintenance

import (
	"sort"

	"github.com/ihcair/fleetdash/internal/fleet"
)

// mergeOrderUnknown sorts items whose tracked label is not in the rule
// configuration after every configured label.
const mergeOrderUnknown = 999

// MergeSnapshots folds a secondary wider-horizon snapshot into the primary
// one, in place. Tails only the secondary knows are adopted wholesale. For
// tails present in both, only secondary items whose tracked label the
// primary lacks are appended; the primary's own items are never altered.
// Merged item lists are re-sorted into configured rule-label order, with
// unconfigured labels last in their prior relative order.
//
// Used for phase fleets, where the daily export covers near-term intervals
// and the weekly export the long-range ones.
func MergeSnapshots(primary, secondary Snapshot, rules []fleet.Rule) {
	labelOrder := make(map[string]int, len(rules))
	for i, rule := range rules {
		labelOrder[rule.Label] = i
	}

	for tail, record := range secondary {
		existing, ok := primary[tail]
		if !ok {
			primary[tail] = record
			continue
		}

		have := make(map[string]bool)
		for _, item := range existing.Items {
			if item.TrackedLabel != "" {
				have[item.TrackedLabel] = true
			}
		}

		for _, item := range record.Items {
			if item.TrackedLabel != "" && !have[item.TrackedLabel] {
				existing.Items = append(existing.Items, item)
			}
		}

		items := existing.Items
		sort.SliceStable(items, func(i, j int) bool {
			return labelRank(items[i], labelOrder) < labelRank(items[j], labelOrder)
		})
	}
}

func labelRank(item DueItem, order map[string]int) int {
	if rank, ok := order[item.TrackedLabel]; ok {
		return rank
	}
	return mergeOrderUnknown
}
