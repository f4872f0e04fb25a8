package maintenance

import (
	"github.com/ihcair/fleetdash/internal/fleet"
)

// unknownRemaining sorts items with no remaining time figure after any real
// value within the same urgency bucket.
const unknownRemaining = 999999

// Classify maps remaining time to an urgency bucket. Days take precedence
// over hours; an item with neither figure is UNKNOWN.
func Classify(remainingDays, remainingHours *float64, t fleet.Thresholds) Status {
	if remainingDays != nil {
		d := *remainingDays
		switch {
		case d < 0:
			return StatusOverdue
		case d <= t.CriticalDays:
			return StatusCritical
		case d <= t.ComingDays:
			return StatusComingDue
		default:
			return StatusOK
		}
	}

	if remainingHours != nil {
		h := *remainingHours
		switch {
		case h < 0:
			return StatusOverdue
		case h <= t.CriticalHrs:
			return StatusCritical
		case h <= t.ComingHrs:
			return StatusComingDue
		default:
			return StatusOK
		}
	}

	return StatusUnknown
}

// remainingValue is the secondary urgency sort key: remaining days when
// present, else remaining hours, else the unknown sentinel.
func remainingValue(item DueItem) float64 {
	if item.RemainingDays != nil {
		return *item.RemainingDays
	}
	if item.RemainingHours != nil {
		return *item.RemainingHours
	}
	return unknownRemaining
}

// LessUrgent orders due items most urgent first: by status rank, then by
// remaining time ascending. Use with a stable sort so equal items keep
// their arrival order.
func LessUrgent(a, b DueItem) bool {
	ra, rb := a.Status.Rank(), b.Status.Rank()
	if ra != rb {
		return ra < rb
	}
	return remainingValue(a) < remainingValue(b)
}
