// Package history maintains the rolling per-tail record of airframe hours
// across repeated builds. It is the only state that survives a run.
package history

import (
	"time"
)

// DateLayout is the ISO date key format
const DateLayout = "2006-01-02"

// RetentionDays is how long an hours sample is kept
const RetentionDays = 90

// Entry is one airframe-hours sample
type Entry struct {
	Hours float64 `json:"hours"`
	Date  string  `json:"date"`
}

// TailHistory maps ISO date keys to samples for one aircraft
type TailHistory map[string]Entry

// History maps tails to their rolling sample maps
type History map[string]TailHistory

// Update writes one sample per tail under the report date key and prunes
// everything older than the retention window. Re-running with the same
// report date and hours is a no-op after the first call; samples age out
// strictly after RetentionDays regardless of run frequency.
//
// reportDate is the export's report date; callers pass now when the export
// carries none. The caller persists the full resulting map.
func Update(h History, hoursByTail map[string]float64, reportDate, now time.Time) History {
	if h == nil {
		h = History{}
	}

	dateKey := reportDate.Format(DateLayout)
	cutoff := now.AddDate(0, 0, -RetentionDays).Format(DateLayout)

	for tail, hours := range hoursByTail {
		th, ok := h[tail]
		if !ok {
			th = TailHistory{}
			h[tail] = th
		}
		th[dateKey] = Entry{Hours: hours, Date: dateKey}
	}

	// ISO date keys compare correctly as strings
	for _, th := range h {
		for date := range th {
			if date < cutoff {
				delete(th, date)
			}
		}
	}

	return h
}
