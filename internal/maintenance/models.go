// Package maintenance is the classification and merge engine: it turns typed
// due-list rows into per-aircraft due-item records, classifies urgency
// against fleet thresholds, deduplicates phase intervals, and merges
// overlapping report snapshots.
package maintenance

// Status is the urgency bucket of a due item
type Status string

const (
	StatusOverdue   Status = "OVERDUE"
	StatusCritical  Status = "CRITICAL"
	StatusComingDue Status = "COMING_DUE"
	StatusOK        Status = "OK"
	StatusUnknown   Status = "UNKNOWN"
)

// Rank returns the sort rank of a status, most urgent first. Unrecognized
// statuses sort after everything defined.
func (s Status) Rank() int {
	switch s {
	case StatusOverdue:
		return 0
	case StatusCritical:
		return 1
	case StatusComingDue:
		return 2
	case StatusOK:
		return 3
	case StatusUnknown:
		return 4
	default:
		return 9
	}
}

// Row is one typed due-list row, decoded from a fixed-offset CSV export.
// Nil numeric fields mean the source cell was empty or unparseable, which
// downstream logic treats as unknown rather than zero.
type Row struct {
	Registration       string
	ATA                string
	ItemType           string
	Disposition        string
	Description        string
	RemainingHours     *float64
	RemainingDays      *float64
	StatusRaw          string
	AirframeHours      *float64
	AirframeReportDate string // ISO date or empty
}

// DueItem is one inspection or part line with remaining time before action
// is required
type DueItem struct {
	Label       string `json:"label"`
	Group       string `json:"group"`
	ATA         string `json:"ata"`
	Description string `json:"description"`
	// NextDueDate is not derived from the export; always emitted null so
	// the renderer sees a stable item shape
	NextDueDate    *string  `json:"next_due_date"`
	RemainingHours *float64 `json:"remaining_hours"`
	RemainingDays  *float64 `json:"remaining_days"`
	StatusRaw      string   `json:"next_due_status"`
	Status         Status   `json:"status"`
	Tracked        bool     `json:"tracked"`
	TrackedLabel   string   `json:"tracked_label"`
	RII            bool     `json:"rii"`
}

// AircraftRecord is one aircraft's due-item list plus airframe metadata.
// Records are keyed by tail in the snapshot map.
type AircraftRecord struct {
	AirframeHours      *float64  `json:"airframe_hours"`
	AirframeReportDate string    `json:"airframe_report_date,omitempty"`
	Items              []DueItem `json:"items"`
}

// Snapshot is one parsed due-list report, keyed by tail
type Snapshot map[string]*AircraftRecord
