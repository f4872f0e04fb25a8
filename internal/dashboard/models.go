// Package dashboard turns due-list exports into the per-fleet dashboard
// document the frontend renders: parse, classify, merge, update the
// flight-hours history, and write JSON under the dist root.
package dashboard

import (
	"github.com/ihcair/fleetdash/internal/fleet"
	"github.com/ihcair/fleetdash/internal/history"
	"github.com/ihcair/fleetdash/internal/maintenance"
)

// Summary counts every included item by urgency across the whole fleet.
// TotalTracked is the sum of the four buckets; UNKNOWN-status items are
// excluded from all of them.
type Summary struct {
	Overdue      int `json:"OVERDUE"`
	Critical     int `json:"CRITICAL"`
	ComingDue    int `json:"COMING_DUE"`
	OK           int `json:"OK"`
	TotalTracked int `json:"total_tracked"`
}

// ConfigEcho is the fleet configuration echoed into the output document so
// the frontend can render grouped column headers without a second fetch
type ConfigEcho struct {
	Inspections []fleet.Rule     `json:"inspections"`
	Groups      []fleet.Group    `json:"inspection_groups"`
	Thresholds  fleet.Thresholds `json:"thresholds"`
}

// Document is the per-fleet dashboard payload
type Document struct {
	GeneratedAtUTC string               `json:"generated_at_utc"`
	Fleet          string               `json:"fleet"`
	FleetID        string               `json:"fleet_id"`
	FleetType      fleet.Type           `json:"fleet_type"`
	AircraftCount  int                  `json:"aircraft_count"`
	Config         ConfigEcho           `json:"config"`
	Summary        Summary              `json:"summary"`
	Aircraft       maintenance.Snapshot `json:"aircraft"`
	FlightHours    history.History      `json:"flight_hours_history"`
}

// summarize tallies every item by status, tracked or not
func summarize(snapshot maintenance.Snapshot) Summary {
	var s Summary
	for _, record := range snapshot {
		for _, item := range record.Items {
			switch item.Status {
			case maintenance.StatusOverdue:
				s.Overdue++
			case maintenance.StatusCritical:
				s.Critical++
			case maintenance.StatusComingDue:
				s.ComingDue++
			case maintenance.StatusOK:
				s.OK++
			}
		}
	}
	s.TotalTracked = s.Overdue + s.Critical + s.ComingDue + s.OK
	return s
}
