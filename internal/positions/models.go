// Package positions fetches live aircraft positions for each fleet:
// ADSB.lol first (free), FlightAware as a spend-capped fallback, with
// geofencing against the configured operating bases.
package positions

import (
	"time"
)

// Source identifies where a position fix came from
type Source string

const (
	SourceADSBLol     Source = "adsb_lol"
	SourceFlightAware Source = "flightaware"
	SourceNone        Source = "none"
	SourceDryRun      Source = "dry_run"
)

// Fix status values
const (
	StatusAirborne  = "airborne"
	StatusOnGround  = "on_ground"
	StatusLastKnown = "last_known"
	StatusNoData    = "no_data"
	StatusUnknown   = "unknown"
)

// PointDetail is the position part of a fix. Nil means not available.
type PointDetail struct {
	Lat            *float64 `json:"lat"`
	Lon            *float64 `json:"lon"`
	AltitudeFt     *int     `json:"altitude_ft"`
	GroundspeedKts *float64 `json:"groundspeed_kts"`
	Heading        *float64 `json:"heading"`
}

// FlightDetail is the flight-plan part of a fix, only populated by the
// FlightAware source
type FlightDetail struct {
	Ident       *string `json:"ident"`
	Origin      *string `json:"origin"`
	Destination *string `json:"destination"`
	ActualOff   *string `json:"actual_off"`
	ActualOn    *string `json:"actual_on"`
}

// Fix is one aircraft's position result
type Fix struct {
	Registration string       `json:"registration"`
	Source       Source       `json:"source"`
	Status       string       `json:"status"`
	Airborne     bool         `json:"airborne"`
	LastSeen     *string      `json:"last_seen"`
	Position     PointDetail  `json:"position"`
	Flight       FlightDetail `json:"flight"`
	Base         BaseFix      `json:"base"`
	FetchedUTC   string       `json:"fetched_utc"`
}

// EmptyFix returns a fix with everything unknown
func EmptyFix(registration string, source Source, now time.Time) *Fix {
	return &Fix{
		Registration: registration,
		Source:       source,
		Status:       StatusUnknown,
		FetchedUTC:   now.UTC().Format(time.RFC3339),
	}
}

// BaseEntry is one aircraft's row in the base-assignment summary
type BaseEntry struct {
	Tail           string       `json:"tail"`
	Source         Source       `json:"source"`
	Status         string       `json:"status"`
	Airborne       bool         `json:"airborne"`
	Lat            *float64     `json:"lat"`
	Lon            *float64     `json:"lon"`
	AltitudeFt     *int         `json:"altitude_ft"`
	GroundspeedKts *float64     `json:"groundspeed_kts"`
	Heading        *float64     `json:"heading"`
	LastSeen       *string      `json:"last_seen"`
	Flight         FlightDetail `json:"flight"`
	AtBase         *bool        `json:"at_base"`
	BaseID         string       `json:"base_id,omitempty"`
	DistanceNM     *float64     `json:"distance_nm"`
}

// BaseGroup is the aircraft currently at one base
type BaseGroup struct {
	Name     string      `json:"name"`
	Aircraft []BaseEntry `json:"aircraft"`
}

// BaseAssignments groups the fleet by where each aircraft is
type BaseAssignments struct {
	Bases    map[string]BaseGroup `json:"bases"`
	Airborne []BaseEntry          `json:"airborne"`
	Away     []BaseEntry          `json:"away"`
}

// BasePoint is a base's location echoed into the output document
type BasePoint struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// FleetPositions is the per-fleet output document
type FleetPositions struct {
	GeneratedUTC    string               `json:"generated_utc"`
	FleetID         string               `json:"fleet_id"`
	Aircraft        map[string]*Fix      `json:"aircraft"`
	BaseAssignments BaseAssignments      `json:"base_assignments"`
	Bases           map[string]BasePoint `json:"bases"`
	DataSources     map[Source]int       `json:"data_sources"`
	FASpend         LedgerStatus         `json:"fa_spend"`
}

// LedgerStatus is the spend-cap summary surfaced in output documents so
// the dashboard can warn when the cap is reached
type LedgerStatus struct {
	Month          string  `json:"month"`
	CallsThisMonth int     `json:"calls_this_month"`
	USDThisMonth   float64 `json:"usd_this_month"`
	MonthlyCapUSD  float64 `json:"monthly_cap_usd"`
	SafetyCapUSD   float64 `json:"safety_cap_usd"`
	RemainingUSD   float64 `json:"remaining_usd"`
	CallsRemaining int     `json:"calls_remaining"`
	CapReached     bool    `json:"cap_reached"`
}
