package positions

import (
	"math"

	"github.com/ihcair/fleetdash/internal/config"
)

// defaultBaseRadiusNM applies when a base is configured without a radius
const defaultBaseRadiusNM = 3

// earthRadiusNM is the Earth radius in nautical miles
const earthRadiusNM = 3440.065

// Base is one operating base for geofencing
type Base struct {
	ID       string
	Name     string
	Lat      float64
	Lon      float64
	RadiusNM float64
}

// BasesFromConfig converts configured bases
func BasesFromConfig(cfgs []config.BaseConfig) []Base {
	bases := make([]Base, 0, len(cfgs))
	for _, c := range cfgs {
		bases = append(bases, Base{
			ID:       c.ID,
			Name:     c.Name,
			Lat:      c.Lat,
			Lon:      c.Lon,
			RadiusNM: c.RadiusNM,
		})
	}
	return bases
}

// BaseFix is the geofencing result attached to a position fix
type BaseFix struct {
	AtBase     *bool    `json:"at_base"`
	BaseID     string   `json:"base_id,omitempty"`
	BaseName   string   `json:"base_name,omitempty"`
	DistanceNM *float64 `json:"distance_nm"`
}

// HaversineNM returns the great-circle distance between two points in
// nautical miles
func HaversineNM(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadiusNM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// ClassifyBase finds the nearest configured base to a position and reports
// whether the aircraft is inside that base's radius.
func ClassifyBase(lat, lon float64, bases []Base) BaseFix {
	var nearest *Base
	best := math.Inf(1)
	for i := range bases {
		d := HaversineNM(lat, lon, bases[i].Lat, bases[i].Lon)
		if d < best {
			best = d
			nearest = &bases[i]
		}
	}

	if nearest == nil {
		f := false
		return BaseFix{AtBase: &f}
	}

	radius := nearest.RadiusNM
	if radius <= 0 {
		radius = defaultBaseRadiusNM
	}

	at := best <= radius
	dist := math.Round(best*10) / 10
	return BaseFix{
		AtBase:     &at,
		BaseID:     nearest.ID,
		BaseName:   nearest.Name,
		DistanceNM: &dist,
	}
}
