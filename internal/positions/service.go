package positions

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ihcair/fleetdash/internal/fleet"
	"github.com/ihcair/fleetdash/pkg/logger"
)

// Service fetches positions for whole fleets and writes the per-fleet
// positions document
type Service struct {
	adsb   *ADSBClient
	fa     *FlightAwareClient
	ledger *SpendLedger
	bases  []Base
	dryRun bool
	logger *logger.Logger
}

// NewService creates a position service
func NewService(adsb *ADSBClient, fa *FlightAwareClient, ledger *SpendLedger, bases []Base, dryRun bool, log *logger.Logger) *Service {
	return &Service{
		adsb:   adsb,
		fa:     fa,
		ledger: ledger,
		bases:  bases,
		dryRun: dryRun,
		logger: log.Named("positions"),
	}
}

// FetchFleet fetches a position for every tail in the fleet. ADSB.lol is
// tried first for each tail; FlightAware only fires when ADSB.lol has
// nothing and the spend cap allows it.
func (s *Service) FetchFleet(ctx context.Context, fl *fleet.Fleet, tails []string) (*FleetPositions, error) {
	if len(tails) == 0 {
		tails = fl.Aircraft
	}

	now := time.Now()
	doc := &FleetPositions{
		GeneratedUTC: now.UTC().Format(time.RFC3339),
		FleetID:      fl.ID,
		Aircraft:     make(map[string]*Fix, len(tails)),
		Bases:        make(map[string]BasePoint, len(s.bases)),
		DataSources:  make(map[Source]int),
	}
	for _, b := range s.bases {
		doc.Bases[b.ID] = BasePoint{Name: b.Name, Lat: b.Lat, Lon: b.Lon}
	}

	for _, tail := range tails {
		fix, err := s.fetchTail(ctx, tail)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn("Position fetch failed",
				logger.String("tail", tail),
				logger.Error(err))
			fix = EmptyFix(tail, SourceNone, time.Now())
			fix.Status = StatusNoData
		}
		doc.Aircraft[tail] = fix
		doc.DataSources[fix.Source]++
	}

	doc.BaseAssignments = s.assignBases(doc.Aircraft)
	doc.FASpend = s.ledger.Status()

	s.logger.Info("Fleet positions fetched",
		logger.String("fleet", fl.ID),
		logger.Int("aircraft", len(doc.Aircraft)),
		logger.String("spend", s.ledger.Summary()))

	return doc, nil
}

// fetchTail resolves one tail: ADSB.lol, then FlightAware, then nothing
func (s *Service) fetchTail(ctx context.Context, tail string) (*Fix, error) {
	if s.dryRun {
		fix := EmptyFix(tail, SourceDryRun, time.Now())
		fix.Status = StatusNoData
		return fix, nil
	}

	fix, err := s.adsb.FetchRegistration(ctx, tail)
	if err != nil {
		return nil, fmt.Errorf("adsb.lol: %w", err)
	}
	if fix != nil {
		return fix, nil
	}

	if s.fa != nil && s.fa.Enabled() {
		fix, err = s.fa.FetchRegistration(ctx, tail)
		if err != nil {
			return nil, fmt.Errorf("flightaware: %w", err)
		}
		if fix != nil {
			return fix, nil
		}
	}

	fix = EmptyFix(tail, SourceNone, time.Now())
	fix.Status = StatusNoData
	return fix, nil
}

// assignBases groups the fleet into per-base, airborne, and away buckets
func (s *Service) assignBases(aircraft map[string]*Fix) BaseAssignments {
	out := BaseAssignments{
		Bases:    make(map[string]BaseGroup, len(s.bases)),
		Airborne: []BaseEntry{},
		Away:     []BaseEntry{},
	}
	for _, b := range s.bases {
		out.Bases[b.ID] = BaseGroup{Name: b.Name, Aircraft: []BaseEntry{}}
	}

	tails := make([]string, 0, len(aircraft))
	for tail := range aircraft {
		tails = append(tails, tail)
	}
	sort.Strings(tails)

	for _, tail := range tails {
		fix := aircraft[tail]
		entry := BaseEntry{
			Tail:           tail,
			Source:         fix.Source,
			Status:         fix.Status,
			Airborne:       fix.Airborne,
			Lat:            fix.Position.Lat,
			Lon:            fix.Position.Lon,
			AltitudeFt:     fix.Position.AltitudeFt,
			GroundspeedKts: fix.Position.GroundspeedKts,
			Heading:        fix.Position.Heading,
			LastSeen:       fix.LastSeen,
			Flight:         fix.Flight,
			AtBase:         fix.Base.AtBase,
			BaseID:         fix.Base.BaseID,
			DistanceNM:     fix.Base.DistanceNM,
		}

		switch {
		case fix.Airborne:
			out.Airborne = append(out.Airborne, entry)
		case fix.Base.AtBase != nil && *fix.Base.AtBase:
			group := out.Bases[fix.Base.BaseID]
			group.Aircraft = append(group.Aircraft, entry)
			out.Bases[fix.Base.BaseID] = group
		default:
			out.Away = append(out.Away, entry)
		}
	}

	return out
}

// WriteDocument writes the positions document for one fleet under the dist
// root, pretty-printed for diffable output
func (s *Service) WriteDocument(distRoot string, doc *FleetPositions) (string, error) {
	dir := filepath.Join(distRoot, doc.FleetID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, "positions.json")
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal positions: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	return path, nil
}
