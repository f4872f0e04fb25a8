package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ihcair/fleetdash/internal/export"
	"github.com/ihcair/fleetdash/internal/fleet"
	"github.com/ihcair/fleetdash/internal/history"
	"github.com/ihcair/fleetdash/internal/maintenance"
	"github.com/ihcair/fleetdash/internal/storage/sqlite"
	"github.com/ihcair/fleetdash/pkg/logger"
)

// ErrNoExport means no daily due-list export was found for a fleet. The
// fleet is skipped rather than failing the whole build.
var ErrNoExport = errors.New("no due-list export found")

// HistoryStore persists the rolling flight-hours history between builds
type HistoryStore interface {
	Load(fleetID string) (history.History, error)
	Replace(fleetID string, h history.History) error
}

var _ HistoryStore = (*sqlite.HoursHistoryStorage)(nil)

// Builder builds dashboard documents for configured fleets
type Builder struct {
	fleets   *fleet.Config
	reader   *export.Reader
	store    HistoryStore
	dataRoot string
	distRoot string
	keywords []string
	now      func() time.Time
	logger   *logger.Logger
}

// NewBuilder creates a dashboard builder. keywords overrides the default
// component-retirement keyword list when non-empty.
func NewBuilder(fleets *fleet.Config, store HistoryStore, dataRoot, distRoot string, keywords []string, log *logger.Logger) *Builder {
	return &Builder{
		fleets:   fleets,
		reader:   export.NewReader(export.DefaultLayout()),
		store:    store,
		dataRoot: dataRoot,
		distRoot: distRoot,
		keywords: keywords,
		now:      time.Now,
		logger:   log.Named("dashboard"),
	}
}

// Result describes one fleet's build
type Result struct {
	FleetID     string
	OutputPath  string
	Aircraft    int
	Rows        int
	RowsSkipped int
	MergedWeek  bool
}

// Totals summarizes a full build across fleets
type Totals struct {
	Built   int
	Skipped int
	Failed  int
}

// BuildAll builds every configured fleet. A fleet with no export is
// skipped; any other failure is logged and counted but does not stop the
// remaining fleets.
func (b *Builder) BuildAll() Totals {
	var totals Totals
	for i := range b.fleets.Fleets {
		fl := &b.fleets.Fleets[i]
		res, err := b.BuildFleet(fl)
		switch {
		case errors.Is(err, ErrNoExport):
			b.logger.Warn("No due-list export, skipping fleet",
				logger.String("fleet", fl.ID))
			totals.Skipped++
		case err != nil:
			b.logger.Error("Fleet build failed",
				logger.String("fleet", fl.ID),
				logger.Error(err))
			totals.Failed++
		default:
			b.logger.Info("Fleet built",
				logger.String("fleet", fl.ID),
				logger.String("output", res.OutputPath),
				logger.Int("aircraft", res.Aircraft),
				logger.Int("rows", res.Rows))
			totals.Built++
		}
	}
	return totals
}

// BuildFleet builds one fleet's dashboard document and writes it under the
// dist root. Phase fleets merge the weekly export into the daily one when
// both are present.
func (b *Builder) BuildFleet(fl *fleet.Fleet) (*Result, error) {
	paths := export.FindDueLists(b.dataRoot, fl.ID)
	if !export.Exists(paths.Daily) {
		return nil, ErrNoExport
	}

	rules := fl.FlatRules()
	snapshot, daily, err := b.parseExport(paths.Daily, fl, rules)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", paths.Daily, err)
	}

	mergedWeek := false
	if fl.Type == fleet.TypePhase && export.Exists(paths.Weekly) {
		weekly, _, err := b.parseExport(paths.Weekly, fl, rules)
		if err != nil {
			// the daily snapshot still stands on its own
			b.logger.Warn("Failed to parse weekly export, continuing without it",
				logger.String("fleet", fl.ID),
				logger.Error(err))
		} else {
			maintenance.MergeSnapshots(snapshot, weekly, rules)
			mergedWeek = true
		}
	}

	flightHours := b.updateHistory(fl.ID, snapshot, daily)

	doc := &Document{
		GeneratedAtUTC: b.now().UTC().Format(time.RFC3339),
		Fleet:          fl.DisplayName(),
		FleetID:        fl.ID,
		FleetType:      fl.Type,
		AircraftCount:  len(snapshot),
		Config: ConfigEcho{
			Inspections: fl.Inspections,
			Groups:      fl.Groups,
			Thresholds:  fl.Thresholds,
		},
		Summary: summarize(snapshot),
		Aircraft:       snapshot,
		FlightHours:    flightHours,
	}

	path, err := b.writeDocument(fl.ID, doc)
	if err != nil {
		return nil, err
	}

	return &Result{
		FleetID:     fl.ID,
		OutputPath:  path,
		Aircraft:    len(snapshot),
		Rows:        len(daily.Rows),
		RowsSkipped: daily.Skipped,
		MergedWeek:  mergedWeek,
	}, nil
}

// parseExport reads one due-list CSV and aggregates it into a snapshot
func (b *Builder) parseExport(path string, fl *fleet.Fleet, rules []fleet.Rule) (maintenance.Snapshot, *export.Result, error) {
	result, err := b.reader.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	proc := maintenance.NewRowProcessor(fl.Type, rules, fl.Thresholds, b.keywords)
	agg := maintenance.NewAggregator(fl.Type, rules)
	for _, row := range result.Rows {
		agg.Add(row, proc.Process(row))
	}

	return agg.Finalize(), result, nil
}

// updateHistory folds this build's airframe hours into the rolling history
// and persists it. History problems never fail a build: a corrupt or
// missing store just means starting over with an empty history.
func (b *Builder) updateHistory(fleetID string, snapshot maintenance.Snapshot, daily *export.Result) history.History {
	var h history.History
	if b.store != nil {
		loaded, err := b.store.Load(fleetID)
		if err != nil {
			b.logger.Warn("Failed to load flight-hours history, starting fresh",
				logger.String("fleet", fleetID),
				logger.Error(err))
		} else {
			h = loaded
		}
	}

	hoursByTail := make(map[string]float64)
	for tail, record := range snapshot {
		if record.AirframeHours != nil {
			hoursByTail[tail] = *record.AirframeHours
		}
	}

	now := b.now()
	reportDate := now
	// report date comes from the export, first parseable row wins
	for _, row := range daily.Rows {
		if row.AirframeReportDate == "" {
			continue
		}
		if t, err := time.Parse(history.DateLayout, row.AirframeReportDate); err == nil {
			reportDate = t
			break
		}
	}

	h = history.Update(h, hoursByTail, reportDate, now)

	if b.store != nil {
		if err := b.store.Replace(fleetID, h); err != nil {
			b.logger.Warn("Failed to persist flight-hours history",
				logger.String("fleet", fleetID),
				logger.Error(err))
		}
	}

	return h
}

// writeDocument writes the fleet's dashboard.json under the dist root
func (b *Builder) writeDocument(fleetID string, doc *Document) (string, error) {
	dir := filepath.Join(b.distRoot, fleetID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, "dashboard.json")
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal dashboard: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	return path, nil
}
