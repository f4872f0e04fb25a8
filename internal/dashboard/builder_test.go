package dashboard

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ihcair/fleetdash/internal/fleet"
	"github.com/ihcair/fleetdash/internal/history"
	"github.com/ihcair/fleetdash/internal/maintenance"
	"github.com/ihcair/fleetdash/pkg/logger"
)

// memStore is an in-memory HistoryStore for builder tests
type memStore struct {
	histories map[string]history.History
	loadErr   error
}

func newMemStore() *memStore {
	return &memStore{histories: make(map[string]history.History)}
}

func (m *memStore) Load(fleetID string) (history.History, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.histories[fleetID], nil
}

func (m *memStore) Replace(fleetID string, h history.History) error {
	m.histories[fleetID] = h
	return nil
}

// dueRow builds one 64-column export record
func dueRow(reg, reportDate, afHours, ata, itemType, disposition, desc, remDays, remHours, status string) string {
	cols := make([]string, 64)
	cols[0] = reg
	cols[2] = reportDate
	cols[3] = afHours
	cols[5] = ata
	cols[11] = itemType
	cols[13] = disposition
	cols[15] = desc
	cols[50] = remDays
	cols[54] = remHours
	cols[63] = status
	return strings.Join(cols, ",")
}

func writeExport(t *testing.T, path string, rows ...string) {
	t.Helper()
	header := strings.Join(make([]string, 64), ",")
	content := header + "\n" + strings.Join(rows, "\n") + "\n"
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func allFleet() fleet.Fleet {
	return fleet.Fleet{
		ID:         "pc12",
		Name:       "PC-12 Fleet",
		Type:       fleet.TypeAll,
		Thresholds: fleet.DefaultThresholds(),
		Inspections: []fleet.Rule{
			{Label: "100 HR", ATAMatch: "100 HR", Mode: fleet.MatchContains},
		},
	}
}

func TestBuildFleetAllType(t *testing.T) {
	dataRoot := t.TempDir()
	distRoot := t.TempDir()

	writeExport(t, filepath.Join(dataRoot, "Due-List_Latest_pc12.csv"),
		dueRow("N100AB", "8/20/2026", "5200.5", "05-10 100 HR INSPECTION",
			"Inspection", "", "100 HOUR INSPECTION", "10", "40", "COMING DUE"),
		dueRow("N100AB", "8/20/2026", "5200.5", "24-30",
			"Part", "", "BATTERY REPLACEMENT", "", "150", ""),
		dueRow("N200CD", "8/20/2026", "3100", "32-40",
			"Inspection", "", "WHEEL WELL CHECK", "400", "900", ""),
	)

	fl := allFleet()
	cfg := &fleet.Config{Fleets: []fleet.Fleet{fl}}
	store := newMemStore()
	b := NewBuilder(cfg, store, dataRoot, distRoot, nil, logger.Nop())
	b.now = func() time.Time { return time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC) }

	res, err := b.BuildFleet(&cfg.Fleets[0])
	require.NoError(t, err)
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 2, res.Aircraft)
	assert.False(t, res.MergedWeek)

	data, err := os.ReadFile(res.OutputPath)
	require.NoError(t, err)
	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "PC-12 Fleet", doc.Fleet)
	assert.Equal(t, "pc12", doc.FleetID)
	assert.Equal(t, fleet.TypeAll, doc.FleetType)
	assert.Equal(t, 2, doc.AircraftCount)

	// the tracked inspection classifies by days: 10 days is coming due
	n1 := doc.Aircraft["N100AB"]
	require.NotNil(t, n1)
	require.Len(t, n1.Items, 2)
	tracked := n1.Items[0]
	assert.Equal(t, "100 HOUR INSPECTION", tracked.Label)
	assert.True(t, tracked.Tracked)
	assert.Equal(t, "100 HR", tracked.TrackedLabel)
	assert.Equal(t, maintenance.StatusComingDue, tracked.Status)

	// the part is in the component window but untracked
	part := n1.Items[1]
	assert.Equal(t, "BATTERY REPLACEMENT", part.Label)
	assert.False(t, part.Tracked)

	// far-out inspection excluded, but the aircraft still appears
	n2 := doc.Aircraft["N200CD"]
	require.NotNil(t, n2)
	assert.Empty(t, n2.Items)
	require.NotNil(t, n2.AirframeHours)
	assert.Equal(t, 3100.0, *n2.AirframeHours)

	// the untracked part counts in the summary alongside the tracked item
	assert.Equal(t, 1, doc.Summary.ComingDue)
	assert.Equal(t, 1, doc.Summary.OK)
	assert.Equal(t, 2, doc.Summary.TotalTracked)

	// the fleet config is echoed for the renderer
	require.Len(t, doc.Config.Inspections, 1)
	assert.Equal(t, "100 HR", doc.Config.Inspections[0].Label)
	assert.Equal(t, "100 HR", doc.Config.Inspections[0].ATAMatch)
	assert.Equal(t, fleet.MatchContains, doc.Config.Inspections[0].Mode)
	assert.Equal(t, fleet.DefaultThresholds(), doc.Config.Thresholds)

	// history keyed by the export's report date
	require.Contains(t, doc.FlightHours, "N100AB")
	entry, ok := doc.FlightHours["N100AB"]["2026-08-20"]
	require.True(t, ok)
	assert.Equal(t, 5200.5, entry.Hours)

	// and persisted
	assert.Contains(t, store.histories["pc12"], "N200CD")
}

func TestBuildFleetNoExport(t *testing.T) {
	cfg := &fleet.Config{Fleets: []fleet.Fleet{allFleet()}}
	b := NewBuilder(cfg, newMemStore(), t.TempDir(), t.TempDir(), nil, logger.Nop())

	_, err := b.BuildFleet(&cfg.Fleets[0])
	assert.ErrorIs(t, err, ErrNoExport)

	totals := b.BuildAll()
	assert.Equal(t, Totals{Skipped: 1}, totals)
}

func TestBuildFleetPhaseMergesWeekly(t *testing.T) {
	dataRoot := t.TempDir()
	distRoot := t.TempDir()

	fl := fleet.Fleet{
		ID:         "king-air",
		Type:       fleet.TypePhase,
		Thresholds: fleet.DefaultThresholds(),
		Inspections: []fleet.Rule{
			{Label: "PHASE 1", ATAMatch: "PHASE 1", Mode: fleet.MatchContains},
			{Label: "PHASE 2", ATAMatch: "PHASE 2", Mode: fleet.MatchContains},
		},
	}

	dir := filepath.Join(dataRoot, "king-air")
	writeExport(t, filepath.Join(dir, "Due-List_Latest_king-air.csv"),
		dueRow("N500KA", "8/20/2026", "8000", "PHASE 1 INSPECTION",
			"Inspection", "", "PHASE 1", "5", "20", ""),
	)
	// the weekly export sees further out: phase 2 appears only there, and
	// its phase 1 row is less urgent than the daily one
	writeExport(t, filepath.Join(dir, "Due-List_BIG_WEEKLY_king-air.csv"),
		dueRow("N500KA", "8/20/2026", "8000", "PHASE 1 INSPECTION",
			"Inspection", "", "PHASE 1", "45", "180", ""),
		dueRow("N500KA", "8/20/2026", "8000", "PHASE 2 INSPECTION",
			"Inspection", "", "PHASE 2", "120", "400", ""),
	)

	cfg := &fleet.Config{Fleets: []fleet.Fleet{fl}}
	b := NewBuilder(cfg, newMemStore(), dataRoot, distRoot, nil, logger.Nop())

	res, err := b.BuildFleet(&cfg.Fleets[0])
	require.NoError(t, err)
	assert.True(t, res.MergedWeek)

	data, err := os.ReadFile(res.OutputPath)
	require.NoError(t, err)
	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))

	rec := doc.Aircraft["N500KA"]
	require.NotNil(t, rec)
	require.Len(t, rec.Items, 2)

	// daily wins the phase 1 slot; phase 2 is adopted from the weekly
	assert.Equal(t, "PHASE 1", rec.Items[0].Label)
	require.NotNil(t, rec.Items[0].RemainingHours)
	assert.Equal(t, 20.0, *rec.Items[0].RemainingHours)
	assert.Equal(t, "PHASE 2", rec.Items[1].Label)
	require.NotNil(t, rec.Items[1].RemainingHours)
	assert.Equal(t, 400.0, *rec.Items[1].RemainingHours)
}

func TestBuildFleetHistoryLoadFailureIsNonFatal(t *testing.T) {
	dataRoot := t.TempDir()

	writeExport(t, filepath.Join(dataRoot, "Due-List_Latest_pc12.csv"),
		dueRow("N100AB", "8/20/2026", "5200.5", "05-10",
			"Inspection", "", "100 HR INSPECTION", "10", "40", ""),
	)

	store := newMemStore()
	store.loadErr = errors.New("database disk image is malformed")

	cfg := &fleet.Config{Fleets: []fleet.Fleet{allFleet()}}
	b := NewBuilder(cfg, store, dataRoot, t.TempDir(), nil, logger.Nop())
	b.now = func() time.Time { return time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC) }

	res, err := b.BuildFleet(&cfg.Fleets[0])
	require.NoError(t, err)

	// the build starts a fresh history and still persists it
	h := store.histories["pc12"]
	require.Contains(t, h, "N100AB")
	assert.Contains(t, h["N100AB"], "2026-08-20")
	assert.NotEmpty(t, res.OutputPath)
}

func TestBuildAllContinuesPastFailures(t *testing.T) {
	dataRoot := t.TempDir()
	distRoot := t.TempDir()

	good := allFleet()
	writeExport(t, filepath.Join(dataRoot, "Due-List_Latest_pc12.csv"),
		dueRow("N100AB", "8/20/2026", "5200.5", "05-10",
			"Inspection", "", "100 HR INSPECTION", "10", "40", ""),
	)

	// header only: the reader treats this as an empty export
	bad := allFleet()
	bad.ID = "broken"
	require.NoError(t, os.WriteFile(
		filepath.Join(dataRoot, "Due-List_Latest_broken.csv"),
		[]byte(strings.Join(make([]string, 64), ",")+"\n"), 0o644))

	missing := allFleet()
	missing.ID = "missing"

	cfg := &fleet.Config{Fleets: []fleet.Fleet{good, bad, missing}}
	b := NewBuilder(cfg, newMemStore(), dataRoot, distRoot, nil, logger.Nop())

	totals := b.BuildAll()
	assert.Equal(t, Totals{Built: 1, Failed: 1, Skipped: 1}, totals)
}
