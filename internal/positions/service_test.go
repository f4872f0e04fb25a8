package positions

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ihcair/fleetdash/internal/fleet"
	"github.com/ihcair/fleetdash/pkg/logger"
)

func TestFetchFleetDryRun(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	ledger := newTestLedger(t, now)
	svc := NewService(nil, nil, ledger, testBases, true, logger.Nop())

	fl := &fleet.Fleet{ID: "pc12", Aircraft: []string{"N100AB", "N200CD"}}
	doc, err := svc.FetchFleet(context.Background(), fl, nil)
	require.NoError(t, err)

	assert.Equal(t, "pc12", doc.FleetID)
	assert.Len(t, doc.Aircraft, 2)
	assert.Equal(t, 2, doc.DataSources[SourceDryRun])
	for _, fix := range doc.Aircraft {
		assert.Equal(t, SourceDryRun, fix.Source)
		assert.Equal(t, StatusNoData, fix.Status)
	}
	assert.Equal(t, "2026-08", doc.FASpend.Month)
	assert.Contains(t, doc.Bases, "kbed")
}

func TestFetchFleetExplicitTailsOverrideConfig(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	ledger := newTestLedger(t, now)
	svc := NewService(nil, nil, ledger, nil, true, logger.Nop())

	fl := &fleet.Fleet{ID: "pc12", Aircraft: []string{"N100AB"}}
	doc, err := svc.FetchFleet(context.Background(), fl, []string{"N300EF", "N400GH"})
	require.NoError(t, err)

	assert.Len(t, doc.Aircraft, 2)
	assert.Contains(t, doc.Aircraft, "N300EF")
	assert.NotContains(t, doc.Aircraft, "N100AB")
}

func TestAssignBases(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	ledger := newTestLedger(t, now)
	svc := NewService(nil, nil, ledger, testBases, true, logger.Nop())

	atBase := true
	notAtBase := false
	lat, lon := 42.47, -71.289

	aircraft := map[string]*Fix{
		"N1": {
			Registration: "N1", Source: SourceADSBLol, Status: StatusOnGround,
			Position: PointDetail{Lat: &lat, Lon: &lon},
			Base:     BaseFix{AtBase: &atBase, BaseID: "kbed", BaseName: "Bedford"},
		},
		"N2": {
			Registration: "N2", Source: SourceADSBLol, Status: StatusAirborne,
			Airborne: true,
			Base:     BaseFix{AtBase: &notAtBase, BaseID: "kbed"},
		},
		"N3": {
			Registration: "N3", Source: SourceFlightAware, Status: StatusOnGround,
			Base: BaseFix{AtBase: &notAtBase, BaseID: "kpsm"},
		},
		"N4": {
			Registration: "N4", Source: SourceNone, Status: StatusNoData,
		},
	}

	out := svc.assignBases(aircraft)

	require.Len(t, out.Bases["kbed"].Aircraft, 1)
	assert.Equal(t, "N1", out.Bases["kbed"].Aircraft[0].Tail)
	require.Len(t, out.Airborne, 1)
	assert.Equal(t, "N2", out.Airborne[0].Tail)

	// N3 is near a base but outside its radius; N4 has no position at all
	require.Len(t, out.Away, 2)
	assert.Equal(t, "N3", out.Away[0].Tail)
	assert.Equal(t, "N4", out.Away[1].Tail)
}

func TestWriteDocument(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	ledger := newTestLedger(t, now)
	svc := NewService(nil, nil, ledger, nil, true, logger.Nop())

	fl := &fleet.Fleet{ID: "pc12", Aircraft: []string{"N100AB"}}
	doc, err := svc.FetchFleet(context.Background(), fl, nil)
	require.NoError(t, err)

	dist := t.TempDir()
	path, err := svc.WriteDocument(dist, doc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dist, "pc12", "positions.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded FleetPositions
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "pc12", decoded.FleetID)
	assert.Len(t, decoded.Aircraft, 1)
}
