package positions

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ihcair/fleetdash/internal/config"
	"github.com/ihcair/fleetdash/internal/storage/sqlite"
	"github.com/ihcair/fleetdash/pkg/logger"
)

func newTestLedger(t *testing.T, now time.Time) *SpendLedger {
	t.Helper()
	log := logger.Nop()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := sqlite.NewSpendLedgerStorage(db, log)
	require.NoError(t, err)

	cfg := config.FlightAwareConfig{
		MonthlyCapUSD:   5.00,
		CostPerCallUSD:  0.005,
		CapSafetyFactor: 0.90,
	}
	ledger, err := NewSpendLedger(store, cfg, now, log)
	require.NoError(t, err)
	return ledger
}

func TestSpendLedgerFreshMonth(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	ledger := newTestLedger(t, now)

	assert.Equal(t, "2026-08", ledger.Month())
	assert.InDelta(t, 4.50, ledger.EffectiveCap(), 0.0001)
	assert.InDelta(t, 4.50, ledger.RemainingUSD(), 0.0001)
	assert.Equal(t, 900, ledger.CallsRemaining())
	assert.True(t, ledger.CanAfford())
}

func TestSpendLedgerRecordCall(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	ledger := newTestLedger(t, now)

	for i := 0; i < 10; i++ {
		require.NoError(t, ledger.RecordCall(now))
	}

	status := ledger.Status()
	assert.Equal(t, 10, status.CallsThisMonth)
	assert.InDelta(t, 0.05, status.USDThisMonth, 0.0001)
	assert.Equal(t, 890, status.CallsRemaining)
	assert.False(t, status.CapReached)
}

func TestSpendLedgerCapReached(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	ledger := newTestLedger(t, now)

	for i := 0; i < 900; i++ {
		require.NoError(t, ledger.RecordCall(now))
	}

	assert.False(t, ledger.CanAfford())
	assert.Equal(t, 0, ledger.CallsRemaining())
	status := ledger.Status()
	assert.True(t, status.CapReached)
	assert.InDelta(t, 0, status.RemainingUSD, 0.0001)
}

func TestSpendLedgerPersistsAcrossInstances(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	log := logger.Nop()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.Open(path, log)
	require.NoError(t, err)
	store, err := sqlite.NewSpendLedgerStorage(db, log)
	require.NoError(t, err)

	cfg := config.FlightAwareConfig{
		MonthlyCapUSD:   5.00,
		CostPerCallUSD:  0.005,
		CapSafetyFactor: 0.90,
	}

	ledger, err := NewSpendLedger(store, cfg, now, log)
	require.NoError(t, err)
	require.NoError(t, ledger.RecordCall(now))
	require.NoError(t, ledger.RecordCall(now))
	require.NoError(t, db.Close())

	// reopen: the recorded spend must survive
	db, err = sqlite.Open(path, log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store, err = sqlite.NewSpendLedgerStorage(db, log)
	require.NoError(t, err)

	ledger, err = NewSpendLedger(store, cfg, now, log)
	require.NoError(t, err)
	status := ledger.Status()
	assert.Equal(t, 2, status.CallsThisMonth)
	assert.InDelta(t, 0.01, status.USDThisMonth, 0.0001)
}

func TestSpendLedgerReset(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	ledger := newTestLedger(t, now)

	require.NoError(t, ledger.RecordCall(now))
	require.NoError(t, ledger.Reset(now))

	status := ledger.Status()
	assert.Equal(t, 0, status.CallsThisMonth)
	assert.Equal(t, 0.0, status.USDThisMonth)
	assert.True(t, ledger.CanAfford())
}
