package positions

import (
	"fmt"
	"time"

	"github.com/ihcair/fleetdash/internal/config"
	"github.com/ihcair/fleetdash/internal/storage/sqlite"
	"github.com/ihcair/fleetdash/pkg/logger"
)

const monthLayout = "2006-01"

// SpendLedger enforces the monthly FlightAware spend cap. Spend is recorded
// pessimistically, before each HTTP call, so a failed request still costs:
// safer than accidentally exceeding the budget.
type SpendLedger struct {
	store       *sqlite.SpendLedgerStorage
	month       string
	record      sqlite.MonthSpend
	capUSD      float64
	costPerCall float64
	safety      float64
	logger      *logger.Logger
}

// NewSpendLedger loads the current month's spend from storage
func NewSpendLedger(store *sqlite.SpendLedgerStorage, cfg config.FlightAwareConfig, now time.Time, log *logger.Logger) (*SpendLedger, error) {
	month := now.UTC().Format(monthLayout)
	record, err := store.Month(month)
	if err != nil {
		return nil, fmt.Errorf("failed to load spend ledger: %w", err)
	}

	return &SpendLedger{
		store:       store,
		month:       month,
		record:      record,
		capUSD:      cfg.MonthlyCapUSD,
		costPerCall: cfg.CostPerCallUSD,
		safety:      cfg.CapSafetyFactor,
		logger:      log.Named("spend-ledger"),
	}, nil
}

// Month returns the ledger's calendar month (UTC)
func (l *SpendLedger) Month() string {
	return l.month
}

// EffectiveCap is the cap after the safety factor, leaving headroom for
// manual testing and reruns
func (l *SpendLedger) EffectiveCap() float64 {
	return l.capUSD * l.safety
}

// RemainingUSD is the budget left before the effective cap
func (l *SpendLedger) RemainingUSD() float64 {
	remaining := l.EffectiveCap() - l.record.USD
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CallsRemaining is how many more calls fit in the remaining budget
func (l *SpendLedger) CallsRemaining() int {
	if l.costPerCall <= 0 {
		return 0
	}
	return int(l.RemainingUSD() / l.costPerCall)
}

// CanAfford reports whether at least one more call fits under the cap
func (l *SpendLedger) CanAfford() bool {
	return l.CallsRemaining() >= 1
}

// RecordCall records one call's spend and persists it immediately, before
// the HTTP request is made.
func (l *SpendLedger) RecordCall(now time.Time) error {
	l.record.Month = l.month
	l.record.Calls++
	l.record.USD += l.costPerCall
	l.record.LastUpdated = now.UTC().Format(time.RFC3339)
	if err := l.store.Put(l.record); err != nil {
		return fmt.Errorf("failed to persist spend ledger: %w", err)
	}
	return nil
}

// Reset zeroes the current month's spend
func (l *SpendLedger) Reset(now time.Time) error {
	l.record = sqlite.MonthSpend{
		Month:       l.month,
		LastUpdated: now.UTC().Format(time.RFC3339),
	}
	if err := l.store.Put(l.record); err != nil {
		return fmt.Errorf("failed to reset spend ledger: %w", err)
	}
	return nil
}

// History returns every month's spend record
func (l *SpendLedger) History() ([]sqlite.MonthSpend, error) {
	return l.store.All()
}

// Summary is a one-line human-readable spend summary for logs
func (l *SpendLedger) Summary() string {
	pct := 0.0
	if l.capUSD > 0 {
		pct = l.record.USD / l.capUSD * 100
	}
	return fmt.Sprintf("FA %s: $%.3f / $%.2f (%.0f%%) | %d calls | %d remaining before $%.2f safety cap",
		l.month, l.record.USD, l.capUSD, pct, l.record.Calls, l.CallsRemaining(), l.EffectiveCap())
}

// Status builds the spend summary embedded in output documents
func (l *SpendLedger) Status() LedgerStatus {
	return LedgerStatus{
		Month:          l.month,
		CallsThisMonth: l.record.Calls,
		USDThisMonth:   round4(l.record.USD),
		MonthlyCapUSD:  l.capUSD,
		SafetyCapUSD:   round2(l.EffectiveCap()),
		RemainingUSD:   round4(l.RemainingUSD()),
		CallsRemaining: l.CallsRemaining(),
		CapReached:     !l.CanAfford(),
	}
}

func round2(v float64) float64 { return float64(int(v*100+0.5)) / 100 }
func round4(v float64) float64 { return float64(int(v*10000+0.5)) / 10000 }
