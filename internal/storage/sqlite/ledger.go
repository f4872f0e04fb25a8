package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/ihcair/fleetdash/pkg/logger"
)

// MonthSpend is one calendar month's FlightAware spend record
type MonthSpend struct {
	Month       string  `json:"month"`
	Calls       int     `json:"calls"`
	USD         float64 `json:"usd"`
	LastUpdated string  `json:"last_updated"`
}

// SpendLedgerStorage persists the monthly FlightAware spend ledger. The cap
// is enforced across the whole month, not just within one run.
type SpendLedgerStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewSpendLedgerStorage creates spend-ledger storage
func NewSpendLedgerStorage(db *sql.DB, log *logger.Logger) (*SpendLedgerStorage, error) {
	s := &SpendLedgerStorage{
		db:     db,
		logger: log.Named("sqlite-ledger"),
	}
	if err := s.initDB(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SpendLedgerStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS fa_spend (
			month TEXT PRIMARY KEY,
			calls INTEGER NOT NULL DEFAULT 0,
			usd REAL NOT NULL DEFAULT 0,
			last_updated TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create fa_spend table: %w", err)
	}
	return nil
}

// Month returns one month's spend record; a month with no record yet is
// all zeroes.
func (s *SpendLedgerStorage) Month(month string) (MonthSpend, error) {
	record := MonthSpend{Month: month}
	err := s.db.QueryRow(
		`SELECT calls, usd, last_updated FROM fa_spend WHERE month = ?`, month,
	).Scan(&record.Calls, &record.USD, &record.LastUpdated)
	if err == sql.ErrNoRows {
		return record, nil
	}
	if err != nil {
		return record, fmt.Errorf("failed to query spend for %s: %w", month, err)
	}
	return record, nil
}

// Put upserts one month's spend record
func (s *SpendLedgerStorage) Put(record MonthSpend) error {
	_, err := s.db.Exec(
		`INSERT INTO fa_spend (month, calls, usd, last_updated) VALUES (?, ?, ?, ?)
		 ON CONFLICT(month) DO UPDATE SET calls = excluded.calls, usd = excluded.usd, last_updated = excluded.last_updated`,
		record.Month, record.Calls, record.USD, record.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("failed to store spend for %s: %w", record.Month, err)
	}
	return nil
}

// All returns every month's spend record, oldest first
func (s *SpendLedgerStorage) All() ([]MonthSpend, error) {
	rows, err := s.db.Query(`SELECT month, calls, usd, last_updated FROM fa_spend ORDER BY month`)
	if err != nil {
		return nil, fmt.Errorf("failed to query spend history: %w", err)
	}
	defer rows.Close()

	var records []MonthSpend
	for rows.Next() {
		var record MonthSpend
		if err := rows.Scan(&record.Month, &record.Calls, &record.USD, &record.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan spend row: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
