package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/ihcair/fleetdash/internal/history"
	"github.com/ihcair/fleetdash/pkg/logger"
)

// HoursHistoryStorage persists per-fleet flight-hours history
type HoursHistoryStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewHoursHistoryStorage creates hours-history storage
func NewHoursHistoryStorage(db *sql.DB, log *logger.Logger) (*HoursHistoryStorage, error) {
	s := &HoursHistoryStorage{
		db:     db,
		logger: log.Named("sqlite-history"),
	}
	if err := s.initDB(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *HoursHistoryStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS flight_hours (
			fleet_id TEXT NOT NULL,
			tail TEXT NOT NULL,
			date TEXT NOT NULL,
			hours REAL NOT NULL,
			PRIMARY KEY (fleet_id, tail, date)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create flight_hours table: %w", err)
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_flight_hours_fleet ON flight_hours(fleet_id)`)
	if err != nil {
		return fmt.Errorf("failed to create flight_hours index: %w", err)
	}

	return nil
}

// Load returns one fleet's full history map. An empty database yields an
// empty map, not an error.
func (s *HoursHistoryStorage) Load(fleetID string) (history.History, error) {
	rows, err := s.db.Query(
		`SELECT tail, date, hours FROM flight_hours WHERE fleet_id = ? ORDER BY tail, date`,
		fleetID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query flight hours: %w", err)
	}
	defer rows.Close()

	h := history.History{}
	for rows.Next() {
		var tail, date string
		var hours float64
		if err := rows.Scan(&tail, &date, &hours); err != nil {
			return nil, fmt.Errorf("failed to scan flight hours row: %w", err)
		}
		th, ok := h[tail]
		if !ok {
			th = history.TailHistory{}
			h[tail] = th
		}
		th[date] = history.Entry{Hours: hours, Date: date}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read flight hours rows: %w", err)
	}

	return h, nil
}

// Replace rewrites one fleet's history wholesale, matching the
// read-modify-rewrite lifecycle of a build run.
func (s *HoursHistoryStorage) Replace(fleetID string, h history.History) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM flight_hours WHERE fleet_id = ?`, fleetID); err != nil {
		return fmt.Errorf("failed to clear flight hours: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO flight_hours (fleet_id, tail, date, hours) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare flight hours insert: %w", err)
	}
	defer stmt.Close()

	for tail, th := range h {
		for date, entry := range th {
			if _, err := stmt.Exec(fleetID, tail, date, entry.Hours); err != nil {
				return fmt.Errorf("failed to insert flight hours for %s: %w", tail, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit flight hours: %w", err)
	}

	s.logger.Debug("Replaced flight hours history",
		logger.String("fleet_id", fleetID),
		logger.Int("tails", len(h)))
	return nil
}
