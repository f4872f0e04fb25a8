// Package export reads CAMP due-list CSV exports into typed maintenance
// rows using a fixed column-offset layout.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/ihcair/fleetdash/internal/maintenance"
)

// Layout maps row fields to 0-based CSV column offsets. The export tool
// emits a fixed column order, so offsets are configuration, not discovery.
type Layout struct {
	Registration       int `toml:"registration"`
	AirframeReportDate int `toml:"airframe_report_date"`
	AirframeHours      int `toml:"airframe_hours"`
	ATA                int `toml:"ata"`
	EquipmentHours     int `toml:"equipment_hours"`
	ItemType           int `toml:"item_type"`
	Disposition        int `toml:"disposition"`
	Description        int `toml:"description"`
	IntervalHours      int `toml:"interval_hours"`
	RemainingDays      int `toml:"remaining_days"`
	RemainingMonths    int `toml:"remaining_months"`
	RemainingHours     int `toml:"remaining_hours"`
	Status             int `toml:"status"`
}

// DefaultLayout returns the standard CAMP export column offsets
func DefaultLayout() Layout {
	return Layout{
		Registration:       0,
		AirframeReportDate: 2,
		AirframeHours:      3,
		ATA:                5,
		EquipmentHours:     7,
		ItemType:           11,
		Disposition:        13,
		Description:        15,
		IntervalHours:      30,
		RemainingDays:      50,
		RemainingMonths:    52,
		RemainingHours:     54,
		Status:             63,
	}
}

// maxOffset is the highest column a row must reach to be decodable
func (l Layout) maxOffset() int {
	max := l.Registration
	for _, off := range []int{
		l.AirframeReportDate, l.AirframeHours, l.ATA, l.EquipmentHours,
		l.ItemType, l.Disposition, l.Description, l.IntervalHours,
		l.RemainingDays, l.RemainingMonths, l.RemainingHours, l.Status,
	} {
		if off > max {
			max = off
		}
	}
	return max
}

// Decode turns one raw CSV record into a typed row. It returns false for
// records too narrow for the layout or with an empty registration cell;
// those rows are skipped, never fatal.
func (l Layout) Decode(record []string) (maintenance.Row, bool) {
	if len(record) <= l.maxOffset() {
		return maintenance.Row{}, false
	}

	reg := strings.TrimSpace(record[l.Registration])
	if reg == "" {
		return maintenance.Row{}, false
	}

	return maintenance.Row{
		Registration:       reg,
		ATA:                strings.TrimSpace(record[l.ATA]),
		ItemType:           strings.TrimSpace(record[l.ItemType]),
		Disposition:        strings.TrimSpace(record[l.Disposition]),
		Description:        strings.TrimSpace(record[l.Description]),
		RemainingHours:     ParseFloat(record[l.RemainingHours]),
		RemainingDays:      ParseFloat(record[l.RemainingDays]),
		StatusRaw:          strings.TrimSpace(record[l.Status]),
		AirframeHours:      ParseFloat(record[l.AirframeHours]),
		AirframeReportDate: ParseDate(record[l.AirframeReportDate]),
	}, true
}

// Reader decodes due-list export files
type Reader struct {
	layout Layout
}

// NewReader creates a reader with the given column layout
func NewReader(layout Layout) *Reader {
	return &Reader{layout: layout}
}

// Result is one decoded export file
type Result struct {
	Rows []maintenance.Row
	// Skipped counts data rows dropped for being too narrow or having no
	// registration
	Skipped int
}

// ReadFile reads a due-list CSV export. The file is UTF-8, an optional
// byte-order mark is tolerated, and records may vary in width. A file with
// fewer than two total rows (no data rows) is the one hard failure.
func (r *Reader) ReadFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse export %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("export appears empty: %s", path)
	}

	result := &Result{}
	for _, record := range records[1:] {
		row, ok := r.layout.Decode(record)
		if !ok {
			result.Skipped++
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	return result, nil
}

// Tails returns the distinct registrations of an export in first-seen
// order, used as a fallback tail source for position fetching.
func (r *Result) Tails() []string {
	seen := make(map[string]bool)
	var tails []string
	for _, row := range r.Rows {
		if !seen[row.Registration] {
			seen[row.Registration] = true
			tails = append(tails, row.Registration)
		}
	}
	return tails
}
