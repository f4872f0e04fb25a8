package export

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the ISO date format used throughout the output documents
const DateLayout = "2006-01-02"

// dateFormats are the source formats the export tool is known to emit
var dateFormats = []string{"1/2/2006", "2006-01-02", "1/2/06"}

// ParseFloat leniently parses a numeric cell. Thousands separators are
// stripped; an empty or unparseable cell yields nil, never zero, so
// downstream logic can tell "unknown" from a true zero.
func ParseFloat(cell string) *float64 {
	s := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseDate leniently parses a date cell into an ISO date string. An empty
// or unparseable cell yields the empty string.
func ParseDate(cell string) string {
	s := strings.TrimSpace(cell)
	if s == "" {
		return ""
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout)
		}
	}
	return ""
}
