package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildRecord builds a 64-column CSV line with the given cells placed at
// the default layout offsets.
func buildRecord(cells map[int]string) string {
	fields := make([]string, 64)
	for off, v := range cells {
		fields[off] = v
	}
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(fields); err != nil {
		panic(err)
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func writeCSV(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Due-List_Latest.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestReadFileDecodesRows(t *testing.T) {
	l := DefaultLayout()
	path := writeCSV(t,
		buildRecord(map[int]string{l.Registration: "Registration"}),
		buildRecord(map[int]string{
			l.Registration:       "N251HC",
			l.AirframeReportDate: "8/20/2026",
			l.AirframeHours:      "1,503.2",
			l.ATA:                "05 100HR",
			l.ItemType:           "INSPECTION",
			l.Description:        "100 HOUR INSPECTION",
			l.RemainingDays:      "12",
			l.RemainingHours:     "37.5",
			l.Status:             "DUE",
		}),
	)

	result, err := NewReader(l).ReadFile(path)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Zero(t, result.Skipped)

	row := result.Rows[0]
	assert.Equal(t, "N251HC", row.Registration)
	assert.Equal(t, "05 100HR", row.ATA)
	assert.Equal(t, "INSPECTION", row.ItemType)
	require.NotNil(t, row.AirframeHours)
	assert.Equal(t, 1503.2, *row.AirframeHours)
	assert.Equal(t, "2026-08-20", row.AirframeReportDate)
	require.NotNil(t, row.RemainingDays)
	assert.Equal(t, 12.0, *row.RemainingDays)
	require.NotNil(t, row.RemainingHours)
	assert.Equal(t, 37.5, *row.RemainingHours)
}

func TestReadFileToleratesBOM(t *testing.T) {
	l := DefaultLayout()
	header := buildRecord(map[int]string{l.Registration: "Registration"})
	data := buildRecord(map[int]string{l.Registration: "N123", l.ItemType: "PART"})

	path := filepath.Join(t.TempDir(), "bom.csv")
	require.NoError(t, os.WriteFile(path, []byte("\xef\xbb\xbf"+header+"\n"+data+"\n"), 0o644))

	result, err := NewReader(l).ReadFile(path)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "N123", result.Rows[0].Registration)
}

func TestReadFileSkipsNarrowAndBlankRows(t *testing.T) {
	l := DefaultLayout()
	path := writeCSV(t,
		buildRecord(map[int]string{l.Registration: "Registration"}),
		"N123,too,narrow",
		buildRecord(map[int]string{l.Registration: "", l.ItemType: "PART"}),
		buildRecord(map[int]string{l.Registration: "N456", l.ItemType: "PART"}),
	)

	result, err := NewReader(l).ReadFile(path)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "N456", result.Rows[0].Registration)
	assert.Equal(t, 2, result.Skipped)
}

func TestReadFileEmptyExportFails(t *testing.T) {
	l := DefaultLayout()
	path := writeCSV(t, buildRecord(map[int]string{l.Registration: "Registration"}))

	_, err := NewReader(l).ReadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "appears empty")
}

func TestReadFileMissing(t *testing.T) {
	_, err := NewReader(DefaultLayout()).ReadFile(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestResultTails(t *testing.T) {
	l := DefaultLayout()
	path := writeCSV(t,
		buildRecord(map[int]string{l.Registration: "Registration"}),
		buildRecord(map[int]string{l.Registration: "N1"}),
		buildRecord(map[int]string{l.Registration: "N2"}),
		buildRecord(map[int]string{l.Registration: "N1"}),
	)

	result, err := NewReader(l).ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"N1", "N2"}, result.Tails())
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"", nil},
		{"   ", nil},
		{"abc", nil},
		{"12.5", fp(12.5)},
		{"-3", fp(-3)},
		{"1,503.2", fp(1503.2)},
		{" 42 ", fp(42)},
	}
	for _, tt := range tests {
		got := ParseFloat(tt.in)
		if tt.want == nil {
			assert.Nil(t, got, "ParseFloat(%q)", tt.in)
		} else {
			require.NotNil(t, got, "ParseFloat(%q)", tt.in)
			assert.Equal(t, *tt.want, *got, "ParseFloat(%q)", tt.in)
		}
	}
}

func fp(v float64) *float64 { return &v }

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"not a date", ""},
		{"8/20/2026", "2026-08-20"},
		{"12/01/2026", "2026-12-01"},
		{"2026-08-20", "2026-08-20"},
		{"8/20/26", "2026-08-20"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseDate(tt.in), "ParseDate(%q)", tt.in)
	}
}

func TestFindDueLists(t *testing.T) {
	root := t.TempDir()

	// nothing exists: last candidate returned, caller checks Exists
	paths := FindDueLists(root, "aw109sp")
	assert.False(t, Exists(paths.Daily))

	// subfolder layout
	sub := filepath.Join(root, "aw109sp")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "Due-List_Latest.csv"), []byte("x\n"), 0o644))
	paths = FindDueLists(root, "aw109sp")
	assert.Equal(t, filepath.Join(sub, "Due-List_Latest.csv"), paths.Daily)

	// flat layout wins over subfolder
	require.NoError(t, os.WriteFile(filepath.Join(root, "Due-List_Latest_aw109sp.csv"), []byte("x\n"), 0o644))
	paths = FindDueLists(root, "aw109sp")
	assert.Equal(t, filepath.Join(root, "Due-List_Latest_aw109sp.csv"), paths.Daily)
	assert.Equal(t, filepath.Join(root, "Due-List_BIG_WEEKLY_aw109sp.csv"), paths.Weekly)
}
