package export

import (
	"fmt"
	"os"
	"path/filepath"
)

// DueListPaths are the resolved export files for one fleet. Weekly is the
// wider-horizon companion export and may not exist.
type DueListPaths struct {
	Daily  string
	Weekly string
}

// FindDueLists resolves a fleet's export files, supporting both the flat
// data layout (Due-List_Latest_<fleet_id>.csv at the root) and the
// per-fleet subfolder layouts. The returned daily path is the last
// candidate tried when no file exists; callers check Exists.
func FindDueLists(dataRoot, fleetID string) DueListPaths {
	candidates := []DueListPaths{
		{
			Daily:  filepath.Join(dataRoot, fmt.Sprintf("Due-List_Latest_%s.csv", fleetID)),
			Weekly: filepath.Join(dataRoot, fmt.Sprintf("Due-List_BIG_WEEKLY_%s.csv", fleetID)),
		},
		{
			Daily:  filepath.Join(dataRoot, fleetID, fmt.Sprintf("Due-List_Latest_%s.csv", fleetID)),
			Weekly: filepath.Join(dataRoot, fleetID, fmt.Sprintf("Due-List_BIG_WEEKLY_%s.csv", fleetID)),
		},
		{
			Daily:  filepath.Join(dataRoot, fleetID, "Due-List_Latest.csv"),
			Weekly: filepath.Join(dataRoot, fleetID, "Due-List_BIG_WEEKLY.csv"),
		},
	}

	for _, c := range candidates {
		if Exists(c.Daily) {
			return c
		}
	}
	return candidates[len(candidates)-1]
}

// Exists reports whether a path exists as a regular file
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
