package cli

import (
	"database/sql"
	"fmt"

	"github.com/ihcair/fleetdash/internal/config"
	"github.com/ihcair/fleetdash/internal/fleet"
	"github.com/ihcair/fleetdash/internal/storage/sqlite"
	"github.com/ihcair/fleetdash/pkg/logger"
)

// app holds everything a command needs after setup
type app struct {
	cfg    *config.Config
	fleets *fleet.Config
	log    *logger.Logger
}

// setup loads the config file, the fleet configuration, and the logger
func setup() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	fleets, err := fleet.Load(cfg.Paths.FleetConfig)
	if err != nil {
		return nil, err
	}
	if len(fleets.Fleets) == 0 {
		return nil, fmt.Errorf("no fleets configured in %s", cfg.Paths.FleetConfig)
	}

	return &app{cfg: cfg, fleets: fleets, log: log}, nil
}

// openDB opens the sqlite database configured under paths.database
func (a *app) openDB() (*sql.DB, error) {
	return sqlite.Open(a.cfg.Paths.Database, a.log)
}

// selectFleets resolves the --fleet flag: empty means every fleet
func (a *app) selectFleets(fleetID string) ([]*fleet.Fleet, error) {
	if fleetID == "" {
		out := make([]*fleet.Fleet, 0, len(a.fleets.Fleets))
		for i := range a.fleets.Fleets {
			out = append(out, &a.fleets.Fleets[i])
		}
		return out, nil
	}

	fl := a.fleets.Find(fleetID)
	if fl == nil {
		return nil, fmt.Errorf("unknown fleet: %s", fleetID)
	}
	return []*fleet.Fleet{fl}, nil
}
