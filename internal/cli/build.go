package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ihcair/fleetdash/internal/dashboard"
	"github.com/ihcair/fleetdash/internal/fleet"
	"github.com/ihcair/fleetdash/internal/storage/sqlite"
	"github.com/ihcair/fleetdash/pkg/logger"
)

var buildFleetID string

// buildCmd builds the dashboard documents
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build dashboard documents from due-list exports",
	Long: `Build reads each fleet's due-list CSV exports, classifies the due
items, updates the rolling flight-hours history, and writes
dashboard.json under the dist root.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}

		db, err := a.openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		store, err := sqlite.NewHoursHistoryStorage(db, a.log)
		if err != nil {
			return err
		}

		builder := dashboard.NewBuilder(a.fleets, store,
			a.cfg.Paths.DataRoot, a.cfg.Paths.DistRoot,
			a.cfg.Build.RetirementKeywords, a.log)

		fleets, err := a.selectFleets(buildFleetID)
		if err != nil {
			return err
		}

		if buildFleetID == "" {
			totals := builder.BuildAll()
			a.log.Info("Build complete",
				logger.Int("built", totals.Built),
				logger.Int("skipped", totals.Skipped),
				logger.Int("failed", totals.Failed))
			if totals.Failed > 0 {
				return fmt.Errorf("%d fleet(s) failed to build", totals.Failed)
			}
			return nil
		}

		return buildOne(builder, fleets[0], a.log)
	},
}

func buildOne(builder *dashboard.Builder, fl *fleet.Fleet, log *logger.Logger) error {
	res, err := builder.BuildFleet(fl)
	if err != nil {
		return fmt.Errorf("failed to build fleet %s: %w", fl.ID, err)
	}
	log.Info("Fleet built",
		logger.String("fleet", res.FleetID),
		logger.String("output", res.OutputPath),
		logger.Int("aircraft", res.Aircraft),
		logger.Int("rows", res.Rows),
		logger.Int("rows_skipped", res.RowsSkipped))
	return nil
}

func init() {
	buildCmd.Flags().StringVar(&buildFleetID, "fleet", "", "build a single fleet by ID")
}
