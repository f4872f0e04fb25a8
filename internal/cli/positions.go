package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ihcair/fleetdash/internal/export"
	"github.com/ihcair/fleetdash/internal/positions"
	"github.com/ihcair/fleetdash/internal/storage/sqlite"
	"github.com/ihcair/fleetdash/pkg/logger"
)

var (
	positionsFleetID string
	positionsDryRun  bool
)

// positionsCmd fetches live aircraft positions
var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "Fetch live aircraft positions for each fleet",
	Long: `Positions queries ADSB.lol for every configured tail and falls back
to FlightAware, within the monthly spend cap, for aircraft ADSB.lol
cannot see. Results are written as positions.json under the dist root.

Tails come from each fleet's aircraft list; fleets without one use the
registrations found in their latest due-list export.`,
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

		ledgerStore, err := sqlite.NewSpendLedgerStorage(db, a.log)
		if err != nil {
			return err
		}

		faCfg := a.cfg.Positions.FlightAware
		ledger, err := positions.NewSpendLedger(ledgerStore, faCfg, time.Now(), a.log)
		if err != nil {
			return err
		}

		bases := positions.BasesFromConfig(a.cfg.Bases)
		timeout := time.Duration(a.cfg.Positions.RequestTimeoutSeconds) * time.Second

		adsb := positions.NewADSBClient(
			a.cfg.Positions.ADSBBaseURL,
			time.Duration(a.cfg.Positions.ADSBMaxAgeSeconds)*time.Second,
			time.Duration(a.cfg.Positions.CallDelayMS)*time.Millisecond,
			timeout, bases, a.log)

		fa := positions.NewFlightAwareClient(
			faCfg.BaseURL, a.cfg.FlightAwareAPIKey(), ledger,
			time.Duration(faCfg.RateLimitDelayMS)*time.Millisecond,
			timeout, bases, a.log)
		if !fa.Enabled() {
			a.log.Warn("No FlightAware API key in environment, fallback disabled",
				logger.String("env", faCfg.APIKeyEnv))
		}

		svc := positions.NewService(adsb, fa, ledger, bases, positionsDryRun, a.log)

		fleets, err := a.selectFleets(positionsFleetID)
		if err != nil {
			return err
		}

		for _, fl := range fleets {
			tails := fl.Aircraft
			if len(tails) == 0 {
				tails = tailsFromExport(a.cfg.Paths.DataRoot, fl.ID)
			}
			if len(tails) == 0 {
				a.log.Warn("No tails known for fleet, skipping",
					logger.String("fleet", fl.ID))
				continue
			}

			doc, err := svc.FetchFleet(cmd.Context(), fl, tails)
			if err != nil {
				return err
			}
			path, err := svc.WriteDocument(a.cfg.Paths.DistRoot, doc)
			if err != nil {
				return err
			}
			a.log.Info("Positions written",
				logger.String("fleet", fl.ID),
				logger.String("output", path))
		}

		a.log.Info(ledger.Summary())
		return nil
	},
}

// tailsFromExport falls back to the registrations in the latest due list
func tailsFromExport(dataRoot, fleetID string) []string {
	paths := export.FindDueLists(dataRoot, fleetID)
	if !export.Exists(paths.Daily) {
		return nil
	}
	result, err := export.NewReader(export.DefaultLayout()).ReadFile(paths.Daily)
	if err != nil {
		return nil
	}
	return result.Tails()
}

func init() {
	positionsCmd.Flags().StringVar(&positionsFleetID, "fleet", "", "fetch a single fleet by ID")
	positionsCmd.Flags().BoolVar(&positionsDryRun, "dry-run", false, "skip all network calls, emit placeholder fixes")
}
