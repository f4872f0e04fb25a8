package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ihcair/fleetdash/internal/positions"
	"github.com/ihcair/fleetdash/internal/storage/sqlite"
)

var spendReset bool

// spendCmd inspects the FlightAware spend ledger
var spendCmd = &cobra.Command{
	Use:   "spend",
	Short: "Show or reset the FlightAware spend ledger",
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

		store, err := sqlite.NewSpendLedgerStorage(db, a.log)
		if err != nil {
			return err
		}

		now := time.Now()
		ledger, err := positions.NewSpendLedger(store, a.cfg.Positions.FlightAware, now, a.log)
		if err != nil {
			return err
		}

		if spendReset {
			if err := ledger.Reset(now); err != nil {
				return err
			}
			fmt.Printf("Spend ledger reset for %s\n", ledger.Month())
			return nil
		}

		fmt.Println(ledger.Summary())

		months, err := ledger.History()
		if err != nil {
			return err
		}
		for _, m := range months {
			if m.Month == ledger.Month() {
				continue
			}
			fmt.Printf("  %s: $%.3f | %d calls\n", m.Month, m.USD, m.Calls)
		}
		return nil
	},
}

func init() {
	spendCmd.Flags().BoolVar(&spendReset, "reset", false, "zero the current month's recorded spend")
}
