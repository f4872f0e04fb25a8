// Package cli wires the fleetdash commands: build dashboards, fetch
// positions, inspect API spend, and serve the built site.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags
var Version = "dev"

var cfgFile string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fleetdash",
	Short: "Fleetdash - aircraft fleet maintenance dashboards",
	Long: `Fleetdash turns CAMP due-list CSV exports into per-fleet maintenance
dashboard documents: classified due items per aircraft, a rolling
flight-hours history, and optional live aircraft positions.

Dashboards are built offline and written as static JSON under the dist
root; the serve command hosts them together with the frontend.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fleetdash %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "fleetdash.toml", "config file")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(positionsCmd)
	rootCmd.AddCommand(spendCmd)
	rootCmd.AddCommand(serveCmd)
}
