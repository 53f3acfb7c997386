// Package cli implements the fleetopt command line interface: CSV
// validation and import, the optimization pipeline, and report output.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	dataDir    string
	outputDir  string
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fleetopt",
		Short: "fleetopt - truck fleet placement and route assignment",
		Long: `fleetopt optimizes a truck fleet against a route plan in two phases:
placement distributes vehicles over start locations, assignment walks the
routes chronologically and books relocations, services and lease overage.

Input is a directory of CSV files (locations, locations_relations, routes,
segments, vehicles); reports land in the output directory.

Examples:
  fleetopt validate --data-dir ./data
  fleetopt run --data-dir ./data --output-dir ./output
  fleetopt run --config fleetopt.json --persist
  fleetopt place --data-dir ./data
  fleetopt assign --data-dir ./data --output-dir ./output
  fleetopt import --data-dir ./data`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: fleetopt.json in ., ./configs, /etc/fleetopt)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "",
		"Directory with the input CSV files (overrides config)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "",
		"Directory for report files (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")

	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewPlaceCommand())
	rootCmd.AddCommand(NewAssignCommand())
	rootCmd.AddCommand(NewValidateCommand())
	rootCmd.AddCommand(NewImportCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
