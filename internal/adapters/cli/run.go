package cli

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lspgroup/fleetopt-go/internal/adapters/csvload"
	"github.com/lspgroup/fleetopt-go/internal/adapters/persistence"
	"github.com/lspgroup/fleetopt-go/internal/adapters/report"
	"github.com/lspgroup/fleetopt-go/internal/application/common"
	"github.com/lspgroup/fleetopt-go/internal/application/optimizer"
	"github.com/lspgroup/fleetopt-go/internal/infrastructure/database"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	var (
		persist bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full optimization pipeline",
		Long: `Run placement and assignment over the CSV dataset and write reports.

The pipeline reads the five CSV files from the data directory, distributes
the fleet over start locations (placement), walks the routes chronologically
booking relocations, services and lease overage (assignment), and writes
assignments.csv, vehicle_states.csv, unassigned.csv and summary.json to the
output directory.

Ctrl+C stops the run gracefully: routes assigned so far are kept and the
summary is marked cancelled.

Examples:
  fleetopt run --data-dir ./data --output-dir ./output
  fleetopt run --config fleetopt.json --persist
  FLEETOPT_ASSIGNMENT_USE_CHAIN_OPTIMIZATION=true fleetopt run --data-dir ./data`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfigAndLogger()
			if err != nil {
				return err
			}

			loader := csvload.NewLoader(logger)
			dataset, err := loader.LoadDataset(cfg.Data.DataDir)
			if err != nil {
				return fmt.Errorf("loading dataset from %s: %w", cfg.Data.DataDir, err)
			}
			counts := dataset.Counts()
			fmt.Printf("Loaded dataset: %d locations, %d edges, %d vehicles, %d routes\n",
				counts.Locations, counts.Edges, counts.Vehicles, counts.Routes)

			// Persisting needs a database; a plain run does not touch one.
			var runs optimizer.RunRepository
			if persist {
				db, err := database.NewConnection(&cfg.Database)
				if err != nil {
					return fmt.Errorf("connecting to database: %w", err)
				}
				defer database.Close(db)
				if err := database.AutoMigrate(db); err != nil {
					return fmt.Errorf("migrating database: %w", err)
				}
				runs = persistence.NewGormRunRepository(db)
			}

			handler := optimizer.NewRunOptimizationHandler(optimizer.NewRunner(), runs)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx = common.WithLogger(ctx, logger)

			response, err := handler.Handle(ctx, &optimizer.RunOptimizationCommand{
				Dataset: dataset,
				Options: cfg.OptimizerOptions(),
				Persist: persist,
			})
			if err != nil {
				return err
			}
			result := response.(*optimizer.RunOptimizationResponse).Result

			paths, err := report.WriteRun(cfg.Data.OutputDir, result, dataset.Vehicles)
			if err != nil {
				return fmt.Errorf("writing reports: %w", err)
			}

			printRunSummary(result.Summary)
			fmt.Println("\nReports:")
			fmt.Printf("  Assignments:    %s\n", paths.Assignments)
			fmt.Printf("  Vehicle states: %s\n", paths.VehicleStates)
			fmt.Printf("  Unassigned:     %s\n", paths.Unassigned)
			fmt.Printf("  Summary:        %s\n", paths.Summary)
			if persist {
				fmt.Printf("\nRun stored as %s\n", result.RunID)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&persist, "persist", false, "Store the run in the database")

	return cmd
}

// printRunSummary renders the run's bottom line for the terminal.
func printRunSummary(s optimizer.RunSummary) {
	status := "✓ Optimization completed"
	if s.Cancelled {
		status = "⚠ Optimization cancelled (partial results)"
	}
	fmt.Printf("\n%s in %.2fs\n", status, s.DurationSeconds)
	fmt.Printf("  Run ID:           %s\n", s.RunID)
	fmt.Printf("  Fleet size:       %d\n", s.FleetSize)
	fmt.Printf("  Routes:           %d total, %d assigned, %d unassigned\n",
		s.RoutesTotal, s.RoutesAssigned, s.RoutesUnassigned)
	fmt.Printf("  Relocations:      %d (%.2f PLN)\n", s.RelocationCount, s.RelocationCostPLN)
	fmt.Printf("  Services:         %d (%.2f PLN)\n", s.ServiceCount, s.ServiceCostPLN)
	fmt.Printf("  Lease overage:    %d km (%.2f PLN)\n", s.OverageKm, s.OverageCostPLN)
	fmt.Printf("  Total cost:       %.2f PLN\n", s.TotalCostPLN)

	if len(s.UnassignedByReason) > 0 {
		reasons := make([]string, 0, len(s.UnassignedByReason))
		for reason := range s.UnassignedByReason {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		fmt.Println("  Unassigned by reason:")
		for _, reason := range reasons {
			fmt.Printf("    %-16s %d\n", reason, s.UnassignedByReason[reason])
		}
	}
}
