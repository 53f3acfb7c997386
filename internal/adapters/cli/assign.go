package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lspgroup/fleetopt-go/internal/adapters/csvload"
	"github.com/lspgroup/fleetopt-go/internal/adapters/report"
	"github.com/lspgroup/fleetopt-go/internal/application/assignment"
	"github.com/lspgroup/fleetopt-go/internal/application/common"
)

// NewAssignCommand creates the assign command
func NewAssignCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Run assignment only from the vehicles' current locations",
		Long: `Walk the routes chronologically and assign vehicles without placement.

Vehicles start from the locations recorded in vehicles.csv. Run the full
pipeline ('fleetopt run') to start from an optimized distribution instead.
Assignment and unassigned reports land in the output directory.

Examples:
  fleetopt assign --data-dir ./data --output-dir ./output`,
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

			handler := assignment.NewAssignRoutesHandler()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx = common.WithLogger(ctx, logger)

			// Nil placement keeps every vehicle at its stored location.
			response, err := handler.Handle(ctx, &assignment.AssignRoutesCommand{
				Dataset:   dataset,
				Placement: nil,
				Params:    cfg.AssignmentParams(),
			})
			if err != nil {
				return err
			}
			resp := response.(*assignment.AssignRoutesResponse)
			result := resp.Result

			if err := os.MkdirAll(cfg.Data.OutputDir, 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
			assignmentsPath := filepath.Join(cfg.Data.OutputDir, "assignments.csv")
			if err := report.WriteAssignments(assignmentsPath, result.Assignments, dataset.Vehicles); err != nil {
				return fmt.Errorf("writing reports: %w", err)
			}
			statesPath := filepath.Join(cfg.Data.OutputDir, "vehicle_states.csv")
			if err := report.WriteVehicleStates(statesPath, resp.FinalStates); err != nil {
				return fmt.Errorf("writing reports: %w", err)
			}
			unassignedPath := filepath.Join(cfg.Data.OutputDir, "unassigned.csv")
			if err := report.WriteUnassigned(unassignedPath, result.Unassigned); err != nil {
				return fmt.Errorf("writing reports: %w", err)
			}

			totalCost := 0.0
			for _, snap := range resp.FinalStates {
				totalCost += snap.RelocationCost + snap.ServiceCost + snap.OverageCost
			}

			status := "✓ Assignment completed"
			if result.Cancelled {
				status = "⚠ Assignment cancelled (partial results)"
			}
			fmt.Printf("\n%s\n", status)
			fmt.Printf("  Routes:         %d total, %d assigned, %d unassigned\n",
				result.RoutesTotal, len(result.Assignments), len(result.Unassigned))
			fmt.Printf("  Total cost:     %.2f PLN\n", totalCost)
			fmt.Println("\nReports:")
			fmt.Printf("  Assignments:    %s\n", assignmentsPath)
			fmt.Printf("  Vehicle states: %s\n", statesPath)
			fmt.Printf("  Unassigned:     %s\n", unassignedPath)

			return nil
		},
	}

	return cmd
}
