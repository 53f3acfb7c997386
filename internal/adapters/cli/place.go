package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/lspgroup/fleetopt-go/internal/adapters/csvload"
	"github.com/lspgroup/fleetopt-go/internal/application/common"
	"github.com/lspgroup/fleetopt-go/internal/application/placement"
	"github.com/lspgroup/fleetopt-go/internal/domain/network"
)

// NewPlaceCommand creates the place command
func NewPlaceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "place",
		Short: "Run placement only and print the distribution",
		Long: `Distribute the fleet over start locations without assigning routes.

Placement ranks locations by route demand inside the look-ahead window and
spreads vehicles proportionally (or by cost matrix, per configuration),
capped by the concentration limit. The resulting distribution prints as a
table; nothing is written or stored.

Examples:
  fleetopt place --data-dir ./data
  fleetopt place --data-dir ./data --config fleetopt.json`,
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

			handler := placement.NewPlaceVehiclesHandler()
			ctx := common.WithLogger(cmd.Context(), logger)
			response, err := handler.Handle(ctx, &placement.PlaceVehiclesCommand{
				Dataset: dataset,
				Params:  cfg.PlacementParams(),
			})
			if err != nil {
				return err
			}
			placed := response.(*placement.PlaceVehiclesResponse)

			fmt.Printf("✓ Placed %d vehicles over %d locations (strategy: %s)\n\n",
				len(placed.Placement), len(placed.CountsByLocation), cfg.Placement.Strategy)
			printPlacementTable(dataset.Locations, placed)

			return nil
		},
	}

	return cmd
}

// printPlacementTable lists every location that received vehicles or had
// demand, busiest first.
func printPlacementTable(locations []*network.Location, placed *placement.PlaceVehiclesResponse) {
	names := make(map[int64]string, len(locations))
	for _, loc := range locations {
		names[loc.ID] = loc.Name
	}

	ids := make([]int64, 0, len(placed.CountsByLocation))
	seen := make(map[int64]bool)
	for id := range placed.CountsByLocation {
		ids = append(ids, id)
		seen[id] = true
	}
	for id := range placed.Demand {
		if !seen[id] {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		ci, cj := placed.CountsByLocation[ids[i]], placed.CountsByLocation[ids[j]]
		if ci != cj {
			return ci > cj
		}
		return ids[i] < ids[j]
	})

	fmt.Printf("  %-10s %-28s %8s %8s\n", "LOCATION", "NAME", "VEHICLES", "DEMAND")
	for _, id := range ids {
		fmt.Printf("  %-10d %-28s %8d %8d\n", id, names[id], placed.CountsByLocation[id], placed.Demand[id])
	}
}
