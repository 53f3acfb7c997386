package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lspgroup/fleetopt-go/internal/adapters/csvload"
	"github.com/lspgroup/fleetopt-go/internal/adapters/persistence"
	"github.com/lspgroup/fleetopt-go/internal/application/common"
	"github.com/lspgroup/fleetopt-go/internal/application/ingest"
	"github.com/lspgroup/fleetopt-go/internal/infrastructure/database"
)

// NewImportCommand creates the import command
func NewImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import the CSV files into the database as a new dataset",
		Long: `Parse the five CSV files and store them as a new dataset.

The dataset is rejected as a whole when any cross-file reference dangles;
nothing is partially imported. The server's algorithm endpoints run against
the most recently imported dataset.

Examples:
  fleetopt import --data-dir ./data
  DATABASE_URL=postgres://localhost/fleetopt fleetopt import --data-dir ./data`,
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

			db, err := database.NewConnection(&cfg.Database)
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			defer database.Close(db)
			if err := database.AutoMigrate(db); err != nil {
				return fmt.Errorf("migrating database: %w", err)
			}

			handler := ingest.NewImportDatasetHandler(persistence.NewGormDatasetRepository(db))
			ctx := common.WithLogger(cmd.Context(), logger)
			response, err := handler.Handle(ctx, &ingest.ImportDatasetCommand{Dataset: dataset})
			if err != nil {
				return err
			}
			imported := response.(*ingest.ImportDatasetResponse)

			fmt.Printf("✓ Imported dataset %d\n", imported.DatasetID)
			fmt.Printf("  Locations: %d\n", imported.Counts.Locations)
			fmt.Printf("  Edges:     %d\n", imported.Counts.Edges)
			fmt.Printf("  Vehicles:  %d\n", imported.Counts.Vehicles)
			fmt.Printf("  Routes:    %d (%d segments)\n", imported.Counts.Routes, imported.Counts.Segments)

			return nil
		},
	}

	return cmd
}
