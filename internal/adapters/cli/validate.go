package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lspgroup/fleetopt-go/internal/adapters/csvload"
)

// NewValidateCommand creates the validate command
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Schema-check the CSV files without importing them",
		Long: `Check the five CSV files in the data directory against their schemas.

Every file is checked fully: rows keep being counted past the first problem
and a bounded preview of problems prints per file. The command exits
non-zero when any file is missing or invalid.

Examples:
  fleetopt validate --data-dir ./data`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfigAndLogger()
			if err != nil {
				return err
			}

			kinds := []string{
				csvload.FileLocations,
				csvload.FileRelations,
				csvload.FileRoutes,
				csvload.FileSegments,
				csvload.FileVehicles,
			}

			failed := 0
			for _, kind := range kinds {
				path := filepath.Join(cfg.Data.DataDir, kind+".csv")
				file, err := os.Open(path)
				if err != nil {
					fmt.Printf("✗ %-24s missing (%v)\n", kind+".csv", err)
					failed++
					continue
				}

				result, err := csvload.ValidateFile(kind, file)
				file.Close()
				if err != nil {
					return err
				}

				if result.OK() {
					fmt.Printf("✓ %-24s %d rows\n", kind+".csv", result.Rows)
					continue
				}

				failed++
				fmt.Printf("✗ %-24s %d rows, %d problem(s)\n", kind+".csv", result.Rows, len(result.Problems))
				for _, p := range result.Problems {
					fmt.Printf("    %s\n", p)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files failed validation", failed, len(kinds))
			}
			fmt.Println("\nAll files valid")
			return nil
		},
	}

	return cmd
}
