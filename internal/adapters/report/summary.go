package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lspgroup/fleetopt-go/internal/application/optimizer"
	"github.com/lspgroup/fleetopt-go/internal/domain/fleet"
)

// Paths lists the files one run produced.
type Paths struct {
	Assignments   string
	VehicleStates string
	Unassigned    string
	Summary       string
}

// WriteSummary writes the run summary as indented JSON.
func WriteSummary(outputPath string, summary optimizer.RunSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write summary file: %w", err)
	}
	return nil
}

// WriteRun writes every report for one run into outputDir, file names
// suffixed with the run id so consecutive runs never overwrite each other.
func WriteRun(outputDir string, result *optimizer.RunResult, vehicles []*fleet.Vehicle) (*Paths, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := &Paths{
		Assignments:   filepath.Join(outputDir, fmt.Sprintf("assignments_%s.csv", result.RunID)),
		VehicleStates: filepath.Join(outputDir, fmt.Sprintf("vehicle_states_%s.csv", result.RunID)),
		Unassigned:    filepath.Join(outputDir, fmt.Sprintf("unassigned_%s.csv", result.RunID)),
		Summary:       filepath.Join(outputDir, fmt.Sprintf("summary_%s.json", result.RunID)),
	}

	if err := WriteAssignments(paths.Assignments, result.Assignments, vehicles); err != nil {
		return nil, err
	}
	if err := WriteVehicleStates(paths.VehicleStates, result.FinalStates); err != nil {
		return nil, err
	}
	if err := WriteUnassigned(paths.Unassigned, result.Unassigned); err != nil {
		return nil, err
	}
	if err := WriteSummary(paths.Summary, result.Summary); err != nil {
		return nil, err
	}
	return paths, nil
}
