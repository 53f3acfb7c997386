package ingest

import (
	"context"
	"fmt"

	"github.com/lspgroup/fleetopt-go/internal/application/common"
	"github.com/lspgroup/fleetopt-go/internal/application/optimizer"
)

// ImportDatasetCommand stores a parsed dataset after cross-file checks.
type ImportDatasetCommand struct {
	Dataset *common.Dataset
}

// ImportDatasetResponse reports where the dataset landed and what it held.
type ImportDatasetResponse struct {
	DatasetID int64
	Counts    common.DatasetCounts
}

// ImportDatasetHandler handles the ImportDataset command.
type ImportDatasetHandler struct {
	datasets common.DatasetRepository
}

// NewImportDatasetHandler creates a new ImportDatasetHandler.
func NewImportDatasetHandler(datasets common.DatasetRepository) *ImportDatasetHandler {
	return &ImportDatasetHandler{datasets: datasets}
}

// Handle executes the ImportDataset command. The dataset is rejected as a
// whole when any reference dangles; nothing is partially imported.
func (h *ImportDatasetHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ImportDatasetCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ImportDatasetCommand")
	}
	if cmd.Dataset == nil {
		return nil, fmt.Errorf("import requires a dataset")
	}

	if err := optimizer.ValidateDataset(cmd.Dataset); err != nil {
		return nil, err
	}

	id, err := h.datasets.Save(ctx, cmd.Dataset)
	if err != nil {
		return nil, fmt.Errorf("saving dataset: %w", err)
	}

	logger := common.LoggerFromContext(ctx)
	counts := cmd.Dataset.Counts()
	logger.Log("info", "dataset imported", map[string]interface{}{
		"dataset_id": id,
		"locations":  counts.Locations,
		"edges":      counts.Edges,
		"vehicles":   counts.Vehicles,
		"routes":     counts.Routes,
		"segments":   counts.Segments,
	})

	return &ImportDatasetResponse{DatasetID: id, Counts: counts}, nil
}
