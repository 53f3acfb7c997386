package optimizer

import (
	"context"
	"fmt"

	"github.com/lspgroup/fleetopt-go/internal/application/common"
)

// RunOptimizationCommand requests a full pipeline run over a dataset.
type RunOptimizationCommand struct {
	Dataset *common.Dataset
	Options Options
	// Persist stores the run through the repository when one is wired.
	Persist bool
}

// RunOptimizationResponse carries the run output.
type RunOptimizationResponse struct {
	Result *RunResult
}

// RunOptimizationHandler handles the RunOptimization command.
type RunOptimizationHandler struct {
	runner *Runner
	runs   RunRepository
}

// NewRunOptimizationHandler creates a new RunOptimizationHandler. The
// repository may be nil when persistence isn't wired (library use, tests).
func NewRunOptimizationHandler(runner *Runner, runs RunRepository) *RunOptimizationHandler {
	return &RunOptimizationHandler{runner: runner, runs: runs}
}

// Handle executes the RunOptimization command.
func (h *RunOptimizationHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RunOptimizationCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RunOptimizationCommand")
	}

	result, err := h.runner.Run(ctx, cmd.Dataset, cmd.Options)
	if err != nil {
		return nil, err
	}

	if cmd.Persist && h.runs != nil {
		if err := h.runs.SaveRun(ctx, result); err != nil {
			return nil, fmt.Errorf("persisting run %s: %w", result.RunID, err)
		}
	}

	return &RunOptimizationResponse{Result: result}, nil
}
