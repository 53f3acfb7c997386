package optimizer

import (
	"context"

	"github.com/lspgroup/fleetopt-go/internal/application/assignment"
)

// RunRepository persists optimization runs and serves them back to the API.
type RunRepository interface {
	// SaveRun stores the run with its assignments, unassigned routes and
	// final vehicle states in one transaction.
	SaveRun(ctx context.Context, result *RunResult) error
	// GetSummary returns the stored summary for a run id.
	GetSummary(ctx context.Context, runID string) (*RunSummary, error)
	// ListAssignments pages through a run's assignment records in route
	// order.
	ListAssignments(ctx context.Context, runID string, offset, limit int) ([]*assignment.Assignment, error)
}
