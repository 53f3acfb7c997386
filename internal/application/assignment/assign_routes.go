package assignment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lspgroup/fleetopt-go/internal/application/common"
	"github.com/lspgroup/fleetopt-go/internal/domain/fleet"
	"github.com/lspgroup/fleetopt-go/internal/domain/network"
	"github.com/lspgroup/fleetopt-go/internal/domain/schedule"
	"github.com/lspgroup/fleetopt-go/internal/domain/shared"
)

// SeedStore builds the runtime store for an assignment phase: every vehicle
// parked at its placement location, counters fresh, free from the given
// instant. Vehicles missing from the placement map fall back to their
// master-data location.
func SeedStore(vehicles []*fleet.Vehicle, placement map[int64]int64, availableFrom time.Time) *fleet.StateStore {
	store := fleet.NewStateStore()
	for _, v := range vehicles {
		loc, ok := placement[v.ID]
		if !ok {
			loc = v.CurrentLocationID
		}
		store.Seed(fleet.NewState(v, loc, availableFrom))
	}
	return store
}

// SeedAvailability returns when a freshly seeded fleet becomes free: one day
// before the earliest route start, so day-one routes are takeable with
// relocation lead time to spare.
func SeedAvailability(routes []*schedule.Route) time.Time {
	if len(routes) == 0 {
		return time.Time{}
	}
	t0 := routes[0].StartTime
	for _, r := range routes {
		if r.StartTime.Before(t0) {
			t0 = r.StartTime
		}
	}
	return t0.Add(-24 * time.Hour)
}

// AssignRoutesCommand requests phase two on its own over an already decided
// placement.
type AssignRoutesCommand struct {
	Dataset   *common.Dataset
	Placement map[int64]int64
	Params    Params
}

// AssignRoutesResponse carries the assignment log and the final state of
// every vehicle.
type AssignRoutesResponse struct {
	Result      *Result
	FinalStates []fleet.Snapshot
}

// AssignRoutesHandler handles the AssignRoutes command.
type AssignRoutesHandler struct{}

// NewAssignRoutesHandler creates a new AssignRoutesHandler.
func NewAssignRoutesHandler() *AssignRoutesHandler {
	return &AssignRoutesHandler{}
}

// Handle executes the AssignRoutes command. A cancelled run is not an error
// at this level: the partial log comes back with Cancelled set.
func (h *AssignRoutesHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*AssignRoutesCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *AssignRoutesCommand")
	}
	if cmd.Dataset == nil {
		return nil, fmt.Errorf("assignment requires a dataset")
	}

	graph, err := network.NewGraph(cmd.Dataset.Locations, cmd.Dataset.Edges)
	if err != nil {
		return nil, fmt.Errorf("building network graph: %w", err)
	}

	routes := make([]*schedule.Route, len(cmd.Dataset.Routes))
	copy(routes, cmd.Dataset.Routes)
	schedule.SortChronological(routes)

	store := SeedStore(cmd.Dataset.Vehicles, cmd.Placement, SeedAvailability(routes))
	engine := NewEngine(store, graph, cmd.Params)

	result, err := engine.Run(ctx, routes)
	if err != nil {
		var cancelled *shared.CancelledError
		if !errors.As(err, &cancelled) {
			return nil, err
		}
	}

	return &AssignRoutesResponse{
		Result:      result,
		FinalStates: store.Snapshots(),
	}, nil
}
