package placement

import (
	"context"
	"fmt"

	"github.com/lspgroup/fleetopt-go/internal/application/common"
	"github.com/lspgroup/fleetopt-go/internal/domain/network"
	"github.com/lspgroup/fleetopt-go/internal/domain/schedule"
)

// PlaceVehiclesCommand requests phase one on its own: decide starting
// locations without running the assignment loop.
type PlaceVehiclesCommand struct {
	Dataset *common.Dataset
	Params  Params
}

// PlaceVehiclesResponse carries the placement and the demand it was derived
// from.
type PlaceVehiclesResponse struct {
	Placement        map[int64]int64
	Demand           map[int64]int
	CountsByLocation map[int64]int
}

// PlaceVehiclesHandler handles the PlaceVehicles command.
type PlaceVehiclesHandler struct{}

// NewPlaceVehiclesHandler creates a new PlaceVehiclesHandler.
func NewPlaceVehiclesHandler() *PlaceVehiclesHandler {
	return &PlaceVehiclesHandler{}
}

// Handle executes the PlaceVehicles command.
func (h *PlaceVehiclesHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*PlaceVehiclesCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *PlaceVehiclesCommand")
	}
	if cmd.Dataset == nil {
		return nil, fmt.Errorf("placement requires a dataset")
	}

	graph, err := network.NewGraph(cmd.Dataset.Locations, cmd.Dataset.Edges)
	if err != nil {
		return nil, fmt.Errorf("building network graph: %w", err)
	}

	routes := make([]*schedule.Route, len(cmd.Dataset.Routes))
	copy(routes, cmd.Dataset.Routes)
	schedule.SortChronological(routes)

	placement, err := Place(cmd.Dataset.Vehicles, routes, graph, cmd.Params)
	if err != nil {
		return nil, err
	}

	counts := make(map[int64]int)
	for _, loc := range placement {
		counts[loc]++
	}

	return &PlaceVehiclesResponse{
		Placement:        placement,
		Demand:           AnalyzeDemand(routes, cmd.Params.LookaheadDays),
		CountsByLocation: counts,
	}, nil
}
