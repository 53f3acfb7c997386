package placement

import (
	"sort"

	"github.com/lspgroup/fleetopt-go/internal/domain/fleet"
	"github.com/lspgroup/fleetopt-go/internal/domain/network"
	"github.com/lspgroup/fleetopt-go/internal/domain/schedule"
	"github.com/lspgroup/fleetopt-go/internal/domain/shared"
	"github.com/lspgroup/fleetopt-go/pkg/utils"
)

// Placement strategies.
const (
	StrategyProportional = "proportional"
	StrategyCostMatrix   = "cost_matrix"
)

// Params steers phase one.
type Params struct {
	Strategy         string
	LookaheadDays    int
	MaxConcentration float64
	// MaxVehiclesPerLocation overrides the concentration-derived cap when
	// positive.
	MaxVehiclesPerLocation int
}

// Place decides the starting location of every vehicle from early-window
// demand. The returned map is complete: each vehicle appears exactly once.
// With no demand at all, the whole fleet parks at the network's fallback
// location (first hub, else first location).
func Place(vehicles []*fleet.Vehicle, routes []*schedule.Route, graph *network.Graph, p Params) (map[int64]int64, error) {
	if len(vehicles) == 0 {
		return map[int64]int64{}, nil
	}

	ids := make([]int64, len(vehicles))
	for i, v := range vehicles {
		ids[i] = v.ID
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	demand := AnalyzeDemand(routes, p.LookaheadDays)
	if len(demand) == 0 {
		fallback, ok := graph.FallbackLocationID()
		if !ok {
			return nil, shared.NewNetworkError("cannot place vehicles: network has no locations")
		}
		placement := make(map[int64]int64, len(ids))
		for _, id := range ids {
			placement[id] = fallback
		}
		return placement, nil
	}

	switch p.Strategy {
	case StrategyProportional, "":
		return proportionalPlacement(ids, demand, p), nil
	case StrategyCostMatrix:
		return costMatrixPlacement(ids, demand, p), nil
	default:
		return nil, shared.NewValidationError("strategy", "unknown placement strategy: "+p.Strategy)
	}
}

// locationCap derives the per-location ceiling from the concentration limit,
// unless an explicit override is configured. Never below the given floor.
func locationCap(fleetSize int, p Params, floor int) int {
	if p.MaxVehiclesPerLocation > 0 {
		return p.MaxVehiclesPerLocation
	}
	return utils.Max(int(float64(fleetSize)*p.MaxConcentration), floor)
}
