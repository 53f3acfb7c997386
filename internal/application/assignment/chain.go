package assignment

import (
	"sort"
	"time"

	"github.com/lspgroup/fleetopt-go/internal/domain/fleet"
	"github.com/lspgroup/fleetopt-go/internal/domain/planning"
	"github.com/lspgroup/fleetopt-go/internal/domain/schedule"
	"github.com/lspgroup/fleetopt-go/pkg/utils"
)

// chainScore estimates how well the vehicle would be positioned for
// follow-on work after driving plan[idx]. It simulates the post-route state,
// walks the upcoming routes inside the look-ahead window (at most
// MaxLookaheadRoutes of them), converts each reachable one's cost into a
// link score of 1000/(cost+100), and sums the best ChainDepth links with
// geometrically decaying weights.
//
// This is a heuristic over a simulated state: it checks reachability in
// time only, and does not model lease rolls, swap budgets or other vehicles
// competing for the same routes.
func (e *Engine) chainScore(snap fleet.Snapshot, route *schedule.Route, plan []*schedule.Route, idx int) float64 {
	if e.params.ChainDepth <= 0 || e.params.MaxLookaheadRoutes <= 0 {
		return 0
	}

	future := snap
	future.LocationID = route.EndLocationID()
	future.AvailableFrom = route.EndTime
	routeKm := utils.RoundKm(route.DistanceKm)
	future.OdometerKm += routeKm
	future.KmSinceService += routeKm
	future.KmThisLeaseYear += routeKm
	future.TotalLifetimeKm += routeKm

	horizon := route.EndTime.Add(time.Duration(e.params.LookAheadDays) * 24 * time.Hour)

	var links []float64
	examined := 0
	for _, next := range plan[idx+1:] {
		if next.StartTime.After(horizon) {
			break
		}
		if examined >= e.params.MaxLookaheadRoutes {
			break
		}
		examined++

		if !reachableInTime(future, next, e.edges) {
			continue
		}
		b := planning.AssignmentCost(future, next, e.params.Policy, e.edges)
		if b.IsInfeasible() {
			continue
		}
		links = append(links, 1000.0/(b.Score()+100.0))
	}
	if len(links) == 0 {
		return 0
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(links)))
	depth := utils.Min(e.params.ChainDepth, len(links))

	total := 0.0
	weight := 1.0
	for i := 0; i < depth; i++ {
		total += links[i] * weight
		weight *= 0.5
	}
	return total
}

// reachableInTime is the relaxed feasibility used inside the chain walk:
// can the simulated vehicle arrive at the route start before it departs.
func reachableInTime(snap fleet.Snapshot, route *schedule.Route, edges planning.EdgeLookup) bool {
	ready := snap.AvailableFrom
	if snap.LocationID != route.StartLocationID() {
		edge, ok := edges.Edge(snap.LocationID, route.StartLocationID())
		if !ok {
			return false
		}
		ready = ready.Add(edge.TravelTime())
	}
	return !ready.After(route.StartTime)
}
