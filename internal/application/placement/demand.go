package placement

import (
	"sort"
	"time"

	"github.com/lspgroup/fleetopt-go/internal/domain/schedule"
)

// AnalyzeDemand counts routes starting at each location within the first
// lookaheadDays of the plan. The window is anchored at the earliest route
// start; a non-positive horizon keeps every route. Routes without a start
// location are discarded.
func AnalyzeDemand(routes []*schedule.Route, lookaheadDays int) map[int64]int {
	demand := make(map[int64]int)
	if len(routes) == 0 {
		return demand
	}

	t0 := routes[0].StartTime
	for _, r := range routes {
		if r.StartTime.Before(t0) {
			t0 = r.StartTime
		}
	}
	horizon := t0.Add(time.Duration(lookaheadDays) * 24 * time.Hour)

	for _, r := range routes {
		if lookaheadDays > 0 && !r.StartTime.Before(horizon) {
			continue
		}
		if loc := r.StartLocationID(); loc > 0 {
			demand[loc]++
		}
	}
	return demand
}

type demandEntry struct {
	locationID int64
	routes     int
}

// rankByDemand orders locations by descending route count, ties broken by
// ascending location id so placement stays deterministic.
func rankByDemand(demand map[int64]int) []demandEntry {
	ranked := make([]demandEntry, 0, len(demand))
	for loc, n := range demand {
		ranked = append(ranked, demandEntry{locationID: loc, routes: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].routes == ranked[j].routes {
			return ranked[i].locationID < ranked[j].locationID
		}
		return ranked[i].routes > ranked[j].routes
	})
	return ranked
}
