package placement

import (
	"math"
	"sort"
)

// costMatrixPlacement assigns each vehicle to its cheapest location under a
// demand-derived cost with a soft concentration penalty. Busier locations
// are cheaper; the penalty ramps up quadratically as a location approaches
// the cap and steeply once past it, so the cap bends rather than blocks.
func costMatrixPlacement(vehicleIDs []int64, demand map[int64]int, p Params) map[int64]int64 {
	locations := make([]int64, 0, len(demand))
	for loc := range demand {
		locations = append(locations, loc)
	}
	sort.Slice(locations, func(i, j int) bool { return locations[i] < locations[j] })

	limit := locationCap(len(vehicleIDs), p, 5)

	baseCost := make(map[int64]float64, len(locations))
	for _, loc := range locations {
		baseCost[loc] = 1000.0 / math.Log(float64(demand[loc])+2)
	}

	placement := make(map[int64]int64, len(vehicleIDs))
	counts := make(map[int64]int, len(locations))

	for _, vid := range vehicleIDs {
		var best int64
		bestCost := math.Inf(1)
		for _, loc := range locations {
			cost := baseCost[loc] + concentrationPenalty(counts[loc], limit)
			if cost < bestCost {
				bestCost = cost
				best = loc
			}
		}
		placement[vid] = best
		counts[best]++
	}
	return placement
}

// concentrationPenalty prices crowding at a location that already holds
// current vehicles against a soft cap.
func concentrationPenalty(current, limit int) float64 {
	switch {
	case current >= limit:
		excess := float64(current - limit + 1)
		return 5000 * math.Pow(excess, 1.5)
	case float64(current) > float64(limit)*0.7:
		ratio := float64(current) / float64(limit)
		return 1000 * math.Pow((ratio-0.7)/0.3, 2)
	default:
		return 0
	}
}
