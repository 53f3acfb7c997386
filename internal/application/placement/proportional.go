package placement

// proportionalPlacement allocates vehicles to locations in proportion to
// their share of early demand. Locations are visited in descending-demand
// order; each gets at least one vehicle and at most the concentration cap.
// Leftover vehicles spill across the same order into locations still under
// the cap; only when every demand location is full does the cap yield and
// the top location absorb the rest.
func proportionalPlacement(vehicleIDs []int64, demand map[int64]int, p Params) map[int64]int64 {
	ranked := rankByDemand(demand)
	limit := locationCap(len(vehicleIDs), p, 1)

	totalDemand := 0
	for _, e := range ranked {
		totalDemand += e.routes
	}

	quota := make(map[int64]int, len(ranked))
	remaining := len(vehicleIDs)

	for _, e := range ranked {
		if remaining == 0 {
			break
		}
		share := len(vehicleIDs) * e.routes / totalDemand
		if share < 1 {
			share = 1
		}
		if share > limit {
			share = limit
		}
		if share > remaining {
			share = remaining
		}
		quota[e.locationID] = share
		remaining -= share
	}

	for remaining > 0 {
		spilled := false
		for _, e := range ranked {
			if remaining == 0 {
				break
			}
			if quota[e.locationID] < limit {
				quota[e.locationID]++
				remaining--
				spilled = true
			}
		}
		if !spilled {
			// Every demand location is at the cap; completeness wins.
			quota[ranked[0].locationID] += remaining
			remaining = 0
		}
	}

	// Deal vehicles in ascending id order along the demand ranking.
	placement := make(map[int64]int64, len(vehicleIDs))
	next := 0
	for _, e := range ranked {
		for i := 0; i < quota[e.locationID]; i++ {
			placement[vehicleIDs[next]] = e.locationID
			next++
		}
	}
	return placement
}
