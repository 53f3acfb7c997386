package optimizer

import (
	"fmt"

	"github.com/lspgroup/fleetopt-go/internal/application/common"
	"github.com/lspgroup/fleetopt-go/internal/domain/shared"
)

// ValidateDataset runs the cross-file referential checks that must pass
// before phase one. Row-level shape was already enforced by the domain
// constructors at load time; this catches dangling references between files.
// The first problem found aborts the run, nothing is partially optimized.
func ValidateDataset(ds *common.Dataset) error {
	if ds == nil {
		return shared.NewInputInvalidError("dataset", 0, "no dataset loaded")
	}
	if len(ds.Locations) == 0 {
		return shared.NewInputInvalidError("locations", 0, "no locations loaded")
	}

	known := make(map[int64]bool, len(ds.Locations))
	for i, loc := range ds.Locations {
		if known[loc.ID] {
			return shared.NewInputInvalidError("locations", i+1, fmt.Sprintf("duplicate location id %d", loc.ID))
		}
		known[loc.ID] = true
	}

	for i, e := range ds.Edges {
		if !known[e.FromID] {
			return shared.NewInputInvalidError("locations_relations", i+1, fmt.Sprintf("edge %d references unknown location %d", e.ID, e.FromID))
		}
		if !known[e.ToID] {
			return shared.NewInputInvalidError("locations_relations", i+1, fmt.Sprintf("edge %d references unknown location %d", e.ID, e.ToID))
		}
	}

	for i, r := range ds.Routes {
		if !known[r.StartLocationID()] {
			return shared.NewInputInvalidError("routes", i+1, fmt.Sprintf("route %d starts at unknown location %d", r.ID, r.StartLocationID()))
		}
		if !known[r.EndLocationID()] {
			return shared.NewInputInvalidError("routes", i+1, fmt.Sprintf("route %d ends at unknown location %d", r.ID, r.EndLocationID()))
		}
	}

	for i, v := range ds.Vehicles {
		if v.HasKnownLocation() && !known[v.CurrentLocationID] {
			return shared.NewInputInvalidError("vehicles", i+1, fmt.Sprintf("vehicle %d parked at unknown location %d", v.ID, v.CurrentLocationID))
		}
	}

	return nil
}
