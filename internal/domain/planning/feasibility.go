package planning

import (
	"github.com/lspgroup/fleetopt-go/internal/domain/fleet"
	"github.com/lspgroup/fleetopt-go/internal/domain/network"
	"github.com/lspgroup/fleetopt-go/internal/domain/schedule"
	"github.com/lspgroup/fleetopt-go/pkg/utils"
)

// Reason classifies why a candidate was rejected. The engine aggregates
// reasons per route into the unassigned histogram.
type Reason string

const (
	// ReasonTime: the vehicle cannot reach the route start in time, service
	// downtime and relocation travel included.
	ReasonTime Reason = "TIME"
	// ReasonLifetime: the route would push cumulative km past the lifetime
	// contract cap.
	ReasonLifetime Reason = "LIFETIME"
	// ReasonSwap: the relocation would exceed the swap allowance for the
	// trailing period.
	ReasonSwap Reason = "SWAP"
	// ReasonNoPath: a relocation is needed but no directed edge exists.
	ReasonNoPath Reason = "NO_PATH"
	// ReasonServiceBlocked is reserved for hard service enforcement. The
	// default policy treats service as downtime plus a scoring bias, so
	// this reason is never produced.
	ReasonServiceBlocked Reason = "SERVICE_BLOCKED"
)

// Check runs the hard-constraint predicates for one candidate, in order:
// relocation path, availability and arrival, lifetime contract, swap policy.
// The snapshot must already be lease-rolled to the route start. Returns the
// zero Reason when the candidate is feasible. Arrival exactly at the route
// start is feasible.
func Check(snap fleet.Snapshot, route *schedule.Route, pol Policy, edges EdgeLookup) (bool, Reason) {
	needsRelocation := snap.LocationID != route.StartLocationID()

	var travel *network.Edge
	if needsRelocation {
		edge, ok := edges.Edge(snap.LocationID, route.StartLocationID())
		if !ok {
			return false, ReasonNoPath
		}
		travel = edge
	}

	ready := snap.AvailableFrom
	if snap.DueForService(pol.ServiceToleranceKm) {
		ready = ready.Add(pol.ServiceDowntime())
	}
	if travel != nil {
		ready = ready.Add(travel.TravelTime())
	}
	if ready.After(route.StartTime) {
		return false, ReasonTime
	}

	if snap.HasContractLimit() {
		if snap.TotalLifetimeKm+utils.RoundKm(route.DistanceKm) > snap.ContractLimitKm {
			return false, ReasonLifetime
		}
	}

	if needsRelocation {
		since := route.StartTime.Add(-pol.SwapWindow())
		if snap.RecentRelocations(since, route.StartTime) >= pol.MaxSwapsPerPeriod {
			return false, ReasonSwap
		}
	}

	return true, ""
}
