package planning

import (
	"math"

	"github.com/lspgroup/fleetopt-go/internal/domain/fleet"
	"github.com/lspgroup/fleetopt-go/internal/domain/network"
	"github.com/lspgroup/fleetopt-go/internal/domain/schedule"
	"github.com/lspgroup/fleetopt-go/pkg/utils"
)

// EdgeLookup answers directed edge queries. Both *network.Graph and
// *network.EdgeCache satisfy it, so callers choose whether lookups go
// through the LRU.
type EdgeLookup interface {
	Edge(from, to int64) (*network.Edge, bool)
}

// CostBreakdown prices one candidate (vehicle, route) pair. The scoring
// total and the accounting total differ on purpose: scoring carries the flat
// service penalty to bias selection away from overdue vehicles, accounting
// books the real service cost instead.
type CostBreakdown struct {
	RelocationPLN     float64
	OveragePLN        float64
	ServicePenaltyPLN float64
	ServiceCostPLN    float64

	OverageKm int

	// NeedsRelocation is set when the vehicle is not at the route start;
	// RelocationEdge is the directed edge it would deadhead over.
	NeedsRelocation bool
	RelocationEdge  *network.Edge

	// NeedsService is set when the vehicle is already past its service
	// interval and a service block must precede the route.
	NeedsService bool

	infeasible bool
}

// Infeasible returns the sentinel breakdown for a candidate with no
// relocation path. Its score is +Inf so it never wins selection.
func Infeasible() CostBreakdown {
	return CostBreakdown{infeasible: true}
}

// IsInfeasible reports whether this breakdown is the no-path sentinel.
func (b CostBreakdown) IsInfeasible() bool {
	return b.infeasible
}

// Score is the selection total: relocation + overage + service penalty.
func (b CostBreakdown) Score() float64 {
	if b.infeasible {
		return math.Inf(1)
	}
	return b.RelocationPLN + b.OveragePLN + b.ServicePenaltyPLN
}

// Accounting is the money actually booked for the assignment: relocation +
// overage + the real service cost when a service is scheduled. The selection
// penalty is a bias, not a cost, and stays out.
func (b CostBreakdown) Accounting() float64 {
	if b.infeasible {
		return math.Inf(1)
	}
	return b.RelocationPLN + b.OveragePLN + b.ServiceCostPLN
}

// RelocationCost prices an empty reposition over the given edge.
func RelocationCost(e *network.Edge, pol Policy) float64 {
	return pol.RelocationBaseCostPLN +
		e.DistanceKm*pol.RelocationPerKmPLN +
		e.TravelHours*pol.RelocationPerHourPLN
}

// OverageCost projects the lease-year counter past the route and prices the
// kilometres above the annual allowance. Lifetime caps never produce
// overage; they are a feasibility concern.
func OverageCost(annualKm, routeKm, annualLimitKm int, pol Policy) (pln float64, overKm int) {
	future := annualKm + routeKm
	if future <= annualLimitKm {
		return 0, 0
	}
	overKm = future - annualLimitKm
	return float64(overKm) * pol.OveragePerKmPLN, overKm
}

// AssignmentCost prices assigning the snapshot's vehicle to the route. The
// snapshot must already be lease-rolled to the route start. Returns the
// Infeasible sentinel when a relocation is needed but no directed edge
// exists; the feasibility kernel normally rejects such candidates first.
func AssignmentCost(snap fleet.Snapshot, route *schedule.Route, pol Policy, edges EdgeLookup) CostBreakdown {
	var b CostBreakdown

	if snap.LocationID != route.StartLocationID() {
		edge, ok := edges.Edge(snap.LocationID, route.StartLocationID())
		if !ok {
			return Infeasible()
		}
		b.NeedsRelocation = true
		b.RelocationEdge = edge
		b.RelocationPLN = RelocationCost(edge, pol)
	}

	routeKm := utils.RoundKm(route.DistanceKm)
	b.OveragePLN, b.OverageKm = OverageCost(snap.KmThisLeaseYear, routeKm, snap.AnnualLimitKm, pol)

	if snap.KmSinceService+routeKm > snap.ServiceIntervalKm+pol.ServiceToleranceKm {
		b.ServicePenaltyPLN = pol.ServicePenaltyPLN
	}
	if snap.DueForService(pol.ServiceToleranceKm) {
		b.NeedsService = true
		b.ServiceCostPLN = pol.ServiceCostPLN
	}

	return b
}
