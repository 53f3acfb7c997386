package assignment

import (
	"time"

	"github.com/lspgroup/fleetopt-go/internal/domain/planning"
)

// Assignment is the decision record for one route: the winning vehicle, the
// priced cost components, and the odometer movements of the commit.
type Assignment struct {
	RouteID   int64     `json:"route_id"`
	VehicleID int64     `json:"vehicle_id"`
	Date      time.Time `json:"date"`

	RouteKm         float64   `json:"route_km"`
	RouteStart      time.Time `json:"route_start"`
	RouteEnd        time.Time `json:"route_end"`
	RouteStartLocID int64     `json:"route_start_location_id"`
	RouteEndLocID   int64     `json:"route_end_location_id"`

	RequiresRelocation bool    `json:"requires_relocation"`
	RelocationFromID   int64   `json:"relocation_from_id,omitempty"`
	RelocationToID     int64   `json:"relocation_to_id,omitempty"`
	RelocationKm       float64 `json:"relocation_km,omitempty"`
	RelocationHours    float64 `json:"relocation_hours,omitempty"`
	RelocationCostPLN  float64 `json:"relocation_cost_pln,omitempty"`

	RequiresService bool      `json:"requires_service"`
	ServiceStart    time.Time `json:"service_start,omitempty"`
	ServiceEnd      time.Time `json:"service_end,omitempty"`
	ServiceCostPLN  float64   `json:"service_cost_pln,omitempty"`

	OverageKm         int     `json:"overage_km"`
	OverageCostPLN    float64 `json:"overage_cost_pln"`
	ServicePenaltyPLN float64 `json:"service_penalty_pln"`

	// CostPLN is the winning candidate's selection score; ChainScore the
	// discounted follow-on bonus when chain optimization is enabled.
	CostPLN    float64 `json:"cost_pln"`
	ChainScore float64 `json:"chain_score,omitempty"`

	OdometerBeforeKm  int `json:"odometer_before_km"`
	OdometerAfterKm   int `json:"odometer_after_km"`
	LeaseYearKmBefore int `json:"lease_year_km_before"`
	LeaseYearKmAfter  int `json:"lease_year_km_after"`
}

// Unassigned describes a route no vehicle could take, with the rejection
// histogram across the whole fleet and the dominant reason.
type Unassigned struct {
	RouteID        int64                   `json:"route_id"`
	StartTime      time.Time               `json:"start_time"`
	StartLocID     int64                   `json:"start_location_id"`
	Reasons        map[planning.Reason]int `json:"reasons"`
	DominantReason planning.Reason         `json:"dominant_reason"`
}

// Result is the full log of one assignment phase.
type Result struct {
	Assignments []*Assignment `json:"assignments"`
	Unassigned  []*Unassigned `json:"unassigned"`
	RoutesTotal int           `json:"routes_total"`
	// Cancelled marks a partial log cut off at the between-routes
	// checkpoint.
	Cancelled bool `json:"cancelled"`
}

// Progress is one heartbeat of the assignment loop.
type Progress struct {
	RoutesProcessed int
	RoutesTotal     int
	Assigned        int
	Unassigned      int
	SimulatedDate   time.Time
}

// Fleets at or above this size score candidates concurrently unless the
// caller overrides the threshold.
const defaultParallelThreshold = 16

// Params steers phase two.
type Params struct {
	Policy planning.Policy

	// HorizonDays trims the plan to routes starting within its first N
	// days. Zero keeps every route.
	HorizonDays int

	// Chain look-ahead. Disabled by default; the authoritative results
	// come from the plain greedy mode.
	UseChain           bool
	ChainDepth         int
	ChainWeight        float64
	LookAheadDays      int
	MaxLookaheadRoutes int

	// ParallelThreshold is the fleet size at which candidate scoring fans
	// out across goroutines. Zero picks the package default.
	ParallelThreshold int

	// Progress cadence: a heartbeat every ProgressInterval routes and
	// whenever the simulated clock advances ProgressDays. Zero disables
	// the respective trigger.
	ProgressInterval int
	ProgressDays     int
}

func (p Params) parallelThreshold() int {
	if p.ParallelThreshold > 0 {
		return p.ParallelThreshold
	}
	return defaultParallelThreshold
}
