package steps

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/cucumber/godog"
	"github.com/cucumber/messages/go/v21"

	"github.com/lspgroup/fleetopt-go/internal/application/assignment"
	"github.com/lspgroup/fleetopt-go/internal/application/placement"
	"github.com/lspgroup/fleetopt-go/internal/domain/fleet"
	"github.com/lspgroup/fleetopt-go/internal/domain/network"
	"github.com/lspgroup/fleetopt-go/internal/domain/planning"
	"github.com/lspgroup/fleetopt-go/internal/domain/schedule"
)

type optimizerContext struct {
	locations []*network.Location
	edges     []*network.Edge
	vehicles  []*fleet.Vehicle
	routes    []*schedule.Route

	policy        planning.Policy
	lookaheadDays int

	placed      map[int64]int64
	result      *assignment.Result
	finalStates []fleet.Snapshot
	err         error
}

func (oc *optimizerContext) reset() {
	oc.locations = nil
	oc.edges = nil
	oc.vehicles = nil
	oc.routes = nil
	oc.policy = defaultPolicy()
	oc.lookaheadDays = 14
	oc.placed = nil
	oc.result = nil
	oc.finalStates = nil
	oc.err = nil
}

// defaultPolicy mirrors the documented configuration defaults.
func defaultPolicy() planning.Policy {
	return planning.Policy{
		RelocationBaseCostPLN: 1000,
		RelocationPerKmPLN:    1.0,
		RelocationPerHourPLN:  150,
		OveragePerKmPLN:       0.92,
		ServiceToleranceKm:    1000,
		ServiceDurationHours:  48,
		ServicePenaltyPLN:     500,
		ServiceCostPLN:        2000,
		MaxSwapsPerPeriod:     1,
		SwapPeriodDays:        90,
	}
}

// parseWhen accepts both date and date-time cells.
func parseWhen(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02T15:04", s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// cellValue gets a cell value from a table row by column name.
// It uses the first row (table.Rows[0]) as the header to find the column index.
func cellValue(table *godog.Table, row *messages.PickleTableRow, column string) string {
	if len(table.Rows) == 0 {
		return ""
	}
	for i, header := range table.Rows[0].Cells {
		if header.Value == column {
			if i < len(row.Cells) {
				return row.Cells[i].Value
			}
			return ""
		}
	}
	return ""
}

// Setup steps

func (oc *optimizerContext) networkWithLocations(table *godog.Table) error {
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header
		}
		id, err := strconv.ParseInt(row.Cells[0].Value, 10, 64)
		if err != nil {
			return fmt.Errorf("location id: %w", err)
		}
		hub := row.Cells[2].Value == "true"

		loc, err := network.NewLocation(id, row.Cells[1].Value, 52.0, 19.0, hub)
		if err != nil {
			return err
		}
		oc.locations = append(oc.locations, loc)
	}
	return nil
}

func (oc *optimizerContext) directedRelations(table *godog.Table) error {
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header
		}
		from, err := strconv.ParseInt(row.Cells[0].Value, 10, 64)
		if err != nil {
			return fmt.Errorf("relation from: %w", err)
		}
		to, err := strconv.ParseInt(row.Cells[1].Value, 10, 64)
		if err != nil {
			return fmt.Errorf("relation to: %w", err)
		}
		dist, err := strconv.ParseFloat(row.Cells[2].Value, 64)
		if err != nil {
			return fmt.Errorf("relation distance: %w", err)
		}
		hours, err := strconv.ParseFloat(row.Cells[3].Value, 64)
		if err != nil {
			return fmt.Errorf("relation hours: %w", err)
		}

		edge, err := network.NewEdge(int64(i), from, to, dist, hours)
		if err != nil {
			return err
		}
		oc.edges = append(oc.edges, edge)
	}
	return nil
}

func (oc *optimizerContext) aFleet(table *godog.Table) error {
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header
		}
		id, err := strconv.ParseInt(cellValue(table, row, "id"), 10, 64)
		if err != nil {
			return fmt.Errorf("vehicle id: %w", err)
		}
		loc, err := strconv.ParseInt(cellValue(table, row, "location"), 10, 64)
		if err != nil {
			return fmt.Errorf("vehicle location: %w", err)
		}
		limit, err := strconv.Atoi(cellValue(table, row, "annual_limit_km"))
		if err != nil {
			return fmt.Errorf("vehicle annual limit: %w", err)
		}
		interval, err := strconv.Atoi(cellValue(table, row, "service_interval_km"))
		if err != nil {
			return fmt.Errorf("vehicle service interval: %w", err)
		}
		leaseStart, err := parseWhen(cellValue(table, row, "lease_start"))
		if err != nil {
			return fmt.Errorf("vehicle lease start: %w", err)
		}
		leaseEnd, err := parseWhen(cellValue(table, row, "lease_end"))
		if err != nil {
			return fmt.Errorf("vehicle lease end: %w", err)
		}

		v, err := fleet.NewVehicle(id, fmt.Sprintf("WGM %05d", id), "Volvo",
			interval, 0, limit, leaseStart, leaseEnd, 0, loc)
		if err != nil {
			return err
		}
		oc.vehicles = append(oc.vehicles, v)
	}
	return nil
}

func (oc *optimizerContext) aFleetOfVehicles(count int) error {
	leaseStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	leaseEnd := leaseStart.AddDate(0, 0, 365)
	for id := int64(1); id <= int64(count); id++ {
		v, err := fleet.NewVehicle(id, fmt.Sprintf("WGM %05d", id), "Volvo",
			30000, 0, 150000, leaseStart, leaseEnd, 0, 0)
		if err != nil {
			return err
		}
		oc.vehicles = append(oc.vehicles, v)
	}
	return nil
}

func (oc *optimizerContext) aRoutePlan(table *godog.Table) error {
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header
		}
		id, err := strconv.ParseInt(cellValue(table, row, "id"), 10, 64)
		if err != nil {
			return fmt.Errorf("route id: %w", err)
		}
		from, err := strconv.ParseInt(cellValue(table, row, "start_location"), 10, 64)
		if err != nil {
			return fmt.Errorf("route start location: %w", err)
		}
		to, err := strconv.ParseInt(cellValue(table, row, "end_location"), 10, 64)
		if err != nil {
			return fmt.Errorf("route end location: %w", err)
		}
		dist, err := strconv.ParseFloat(cellValue(table, row, "distance_km"), 64)
		if err != nil {
			return fmt.Errorf("route distance: %w", err)
		}
		start, err := parseWhen(cellValue(table, row, "start_time"))
		if err != nil {
			return fmt.Errorf("route start time: %w", err)
		}
		end, err := parseWhen(cellValue(table, row, "end_time"))
		if err != nil {
			return fmt.Errorf("route end time: %w", err)
		}

		route, err := schedule.NewRoute(id, start, end, dist, []schedule.Segment{{
			ID:         id,
			RouteID:    id,
			Seq:        1,
			StartLocID: from,
			EndLocID:   to,
			StartTime:  start,
			EndTime:    end,
		}})
		if err != nil {
			return err
		}
		oc.routes = append(oc.routes, route)
	}
	return nil
}

func (oc *optimizerContext) routeDemandOverDays(days int, table *godog.Table) error {
	oc.lookaheadDays = days
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	nextID := int64(1)
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header
		}
		loc, err := strconv.ParseInt(row.Cells[0].Value, 10, 64)
		if err != nil {
			return fmt.Errorf("demand location: %w", err)
		}
		count, err := strconv.Atoi(row.Cells[1].Value)
		if err != nil {
			return fmt.Errorf("demand count: %w", err)
		}

		for n := 0; n < count; n++ {
			start := base.Add(time.Duration(n) * time.Minute)
			end := start.Add(4 * time.Hour)
			route, err := schedule.NewRoute(nextID, start, end, 100, []schedule.Segment{{
				ID:         nextID,
				RouteID:    nextID,
				Seq:        1,
				StartLocID: loc,
				EndLocID:   loc,
				StartTime:  start,
				EndTime:    end,
			}})
			if err != nil {
				return err
			}
			oc.routes = append(oc.routes, route)
			nextID++
		}
	}
	return nil
}

func (oc *optimizerContext) noRoutes() error {
	oc.routes = nil
	return nil
}

func (oc *optimizerContext) swapPolicyAllows(maxSwaps, periodDays int) error {
	oc.policy.MaxSwapsPerPeriod = maxSwaps
	oc.policy.SwapPeriodDays = periodDays
	return nil
}

// Action steps

func (oc *optimizerContext) buildGraph() (*network.Graph, error) {
	return network.NewGraph(oc.locations, oc.edges)
}

func (oc *optimizerContext) placeProportionally(maxConcentration string) error {
	conc, err := strconv.ParseFloat(maxConcentration, 64)
	if err != nil {
		return fmt.Errorf("max concentration: %w", err)
	}
	graph, err := oc.buildGraph()
	if err != nil {
		return err
	}
	oc.placed, oc.err = placement.Place(oc.vehicles, oc.routes, graph, placement.Params{
		Strategy:         placement.StrategyProportional,
		LookaheadDays:    oc.lookaheadDays,
		MaxConcentration: conc,
	})
	return nil
}

func (oc *optimizerContext) placeWithExplicitCap(limit int) error {
	graph, err := oc.buildGraph()
	if err != nil {
		return err
	}
	oc.placed, oc.err = placement.Place(oc.vehicles, oc.routes, graph, placement.Params{
		Strategy:               placement.StrategyProportional,
		LookaheadDays:          oc.lookaheadDays,
		MaxConcentration:       0.3,
		MaxVehiclesPerLocation: limit,
	})
	return nil
}

func (oc *optimizerContext) runAssignment() error {
	graph, err := oc.buildGraph()
	if err != nil {
		return err
	}
	store := assignment.SeedStore(oc.vehicles, nil, assignment.SeedAvailability(oc.routes))
	engine := assignment.NewEngine(store, graph, assignment.Params{Policy: oc.policy})

	oc.result, oc.err = engine.Run(context.Background(), oc.routes)
	if oc.result != nil {
		oc.finalStates = store.Snapshots()
	}
	return nil
}

// Assertion steps

func (oc *optimizerContext) everyVehicleShouldBePlaced() error {
	if oc.err != nil {
		return fmt.Errorf("placement failed: %w", oc.err)
	}
	if len(oc.placed) != len(oc.vehicles) {
		return fmt.Errorf("placed %d of %d vehicles", len(oc.placed), len(oc.vehicles))
	}
	return nil
}

func (oc *optimizerContext) locationShouldReceiveVehicles(locationID int64, want int) error {
	got := 0
	for _, loc := range oc.placed {
		if loc == locationID {
			got++
		}
	}
	if got != want {
		return fmt.Errorf("location %d received %d vehicles, want %d", locationID, got, want)
	}
	return nil
}

func (oc *optimizerContext) assignedAndUnassignedCounts(assigned, unassigned int) error {
	if oc.err != nil {
		return fmt.Errorf("assignment failed: %w", oc.err)
	}
	if len(oc.result.Assignments) != assigned {
		return fmt.Errorf("%d routes assigned, want %d", len(oc.result.Assignments), assigned)
	}
	if len(oc.result.Unassigned) != unassigned {
		return fmt.Errorf("%d routes unassigned, want %d", len(oc.result.Unassigned), unassigned)
	}
	return nil
}

func (oc *optimizerContext) findAssignment(routeID int64) (*assignment.Assignment, error) {
	if oc.err != nil {
		return nil, fmt.Errorf("assignment failed: %w", oc.err)
	}
	if oc.result == nil {
		return nil, fmt.Errorf("assignment has not run")
	}
	for _, a := range oc.result.Assignments {
		if a.RouteID == routeID {
			return a, nil
		}
	}
	return nil, fmt.Errorf("route %d was not assigned", routeID)
}

func (oc *optimizerContext) routeShouldBeAssignedTo(routeID, vehicleID int64) error {
	a, err := oc.findAssignment(routeID)
	if err != nil {
		return err
	}
	if a.VehicleID != vehicleID {
		return fmt.Errorf("route %d went to vehicle %d, want %d", routeID, a.VehicleID, vehicleID)
	}
	return nil
}

func (oc *optimizerContext) routeShouldBeUnassignedWithReason(routeID int64, reason string) error {
	if oc.result == nil {
		return fmt.Errorf("assignment has not run")
	}
	for _, u := range oc.result.Unassigned {
		if u.RouteID == routeID {
			if string(u.DominantReason) != reason {
				return fmt.Errorf("route %d rejected for %s, want %s", routeID, u.DominantReason, reason)
			}
			return nil
		}
	}
	return fmt.Errorf("route %d is not in the unassigned log", routeID)
}

func (oc *optimizerContext) assignmentShouldNotRequireRelocation(routeID int64) error {
	a, err := oc.findAssignment(routeID)
	if err != nil {
		return err
	}
	if a.RequiresRelocation {
		return fmt.Errorf("route %d unexpectedly requires relocation", routeID)
	}
	if a.RelocationCostPLN != 0 {
		return fmt.Errorf("route %d carries relocation cost %.2f, want 0", routeID, a.RelocationCostPLN)
	}
	return nil
}

func (oc *optimizerContext) assignmentShouldRequireRelocationCosting(routeID int64, costStr string) error {
	a, err := oc.findAssignment(routeID)
	if err != nil {
		return err
	}
	if !a.RequiresRelocation {
		return fmt.Errorf("route %d does not require relocation", routeID)
	}
	want, err := strconv.ParseFloat(costStr, 64)
	if err != nil {
		return err
	}
	if math.Abs(a.RelocationCostPLN-want) > 0.005 {
		return fmt.Errorf("route %d relocation cost %.2f, want %.2f", routeID, a.RelocationCostPLN, want)
	}
	return nil
}

func (oc *optimizerContext) assignmentShouldCost(routeID int64, costStr string) error {
	a, err := oc.findAssignment(routeID)
	if err != nil {
		return err
	}
	want, err := strconv.ParseFloat(costStr, 64)
	if err != nil {
		return err
	}
	if math.Abs(a.CostPLN-want) > 0.005 {
		return fmt.Errorf("route %d cost %.2f, want %.2f", routeID, a.CostPLN, want)
	}
	return nil
}

func (oc *optimizerContext) assignmentShouldHaveOverage(routeID int64, km int, costStr string) error {
	a, err := oc.findAssignment(routeID)
	if err != nil {
		return err
	}
	if a.OverageKm != km {
		return fmt.Errorf("route %d overage %d km, want %d", routeID, a.OverageKm, km)
	}
	want, err := strconv.ParseFloat(costStr, 64)
	if err != nil {
		return err
	}
	if math.Abs(a.OverageCostPLN-want) > 0.005 {
		return fmt.Errorf("route %d overage cost %.2f, want %.2f", routeID, a.OverageCostPLN, want)
	}
	return nil
}

func (oc *optimizerContext) assignmentShouldLeaveLeaseYearAt(routeID int64, km int) error {
	a, err := oc.findAssignment(routeID)
	if err != nil {
		return err
	}
	if a.LeaseYearKmAfter != km {
		return fmt.Errorf("route %d left the lease year at %d km, want %d", routeID, a.LeaseYearKmAfter, km)
	}
	return nil
}

// InitializeOptimizerScenario registers the placement, assignment and
// lease-year step definitions.
func InitializeOptimizerScenario(sc *godog.ScenarioContext) {
	oc := &optimizerContext{}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		oc.reset()
		return ctx, nil
	})

	// Setup steps
	sc.Step(`^a network with locations:$`, oc.networkWithLocations)
	sc.Step(`^directed relations:$`, oc.directedRelations)
	sc.Step(`^a fleet:$`, oc.aFleet)
	sc.Step(`^a fleet of (\d+) vehicles$`, oc.aFleetOfVehicles)
	sc.Step(`^a route plan:$`, oc.aRoutePlan)
	sc.Step(`^route demand over the next (\d+) days:$`, oc.routeDemandOverDays)
	sc.Step(`^no routes$`, oc.noRoutes)
	sc.Step(`^the swap policy allows (\d+) relocations? per (\d+) days$`, oc.swapPolicyAllows)

	// Action steps
	sc.Step(`^I place the fleet proportionally with max concentration ([0-9.]+)$`, oc.placeProportionally)
	sc.Step(`^I place the fleet proportionally with at most (\d+) vehicles per location$`, oc.placeWithExplicitCap)
	sc.Step(`^I run the assignment$`, oc.runAssignment)

	// Assertion steps
	sc.Step(`^every vehicle should be placed$`, oc.everyVehicleShouldBePlaced)
	sc.Step(`^location (\d+) should receive (\d+) vehicles$`, oc.locationShouldReceiveVehicles)
	sc.Step(`^(\d+) routes should be assigned and (\d+) unassigned$`, oc.assignedAndUnassignedCounts)
	sc.Step(`^route (\d+) should be assigned to vehicle (\d+)$`, oc.routeShouldBeAssignedTo)
	sc.Step(`^route (\d+) should be unassigned with reason "([^"]*)"$`, oc.routeShouldBeUnassignedWithReason)
	sc.Step(`^the assignment for route (\d+) should not require relocation$`, oc.assignmentShouldNotRequireRelocation)
	sc.Step(`^the assignment for route (\d+) should require relocation costing ([0-9.]+) PLN$`, oc.assignmentShouldRequireRelocationCosting)
	sc.Step(`^the assignment for route (\d+) should cost ([0-9.]+) PLN$`, oc.assignmentShouldCost)
	sc.Step(`^the assignment for route (\d+) should have an overage of (\d+) km costing ([0-9.]+) PLN$`, oc.assignmentShouldHaveOverage)
	sc.Step(`^the assignment for route (\d+) should leave the lease year at (\d+) km$`, oc.assignmentShouldLeaveLeaseYearAt)
}
