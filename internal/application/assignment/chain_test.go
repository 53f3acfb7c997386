package assignment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lspgroup/fleetopt-go/internal/application/assignment"
	"github.com/lspgroup/fleetopt-go/internal/domain/fleet"
	"github.com/lspgroup/fleetopt-go/internal/domain/schedule"
)

// chainFixture: v1 sits at the first route's start but its annual allowance
// is nearly spent, so the big follow-on route would cost it dearly. v2 must
// deadhead 300 km first (1825 PLN) but arrives fresh.
func chainFixture(t *testing.T) (*fleet.StateStore, []*schedule.Route) {
	t.Helper()
	vehicles := []*fleet.Vehicle{haulTruck(t, 1), haulTruck(t, 2)}
	store := assignment.SeedStore(vehicles, map[int64]int64{1: 10, 2: 20}, leaseStart)

	burnStart := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	_, err := store.Advance(1, fleet.AdvanceOptions{
		RouteID:       900,
		RouteStart:    burnStart,
		RouteEnd:      burnStart.Add(24 * time.Hour),
		RouteKm:       149000,
		StartLocation: 10,
		EndLocation:   10,
	})
	require.NoError(t, err)

	first := haul(t, 1, 10, 20, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), 4, 100)
	followOn := haul(t, 2, 20, 20, time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC), 48, 10000)
	return store, []*schedule.Route{first, followOn}
}

func chainParams() assignment.Params {
	p := defaultParams()
	p.UseChain = true
	p.ChainDepth = 3
	p.ChainWeight = 200
	p.LookAheadDays = 7
	p.MaxLookaheadRoutes = 50
	return p
}

func TestEngine_ChainLookaheadPrefersBetterPositionedVehicle(t *testing.T) {
	// Arrange
	store, routes := chainFixture(t)
	graph := engineGraph(t, edge(t, 1, 20, 10, 300, 3.5))
	engine := assignment.NewEngine(store, graph, chainParams())

	// Act
	res, err := engine.Run(context.Background(), routes)

	// Assert: v2's immediate 1825 PLN buys a cheap follow-on (link score
	// 1000/100 = 10); v1's free start would put the 10 000 km route deep
	// into overage.
	require.NoError(t, err)
	require.Len(t, res.Assignments, 2)
	first := res.Assignments[0]
	assert.Equal(t, int64(2), first.VehicleID)
	assert.InDelta(t, 10.0, first.ChainScore, 1e-9)
	assert.Equal(t, 1825.0, first.CostPLN, "the record keeps the immediate score, not the combined one")
	assert.Equal(t, int64(2), res.Assignments[1].VehicleID)
}

func TestEngine_SameFixtureWithoutChainPicksCheapestNow(t *testing.T) {
	// Arrange
	store, routes := chainFixture(t)
	graph := engineGraph(t, edge(t, 1, 20, 10, 300, 3.5))
	engine := assignment.NewEngine(store, graph, defaultParams())

	// Act
	res, err := engine.Run(context.Background(), routes)

	// Assert
	require.NoError(t, err)
	require.Len(t, res.Assignments, 2)
	assert.Equal(t, int64(1), res.Assignments[0].VehicleID)
	assert.Zero(t, res.Assignments[0].ChainScore)
}

func TestEngine_ChainIgnoresRoutesPastTheWindow(t *testing.T) {
	// Arrange: the follow-on starts nine days after the first route ends,
	// outside the 7-day look-ahead, so the chain bonus vanishes and the
	// cheap-now vehicle wins again.
	store, routes := chainFixture(t)
	late := haul(t, 2, 20, 20, time.Date(2024, 3, 10, 13, 0, 0, 0, time.UTC), 48, 10000)
	routes[1] = late
	graph := engineGraph(t, edge(t, 1, 20, 10, 300, 3.5))
	engine := assignment.NewEngine(store, graph, chainParams())

	// Act
	res, err := engine.Run(context.Background(), routes)

	// Assert
	require.NoError(t, err)
	require.NotEmpty(t, res.Assignments)
	first := res.Assignments[0]
	assert.Equal(t, int64(1), first.VehicleID)
	assert.Zero(t, first.ChainScore)
}
