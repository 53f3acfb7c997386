package planning_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lspgroup/fleetopt-go/internal/domain/network"
	"github.com/lspgroup/fleetopt-go/internal/domain/planning"
)

func TestCheck_FeasibleAtRouteStart(t *testing.T) {
	g := testGraph(t)
	route := testRoute(t, 100, 1, 2, monday, 5, 420)
	snap := testSnapshot(1, monday.Add(-time.Hour))

	ok, reason := planning.Check(snap, route, testPolicy(), g)

	assert.True(t, ok)
	assert.Empty(t, string(reason))
}

func TestCheck_ArrivalExactlyAtStartIsFeasible(t *testing.T) {
	edge, err := network.NewEdge(7, 2, 1, 300, 3.5)
	require.NoError(t, err)
	g := testGraph(t, edge)
	route := testRoute(t, 100, 1, 2, monday, 5, 420)

	// Available exactly travel-time before departure.
	snap := testSnapshot(2, monday.Add(-3*time.Hour-30*time.Minute))

	ok, reason := planning.Check(snap, route, testPolicy(), g)

	assert.True(t, ok, "boundary arrival must be feasible, got %s", reason)
}

func TestCheck_LateArrivalIsTime(t *testing.T) {
	edge, err := network.NewEdge(7, 2, 1, 300, 3.5)
	require.NoError(t, err)
	g := testGraph(t, edge)
	route := testRoute(t, 100, 1, 2, monday, 5, 420)

	// One minute short of the travel time.
	snap := testSnapshot(2, monday.Add(-3*time.Hour-29*time.Minute))

	ok, reason := planning.Check(snap, route, testPolicy(), g)

	assert.False(t, ok)
	assert.Equal(t, planning.ReasonTime, reason)
}

func TestCheck_ServiceDowntimeDelaysAvailability(t *testing.T) {
	g := testGraph(t)
	route := testRoute(t, 100, 1, 2, monday, 5, 420)

	// Free 24h before departure, but 48h of service downtime is owed.
	snap := testSnapshot(1, monday.Add(-24*time.Hour))
	snap.KmSinceService = 111500

	ok, reason := planning.Check(snap, route, testPolicy(), g)
	assert.False(t, ok)
	assert.Equal(t, planning.ReasonTime, reason)

	// With 49h of slack the same vehicle makes it.
	snap.AvailableFrom = monday.Add(-49 * time.Hour)
	ok, _ = planning.Check(snap, route, testPolicy(), g)
	assert.True(t, ok)
}

func TestCheck_MissingEdgeIsNoPath(t *testing.T) {
	g := testGraph(t)
	route := testRoute(t, 100, 1, 2, monday, 5, 420)

	// Stranded and late: the path check fires before the time check.
	snap := testSnapshot(3, monday.Add(time.Hour))

	ok, reason := planning.Check(snap, route, testPolicy(), g)

	assert.False(t, ok)
	assert.Equal(t, planning.ReasonNoPath, reason)
}

func TestCheck_LifetimeCapIsHard(t *testing.T) {
	g := testGraph(t)
	route := testRoute(t, 100, 1, 2, monday, 5, 420)

	snap := testSnapshot(1, monday.Add(-time.Hour))
	snap.ContractLimitKm = 250000
	snap.TotalLifetimeKm = 249700

	ok, reason := planning.Check(snap, route, testPolicy(), g)
	assert.False(t, ok)
	assert.Equal(t, planning.ReasonLifetime, reason)

	// Landing exactly on the cap stays feasible.
	snap.TotalLifetimeKm = 249580
	ok, _ = planning.Check(snap, route, testPolicy(), g)
	assert.True(t, ok)
}

func TestCheck_SwapPolicyBlocksSecondRelocation(t *testing.T) {
	edge, err := network.NewEdge(7, 2, 1, 300, 3.5)
	require.NoError(t, err)
	g := testGraph(t, edge)
	route := testRoute(t, 100, 1, 2, monday, 5, 420)

	snap := testSnapshot(2, monday.Add(-24*time.Hour))
	snap.Relocations = []time.Time{monday.AddDate(0, 0, -30)}

	ok, reason := planning.Check(snap, route, testPolicy(), g)
	assert.False(t, ok)
	assert.Equal(t, planning.ReasonSwap, reason)
}

func TestCheck_RelocationOutsideWindowDoesNotCount(t *testing.T) {
	edge, err := network.NewEdge(7, 2, 1, 300, 3.5)
	require.NoError(t, err)
	g := testGraph(t, edge)
	route := testRoute(t, 100, 1, 2, monday, 5, 420)

	snap := testSnapshot(2, monday.Add(-24*time.Hour))
	snap.Relocations = []time.Time{monday.AddDate(0, 0, -91)}

	ok, _ := planning.Check(snap, route, testPolicy(), g)
	assert.True(t, ok)
}

func TestCheck_SwapPolicyIgnoresVehiclesAlreadyInPlace(t *testing.T) {
	g := testGraph(t)
	route := testRoute(t, 100, 1, 2, monday, 5, 420)

	// Window already full, but no relocation is needed.
	snap := testSnapshot(1, monday.Add(-time.Hour))
	snap.Relocations = []time.Time{monday.AddDate(0, 0, -10), monday.AddDate(0, 0, -5)}

	ok, _ := planning.Check(snap, route, testPolicy(), g)
	assert.True(t, ok)
}
