package network_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lspgroup/fleetopt-go/internal/domain/network"
)

func loc(t *testing.T, id int64, name string, hub bool) *network.Location {
	t.Helper()
	l, err := network.NewLocation(id, name, 52.0, 21.0, hub)
	require.NoError(t, err)
	return l
}

func edge(t *testing.T, id, from, to int64, km, hours float64) *network.Edge {
	t.Helper()
	e, err := network.NewEdge(id, from, to, km, hours)
	require.NoError(t, err)
	return e
}

func TestGraph_LookupIsStrictlyDirected(t *testing.T) {
	g, err := network.NewGraph(
		[]*network.Location{loc(t, 1, "Warsaw", true), loc(t, 2, "Krakow", false)},
		[]*network.Edge{edge(t, 7, 1, 2, 295, 3.5)},
	)
	require.NoError(t, err)

	found, ok := g.Edge(1, 2)
	require.True(t, ok)
	assert.Equal(t, 295.0, found.DistanceKm)

	_, ok = g.Edge(2, 1)
	assert.False(t, ok, "no reverse fallback")
}

func TestNewGraph_RejectsDuplicateLocationIDs(t *testing.T) {
	_, err := network.NewGraph(
		[]*network.Location{loc(t, 1, "Warsaw", true), loc(t, 1, "Warsaw again", false)},
		nil,
	)
	assert.Error(t, err)
}

func TestNewGraph_RejectsEdgesToUnknownLocations(t *testing.T) {
	_, err := network.NewGraph(
		[]*network.Location{loc(t, 1, "Warsaw", true)},
		[]*network.Edge{edge(t, 7, 1, 99, 100, 1)},
	)
	assert.Error(t, err)
}

func TestNewGraph_LastEdgeWinsOnDuplicatePairs(t *testing.T) {
	g, err := network.NewGraph(
		[]*network.Location{loc(t, 1, "Warsaw", true), loc(t, 2, "Krakow", false)},
		[]*network.Edge{
			edge(t, 7, 1, 2, 295, 3.5),
			edge(t, 8, 1, 2, 300, 4.0),
		},
	)
	require.NoError(t, err)

	found, ok := g.Edge(1, 2)
	require.True(t, ok)
	assert.Equal(t, int64(8), found.ID)
	assert.Equal(t, 1, g.EdgeCount())
}

func TestGraph_FallbackPrefersHubs(t *testing.T) {
	g, err := network.NewGraph(
		[]*network.Location{loc(t, 3, "Lodz", false), loc(t, 2, "Krakow", true), loc(t, 5, "Gdansk", true)},
		nil,
	)
	require.NoError(t, err)

	id, ok := g.FallbackLocationID()
	require.True(t, ok)
	assert.Equal(t, int64(2), id)
}

func TestGraph_FallbackWithoutHubs(t *testing.T) {
	g, err := network.NewGraph(
		[]*network.Location{loc(t, 3, "Lodz", false), loc(t, 7, "Poznan", false)},
		nil,
	)
	require.NoError(t, err)

	id, ok := g.FallbackLocationID()
	require.True(t, ok)
	assert.Equal(t, int64(3), id)
}
