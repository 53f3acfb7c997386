package network

import (
	"sort"

	"github.com/lspgroup/fleetopt-go/internal/domain/shared"
)

type edgeKey struct {
	from int64
	to   int64
}

// Graph is the directed relocation network built from locations and
// relations. It is immutable after construction and safe to share across
// goroutines. Lookups are exact: there is no reverse-edge fallback and no
// multi-hop search.
type Graph struct {
	locations map[int64]*Location
	edges     map[edgeKey]*Edge
	sortedIDs []int64
	hubIDs    []int64
	edgeCount int
}

// NewGraph indexes the given locations and edges. Duplicate location ids are
// rejected; edges referencing unknown locations are rejected. When the same
// (from, to) pair appears twice the later edge wins, matching the source
// data's last-row-wins convention.
func NewGraph(locations []*Location, edges []*Edge) (*Graph, error) {
	g := &Graph{
		locations: make(map[int64]*Location, len(locations)),
		edges:     make(map[edgeKey]*Edge, len(edges)),
	}

	for _, loc := range locations {
		if _, dup := g.locations[loc.ID]; dup {
			return nil, shared.NewValidationError("locations", "duplicate location id")
		}
		g.locations[loc.ID] = loc
		g.sortedIDs = append(g.sortedIDs, loc.ID)
		if loc.IsHub {
			g.hubIDs = append(g.hubIDs, loc.ID)
		}
	}
	sort.Slice(g.sortedIDs, func(i, j int) bool { return g.sortedIDs[i] < g.sortedIDs[j] })
	sort.Slice(g.hubIDs, func(i, j int) bool { return g.hubIDs[i] < g.hubIDs[j] })

	for _, e := range edges {
		if _, ok := g.locations[e.FromID]; !ok {
			return nil, shared.NewUnknownLocationError(e.FromID)
		}
		if _, ok := g.locations[e.ToID]; !ok {
			return nil, shared.NewUnknownLocationError(e.ToID)
		}
		key := edgeKey{from: e.FromID, to: e.ToID}
		if _, dup := g.edges[key]; !dup {
			g.edgeCount++
		}
		g.edges[key] = e
	}

	return g, nil
}

// Edge returns the directed edge from one location to another, if any.
func (g *Graph) Edge(from, to int64) (*Edge, bool) {
	e, ok := g.edges[edgeKey{from: from, to: to}]
	return e, ok
}

// Location returns the location with the given id, if known.
func (g *Graph) Location(id int64) (*Location, bool) {
	loc, ok := g.locations[id]
	return loc, ok
}

// HasLocation reports whether the id names a known location.
func (g *Graph) HasLocation(id int64) bool {
	_, ok := g.locations[id]
	return ok
}

// LocationIDs returns all location ids in ascending order.
func (g *Graph) LocationIDs() []int64 {
	ids := make([]int64, len(g.sortedIDs))
	copy(ids, g.sortedIDs)
	return ids
}

// HubIDs returns the ids of hub locations in ascending order.
func (g *Graph) HubIDs() []int64 {
	ids := make([]int64, len(g.hubIDs))
	copy(ids, g.hubIDs)
	return ids
}

// FallbackLocationID returns the first hub, or the first location when the
// network has no hubs. It is the placement target when demand is empty.
func (g *Graph) FallbackLocationID() (int64, bool) {
	if len(g.hubIDs) > 0 {
		return g.hubIDs[0], true
	}
	if len(g.sortedIDs) > 0 {
		return g.sortedIDs[0], true
	}
	return 0, false
}

// LocationCount returns the number of indexed locations.
func (g *Graph) LocationCount() int {
	return len(g.locations)
}

// EdgeCount returns the number of distinct directed pairs.
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}
