package network

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
)

// EdgeCache is a bounded LRU in front of a Graph's directed lookups. Misses
// are cached too, so pairs with no edge are answered without re-probing the
// graph. The cache is safe for concurrent use; hit and miss counters are
// tracked for run diagnostics.
type EdgeCache struct {
	graph  *Graph
	lru    *lru.Cache
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewEdgeCache wraps the graph with an LRU of the given capacity.
func NewEdgeCache(g *Graph, size int) (*EdgeCache, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("creating edge cache: %w", err)
	}
	return &EdgeCache{graph: g, lru: cache}, nil
}

// Edge returns the directed edge from one location to another, if any,
// consulting the LRU before the graph. A nil cached entry means the pair was
// already answered with "no edge".
func (c *EdgeCache) Edge(from, to int64) (*Edge, bool) {
	key := edgeKey{from: from, to: to}
	if cached, ok := c.lru.Get(key); ok {
		c.hits.Add(1)
		edge, _ := cached.(*Edge)
		return edge, edge != nil
	}
	c.misses.Add(1)

	edge, ok := c.graph.Edge(from, to)
	if !ok {
		c.lru.Add(key, (*Edge)(nil))
		return nil, false
	}
	c.lru.Add(key, edge)
	return edge, true
}

// CacheStats summarizes edge-cache effectiveness.
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// HitRate returns the fraction of lookups answered from the cache.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

func (s CacheStats) String() string {
	return fmt.Sprintf("cache: %d entries, %.1f%% hit rate (%d hits, %d misses)",
		s.Entries, s.HitRate()*100, s.Hits, s.Misses)
}

// Stats returns a point-in-time snapshot of the cache counters.
func (c *EdgeCache) Stats() CacheStats {
	return CacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.lru.Len(),
	}
}
