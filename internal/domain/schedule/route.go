package schedule

import (
	"sort"
	"time"

	"github.com/lspgroup/fleetopt-go/internal/domain/shared"
)

// Segment is one leg of a route between two locations, ordered by Seq.
type Segment struct {
	ID         int64
	RouteID    int64
	Seq        int
	StartLocID int64
	EndLocID   int64
	StartTime  time.Time
	EndTime    time.Time
	RelationID int64
}

// Route is a dated revenue trip with a fixed departure and arrival. Its
// start and end locations are derived from its segments, so a route without
// segments is invalid.
type Route struct {
	ID         int64
	StartTime  time.Time
	EndTime    time.Time
	DistanceKm float64
	Segments   []Segment
}

// NewRoute creates a validated Route. Segments are sorted by Seq.
func NewRoute(id int64, start, end time.Time, distanceKm float64, segments []Segment) (*Route, error) {
	if id <= 0 {
		return nil, shared.NewValidationError("id", "must be positive")
	}
	if distanceKm <= 0 {
		return nil, shared.NewRouteError(id, "distance must be positive")
	}
	if !end.After(start) {
		return nil, shared.NewRouteError(id, "end must be after start")
	}
	if len(segments) == 0 {
		return nil, shared.NewRouteError(id, "route has no segments")
	}
	sorted := make([]Segment, len(segments))
	copy(sorted, segments)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Seq < sorted[j].Seq })
	return &Route{
		ID:         id,
		StartTime:  start,
		EndTime:    end,
		DistanceKm: distanceKm,
		Segments:   sorted,
	}, nil
}

// StartLocationID returns the location of the first segment.
func (r *Route) StartLocationID() int64 {
	return r.Segments[0].StartLocID
}

// EndLocationID returns the destination of the last segment.
func (r *Route) EndLocationID() int64 {
	return r.Segments[len(r.Segments)-1].EndLocID
}

// IsLoop reports whether the route returns to its start location.
func (r *Route) IsLoop() bool {
	return r.StartLocationID() == r.EndLocationID()
}

// Date returns the route's start time truncated to midnight UTC.
func (r *Route) Date() time.Time {
	y, m, d := r.StartTime.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, r.StartTime.Location())
}

// SortChronological orders routes by start time, breaking ties by ascending
// route id so runs over equal inputs stay byte-identical.
func SortChronological(routes []*Route) {
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].StartTime.Equal(routes[j].StartTime) {
			return routes[i].ID < routes[j].ID
		}
		return routes[i].StartTime.Before(routes[j].StartTime)
	})
}

// FilterWindow returns the routes starting before the horizon. A horizon of
// zero days keeps everything. Routes are assumed already sorted; the earliest
// start anchors the window.
func FilterWindow(routes []*Route, days int) []*Route {
	if days <= 0 || len(routes) == 0 {
		return routes
	}
	horizon := routes[0].StartTime.Add(time.Duration(days) * 24 * time.Hour)
	filtered := make([]*Route, 0, len(routes))
	for _, r := range routes {
		if r.StartTime.Before(horizon) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
