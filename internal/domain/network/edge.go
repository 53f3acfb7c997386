package network

import (
	"time"

	"github.com/lspgroup/fleetopt-go/internal/domain/shared"
)

// Edge is a directed relation between two locations carrying the empty-drive
// distance and travel time. Relations are not symmetric: an edge from A to B
// says nothing about B to A.
type Edge struct {
	ID          int64
	FromID      int64
	ToID        int64
	DistanceKm  float64
	TravelHours float64
}

// NewEdge creates a validated Edge.
func NewEdge(id, fromID, toID int64, distanceKm, travelHours float64) (*Edge, error) {
	if fromID <= 0 {
		return nil, shared.NewValidationError("id_loc_1", "must be positive")
	}
	if toID <= 0 {
		return nil, shared.NewValidationError("id_loc_2", "must be positive")
	}
	if distanceKm < 0 {
		return nil, shared.NewValidationError("dist", "cannot be negative")
	}
	if travelHours < 0 {
		return nil, shared.NewValidationError("time", "cannot be negative")
	}
	return &Edge{
		ID:          id,
		FromID:      fromID,
		ToID:        toID,
		DistanceKm:  distanceKm,
		TravelHours: travelHours,
	}, nil
}

// TravelTime returns the edge traversal time as a duration.
func (e *Edge) TravelTime() time.Duration {
	return time.Duration(e.TravelHours * float64(time.Hour))
}
