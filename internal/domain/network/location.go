package network

import (
	"github.com/lspgroup/fleetopt-go/internal/domain/shared"
)

// Location is a depot, hub or customer site a vehicle can be stationed at.
type Location struct {
	ID    int64
	Name  string
	Lat   float64
	Lon   float64
	IsHub bool
}

// NewLocation creates a validated Location.
func NewLocation(id int64, name string, lat, lon float64, isHub bool) (*Location, error) {
	if id <= 0 {
		return nil, shared.NewValidationError("id", "must be positive")
	}
	if name == "" {
		return nil, shared.NewValidationError("name", "cannot be empty")
	}
	if lat < -90 || lat > 90 {
		return nil, shared.NewValidationError("lat", "must be between -90 and 90")
	}
	if lon < -180 || lon > 180 {
		return nil, shared.NewValidationError("long", "must be between -180 and 180")
	}
	return &Location{
		ID:    id,
		Name:  name,
		Lat:   lat,
		Lon:   lon,
		IsHub: isHub,
	}, nil
}
