package common

import (
	"context"
	"errors"

	"github.com/lspgroup/fleetopt-go/internal/domain/fleet"
	"github.com/lspgroup/fleetopt-go/internal/domain/network"
	"github.com/lspgroup/fleetopt-go/internal/domain/schedule"
)

// ErrNotFound reports a lookup for something that is not stored.
// Repositories return it wrapped with context; surfaces translate it with
// errors.Is (the HTTP API maps it to 404).
var ErrNotFound = errors.New("record not found")

// Dataset bundles one complete optimization input: the location network,
// the fleet and the route plan. The CSV loader produces it, the engine
// consumes it, repositories persist it.
type Dataset struct {
	Locations []*network.Location
	Edges     []*network.Edge
	Vehicles  []*fleet.Vehicle
	Routes    []*schedule.Route
}

// Counts summarizes a dataset for logs and the /db/info endpoint.
func (d *Dataset) Counts() DatasetCounts {
	segments := 0
	for _, r := range d.Routes {
		segments += len(r.Segments)
	}
	return DatasetCounts{
		Locations: len(d.Locations),
		Edges:     len(d.Edges),
		Vehicles:  len(d.Vehicles),
		Routes:    len(d.Routes),
		Segments:  segments,
	}
}

// DatasetCounts holds per-entity row counts.
type DatasetCounts struct {
	Locations int `json:"locations"`
	Edges     int `json:"edges"`
	Vehicles  int `json:"vehicles"`
	Routes    int `json:"routes"`
	Segments  int `json:"segments"`
}

// DatasetRepository persists optimization inputs between upload and run.
type DatasetRepository interface {
	// Save stores a complete dataset under a new id, replacing nothing.
	Save(ctx context.Context, ds *Dataset) (int64, error)

	// Load retrieves a dataset by id.
	Load(ctx context.Context, id int64) (*Dataset, error)

	// LoadLatest retrieves the most recently saved dataset.
	LoadLatest(ctx context.Context) (*Dataset, error)

	// Counts reports row counts across the stored tables.
	Counts(ctx context.Context) (DatasetCounts, error)
}
