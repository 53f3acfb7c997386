package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/lspgroup/fleetopt-go/internal/application/common"
	"github.com/lspgroup/fleetopt-go/internal/domain/fleet"
	"github.com/lspgroup/fleetopt-go/internal/domain/network"
	"github.com/lspgroup/fleetopt-go/internal/domain/schedule"
)

// ErrNotFound marks lookups that matched nothing. Callers translate it to
// their own surface (HTTP 404, CLI message) with errors.Is. It aliases the
// port-level sentinel so consumers never need this package for the check.
var ErrNotFound = common.ErrNotFound

// GormDatasetRepository implements common.DatasetRepository using GORM
type GormDatasetRepository struct {
	db *gorm.DB
}

// NewGormDatasetRepository creates a new GORM dataset repository
func NewGormDatasetRepository(db *gorm.DB) *GormDatasetRepository {
	return &GormDatasetRepository{db: db}
}

// Save stores a complete dataset under a fresh id. All entity rows land in
// one transaction; a failing insert rolls the whole upload back.
func (r *GormDatasetRepository) Save(ctx context.Context, ds *common.Dataset) (int64, error) {
	dataset := &DatasetModel{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(dataset).Error; err != nil {
			return fmt.Errorf("failed to create dataset row: %w", err)
		}

		if len(ds.Locations) > 0 {
			models := make([]LocationModel, len(ds.Locations))
			for i, loc := range ds.Locations {
				models[i] = locationToModel(dataset.ID, loc)
			}
			if err := tx.Create(&models).Error; err != nil {
				return fmt.Errorf("failed to save locations: %w", err)
			}
		}

		if len(ds.Edges) > 0 {
			models := make([]EdgeModel, len(ds.Edges))
			for i, e := range ds.Edges {
				models[i] = edgeToModel(dataset.ID, e)
			}
			if err := tx.Create(&models).Error; err != nil {
				return fmt.Errorf("failed to save location relations: %w", err)
			}
		}

		if len(ds.Vehicles) > 0 {
			models := make([]VehicleModel, len(ds.Vehicles))
			for i, v := range ds.Vehicles {
				models[i] = vehicleToModel(dataset.ID, v)
			}
			if err := tx.Create(&models).Error; err != nil {
				return fmt.Errorf("failed to save vehicles: %w", err)
			}
		}

		if len(ds.Routes) > 0 {
			routes := make([]RouteModel, 0, len(ds.Routes))
			var segments []SegmentModel
			for _, route := range ds.Routes {
				routes = append(routes, routeToModel(dataset.ID, route))
				for _, s := range route.Segments {
					segments = append(segments, segmentToModel(dataset.ID, s))
				}
			}
			if err := tx.CreateInBatches(&routes, 500).Error; err != nil {
				return fmt.Errorf("failed to save routes: %w", err)
			}
			if err := tx.CreateInBatches(&segments, 500).Error; err != nil {
				return fmt.Errorf("failed to save segments: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return dataset.ID, nil
}

// Load retrieves a dataset by id and rebuilds the domain entities.
func (r *GormDatasetRepository) Load(ctx context.Context, id int64) (*common.Dataset, error) {
	var dataset DatasetModel
	result := r.db.WithContext(ctx).First(&dataset, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("dataset %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find dataset %d: %w", id, result.Error)
	}
	return r.loadEntities(ctx, id)
}

// LoadLatest retrieves the most recently saved dataset.
func (r *GormDatasetRepository) LoadLatest(ctx context.Context) (*common.Dataset, error) {
	var dataset DatasetModel
	result := r.db.WithContext(ctx).Order("id DESC").First(&dataset)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no datasets stored: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find latest dataset: %w", result.Error)
	}
	return r.loadEntities(ctx, dataset.ID)
}

// Counts reports total row counts across the entity tables.
func (r *GormDatasetRepository) Counts(ctx context.Context) (common.DatasetCounts, error) {
	var counts common.DatasetCounts
	tables := []struct {
		model interface{}
		dest  *int
	}{
		{&LocationModel{}, &counts.Locations},
		{&EdgeModel{}, &counts.Edges},
		{&VehicleModel{}, &counts.Vehicles},
		{&RouteModel{}, &counts.Routes},
		{&SegmentModel{}, &counts.Segments},
	}
	for _, t := range tables {
		var n int64
		if err := r.db.WithContext(ctx).Model(t.model).Count(&n).Error; err != nil {
			return common.DatasetCounts{}, fmt.Errorf("failed to count rows: %w", err)
		}
		*t.dest = int(n)
	}
	return counts, nil
}

func (r *GormDatasetRepository) loadEntities(ctx context.Context, id int64) (*common.Dataset, error) {
	db := r.db.WithContext(ctx)

	var locationModels []LocationModel
	if err := db.Where("dataset_id = ?", id).Order("id").Find(&locationModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load locations: %w", err)
	}
	locations := make([]*network.Location, 0, len(locationModels))
	for _, m := range locationModels {
		loc, err := modelToLocation(&m)
		if err != nil {
			return nil, fmt.Errorf("failed to convert location %d: %w", m.ID, err)
		}
		locations = append(locations, loc)
	}

	var edgeModels []EdgeModel
	if err := db.Where("dataset_id = ?", id).Order("id").Find(&edgeModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load location relations: %w", err)
	}
	edges := make([]*network.Edge, 0, len(edgeModels))
	for _, m := range edgeModels {
		edge, err := modelToEdge(&m)
		if err != nil {
			return nil, fmt.Errorf("failed to convert relation %d: %w", m.ID, err)
		}
		edges = append(edges, edge)
	}

	var vehicleModels []VehicleModel
	if err := db.Where("dataset_id = ?", id).Order("id").Find(&vehicleModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load vehicles: %w", err)
	}
	vehicles := make([]*fleet.Vehicle, 0, len(vehicleModels))
	for _, m := range vehicleModels {
		v, err := modelToVehicle(&m)
		if err != nil {
			return nil, fmt.Errorf("failed to convert vehicle %d: %w", m.ID, err)
		}
		vehicles = append(vehicles, v)
	}

	routes, err := r.loadRoutes(ctx, id)
	if err != nil {
		return nil, err
	}

	return &common.Dataset{
		Locations: locations,
		Edges:     edges,
		Vehicles:  vehicles,
		Routes:    routes,
	}, nil
}

func (r *GormDatasetRepository) loadRoutes(ctx context.Context, id int64) ([]*schedule.Route, error) {
	db := r.db.WithContext(ctx)

	var segmentModels []SegmentModel
	if err := db.Where("dataset_id = ?", id).Order("route_id, seq").Find(&segmentModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load segments: %w", err)
	}
	grouped := make(map[int64][]schedule.Segment)
	for _, m := range segmentModels {
		grouped[m.RouteID] = append(grouped[m.RouteID], modelToSegment(&m))
	}

	var routeModels []RouteModel
	if err := db.Where("dataset_id = ?", id).Order("id").Find(&routeModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load routes: %w", err)
	}
	routes := make([]*schedule.Route, 0, len(routeModels))
	for _, m := range routeModels {
		route, err := schedule.NewRoute(m.ID, m.StartTime, m.EndTime, m.DistanceKm, grouped[m.ID])
		if err != nil {
			return nil, fmt.Errorf("failed to convert route %d: %w", m.ID, err)
		}
		routes = append(routes, route)
	}
	schedule.SortChronological(routes)
	return routes, nil
}
