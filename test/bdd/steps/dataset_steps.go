package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"

	"github.com/lspgroup/fleetopt-go/internal/adapters/persistence"
	"github.com/lspgroup/fleetopt-go/internal/application/common"
	"github.com/lspgroup/fleetopt-go/internal/domain/fleet"
	"github.com/lspgroup/fleetopt-go/internal/domain/network"
	"github.com/lspgroup/fleetopt-go/internal/domain/schedule"
	"github.com/lspgroup/fleetopt-go/test/helpers"
)

type datasetContext struct {
	repo   common.DatasetRepository
	lastID int64
}

func (dc *datasetContext) reset() {
	dc.repo = persistence.NewGormDatasetRepository(helpers.SharedTestDB)
	dc.lastID = 0
}

func (dc *datasetContext) aCleanDatabase() error {
	return helpers.TruncateAllTables()
}

// buildDataset fabricates a consistent dataset of the requested shape: the
// locations form a chain of directed relations, every vehicle parks at the
// first location, and routes loop on it.
func buildDataset(locations, vehicles, routes int) (*common.Dataset, error) {
	ds := &common.Dataset{}

	for i := 1; i <= locations; i++ {
		loc, err := network.NewLocation(int64(i), fmt.Sprintf("Location %d", i), 52.0, 19.0, i == 1)
		if err != nil {
			return nil, err
		}
		ds.Locations = append(ds.Locations, loc)
	}
	for i := 1; i < locations; i++ {
		edge, err := network.NewEdge(int64(i), int64(i), int64(i+1), 120, 1.6)
		if err != nil {
			return nil, err
		}
		ds.Edges = append(ds.Edges, edge)
	}

	leaseStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	leaseEnd := leaseStart.AddDate(0, 0, 365)
	for i := 1; i <= vehicles; i++ {
		v, err := fleet.NewVehicle(int64(i), fmt.Sprintf("WGM %05d", i), "Volvo",
			30000, 0, 150000, leaseStart, leaseEnd, 10000*i, 1)
		if err != nil {
			return nil, err
		}
		ds.Vehicles = append(ds.Vehicles, v)
	}

	base := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)
	for i := 1; i <= routes; i++ {
		start := base.AddDate(0, 0, i)
		end := start.Add(6 * time.Hour)
		r, err := schedule.NewRoute(int64(i), start, end, 250, []schedule.Segment{{
			ID:         int64(i),
			RouteID:    int64(i),
			Seq:        1,
			StartLocID: 1,
			EndLocID:   1,
			StartTime:  start,
			EndTime:    end,
		}})
		if err != nil {
			return nil, err
		}
		ds.Routes = append(ds.Routes, r)
	}

	return ds, nil
}

func (dc *datasetContext) iStoreADataset(locations, vehicles, routes int) error {
	ds, err := buildDataset(locations, vehicles, routes)
	if err != nil {
		return err
	}
	id, err := dc.repo.Save(context.Background(), ds)
	if err != nil {
		return fmt.Errorf("saving dataset: %w", err)
	}
	dc.lastID = id
	return nil
}

func (dc *datasetContext) loadingItBackShouldYield(locations, vehicles, routes int) error {
	ds, err := dc.repo.Load(context.Background(), dc.lastID)
	if err != nil {
		return fmt.Errorf("loading dataset %d: %w", dc.lastID, err)
	}
	if len(ds.Locations) != locations {
		return fmt.Errorf("loaded %d locations, want %d", len(ds.Locations), locations)
	}
	if len(ds.Vehicles) != vehicles {
		return fmt.Errorf("loaded %d vehicles, want %d", len(ds.Vehicles), vehicles)
	}
	if len(ds.Routes) != routes {
		return fmt.Errorf("loaded %d routes, want %d", len(ds.Routes), routes)
	}
	return nil
}

func (dc *datasetContext) loadingLatestShouldYieldVehicles(vehicles int) error {
	ds, err := dc.repo.LoadLatest(context.Background())
	if err != nil {
		return fmt.Errorf("loading latest dataset: %w", err)
	}
	if len(ds.Vehicles) != vehicles {
		return fmt.Errorf("latest dataset has %d vehicles, want %d", len(ds.Vehicles), vehicles)
	}
	return nil
}

func (dc *datasetContext) databaseShouldReportVehicles(vehicles int) error {
	counts, err := dc.repo.Counts(context.Background())
	if err != nil {
		return fmt.Errorf("counting rows: %w", err)
	}
	if counts.Vehicles != vehicles {
		return fmt.Errorf("database reports %d vehicles, want %d", counts.Vehicles, vehicles)
	}
	return nil
}

// InitializeDatasetScenario registers the dataset persistence steps.
func InitializeDatasetScenario(sc *godog.ScenarioContext) {
	dc := &datasetContext{}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		dc.reset()
		return ctx, nil
	})

	sc.Step(`^a clean database$`, dc.aCleanDatabase)
	sc.Step(`^I store a dataset with (\d+) locations, (\d+) vehicles and (\d+) routes$`, dc.iStoreADataset)
	sc.Step(`^loading it back should yield (\d+) locations, (\d+) vehicles and (\d+) routes$`, dc.loadingItBackShouldYield)
	sc.Step(`^loading the latest dataset should yield (\d+) vehicles$`, dc.loadingLatestShouldYieldVehicles)
	sc.Step(`^the database should report (\d+) vehicles in total$`, dc.databaseShouldReportVehicles)
}
