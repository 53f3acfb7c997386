package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lspgroup/fleetopt-go/internal/adapters/persistence"
	"github.com/lspgroup/fleetopt-go/internal/application/common"
	"github.com/lspgroup/fleetopt-go/internal/domain/fleet"
	"github.com/lspgroup/fleetopt-go/internal/domain/network"
	"github.com/lspgroup/fleetopt-go/internal/domain/schedule"
	"github.com/lspgroup/fleetopt-go/test/helpers"
)

func testDataset(t *testing.T) *common.Dataset {
	t.Helper()

	warsaw, err := network.NewLocation(10, "Warszawa", 52.23, 21.01, true)
	require.NoError(t, err)
	krakow, err := network.NewLocation(20, "Krakow", 50.06, 19.94, false)
	require.NoError(t, err)

	out, err := network.NewEdge(1, 10, 20, 295, 3.5)
	require.NoError(t, err)
	back, err := network.NewEdge(2, 20, 10, 295, 3.5)
	require.NoError(t, err)

	leaseStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	located, err := fleet.NewVehicle(1, "WGM 10001", "DAF", 110000, 0, 150000,
		leaseStart, leaseStart.AddDate(4, 0, 0), 42000, 10)
	require.NoError(t, err)
	unlocated, err := fleet.NewVehicle(2, "WGM 10002", "Volvo", 110000, 0, 150000,
		leaseStart, leaseStart.AddDate(4, 0, 0), 0, 0)
	require.NoError(t, err)

	start := time.Date(2024, 1, 6, 8, 0, 0, 0, time.UTC)
	mid := start.Add(3*time.Hour + 30*time.Minute)
	end := start.Add(7 * time.Hour)
	route, err := schedule.NewRoute(7, start, end, 590, []schedule.Segment{
		// Out of order on purpose; loading must come back sorted by seq.
		{ID: 72, RouteID: 7, Seq: 2, StartLocID: 20, EndLocID: 10, StartTime: mid, EndTime: end, RelationID: 2},
		{ID: 71, RouteID: 7, Seq: 1, StartLocID: 10, EndLocID: 20, StartTime: start, EndTime: mid, RelationID: 1},
	})
	require.NoError(t, err)

	return &common.Dataset{
		Locations: []*network.Location{warsaw, krakow},
		Edges:     []*network.Edge{out, back},
		Vehicles:  []*fleet.Vehicle{located, unlocated},
		Routes:    []*schedule.Route{route},
	}
}

func TestDatasetRepository_SaveAndLoadRoundTrip(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormDatasetRepository(db)
	ds := testDataset(t)

	// Act - Save
	id, err := repo.Save(context.Background(), ds)

	// Assert
	require.NoError(t, err)
	assert.Positive(t, id)

	// Act - Load
	loaded, err := repo.Load(context.Background(), id)

	// Assert
	require.NoError(t, err)
	require.Len(t, loaded.Locations, 2)
	require.Len(t, loaded.Edges, 2)
	require.Len(t, loaded.Vehicles, 2)
	require.Len(t, loaded.Routes, 1)

	assert.Equal(t, "Warszawa", loaded.Locations[0].Name)
	assert.True(t, loaded.Locations[0].IsHub)
	assert.False(t, loaded.Locations[1].IsHub)

	assert.Equal(t, int64(10), loaded.Edges[0].FromID)
	assert.Equal(t, int64(20), loaded.Edges[0].ToID)
	assert.InDelta(t, 295.0, loaded.Edges[0].DistanceKm, 1e-9)
	assert.InDelta(t, 3.5, loaded.Edges[0].TravelHours, 1e-9)

	assert.Equal(t, "WGM 10001", loaded.Vehicles[0].RegistrationNumber)
	assert.Equal(t, int64(10), loaded.Vehicles[0].CurrentLocationID)
	assert.True(t, loaded.Vehicles[0].HasKnownLocation())
	assert.Equal(t, 42000, loaded.Vehicles[0].CurrentOdometerKm)
	assert.WithinDuration(t, ds.Vehicles[0].LeasingStartDate, loaded.Vehicles[0].LeasingStartDate, time.Second)
	assert.False(t, loaded.Vehicles[1].HasKnownLocation())

	route := loaded.Routes[0]
	assert.Equal(t, int64(7), route.ID)
	assert.InDelta(t, 590.0, route.DistanceKm, 1e-9)
	require.Len(t, route.Segments, 2)
	assert.Equal(t, 1, route.Segments[0].Seq)
	assert.Equal(t, 2, route.Segments[1].Seq)
	assert.Equal(t, int64(10), route.StartLocationID())
	assert.True(t, route.IsLoop())
	assert.WithinDuration(t, ds.Routes[0].StartTime, route.StartTime, time.Second)
}

func TestDatasetRepository_SaveTwiceKeepsBothDatasets(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormDatasetRepository(db)

	// Act
	first, err := repo.Save(context.Background(), testDataset(t))
	require.NoError(t, err)

	second := testDataset(t)
	extra, err := network.NewLocation(30, "Gdansk", 54.35, 18.65, false)
	require.NoError(t, err)
	second.Locations = append(second.Locations, extra)
	secondID, err := repo.Save(context.Background(), second)
	require.NoError(t, err)

	// Assert
	assert.Greater(t, secondID, first)

	older, err := repo.Load(context.Background(), first)
	require.NoError(t, err)
	assert.Len(t, older.Locations, 2)

	latest, err := repo.LoadLatest(context.Background())
	require.NoError(t, err)
	assert.Len(t, latest.Locations, 3)
}

func TestDatasetRepository_LoadMissingID(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormDatasetRepository(db)

	// Act
	_, err := repo.Load(context.Background(), 999)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestDatasetRepository_LoadLatestWhenEmpty(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormDatasetRepository(db)

	// Act
	_, err := repo.LoadLatest(context.Background())

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestDatasetRepository_CountsSpanAllDatasets(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormDatasetRepository(db)

	_, err := repo.Save(context.Background(), testDataset(t))
	require.NoError(t, err)
	_, err = repo.Save(context.Background(), testDataset(t))
	require.NoError(t, err)

	// Act
	counts, err := repo.Counts(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 4, counts.Locations)
	assert.Equal(t, 4, counts.Edges)
	assert.Equal(t, 4, counts.Vehicles)
	assert.Equal(t, 2, counts.Routes)
	assert.Equal(t, 4, counts.Segments)
}
