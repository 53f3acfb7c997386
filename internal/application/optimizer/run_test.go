package optimizer_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lspgroup/fleetopt-go/internal/application/assignment"
	"github.com/lspgroup/fleetopt-go/internal/application/common"
	"github.com/lspgroup/fleetopt-go/internal/application/optimizer"
	"github.com/lspgroup/fleetopt-go/internal/application/placement"
	"github.com/lspgroup/fleetopt-go/internal/domain/fleet"
	"github.com/lspgroup/fleetopt-go/internal/domain/network"
	"github.com/lspgroup/fleetopt-go/internal/domain/planning"
	"github.com/lspgroup/fleetopt-go/internal/domain/schedule"
	"github.com/lspgroup/fleetopt-go/internal/domain/shared"
)

var dayOne = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

func testVehicle(t *testing.T, id int64) *fleet.Vehicle {
	t.Helper()
	v, err := fleet.NewVehicle(id, "WGM 3550"+string(rune('A'+id)), "DAF",
		200000, 0, 150000,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		0, 0)
	require.NoError(t, err)
	return v
}

func testRoute(t *testing.T, id, from, to int64, start time.Time, km float64) *schedule.Route {
	t.Helper()
	end := start.Add(4 * time.Hour)
	r, err := schedule.NewRoute(id, start, end, km, []schedule.Segment{
		{ID: id, RouteID: id, Seq: 1, StartLocID: from, EndLocID: to, StartTime: start, EndTime: end},
	})
	require.NoError(t, err)
	return r
}

// testDataset: one vehicle, a local route on day one and a remote route on
// day two that forces one 1825 PLN relocation.
func testDataset(t *testing.T) *common.Dataset {
	t.Helper()
	return &common.Dataset{
		Locations: []*network.Location{
			{ID: 10, Name: "Warsaw", Lat: 52.23, Lon: 21.01, IsHub: true},
			{ID: 20, Name: "Krakow", Lat: 50.06, Lon: 19.94},
		},
		Edges: []*network.Edge{
			{ID: 1, FromID: 10, ToID: 20, DistanceKm: 300, TravelHours: 3.5},
		},
		Vehicles: []*fleet.Vehicle{testVehicle(t, 1)},
		Routes: []*schedule.Route{
			testRoute(t, 1, 10, 10, dayOne, 100),
			testRoute(t, 2, 20, 20, dayOne.Add(24*time.Hour), 150),
		},
	}
}

func testOptions() optimizer.Options {
	return optimizer.Options{
		Placement: placement.Params{Strategy: placement.StrategyProportional, MaxConcentration: 0.3},
		Assignment: assignment.Params{
			Policy: planning.Policy{
				RelocationBaseCostPLN: 1000,
				RelocationPerKmPLN:    1,
				RelocationPerHourPLN:  150,
				OveragePerKmPLN:       0.92,
				ServiceToleranceKm:    1000,
				ServiceDurationHours:  48,
				ServicePenaltyPLN:     500,
				ServiceCostPLN:        2000,
				MaxSwapsPerPeriod:     1,
				SwapPeriodDays:        90,
			},
		},
	}
}

func TestRunner_RunsWholePipeline(t *testing.T) {
	// Arrange
	runner := optimizer.NewRunner()

	// Act
	result, err := runner.Run(context.Background(), testDataset(t), testOptions())

	// Assert
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.RunID, "run-"), "run id %q", result.RunID)
	assert.Equal(t, map[int64]int64{1: 10}, result.Placement, "demand ranks location 10 first")
	require.Len(t, result.Assignments, 2)
	assert.Empty(t, result.Unassigned)

	s := result.Summary
	assert.False(t, s.Cancelled)
	assert.Equal(t, 1, s.FleetSize)
	assert.Equal(t, 2, s.RoutesTotal)
	assert.Equal(t, 2, s.RoutesAssigned)
	assert.Equal(t, 0, s.RoutesUnassigned)
	assert.Equal(t, 1, s.RelocationCount)
	assert.InDelta(t, 1825.0, s.RelocationCostPLN, 1e-9)
	assert.Zero(t, s.ServiceCount)
	assert.Zero(t, s.OverageCostPLN)
	assert.InDelta(t, 1825.0, s.TotalCostPLN, 1e-9)

	require.Len(t, result.FinalStates, 1)
	final := result.FinalStates[0]
	assert.Equal(t, 550, final.OdometerKm, "100 route + 300 deadhead + 150 route")
	assert.Equal(t, 1, final.TotalRelocations)
	assert.Equal(t, 2, final.RoutesCompleted)
}

func TestRunner_TotalsMatchAssignmentAccounting(t *testing.T) {
	// Arrange
	runner := optimizer.NewRunner()

	// Act
	result, err := runner.Run(context.Background(), testDataset(t), testOptions())

	// Assert: the booked total equals the sum of per-route accounting.
	require.NoError(t, err)
	var booked float64
	for _, a := range result.Assignments {
		booked += a.RelocationCostPLN + a.OverageCostPLN + a.ServiceCostPLN
	}
	assert.InDelta(t, booked, result.Summary.TotalCostPLN, 1e-9)
}

func TestRunner_EdgeCacheServesRepeatLookups(t *testing.T) {
	// Arrange
	runner := optimizer.NewRunner()
	opts := testOptions()
	opts.UseEdgeCache = true
	opts.EdgeCacheSize = 128

	// Act
	result, err := runner.Run(context.Background(), testDataset(t), opts)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, result.CacheStats)
	assert.Greater(t, result.CacheStats.Hits, uint64(0))
	assert.Greater(t, result.CacheStats.Misses, uint64(0))
}

func TestRunner_RejectsDanglingReferencesBeforeOptimizing(t *testing.T) {
	// Arrange
	runner := optimizer.NewRunner()
	ds := testDataset(t)
	ds.Routes = append(ds.Routes, testRoute(t, 3, 99, 99, dayOne, 50))

	// Act
	_, err := runner.Run(context.Background(), ds, testOptions())

	// Assert
	var invalid *shared.InputInvalidError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "routes", invalid.File)
}

func TestRunner_CancelledContextReturnsPartialRun(t *testing.T) {
	// Arrange
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := optimizer.NewRunner()

	// Act
	result, err := runner.Run(ctx, testDataset(t), testOptions())

	// Assert
	require.NoError(t, err)
	assert.True(t, result.Summary.Cancelled)
	assert.Empty(t, result.Assignments)
	assert.Equal(t, 2, result.Summary.RoutesTotal)
}

func TestRunner_PublishesProgressThroughReporter(t *testing.T) {
	// Arrange
	runner := optimizer.NewRunner()
	reporter := optimizer.NewProgressReporter(8)
	runner.SetReporter(reporter)
	opts := testOptions()
	opts.Assignment.ProgressInterval = 1

	// Act
	_, err := runner.Run(context.Background(), testDataset(t), opts)
	reporter.Close()

	// Assert
	require.NoError(t, err)
	var beats []assignment.Progress
	for ev := range reporter.Events() {
		beats = append(beats, ev)
	}
	require.Len(t, beats, 2)
	assert.Equal(t, 2, beats[1].RoutesProcessed)
}

func TestProgressReporter_DropsOldestWhenFull(t *testing.T) {
	// Arrange
	reporter := optimizer.NewProgressReporter(2)

	// Act
	reporter.Publish(assignment.Progress{RoutesProcessed: 1})
	reporter.Publish(assignment.Progress{RoutesProcessed: 2})
	reporter.Publish(assignment.Progress{RoutesProcessed: 3})
	reporter.Close()

	// Assert
	var got []int
	for ev := range reporter.Events() {
		got = append(got, ev.RoutesProcessed)
	}
	assert.Equal(t, []int{2, 3}, got)
}

func TestValidateDataset(t *testing.T) {
	base := func() *common.Dataset { return testDataset(t) }

	tests := []struct {
		name    string
		mutate  func(*common.Dataset)
		wantErr string
	}{
		{
			name:   "valid dataset passes",
			mutate: func(ds *common.Dataset) {},
		},
		{
			name:    "no locations",
			mutate:  func(ds *common.Dataset) { ds.Locations = nil },
			wantErr: "no locations",
		},
		{
			name: "duplicate location id",
			mutate: func(ds *common.Dataset) {
				ds.Locations = append(ds.Locations, &network.Location{ID: 10, Name: "Warsaw 2"})
			},
			wantErr: "duplicate location",
		},
		{
			name: "edge to unknown location",
			mutate: func(ds *common.Dataset) {
				ds.Edges = append(ds.Edges, &network.Edge{ID: 9, FromID: 10, ToID: 77})
			},
			wantErr: "unknown location 77",
		},
		{
			name: "vehicle parked at unknown location",
			mutate: func(ds *common.Dataset) {
				v, err := fleet.NewVehicle(5, "WGM 55555", "DAF", 110000, 0, 150000,
					time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
					time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), 0, 66)
				require.NoError(t, err)
				ds.Vehicles = append(ds.Vehicles, v)
			},
			wantErr: "unknown location 66",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := base()
			tt.mutate(ds)
			err := optimizer.ValidateDataset(ds)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var invalid *shared.InputInvalidError
			require.ErrorAs(t, err, &invalid)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

type runRepoStub struct {
	saved []*optimizer.RunResult
}

func (s *runRepoStub) SaveRun(ctx context.Context, r *optimizer.RunResult) error {
	s.saved = append(s.saved, r)
	return nil
}

func (s *runRepoStub) GetSummary(ctx context.Context, runID string) (*optimizer.RunSummary, error) {
	return nil, nil
}

func (s *runRepoStub) ListAssignments(ctx context.Context, runID string, offset, limit int) ([]*assignment.Assignment, error) {
	return nil, nil
}

func TestRunOptimizationHandler_PersistsWhenAsked(t *testing.T) {
	// Arrange
	repo := &runRepoStub{}
	handler := optimizer.NewRunOptimizationHandler(optimizer.NewRunner(), repo)
	mediator := common.NewMediator()
	require.NoError(t, common.RegisterHandler[*optimizer.RunOptimizationCommand](mediator, handler))

	// Act
	response, err := mediator.Send(context.Background(), &optimizer.RunOptimizationCommand{
		Dataset: testDataset(t),
		Options: testOptions(),
		Persist: true,
	})

	// Assert
	require.NoError(t, err)
	resp, ok := response.(*optimizer.RunOptimizationResponse)
	require.True(t, ok)
	require.Len(t, repo.saved, 1)
	assert.Equal(t, resp.Result.RunID, repo.saved[0].RunID)
}

func TestRunOptimizationHandler_SkipsPersistenceByDefault(t *testing.T) {
	// Arrange
	repo := &runRepoStub{}
	handler := optimizer.NewRunOptimizationHandler(optimizer.NewRunner(), repo)

	// Act
	_, err := handler.Handle(context.Background(), &optimizer.RunOptimizationCommand{
		Dataset: testDataset(t),
		Options: testOptions(),
	})

	// Assert
	require.NoError(t, err)
	assert.Empty(t, repo.saved)
}
