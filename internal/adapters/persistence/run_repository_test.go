package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lspgroup/fleetopt-go/internal/adapters/persistence"
	"github.com/lspgroup/fleetopt-go/internal/application/assignment"
	"github.com/lspgroup/fleetopt-go/internal/application/optimizer"
	"github.com/lspgroup/fleetopt-go/internal/application/placement"
	"github.com/lspgroup/fleetopt-go/internal/domain/fleet"
	"github.com/lspgroup/fleetopt-go/internal/domain/planning"
	"github.com/lspgroup/fleetopt-go/test/helpers"
)

func testRunResult(t *testing.T) *optimizer.RunResult {
	t.Helper()

	started := time.Date(2024, 1, 6, 8, 0, 0, 0, time.UTC)
	day := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)

	opts := optimizer.Options{
		Placement: placement.Params{
			Strategy:         placement.StrategyProportional,
			LookaheadDays:    14,
			MaxConcentration: 0.3,
		},
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
		UseEdgeCache:  true,
		EdgeCacheSize: 256,
	}

	relocated := &assignment.Assignment{
		RouteID:            7,
		VehicleID:          1,
		Date:               day,
		RouteKm:            590,
		RouteStart:         started,
		RouteEnd:           started.Add(7 * time.Hour),
		RouteStartLocID:    10,
		RouteEndLocID:      10,
		RequiresRelocation: true,
		RelocationFromID:   20,
		RelocationToID:     10,
		RelocationKm:       295,
		RelocationHours:    3.5,
		RelocationCostPLN:  1820,
		CostPLN:            1820,
	}
	serviced := &assignment.Assignment{
		RouteID:         8,
		VehicleID:       1,
		Date:            day.Add(24 * time.Hour),
		RouteKm:         300,
		RouteStart:      started.Add(24 * time.Hour),
		RouteEnd:        started.Add(30 * time.Hour),
		RouteStartLocID: 10,
		RouteEndLocID:   20,
		RequiresService: true,
		ServiceStart:    started.Add(10 * time.Hour),
		ServiceEnd:      started.Add(58 * time.Hour),
		ServiceCostPLN:  2000,
		OverageKm:       120,
		OverageCostPLN:  110.4,
		CostPLN:         2510.4,
	}

	return &optimizer.RunResult{
		RunID: "run-20240106-test",
		Summary: optimizer.RunSummary{
			RunID:              "run-20240106-test",
			StartedAt:          started,
			DurationSeconds:    1.25,
			Cancelled:          false,
			FleetSize:          2,
			RoutesTotal:        5,
			RoutesAssigned:     2,
			RoutesUnassigned:   3,
			UnassignedByReason: map[string]int{"NO_PATH": 2, "TIME": 1},
			TotalCostPLN:       4330.4,
			RelocationCount:    1,
			RelocationCostPLN:  1820,
			ServiceCount:       1,
			ServiceCostPLN:     2000,
			OverageKm:          120,
			OverageCostPLN:     110.4,
			Options:            opts,
		},
		Placement:   map[int64]int64{1: 10, 2: 20},
		Assignments: []*assignment.Assignment{relocated, serviced},
		Unassigned: []*assignment.Unassigned{
			{
				RouteID:        9,
				StartTime:      started.Add(48 * time.Hour),
				StartLocID:     20,
				Reasons:        map[planning.Reason]int{planning.ReasonNoPath: 2},
				DominantReason: planning.ReasonNoPath,
			},
		},
		FinalStates: []fleet.Snapshot{
			{
				VehicleID:        1,
				LocationID:       20,
				OdometerKm:       42890,
				KmSinceService:   890,
				KmThisLeaseYear:  890,
				TotalLifetimeKm:  42890,
				AvailableFrom:    started.Add(30 * time.Hour),
				LastRouteID:      8,
				TotalRelocations: 1,
				RelocationCost:   1820,
				OverageCost:      110.4,
				ServiceCount:     1,
				ServiceCost:      2000,
				RoutesCompleted:  2,
			},
		},
	}
}

func TestRunRepository_SaveRunAndGetSummary(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormRunRepository(db)
	result := testRunResult(t)

	// Act - Save
	err := repo.SaveRun(context.Background(), result)

	// Assert
	require.NoError(t, err)

	// Act - GetSummary
	summary, err := repo.GetSummary(context.Background(), result.RunID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, result.RunID, summary.RunID)
	assert.WithinDuration(t, result.Summary.StartedAt, summary.StartedAt, time.Second)
	assert.InDelta(t, 1.25, summary.DurationSeconds, 1e-9)
	assert.False(t, summary.Cancelled)
	assert.Equal(t, 2, summary.FleetSize)
	assert.Equal(t, 5, summary.RoutesTotal)
	assert.Equal(t, 2, summary.RoutesAssigned)
	assert.Equal(t, 3, summary.RoutesUnassigned)
	assert.Equal(t, map[string]int{"NO_PATH": 2, "TIME": 1}, summary.UnassignedByReason)
	assert.InDelta(t, 4330.4, summary.TotalCostPLN, 1e-9)
	assert.Equal(t, 1, summary.RelocationCount)
	assert.InDelta(t, 1820.0, summary.RelocationCostPLN, 1e-9)
	assert.Equal(t, 1, summary.ServiceCount)
	assert.InDelta(t, 2000.0, summary.ServiceCostPLN, 1e-9)
	assert.Equal(t, 120, summary.OverageKm)
	assert.InDelta(t, 110.4, summary.OverageCostPLN, 1e-9)

	// Options survive the JSON column round trip.
	assert.Equal(t, placement.StrategyProportional, summary.Options.Placement.Strategy)
	assert.Equal(t, 14, summary.Options.Placement.LookaheadDays)
	assert.Equal(t, 90, summary.Options.Assignment.Policy.SwapPeriodDays)
	assert.True(t, summary.Options.UseEdgeCache)
	assert.Equal(t, 256, summary.Options.EdgeCacheSize)
}

func TestRunRepository_SaveRunPersistsCollections(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormRunRepository(db)
	result := testRunResult(t)

	// Act
	err := repo.SaveRun(context.Background(), result)

	// Assert
	require.NoError(t, err)

	var states int64
	require.NoError(t, db.Model(&persistence.VehicleStateModel{}).
		Where("run_id = ?", result.RunID).Count(&states).Error)
	assert.Equal(t, int64(1), states)

	var unassignedRows []persistence.UnassignedModel
	require.NoError(t, db.Where("run_id = ?", result.RunID).Find(&unassignedRows).Error)
	require.Len(t, unassignedRows, 1)

	unassigned, err := persistence.ModelToUnassigned(&unassignedRows[0])
	require.NoError(t, err)
	assert.Equal(t, int64(9), unassigned.RouteID)
	assert.Equal(t, planning.ReasonNoPath, unassigned.DominantReason)
	assert.Equal(t, map[planning.Reason]int{planning.ReasonNoPath: 2}, unassigned.Reasons)
}

func TestRunRepository_ListAssignmentsOrdersAndPages(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormRunRepository(db)
	result := testRunResult(t)
	require.NoError(t, repo.SaveRun(context.Background(), result))

	// Act - full list
	all, err := repo.ListAssignments(context.Background(), result.RunID, 0, 10)

	// Assert
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(7), all[0].RouteID)
	assert.Equal(t, int64(8), all[1].RouteID)

	first := all[0]
	assert.True(t, first.RequiresRelocation)
	assert.Equal(t, int64(20), first.RelocationFromID)
	assert.InDelta(t, 1820.0, first.RelocationCostPLN, 1e-9)
	assert.False(t, first.RequiresService)

	second := all[1]
	assert.True(t, second.RequiresService)
	assert.WithinDuration(t, result.Assignments[1].ServiceStart, second.ServiceStart, time.Second)
	assert.WithinDuration(t, result.Assignments[1].ServiceEnd, second.ServiceEnd, time.Second)
	assert.Equal(t, 120, second.OverageKm)

	// Act - page of one
	page, err := repo.ListAssignments(context.Background(), result.RunID, 1, 1)

	// Assert
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, int64(8), page[0].RouteID)
}

func TestRunRepository_GetSummaryMissingRun(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormRunRepository(db)

	// Act
	_, err := repo.GetSummary(context.Background(), "run-does-not-exist")

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}
