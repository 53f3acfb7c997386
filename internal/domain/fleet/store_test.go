package fleet_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lspgroup/fleetopt-go/internal/domain/fleet"
	"github.com/lspgroup/fleetopt-go/internal/domain/shared"
)

func TestStateStore_SeedAndSnapshot(t *testing.T) {
	store := fleet.NewStateStore()
	available := leaseStart.Add(-24 * time.Hour)

	store.Seed(fleet.NewState(annualVehicle(t, 3), 10, available))
	store.Seed(fleet.NewState(annualVehicle(t, 1), 20, available))
	store.Seed(fleet.NewState(annualVehicle(t, 2), 10, available))

	assert.Equal(t, 3, store.Len())
	assert.Equal(t, []int64{1, 2, 3}, store.VehicleIDs())

	snap, err := store.SnapshotForScoring(1, leaseStart)
	require.NoError(t, err)
	assert.Equal(t, int64(20), snap.LocationID)
}

func TestStateStore_UnknownVehicle(t *testing.T) {
	store := fleet.NewStateStore()

	_, err := store.SnapshotForScoring(42, leaseStart)
	require.Error(t, err)

	var unknown *shared.UnknownVehicleError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, int64(42), unknown.VehicleID)
}

func TestStateStore_AdvanceCommitsThroughTheStore(t *testing.T) {
	store := fleet.NewStateStore()
	store.Seed(fleet.NewState(annualVehicle(t, 1), 10, leaseStart.Add(-24*time.Hour)))

	start := leaseStart.Add(8 * time.Hour)
	res, err := store.Advance(1, driveOpts(100, start, start.Add(4*time.Hour), 150))
	require.NoError(t, err)
	assert.Equal(t, 150, res.OdometerAfter)

	require.NoError(t, store.PruneSwapWindow(1, start, 90*24*time.Hour))

	snaps := store.Snapshots()
	require.Len(t, snaps, 1)
	assert.Equal(t, 150, snaps[0].OdometerKm)
	assert.Equal(t, int64(100), snaps[0].LastRouteID)
}

func TestStateStore_SnapshotsSortedByVehicleID(t *testing.T) {
	store := fleet.NewStateStore()
	available := leaseStart.Add(-24 * time.Hour)
	for _, id := range []int64{5, 2, 9, 1} {
		store.Seed(fleet.NewState(annualVehicle(t, id), 10, available))
	}

	snaps := store.Snapshots()
	ids := make([]int64, len(snaps))
	for i, s := range snaps {
		ids[i] = s.VehicleID
	}
	assert.Equal(t, []int64{1, 2, 5, 9}, ids)
}
