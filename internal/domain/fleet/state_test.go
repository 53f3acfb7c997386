package fleet_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lspgroup/fleetopt-go/internal/domain/fleet"
)

var (
	leaseStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	leaseEnd   = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
)

func annualVehicle(t *testing.T, id int64) *fleet.Vehicle {
	t.Helper()
	v, err := fleet.NewVehicle(id, fmt.Sprintf("WX %05d", id), "MAN", 110000,
		0, 150000, leaseStart, leaseEnd, 0, 10)
	require.NoError(t, err)
	return v
}

func lifetimeVehicle(t *testing.T, id int64, limitKm, odometerKm int) *fleet.Vehicle {
	t.Helper()
	v, err := fleet.NewVehicle(id, fmt.Sprintf("WX %05d", id), "Volvo", 110000,
		0, limitKm, leaseStart, leaseEnd.AddDate(4, 0, 0), odometerKm, 10)
	require.NoError(t, err)
	return v
}

func driveOpts(routeID int64, start, end time.Time, km int) fleet.AdvanceOptions {
	return fleet.AdvanceOptions{
		RouteID:       routeID,
		RouteStart:    start,
		RouteEnd:      end,
		RouteKm:       km,
		StartLocation: 10,
		EndLocation:   10,
	}
}

func TestNewState_SeedsCountersFresh(t *testing.T) {
	v := lifetimeVehicle(t, 1, 450000, 123456)
	s := fleet.NewState(v, 10, leaseStart.Add(-24*time.Hour))

	snap := s.Snapshot()
	assert.Equal(t, int64(1), snap.VehicleID)
	assert.Equal(t, int64(10), snap.LocationID)
	assert.Equal(t, 123456, snap.OdometerKm)
	assert.Equal(t, 123456, snap.TotalLifetimeKm)
	assert.Zero(t, snap.KmSinceService)
	assert.Zero(t, snap.KmThisLeaseYear)
	assert.Equal(t, 1, snap.LeaseCycle)
	assert.Equal(t, leaseStart, snap.LeaseStart)
	assert.Equal(t, 150000, snap.AnnualLimitKm)
	assert.Equal(t, 450000, snap.ContractLimitKm)
}

func TestState_AdvanceDrivesRoute(t *testing.T) {
	v := annualVehicle(t, 1)
	s := fleet.NewState(v, 10, leaseStart.Add(-24*time.Hour))

	start := leaseStart.Add(8 * time.Hour)
	end := leaseStart.Add(12 * time.Hour)
	res, err := s.Advance(driveOpts(100, start, end, 100))
	require.NoError(t, err)

	assert.Equal(t, 0, res.OdometerBefore)
	assert.Equal(t, 100, res.OdometerAfter)
	assert.Equal(t, 0, res.AnnualKmBefore)
	assert.Equal(t, 100, res.AnnualKmAfter)
	assert.False(t, res.LeaseRolled)

	assert.Equal(t, end, s.AvailableFrom())
	assert.Equal(t, 1, s.RoutesCompleted())

	snap := s.Snapshot()
	assert.Equal(t, 100, snap.KmSinceService)
	assert.Equal(t, int64(100), snap.LastRouteID)
}

func TestState_LeaseYearRollsAtBoundary(t *testing.T) {
	v := annualVehicle(t, 1)
	s := fleet.NewState(v, 10, leaseStart.Add(-24*time.Hour))

	// Burn most of the annual allowance mid-year.
	_, err := s.Advance(driveOpts(1,
		time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC), 149950))
	require.NoError(t, err)

	// Still inside the lease year two days before the boundary.
	_, err = s.Advance(driveOpts(2,
		time.Date(2024, 12, 30, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 30, 12, 0, 0, 0, time.UTC), 200))
	require.NoError(t, err)
	assert.Equal(t, 150150, s.Snapshot().KmThisLeaseYear)

	// Scoring past the boundary sees the rolled window without mutating.
	rolled := s.SnapshotAt(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	assert.Zero(t, rolled.KmThisLeaseYear)
	assert.Equal(t, 2, rolled.LeaseCycle)
	assert.Equal(t, leaseEnd, rolled.LeaseStart)
	assert.Equal(t, 150150, s.Snapshot().KmThisLeaseYear, "live state untouched")

	// Committing past the boundary rolls for real.
	res, err := s.Advance(driveOpts(3,
		time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC), 200))
	require.NoError(t, err)
	assert.True(t, res.LeaseRolled)
	assert.Equal(t, 0, res.AnnualKmBefore)
	assert.Equal(t, 200, res.AnnualKmAfter)

	snap := s.Snapshot()
	assert.Equal(t, 200, snap.KmThisLeaseYear)
	assert.Equal(t, 2, snap.LeaseCycle)
	assert.Equal(t, 150350, snap.OdometerKm)
}

func TestState_ProRatesRouteAcrossLeaseBoundary(t *testing.T) {
	v := annualVehicle(t, 1)
	s := fleet.NewState(v, 10, leaseStart.Add(-24*time.Hour))

	// 24h route, half of it before the boundary at 2024-12-31T00.
	start := time.Date(2024, 12, 30, 12, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC)
	res, err := s.Advance(driveOpts(1, start, end, 1000))
	require.NoError(t, err)
	assert.True(t, res.LeaseRolled)

	snap := s.Snapshot()
	// 500 km fell before the boundary and was wiped by the reset; the other
	// 500 belongs to the new lease year. The odometer keeps the full 1000.
	assert.Equal(t, 500, snap.KmThisLeaseYear)
	assert.Equal(t, 2, snap.LeaseCycle)
	assert.Equal(t, 1000, snap.OdometerKm)
	assert.Equal(t, 1000, snap.TotalLifetimeKm)
}

func TestState_ServiceBlockPrecedesRoute(t *testing.T) {
	v := annualVehicle(t, 1)
	available := leaseStart.Add(-24 * time.Hour)
	s := fleet.NewState(v, 10, available)

	start := leaseStart.Add(72 * time.Hour)
	end := start.Add(4 * time.Hour)
	opts := driveOpts(1, start, end, 300)
	opts.DidService = true
	opts.ServiceDuration = 48 * time.Hour
	opts.ServiceCost = 2000

	res, err := s.Advance(opts)
	require.NoError(t, err)

	assert.Equal(t, available, res.ServiceStart)
	assert.Equal(t, available.Add(48*time.Hour), res.ServiceEnd)

	snap := s.Snapshot()
	assert.Equal(t, 300, snap.KmSinceService, "reset happens before the route km land")
	assert.Equal(t, 1, snap.ServiceCount)
	assert.InDelta(t, 2000.0, snap.ServiceCost, 1e-9)
	assert.Equal(t, end, snap.AvailableFrom)
}

func TestState_RelocationFeedsEveryCounterAndTheSwapWindow(t *testing.T) {
	v := annualVehicle(t, 1)
	s := fleet.NewState(v, 20, leaseStart.Add(-24*time.Hour))

	start := leaseStart.Add(8 * time.Hour)
	opts := driveOpts(1, start, start.Add(5*time.Hour), 420)
	opts.StartLocation = 10
	opts.EndLocation = 30
	opts.ChoseRelocation = true
	opts.RelocationKm = 300
	opts.RelocationCost = 1825

	res, err := s.Advance(opts)
	require.NoError(t, err)
	assert.Equal(t, 720, res.OdometerAfter)

	snap := s.Snapshot()
	assert.Equal(t, int64(30), snap.LocationID)
	assert.Equal(t, 720, snap.KmThisLeaseYear)
	assert.Equal(t, 720, snap.KmSinceService)
	assert.Equal(t, 1, snap.TotalRelocations)
	assert.InDelta(t, 1825.0, snap.RelocationCost, 1e-9)
	require.Len(t, snap.Relocations, 1)
	assert.Equal(t, start, snap.Relocations[0])

	// The tuple ages out of the rolling window.
	s.PruneSwapWindow(start.AddDate(0, 0, 91), 90*24*time.Hour)
	assert.Empty(t, s.Snapshot().Relocations)
	assert.Equal(t, 1, s.Snapshot().TotalRelocations, "running total survives pruning")
}

func TestState_AdvanceRefusesLifetimeBreach(t *testing.T) {
	v := lifetimeVehicle(t, 1, 250000, 249900)
	s := fleet.NewState(v, 10, leaseStart.Add(-24*time.Hour))

	start := leaseStart.Add(8 * time.Hour)
	_, err := s.Advance(driveOpts(1, start, start.Add(4*time.Hour), 200))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "lifetime contract limit")
}

func TestState_AdvanceRejectsBadRouteWindow(t *testing.T) {
	v := annualVehicle(t, 1)
	s := fleet.NewState(v, 10, leaseStart.Add(-24*time.Hour))

	start := leaseStart.Add(8 * time.Hour)
	_, err := s.Advance(driveOpts(1, start, start, 100))
	require.Error(t, err)
}

func TestSnapshot_DueForService(t *testing.T) {
	v := annualVehicle(t, 1)
	s := fleet.NewState(v, 10, leaseStart.Add(-24*time.Hour))

	start := leaseStart.Add(8 * time.Hour)
	_, err := s.Advance(driveOpts(1, start, start.Add(8*time.Hour), 110500))
	require.NoError(t, err)

	// Inside the tolerance band: not yet due.
	assert.False(t, s.Snapshot().DueForService(1000))
	// Past interval + tolerance: due.
	assert.True(t, s.Snapshot().DueForService(400))
}
