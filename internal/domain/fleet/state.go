package fleet

import (
	"time"

	"github.com/lspgroup/fleetopt-go/internal/domain/shared"
)

// One lease cycle. The boundary arithmetic deliberately uses a flat 365 days
// rather than calendar years, matching the contract convention of the source
// data.
const LeaseYear = 365 * 24 * time.Hour

// Relocation is one empty reposition recorded against the swap window.
type Relocation struct {
	At   time.Time
	From int64
	To   int64
}

// State tracks one vehicle through a simulated horizon.
//
// All mutation flows through Advance, the single commit path; scoring reads
// SnapshotAt copies and never observes a half-applied commit. Lease cycles
// roll lazily: whenever an instant at or past lease_end_date is observed, the
// annual counter resets, the cycle number bumps, and the window slides
// forward one lease year (repeating for multi-year idle gaps).
type State struct {
	vehicleID         int64
	locationID        int64
	odometerKm        int
	kmSinceService    int
	kmThisLeaseYear   int
	totalLifetimeKm   int
	availableFrom     time.Time
	lastRouteID       int64
	leaseCycle        int
	leaseStart        time.Time
	leaseEnd          time.Time
	annualLimitKm     int
	serviceIntervalKm int
	contractLimitKm   int

	relocations         []Relocation
	totalRelocations    int
	totalRelocationCost float64
	totalOverageCost    float64
	totalServiceCount   int
	totalServiceCost    float64
	routesCompleted     int
}

// NewState seeds the runtime state for one vehicle: stationed at the given
// location, counters fresh (the fleet is assumed just serviced), lifetime km
// equal to the odometer reading, and the lease window taken from the
// contract as-is. A contract whose window already ended before the run rolls
// lazily on first observation.
func NewState(v *Vehicle, locationID int64, availableFrom time.Time) *State {
	return &State{
		vehicleID:         v.ID,
		locationID:        locationID,
		odometerKm:        v.CurrentOdometerKm,
		kmSinceService:    0,
		kmThisLeaseYear:   0,
		totalLifetimeKm:   v.CurrentOdometerKm,
		availableFrom:     availableFrom,
		leaseCycle:        1,
		leaseStart:        v.LeasingStartDate,
		leaseEnd:          v.LeasingEndDate,
		annualLimitKm:     v.AnnualLimitKm(),
		serviceIntervalKm: v.ServiceIntervalKm,
		contractLimitKm:   v.ContractLimitKm(),
	}
}

// Snapshot is a read-only copy of a State with the lease roll applied as of
// a chosen instant. Candidate scoring works exclusively on snapshots, so the
// roll is visible to cost and feasibility without mutating the live state.
type Snapshot struct {
	VehicleID         int64
	LocationID        int64
	OdometerKm        int
	KmSinceService    int
	KmThisLeaseYear   int
	TotalLifetimeKm   int
	AvailableFrom     time.Time
	LastRouteID       int64
	LeaseCycle        int
	LeaseStart        time.Time
	LeaseEnd          time.Time
	AnnualLimitKm     int
	ServiceIntervalKm int
	ContractLimitKm   int

	Relocations      []time.Time
	TotalRelocations int
	RelocationCost   float64
	OverageCost      float64
	ServiceCount     int
	ServiceCost      float64
	RoutesCompleted  int
}

// Snapshot copies the state as it stands, without rolling the lease window.
// Reports use this; candidate scoring wants SnapshotAt instead.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		VehicleID:         s.vehicleID,
		LocationID:        s.locationID,
		OdometerKm:        s.odometerKm,
		KmSinceService:    s.kmSinceService,
		KmThisLeaseYear:   s.kmThisLeaseYear,
		TotalLifetimeKm:   s.totalLifetimeKm,
		AvailableFrom:     s.availableFrom,
		LastRouteID:       s.lastRouteID,
		LeaseCycle:        s.leaseCycle,
		LeaseStart:        s.leaseStart,
		LeaseEnd:          s.leaseEnd,
		AnnualLimitKm:     s.annualLimitKm,
		ServiceIntervalKm: s.serviceIntervalKm,
		ContractLimitKm:   s.contractLimitKm,
		TotalRelocations:  s.totalRelocations,
		RelocationCost:    s.totalRelocationCost,
		OverageCost:       s.totalOverageCost,
		ServiceCount:      s.totalServiceCount,
		ServiceCost:       s.totalServiceCost,
		RoutesCompleted:   s.routesCompleted,
	}
	if n := len(s.relocations); n > 0 {
		snap.Relocations = make([]time.Time, n)
		for i, r := range s.relocations {
			snap.Relocations[i] = r.At
		}
	}
	return snap
}

// SnapshotAt copies the state and rolls the copy's lease window forward
// until the given instant falls inside it. The live state is not touched.
func (s *State) SnapshotAt(at time.Time) Snapshot {
	snap := s.Snapshot()
	for !at.Before(snap.LeaseEnd) {
		snap.KmThisLeaseYear = 0
		snap.LeaseCycle++
		snap.LeaseStart = snap.LeaseEnd
		snap.LeaseEnd = snap.LeaseEnd.Add(LeaseYear)
	}
	return snap
}

// RecentRelocations counts relocations recorded in [since, until).
func (s Snapshot) RecentRelocations(since, until time.Time) int {
	count := 0
	for _, at := range s.Relocations {
		if !at.Before(since) && at.Before(until) {
			count++
		}
	}
	return count
}

// DueForService reports whether the odometer-since-service counter has
// already passed the interval plus tolerance, meaning a service block must
// be scheduled before the next route.
func (s Snapshot) DueForService(toleranceKm int) bool {
	return s.KmSinceService > s.ServiceIntervalKm+toleranceKm
}

// HasContractLimit reports whether a lifetime cap applies.
func (s Snapshot) HasContractLimit() bool {
	return s.ContractLimitKm > 0
}

// AdvanceOptions carries the commit parameters for one assigned route. The
// caller decided relocation and service from the same snapshot the route was
// scored on; Advance trusts those flags and applies them in order.
type AdvanceOptions struct {
	RouteID       int64
	RouteStart    time.Time
	RouteEnd      time.Time
	RouteKm       int
	StartLocation int64
	EndLocation   int64

	ChoseRelocation bool
	RelocationKm    int
	RelocationCost  float64

	DidService      bool
	ServiceDuration time.Duration
	ServiceCost     float64

	OverageCost float64
}

// AdvanceResult reports the counter movements of one commit, used to fill
// the assignment record.
type AdvanceResult struct {
	OdometerBefore int
	OdometerAfter  int
	AnnualKmBefore int
	AnnualKmAfter  int
	ServiceStart   time.Time
	ServiceEnd     time.Time
	LeaseRolled    bool
}

// Advance is the sole commit path. In order: roll the lease window to the
// route start, perform the service block if due, record the relocation and
// its kilometres, drive the route (pro-rating the annual counter when the
// route spans a lease boundary), then release the vehicle at the route's end
// location and time.
func (s *State) Advance(opts AdvanceOptions) (AdvanceResult, error) {
	if !opts.RouteEnd.After(opts.RouteStart) {
		return AdvanceResult{}, shared.NewStateInvariantError(s.vehicleID, "route end not after start")
	}
	if opts.RouteKm < 0 || opts.RelocationKm < 0 {
		return AdvanceResult{}, shared.NewStateInvariantError(s.vehicleID, "negative distance")
	}

	res := AdvanceResult{
		OdometerBefore: s.odometerKm,
	}
	res.LeaseRolled = s.rollLease(opts.RouteStart)
	res.AnnualKmBefore = s.kmThisLeaseYear

	if opts.DidService {
		res.ServiceStart = s.availableFrom
		res.ServiceEnd = s.availableFrom.Add(opts.ServiceDuration)
		s.kmSinceService = 0
		s.totalServiceCount++
		s.totalServiceCost += opts.ServiceCost
		s.availableFrom = res.ServiceEnd
	}

	if opts.ChoseRelocation {
		s.relocations = append(s.relocations, Relocation{
			At:   opts.RouteStart,
			From: s.locationID,
			To:   opts.StartLocation,
		})
		s.totalRelocations++
		s.totalRelocationCost += opts.RelocationCost
		s.odometerKm += opts.RelocationKm
		s.kmThisLeaseYear += opts.RelocationKm
		s.totalLifetimeKm += opts.RelocationKm
		s.kmSinceService += opts.RelocationKm
	}

	s.locationID = opts.EndLocation

	kmCurrent, kmNext := s.proRateAcrossLease(opts.RouteStart, opts.RouteEnd, opts.RouteKm)
	s.odometerKm += opts.RouteKm
	s.totalLifetimeKm += opts.RouteKm
	s.kmSinceService += opts.RouteKm
	s.kmThisLeaseYear += kmCurrent
	if kmNext > 0 {
		if s.rollLease(opts.RouteEnd) {
			res.LeaseRolled = true
		}
		s.kmThisLeaseYear += kmNext
	}

	s.availableFrom = opts.RouteEnd
	s.lastRouteID = opts.RouteID
	s.routesCompleted++
	s.totalOverageCost += opts.OverageCost

	res.OdometerAfter = s.odometerKm
	res.AnnualKmAfter = s.kmThisLeaseYear

	if got, want := res.OdometerAfter, res.OdometerBefore+opts.RelocationKm+opts.RouteKm; got != want {
		return res, shared.NewStateInvariantError(s.vehicleID, "odometer drift on commit")
	}
	if s.contractLimitKm > 0 && s.totalLifetimeKm > s.contractLimitKm {
		return res, shared.NewLifetimeExceededError(s.vehicleID, s.totalLifetimeKm, s.contractLimitKm)
	}
	if s.kmThisLeaseYear < 0 || s.kmSinceService < 0 {
		return res, shared.NewStateInvariantError(s.vehicleID, "negative km counter")
	}
	return res, nil
}

// rollLease slides the lease window forward until the instant falls inside
// it, zeroing the annual counter per crossed boundary.
func (s *State) rollLease(at time.Time) bool {
	rolled := false
	for !at.Before(s.leaseEnd) {
		s.kmThisLeaseYear = 0
		s.leaseCycle++
		s.leaseStart = s.leaseEnd
		s.leaseEnd = s.leaseEnd.Add(LeaseYear)
		rolled = true
	}
	return rolled
}

// proRateAcrossLease splits route kilometres across the current lease
// boundary by elapsed time. Fractions truncate toward the current year; the
// remainder lands in the next, so the split always sums to the whole.
func (s *State) proRateAcrossLease(start, end time.Time, km int) (current, next int) {
	if !end.After(s.leaseEnd) {
		return km, 0
	}
	if !start.Before(s.leaseEnd) {
		return 0, km
	}
	total := end.Sub(start).Seconds()
	if total <= 0 {
		return km, 0
	}
	ratio := s.leaseEnd.Sub(start).Seconds() / total
	current = int(float64(km) * ratio)
	return current, km - current
}

// PruneSwapWindow drops relocations older than the window ending at now.
func (s *State) PruneSwapWindow(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	kept := s.relocations[:0]
	for _, r := range s.relocations {
		if !r.At.Before(cutoff) {
			kept = append(kept, r)
		}
	}
	s.relocations = kept
}

// VehicleID returns the owning vehicle's id.
func (s *State) VehicleID() int64 { return s.vehicleID }

// LocationID returns the vehicle's current location.
func (s *State) LocationID() int64 { return s.locationID }

// AvailableFrom returns when the vehicle is next free.
func (s *State) AvailableFrom() time.Time { return s.availableFrom }

// RoutesCompleted returns how many routes the vehicle has driven.
func (s *State) RoutesCompleted() int { return s.routesCompleted }
