package fleet

import (
	"sort"
	"sync"
	"time"

	"github.com/lspgroup/fleetopt-go/internal/domain/shared"
)

// StateStore owns the runtime states of a fleet for one optimization run,
// keyed by vehicle id. Snapshots take the read lock; Advance and pruning
// take the write lock, so the per-route scoring fan-out can read
// concurrently while commits stay serialized.
//
// Distinct runs never share a store.
type StateStore struct {
	mu     sync.RWMutex
	states map[int64]*State
}

// NewStateStore creates an empty store.
func NewStateStore() *StateStore {
	return &StateStore{states: make(map[int64]*State)}
}

// Seed registers the initial state for a vehicle. Seeding happens once,
// between placement and the assignment loop; re-seeding a vehicle replaces
// its state.
func (st *StateStore) Seed(s *State) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.states[s.VehicleID()] = s
}

// Len returns the number of vehicles tracked.
func (st *StateStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.states)
}

// VehicleIDs returns the tracked vehicle ids in ascending order. The
// assignment loop iterates candidates in this order so ties break the same
// way on every run.
func (st *StateStore) VehicleIDs() []int64 {
	st.mu.RLock()
	defer st.mu.RUnlock()
	ids := make([]int64, 0, len(st.states))
	for id := range st.states {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SnapshotForScoring returns a read-only copy of the vehicle's state with
// the lease window rolled to the given instant. Cost and feasibility work
// exclusively on these copies.
func (st *StateStore) SnapshotForScoring(vehicleID int64, at time.Time) (Snapshot, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.states[vehicleID]
	if !ok {
		return Snapshot{}, shared.NewUnknownVehicleError(vehicleID)
	}
	return s.SnapshotAt(at), nil
}

// Advance commits one assigned route against the vehicle's live state. It is
// the sole mutation path; see State.Advance for the commit order.
func (st *StateStore) Advance(vehicleID int64, opts AdvanceOptions) (AdvanceResult, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.states[vehicleID]
	if !ok {
		return AdvanceResult{}, shared.NewUnknownVehicleError(vehicleID)
	}
	return s.Advance(opts)
}

// PruneSwapWindow drops the vehicle's relocation tuples older than the
// window ending at now. Runs after every Advance.
func (st *StateStore) PruneSwapWindow(vehicleID int64, now time.Time, window time.Duration) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.states[vehicleID]
	if !ok {
		return shared.NewUnknownVehicleError(vehicleID)
	}
	s.PruneSwapWindow(now, window)
	return nil
}

// Snapshots returns the current state of every vehicle without lease
// rolling, in ascending vehicle-id order. The final report is built from
// these.
func (st *StateStore) Snapshots() []Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	snaps := make([]Snapshot, 0, len(st.states))
	for _, s := range st.states {
		snaps = append(snaps, s.Snapshot())
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].VehicleID < snaps[j].VehicleID })
	return snaps
}
