package assignment

import (
	"context"
	"math"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lspgroup/fleetopt-go/internal/application/common"
	"github.com/lspgroup/fleetopt-go/internal/domain/fleet"
	"github.com/lspgroup/fleetopt-go/internal/domain/planning"
	"github.com/lspgroup/fleetopt-go/internal/domain/schedule"
	"github.com/lspgroup/fleetopt-go/internal/domain/shared"
	"github.com/lspgroup/fleetopt-go/pkg/utils"
)

// Engine assigns routes to vehicles chronologically. Each route is offered
// to the whole fleet, candidates are priced against read-only state
// snapshots, and the cheapest feasible vehicle wins and commits. Routes are
// never revisited; a route nobody can take is recorded and the loop moves on.
//
// The loop itself is strictly serial: a commit changes the availability and
// counters later feasibility depends on. Only the per-route candidate
// scoring fans out.
type Engine struct {
	store   *fleet.StateStore
	edges   planning.EdgeLookup
	params  Params
	metrics common.MetricsRecorder

	onProgress func(Progress)
}

// NewEngine creates an assignment engine over a seeded state store.
func NewEngine(store *fleet.StateStore, edges planning.EdgeLookup, params Params) *Engine {
	return &Engine{
		store:   store,
		edges:   edges,
		params:  params,
		metrics: common.NopMetrics(),
	}
}

// OnProgress installs a heartbeat callback. The callback runs inline with
// the loop, so it must be cheap; the optimizer hands in a non-blocking
// channel send.
func (e *Engine) OnProgress(fn func(Progress)) {
	e.onProgress = fn
}

// SetMetrics installs a metrics recorder.
func (e *Engine) SetMetrics(m common.MetricsRecorder) {
	if m != nil {
		e.metrics = m
	}
}

// scored is one candidate's evaluation against one route.
type scored struct {
	feasible  bool
	reason    planning.Reason
	breakdown planning.CostBreakdown
	chain     float64
	combined  float64
	err       error
}

// Run executes the assignment phase over the given routes. The input slice
// is not modified; routes are re-sorted chronologically and trimmed to the
// configured horizon first.
//
// Cancellation is honored between routes: the partial log is returned with
// Cancelled set, alongside a CancelledError. A state-invariant breach also
// returns the partial log, with the breach as the error.
func (e *Engine) Run(ctx context.Context, routes []*schedule.Route) (*Result, error) {
	plan := make([]*schedule.Route, len(routes))
	copy(plan, routes)
	schedule.SortChronological(plan)
	plan = schedule.FilterWindow(plan, e.params.HorizonDays)

	ids := e.store.VehicleIDs()
	logger := common.LoggerFromContext(ctx)
	res := &Result{RoutesTotal: len(plan)}

	var lastBeat time.Time
	if len(plan) > 0 {
		lastBeat = plan[0].StartTime
	}

	for i, route := range plan {
		if ctx.Err() != nil {
			res.Cancelled = true
			return res, shared.NewCancelledError(i, len(plan))
		}

		scoreStart := time.Now()
		scores, err := e.scoreCandidates(ctx, ids, plan, i)
		if err != nil {
			if ctx.Err() != nil {
				res.Cancelled = true
				return res, shared.NewCancelledError(i, len(plan))
			}
			return res, err
		}
		e.metrics.ObserveRouteScoring(time.Since(scoreStart).Seconds())

		winner := pickWinner(scores)
		if winner < 0 {
			u := &Unassigned{
				RouteID:    route.ID,
				StartTime:  route.StartTime,
				StartLocID: route.StartLocationID(),
				Reasons:    rejectionHistogram(scores),
			}
			u.DominantReason = dominantReason(u.Reasons)
			res.Unassigned = append(res.Unassigned, u)
			e.metrics.RouteUnassigned(string(u.DominantReason))
			logger.Log("warn", shared.NewUnassignableError(route.ID, reasonCounts(u.Reasons)).Error(), nil)
		} else {
			a, err := e.commit(ids[winner], route, scores[winner])
			if err != nil {
				return res, err
			}
			res.Assignments = append(res.Assignments, a)
			e.metrics.RouteAssigned()
			if a.RequiresRelocation {
				e.metrics.RelocationPlanned()
			}
			if a.RequiresService {
				e.metrics.ServiceScheduled()
			}
		}

		if e.onProgress != nil {
			fire := e.params.ProgressInterval > 0 && (i+1)%e.params.ProgressInterval == 0
			if e.params.ProgressDays > 0 &&
				route.StartTime.Sub(lastBeat) >= time.Duration(e.params.ProgressDays)*24*time.Hour {
				fire = true
				lastBeat = route.StartTime
			}
			if fire {
				e.onProgress(Progress{
					RoutesProcessed: i + 1,
					RoutesTotal:     len(plan),
					Assigned:        len(res.Assignments),
					Unassigned:      len(res.Unassigned),
					SimulatedDate:   route.Date(),
				})
			}
		}
	}

	return res, nil
}

// scoreCandidates evaluates every vehicle against plan[idx]. Results line up
// with ids. Fleets past the parallel threshold fan out over errgroup; the
// slice writes are index-disjoint so no further synchronization is needed.
func (e *Engine) scoreCandidates(ctx context.Context, ids []int64, plan []*schedule.Route, idx int) ([]scored, error) {
	out := make([]scored, len(ids))

	if len(ids) >= e.params.parallelThreshold() {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(runtime.GOMAXPROCS(0))
		for i, id := range ids {
			i, id := i, id
			g.Go(func() error {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				out[i] = e.scoreOne(id, plan, idx)
				return out[i].err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return out, nil
	}

	for i, id := range ids {
		out[i] = e.scoreOne(id, plan, idx)
		if out[i].err != nil {
			return nil, out[i].err
		}
	}
	return out, nil
}

// scoreOne prices one vehicle for plan[idx]: hard constraints first, then
// the cost breakdown, then the optional chain bonus.
func (e *Engine) scoreOne(vehicleID int64, plan []*schedule.Route, idx int) scored {
	route := plan[idx]
	snap, err := e.store.SnapshotForScoring(vehicleID, route.StartTime)
	if err != nil {
		return scored{err: err}
	}

	ok, reason := planning.Check(snap, route, e.params.Policy, e.edges)
	if !ok {
		return scored{reason: reason}
	}

	b := planning.AssignmentCost(snap, route, e.params.Policy, e.edges)
	if b.IsInfeasible() {
		return scored{reason: planning.ReasonNoPath}
	}

	sc := scored{feasible: true, breakdown: b, combined: b.Score()}
	if e.params.UseChain {
		sc.chain = e.chainScore(snap, route, plan, idx)
		sc.combined -= e.params.ChainWeight * sc.chain
	}
	return sc
}

// commit books the winning candidate against the live state and builds the
// assignment record from the counter movements.
func (e *Engine) commit(vehicleID int64, route *schedule.Route, sc scored) (*Assignment, error) {
	b := sc.breakdown
	opts := fleet.AdvanceOptions{
		RouteID:       route.ID,
		RouteStart:    route.StartTime,
		RouteEnd:      route.EndTime,
		RouteKm:       utils.RoundKm(route.DistanceKm),
		StartLocation: route.StartLocationID(),
		EndLocation:   route.EndLocationID(),
		DidService:    b.NeedsService,
		OverageCost:   b.OveragePLN,
	}
	if b.NeedsService {
		opts.ServiceDuration = e.params.Policy.ServiceDowntime()
		opts.ServiceCost = e.params.Policy.ServiceCostPLN
	}
	if b.NeedsRelocation {
		opts.ChoseRelocation = true
		opts.RelocationKm = utils.RoundKm(b.RelocationEdge.DistanceKm)
		opts.RelocationCost = b.RelocationPLN
	}

	adv, err := e.store.Advance(vehicleID, opts)
	if err != nil {
		return nil, err
	}
	if err := e.store.PruneSwapWindow(vehicleID, route.StartTime, e.params.Policy.SwapWindow()); err != nil {
		return nil, err
	}

	a := &Assignment{
		RouteID:           route.ID,
		VehicleID:         vehicleID,
		Date:              route.Date(),
		RouteKm:           route.DistanceKm,
		RouteStart:        route.StartTime,
		RouteEnd:          route.EndTime,
		RouteStartLocID:   route.StartLocationID(),
		RouteEndLocID:     route.EndLocationID(),
		RequiresService:   b.NeedsService,
		OverageKm:         b.OverageKm,
		OverageCostPLN:    b.OveragePLN,
		ServicePenaltyPLN: b.ServicePenaltyPLN,
		CostPLN:           b.Score(),
		ChainScore:        sc.chain,
		OdometerBeforeKm:  adv.OdometerBefore,
		OdometerAfterKm:   adv.OdometerAfter,
		LeaseYearKmBefore: adv.AnnualKmBefore,
		LeaseYearKmAfter:  adv.AnnualKmAfter,
	}
	if b.NeedsRelocation {
		a.RequiresRelocation = true
		a.RelocationFromID = b.RelocationEdge.FromID
		a.RelocationToID = b.RelocationEdge.ToID
		a.RelocationKm = b.RelocationEdge.DistanceKm
		a.RelocationHours = b.RelocationEdge.TravelHours
		a.RelocationCostPLN = b.RelocationPLN
	}
	if b.NeedsService {
		a.ServiceStart = adv.ServiceStart
		a.ServiceEnd = adv.ServiceEnd
		a.ServiceCostPLN = b.ServiceCostPLN
	}
	return a, nil
}

// pickWinner returns the index of the cheapest feasible candidate, or -1.
// Candidates arrive in ascending vehicle-id order and the comparison is
// strict, so equal scores keep the lower id.
func pickWinner(scores []scored) int {
	best := -1
	bestScore := math.Inf(1)
	for i := range scores {
		if !scores[i].feasible {
			continue
		}
		if scores[i].combined < bestScore {
			bestScore = scores[i].combined
			best = i
		}
	}
	return best
}

func rejectionHistogram(scores []scored) map[planning.Reason]int {
	h := make(map[planning.Reason]int)
	for i := range scores {
		if scores[i].feasible || scores[i].reason == "" {
			continue
		}
		h[scores[i].reason]++
	}
	return h
}

// dominantReason picks the most frequent rejection; ties resolve to the
// lexicographically smaller reason so the report is stable.
func dominantReason(h map[planning.Reason]int) planning.Reason {
	keys := make([]planning.Reason, 0, len(h))
	for r := range h {
		keys = append(keys, r)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var dominant planning.Reason
	best := 0
	for _, r := range keys {
		if h[r] > best {
			best = h[r]
			dominant = r
		}
	}
	return dominant
}

func reasonCounts(h map[planning.Reason]int) map[string]int {
	out := make(map[string]int, len(h))
	for r, n := range h {
		out[string(r)] = n
	}
	return out
}
