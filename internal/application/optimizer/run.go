package optimizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lspgroup/fleetopt-go/internal/application/assignment"
	"github.com/lspgroup/fleetopt-go/internal/application/common"
	"github.com/lspgroup/fleetopt-go/internal/application/placement"
	"github.com/lspgroup/fleetopt-go/internal/domain/fleet"
	"github.com/lspgroup/fleetopt-go/internal/domain/network"
	"github.com/lspgroup/fleetopt-go/internal/domain/planning"
	"github.com/lspgroup/fleetopt-go/internal/domain/schedule"
	"github.com/lspgroup/fleetopt-go/internal/domain/shared"
	"github.com/lspgroup/fleetopt-go/pkg/utils"
)

// Options bundles everything one optimization run needs. The configuration
// layer builds it from file/env settings; tests build it directly.
type Options struct {
	Placement  placement.Params  `json:"placement"`
	Assignment assignment.Params `json:"assignment"`

	// UseEdgeCache puts a bounded LRU in front of graph lookups.
	UseEdgeCache  bool `json:"use_edge_cache"`
	EdgeCacheSize int  `json:"edge_cache_size"`

	// WallClockBudget caps the run's real duration; the deadline is
	// enforced at the same between-routes checkpoint as cancellation.
	// Zero means no budget.
	WallClockBudget time.Duration `json:"wall_clock_budget,omitempty"`
}

// RunSummary is the bottom line of one run.
type RunSummary struct {
	RunID           string    `json:"run_id"`
	StartedAt       time.Time `json:"started_at"`
	DurationSeconds float64   `json:"duration_seconds"`
	Cancelled       bool      `json:"cancelled"`

	FleetSize        int `json:"fleet_size"`
	RoutesTotal      int `json:"routes_total"`
	RoutesAssigned   int `json:"routes_assigned"`
	RoutesUnassigned int `json:"routes_unassigned"`

	UnassignedByReason map[string]int `json:"unassigned_by_reason"`

	TotalCostPLN      float64 `json:"total_cost_pln"`
	RelocationCount   int     `json:"relocation_count"`
	RelocationCostPLN float64 `json:"relocation_cost_pln"`
	ServiceCount      int     `json:"service_count"`
	ServiceCostPLN    float64 `json:"service_cost_pln"`
	OverageKm         int     `json:"overage_km"`
	OverageCostPLN    float64 `json:"overage_cost_pln"`

	Options Options `json:"options"`
}

// RunResult is the full output of one run: the summary plus every record a
// report or repository might want.
type RunResult struct {
	RunID       string                   `json:"run_id"`
	Summary     RunSummary               `json:"summary"`
	Placement   map[int64]int64          `json:"placement"`
	Assignments []*assignment.Assignment `json:"assignments"`
	Unassigned  []*assignment.Unassigned `json:"unassigned"`
	FinalStates []fleet.Snapshot         `json:"final_states"`
	CacheStats  *network.CacheStats      `json:"cache_stats,omitempty"`
}

// Runner drives the whole pipeline: validate, place, seed, assign,
// summarize. One Runner may serve many runs; each run gets its own store
// and cache.
type Runner struct {
	metrics  common.MetricsRecorder
	reporter *ProgressReporter
}

// NewRunner creates a Runner with no metrics and no progress reporter.
func NewRunner() *Runner {
	return &Runner{metrics: common.NopMetrics()}
}

// SetMetrics installs a metrics recorder shared by all runs.
func (r *Runner) SetMetrics(m common.MetricsRecorder) {
	if m != nil {
		r.metrics = m
	}
}

// SetReporter installs a progress reporter. Without one, heartbeats go to
// the context logger instead.
func (r *Runner) SetReporter(p *ProgressReporter) {
	r.reporter = p
}

// Run executes one optimization over the dataset. A cancelled or
// budget-exhausted run is not an error: the partial log comes back with the
// summary marked Cancelled. Only invalid input and state corruption abort.
func (r *Runner) Run(ctx context.Context, dataset *common.Dataset, opts Options) (*RunResult, error) {
	started := time.Now()
	runID := utils.GenerateRunID("run")
	logger := common.LoggerFromContext(ctx)

	if err := ValidateDataset(dataset); err != nil {
		return nil, err
	}

	graph, err := network.NewGraph(dataset.Locations, dataset.Edges)
	if err != nil {
		return nil, err
	}

	routes := make([]*schedule.Route, len(dataset.Routes))
	copy(routes, dataset.Routes)
	schedule.SortChronological(routes)

	logger.Log("info", fmt.Sprintf("run %s: %d vehicles, %d routes, %d locations",
		runID, len(dataset.Vehicles), len(routes), graph.LocationCount()), nil)

	placed, err := placement.Place(dataset.Vehicles, routes, graph, opts.Placement)
	if err != nil {
		return nil, err
	}
	logger.Log("info", fmt.Sprintf("run %s: placement done, %d locations in use", runID, countLocations(placed)), nil)

	store := assignment.SeedStore(dataset.Vehicles, placed, assignment.SeedAvailability(routes))

	var edges planning.EdgeLookup = graph
	var cache *network.EdgeCache
	if opts.UseEdgeCache {
		cache, err = network.NewEdgeCache(graph, opts.EdgeCacheSize)
		if err != nil {
			return nil, err
		}
		edges = cache
	}

	runCtx := ctx
	if opts.WallClockBudget > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, opts.WallClockBudget)
		defer cancel()
	}

	engine := assignment.NewEngine(store, edges, opts.Assignment)
	engine.SetMetrics(r.metrics)
	engine.OnProgress(func(p assignment.Progress) {
		if r.reporter != nil {
			r.reporter.Publish(p)
			return
		}
		logger.Log("info", fmt.Sprintf("run %s: %d/%d routes, %d assigned, %d unassigned, sim %s",
			runID, p.RoutesProcessed, p.RoutesTotal, p.Assigned, p.Unassigned,
			p.SimulatedDate.Format("2006-01-02")), nil)
	})

	log, err := engine.Run(runCtx, routes)
	if err != nil {
		var cancelled *shared.CancelledError
		if !errors.As(err, &cancelled) {
			logger.Log("error", fmt.Sprintf("run %s aborted: %v", runID, err), nil)
			return nil, err
		}
		logger.Log("warn", fmt.Sprintf("run %s: %v", runID, err), nil)
	}

	result := &RunResult{
		RunID:       runID,
		Placement:   placed,
		Assignments: log.Assignments,
		Unassigned:  log.Unassigned,
		FinalStates: store.Snapshots(),
	}
	if cache != nil {
		stats := cache.Stats()
		result.CacheStats = &stats
		logger.Log("info", fmt.Sprintf("run %s: %s", runID, stats), nil)
	}
	result.Summary = summarize(runID, started, opts, log, result.FinalStates)

	r.metrics.SetFleetSize(len(dataset.Vehicles))
	r.metrics.SetTotalCost(result.Summary.TotalCostPLN)
	r.metrics.ObserveRunDuration(result.Summary.DurationSeconds)

	logger.Log("info", fmt.Sprintf("run %s: finished in %.2fs, %d assigned, %d unassigned, total %.2f PLN",
		runID, result.Summary.DurationSeconds, result.Summary.RoutesAssigned,
		result.Summary.RoutesUnassigned, result.Summary.TotalCostPLN), nil)

	return result, nil
}

// summarize folds the assignment log and the final vehicle states into the
// run's bottom line. Money totals come from the states, the single source
// of booked costs; the overage km total comes from the per-route records.
func summarize(runID string, started time.Time, opts Options, log *assignment.Result, states []fleet.Snapshot) RunSummary {
	s := RunSummary{
		RunID:              runID,
		StartedAt:          started.UTC(),
		DurationSeconds:    time.Since(started).Seconds(),
		Cancelled:          log.Cancelled,
		FleetSize:          len(states),
		RoutesTotal:        log.RoutesTotal,
		RoutesAssigned:     len(log.Assignments),
		RoutesUnassigned:   len(log.Unassigned),
		UnassignedByReason: make(map[string]int),
		Options:            opts,
	}

	for _, u := range log.Unassigned {
		s.UnassignedByReason[string(u.DominantReason)]++
	}
	for _, a := range log.Assignments {
		s.OverageKm += a.OverageKm
	}
	for _, snap := range states {
		s.RelocationCount += snap.TotalRelocations
		s.RelocationCostPLN += snap.RelocationCost
		s.ServiceCount += snap.ServiceCount
		s.ServiceCostPLN += snap.ServiceCost
		s.OverageCostPLN += snap.OverageCost
	}
	s.TotalCostPLN = s.RelocationCostPLN + s.ServiceCostPLN + s.OverageCostPLN
	return s
}

func countLocations(placed map[int64]int64) int {
	seen := make(map[int64]bool, len(placed))
	for _, loc := range placed {
		seen[loc] = true
	}
	return len(seen)
}
