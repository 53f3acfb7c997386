package config

import (
	"github.com/lspgroup/fleetopt-go/internal/application/assignment"
	"github.com/lspgroup/fleetopt-go/internal/application/optimizer"
	"github.com/lspgroup/fleetopt-go/internal/application/placement"
	"github.com/lspgroup/fleetopt-go/internal/domain/planning"
)

// PlacementConfig tunes the initial distribution of the fleet
type PlacementConfig struct {
	// Strategy: "proportional" or "cost_matrix"
	Strategy string `mapstructure:"strategy" validate:"required,oneof=proportional cost_matrix"`

	// Demand window in days; 0 counts every route
	LookaheadDays int `mapstructure:"lookahead_days" validate:"min=0"`

	// Largest share of the fleet a single location may hold
	MaxConcentration float64 `mapstructure:"max_concentration" validate:"gt=0,lte=1"`

	// Hard per-location cap; 0 derives the cap from max_concentration
	MaxVehiclesPerLocation int `mapstructure:"max_vehicles_per_location" validate:"min=0"`
}

// AssignmentConfig tunes the chronological route-assignment pass
type AssignmentConfig struct {
	// Planning horizon in days; 0 assigns every route
	AssignmentLookaheadDays int `mapstructure:"assignment_lookahead_days" validate:"min=0"`

	// Chain look-ahead window, depth and weight
	LookAheadDays      int     `mapstructure:"look_ahead_days" validate:"min=0"`
	ChainDepth         int     `mapstructure:"chain_depth" validate:"min=0"`
	ChainWeight        float64 `mapstructure:"chain_weight" validate:"min=0"`
	MaxLookaheadRoutes int     `mapstructure:"max_lookahead_routes" validate:"min=0"`

	// Chain look-ahead is advisory and off by default
	UseChainOptimization bool `mapstructure:"use_chain_optimization"`
}

// SwapPolicyConfig bounds how often a vehicle may be swapped off a route
type SwapPolicyConfig struct {
	MaxSwapsPerPeriod int `mapstructure:"max_swaps_per_period" validate:"min=0"`
	SwapPeriodDays    int `mapstructure:"swap_period_days" validate:"min=0"`
}

// ServicePolicyConfig describes workshop visits
type ServicePolicyConfig struct {
	// Service may start this many km before the interval is due
	ServiceToleranceKm   int     `mapstructure:"service_tolerance_km" validate:"min=0"`
	ServiceDurationHours int     `mapstructure:"service_duration_hours" validate:"min=0"`
	ServicePenaltyPLN    float64 `mapstructure:"service_penalty_pln" validate:"min=0"`
	ServiceCostPLN       float64 `mapstructure:"service_cost_pln" validate:"min=0"`
}

// CostsConfig holds the PLN cost model shared by scoring and accounting
type CostsConfig struct {
	RelocationBaseCostPLN float64 `mapstructure:"relocation_base_cost_pln" validate:"min=0"`
	RelocationPerKmPLN    float64 `mapstructure:"relocation_per_km_pln" validate:"min=0"`
	RelocationPerHourPLN  float64 `mapstructure:"relocation_per_hour_pln" validate:"min=0"`
	OveragePerKmPLN       float64 `mapstructure:"overage_per_km_pln" validate:"min=0"`
}

// PerformanceConfig tunes progress reporting and caching
type PerformanceConfig struct {
	// Progress heartbeat cadence; 0 disables the respective trigger
	ProgressReportDays     int `mapstructure:"progress_report_days" validate:"min=0"`
	ProgressReportInterval int `mapstructure:"progress_report_interval" validate:"min=0"`

	// LRU cache in front of distance-matrix lookups
	UseRelationCache  bool `mapstructure:"use_relation_cache"`
	RelationCacheSize int  `mapstructure:"relation_cache_size" validate:"min=0"`
}

// Policy assembles the cost and service policy the planning kernels use.
func (c *Config) Policy() planning.Policy {
	return planning.Policy{
		RelocationBaseCostPLN: c.Costs.RelocationBaseCostPLN,
		RelocationPerKmPLN:    c.Costs.RelocationPerKmPLN,
		RelocationPerHourPLN:  c.Costs.RelocationPerHourPLN,
		OveragePerKmPLN:       c.Costs.OveragePerKmPLN,
		ServiceToleranceKm:    c.ServicePolicy.ServiceToleranceKm,
		ServiceDurationHours:  c.ServicePolicy.ServiceDurationHours,
		ServicePenaltyPLN:     c.ServicePolicy.ServicePenaltyPLN,
		ServiceCostPLN:        c.ServicePolicy.ServiceCostPLN,
		MaxSwapsPerPeriod:     c.SwapPolicy.MaxSwapsPerPeriod,
		SwapPeriodDays:        c.SwapPolicy.SwapPeriodDays,
	}
}

// PlacementParams maps the placement group onto the placement pass.
func (c *Config) PlacementParams() placement.Params {
	return placement.Params{
		Strategy:               c.Placement.Strategy,
		LookaheadDays:          c.Placement.LookaheadDays,
		MaxConcentration:       c.Placement.MaxConcentration,
		MaxVehiclesPerLocation: c.Placement.MaxVehiclesPerLocation,
	}
}

// AssignmentParams maps the assignment and performance groups onto the
// assignment pass.
func (c *Config) AssignmentParams() assignment.Params {
	return assignment.Params{
		Policy:             c.Policy(),
		HorizonDays:        c.Assignment.AssignmentLookaheadDays,
		UseChain:           c.Assignment.UseChainOptimization,
		ChainDepth:         c.Assignment.ChainDepth,
		ChainWeight:        c.Assignment.ChainWeight,
		LookAheadDays:      c.Assignment.LookAheadDays,
		MaxLookaheadRoutes: c.Assignment.MaxLookaheadRoutes,
		ProgressInterval:   c.Performance.ProgressReportInterval,
		ProgressDays:       c.Performance.ProgressReportDays,
	}
}

// OptimizerOptions bundles everything a full run needs.
func (c *Config) OptimizerOptions() optimizer.Options {
	return optimizer.Options{
		Placement:     c.PlacementParams(),
		Assignment:    c.AssignmentParams(),
		UseEdgeCache:  c.Performance.UseRelationCache,
		EdgeCacheSize: c.Performance.RelationCacheSize,
	}
}
