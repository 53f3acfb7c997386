package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/lspgroup/fleetopt-go/internal/application/placement"
)

// DefaultConfig returns the documented defaults without consulting any
// source.
func DefaultConfig() *Config {
	return &Config{
		Placement: PlacementConfig{
			Strategy:               placement.StrategyProportional,
			LookaheadDays:          14,
			MaxConcentration:       0.30,
			MaxVehiclesPerLocation: 0,
		},
		Assignment: AssignmentConfig{
			AssignmentLookaheadDays: 0,
			LookAheadDays:           7,
			ChainDepth:              3,
			ChainWeight:             10.0,
			MaxLookaheadRoutes:      50,
			UseChainOptimization:    false,
		},
		SwapPolicy: SwapPolicyConfig{
			MaxSwapsPerPeriod: 1,
			SwapPeriodDays:    90,
		},
		ServicePolicy: ServicePolicyConfig{
			ServiceToleranceKm:   1000,
			ServiceDurationHours: 48,
			ServicePenaltyPLN:    500.0,
			ServiceCostPLN:       2000.0,
		},
		Costs: CostsConfig{
			RelocationBaseCostPLN: 1000.0,
			RelocationPerKmPLN:    1.0,
			RelocationPerHourPLN:  150.0,
			OveragePerKmPLN:       0.92,
		},
		Performance: PerformanceConfig{
			ProgressReportDays:     30,
			ProgressReportInterval: 1000,
			UseRelationCache:       true,
			RelationCacheSize:      10000,
		},
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8090,
			RateLimitRPS:   10,
			RateLimitBurst: 20,
			CORSOrigins:    []string{"*"},
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "fleetopt.db",
			Pool: PoolConfig{
				MaxOpen:     25,
				MaxIdle:     5,
				MaxLifetime: 5 * time.Minute,
			},
		},
		Data: DataConfig{
			DataDir:   "./data",
			OutputDir: "./output",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// setViperDefaults registers every known key. Viper resolves environment
// variables only for registered keys, and a registered default keeps an
// explicit zero in a config file from being mistaken for "unset".
func setViperDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("placement.strategy", d.Placement.Strategy)
	v.SetDefault("placement.lookahead_days", d.Placement.LookaheadDays)
	v.SetDefault("placement.max_concentration", d.Placement.MaxConcentration)
	v.SetDefault("placement.max_vehicles_per_location", d.Placement.MaxVehiclesPerLocation)

	v.SetDefault("assignment.assignment_lookahead_days", d.Assignment.AssignmentLookaheadDays)
	v.SetDefault("assignment.look_ahead_days", d.Assignment.LookAheadDays)
	v.SetDefault("assignment.chain_depth", d.Assignment.ChainDepth)
	v.SetDefault("assignment.chain_weight", d.Assignment.ChainWeight)
	v.SetDefault("assignment.max_lookahead_routes", d.Assignment.MaxLookaheadRoutes)
	v.SetDefault("assignment.use_chain_optimization", d.Assignment.UseChainOptimization)

	v.SetDefault("swap_policy.max_swaps_per_period", d.SwapPolicy.MaxSwapsPerPeriod)
	v.SetDefault("swap_policy.swap_period_days", d.SwapPolicy.SwapPeriodDays)

	v.SetDefault("service_policy.service_tolerance_km", d.ServicePolicy.ServiceToleranceKm)
	v.SetDefault("service_policy.service_duration_hours", d.ServicePolicy.ServiceDurationHours)
	v.SetDefault("service_policy.service_penalty_pln", d.ServicePolicy.ServicePenaltyPLN)
	v.SetDefault("service_policy.service_cost_pln", d.ServicePolicy.ServiceCostPLN)

	v.SetDefault("costs.relocation_base_cost_pln", d.Costs.RelocationBaseCostPLN)
	v.SetDefault("costs.relocation_per_km_pln", d.Costs.RelocationPerKmPLN)
	v.SetDefault("costs.relocation_per_hour_pln", d.Costs.RelocationPerHourPLN)
	v.SetDefault("costs.overage_per_km_pln", d.Costs.OveragePerKmPLN)

	v.SetDefault("performance.progress_report_days", d.Performance.ProgressReportDays)
	v.SetDefault("performance.progress_report_interval", d.Performance.ProgressReportInterval)
	v.SetDefault("performance.use_relation_cache", d.Performance.UseRelationCache)
	v.SetDefault("performance.relation_cache_size", d.Performance.RelationCacheSize)

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.rate_limit_rps", d.Server.RateLimitRPS)
	v.SetDefault("server.rate_limit_burst", d.Server.RateLimitBurst)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)

	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.dsn", d.Database.DSN)
	v.SetDefault("database.pool.max_open", d.Database.Pool.MaxOpen)
	v.SetDefault("database.pool.max_idle", d.Database.Pool.MaxIdle)
	v.SetDefault("database.pool.max_lifetime", d.Database.Pool.MaxLifetime)

	v.SetDefault("data.data_dir", d.Data.DataDir)
	v.SetDefault("data.output_dir", d.Data.OutputDir)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// SetDefaults backstops structural fields a hand-built Config may leave
// empty. Algorithm options are deliberately not touched: zero is a
// legitimate value for most of them (a lookahead of 0 days means "no
// window"), so their defaults live in the viper layer only.
func SetDefaults(cfg *Config) {
	d := DefaultConfig()

	if cfg.Placement.Strategy == "" {
		cfg.Placement.Strategy = d.Placement.Strategy
	}
	if cfg.Placement.MaxConcentration == 0 {
		cfg.Placement.MaxConcentration = d.Placement.MaxConcentration
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = d.Server.Host
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = d.Server.Port
	}
	if cfg.Server.RateLimitRPS == 0 {
		cfg.Server.RateLimitRPS = d.Server.RateLimitRPS
	}
	if cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = d.Server.RateLimitBurst
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = d.Server.CORSOrigins
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = d.Database.Driver
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = d.Database.DSN
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = d.Database.Pool.MaxOpen
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = d.Database.Pool.MaxIdle
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = d.Database.Pool.MaxLifetime
	}

	if cfg.Data.DataDir == "" {
		cfg.Data.DataDir = d.Data.DataDir
	}
	if cfg.Data.OutputDir == "" {
		cfg.Data.OutputDir = d.Data.OutputDir
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = d.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = d.Logging.Format
	}
}
