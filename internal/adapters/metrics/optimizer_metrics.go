// Package metrics exposes optimization counters through prometheus. The
// collectors implement the application-layer recorder interfaces; the HTTP
// API serves them on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// namespace for all fleetopt metrics
	namespace = "fleetopt"
	// subsystem for optimization run metrics
	subsystem = "optimizer"
)

// NewRegistry creates an empty registry for the fleetopt collectors.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// Handler serves a registry in the prometheus text format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// OptimizerCollector records per-run optimization metrics. It implements
// common.MetricsRecorder.
type OptimizerCollector struct {
	routesAssigned   prometheus.Counter
	routesUnassigned *prometheus.CounterVec
	relocations      prometheus.Counter
	services         prometheus.Counter

	routeScoreDuration prometheus.Histogram
	runDuration        prometheus.Histogram

	fleetSize prometheus.Gauge
	totalCost prometheus.Gauge
}

// NewOptimizerCollector creates the optimizer metrics collector.
func NewOptimizerCollector() *OptimizerCollector {
	return &OptimizerCollector{
		routesAssigned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "routes_assigned_total",
				Help:      "Total number of routes assigned to a vehicle",
			},
		),

		routesUnassigned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "routes_unassigned_total",
				Help:      "Total number of routes no vehicle could take, by dominant reason",
			},
			[]string{"reason"},
		),

		relocations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "relocations_total",
				Help:      "Total number of planned empty relocations",
			},
		),

		services: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "services_total",
				Help:      "Total number of scheduled service stops",
			},
		),

		routeScoreDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "route_score_duration_seconds",
				Help:      "Time spent scoring all candidate vehicles for one route",
				Buckets:   []float64{0.000001, 0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
			},
		),

		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "run_duration_seconds",
				Help:      "Wall-clock duration of whole optimization runs",
				Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800, 3600},
			},
		),

		fleetSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "fleet_size",
				Help:      "Number of vehicles in the most recent run",
			},
		),

		totalCost: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "total_cost_pln",
				Help:      "Total cost of the most recent run in PLN",
			},
		),
	}
}

// Register registers all optimizer metrics with the registry.
func (c *OptimizerCollector) Register(registry prometheus.Registerer) error {
	metrics := []prometheus.Collector{
		c.routesAssigned,
		c.routesUnassigned,
		c.relocations,
		c.services,
		c.routeScoreDuration,
		c.runDuration,
		c.fleetSize,
		c.totalCost,
	}

	for _, metric := range metrics {
		if err := registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

// RouteAssigned counts one assigned route.
func (c *OptimizerCollector) RouteAssigned() {
	c.routesAssigned.Inc()
}

// RouteUnassigned counts one unassignable route under its dominant reason.
func (c *OptimizerCollector) RouteUnassigned(reason string) {
	c.routesUnassigned.WithLabelValues(reason).Inc()
}

// RelocationPlanned counts one planned empty relocation.
func (c *OptimizerCollector) RelocationPlanned() {
	c.relocations.Inc()
}

// ServiceScheduled counts one scheduled service stop.
func (c *OptimizerCollector) ServiceScheduled() {
	c.services.Inc()
}

// ObserveRouteScoring records how long one route's candidate scoring took.
func (c *OptimizerCollector) ObserveRouteScoring(seconds float64) {
	c.routeScoreDuration.Observe(seconds)
}

// ObserveRunDuration records the wall-clock duration of one run.
func (c *OptimizerCollector) ObserveRunDuration(seconds float64) {
	c.runDuration.Observe(seconds)
}

// SetFleetSize publishes the fleet size of the most recent run.
func (c *OptimizerCollector) SetFleetSize(n int) {
	c.fleetSize.Set(float64(n))
}

// SetTotalCost publishes the total cost of the most recent run.
func (c *OptimizerCollector) SetTotalCost(pln float64) {
	c.totalCost.Set(pln)
}
