package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CommandMetricsCollector records command/query execution metrics for the
// mediator.
type CommandMetricsCollector struct {
	commandDuration *prometheus.HistogramVec
	commandsTotal   *prometheus.CounterVec
}

// NewCommandMetricsCollector creates a new command metrics collector.
func NewCommandMetricsCollector() *CommandMetricsCollector {
	return &CommandMetricsCollector{
		commandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "mediator",
				Name:      "command_duration_seconds",
				Help:      "Command execution duration distribution",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 5.0, 30.0, 300.0},
			},
			[]string{"command", "status"},
		),

		commandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "mediator",
				Name:      "commands_total",
				Help:      "Total number of commands executed by type and status",
			},
			[]string{"command", "status"},
		),
	}
}

// Register registers all command metrics with the registry.
func (c *CommandMetricsCollector) Register(registry prometheus.Registerer) error {
	metrics := []prometheus.Collector{
		c.commandDuration,
		c.commandsTotal,
	}

	for _, metric := range metrics {
		if err := registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

// RecordCommandExecution records one command execution.
func (c *CommandMetricsCollector) RecordCommandExecution(
	commandName string,
	duration float64,
	success bool,
) {
	status := "success"
	if !success {
		status = "error"
	}

	c.commandDuration.WithLabelValues(commandName, status).Observe(duration)
	c.commandsTotal.WithLabelValues(commandName, status).Inc()
}
