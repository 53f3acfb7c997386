package common

// MetricsRecorder receives optimization counters from the application layer.
// The prometheus adapter implements it; NopMetrics serves tests and library
// callers that don't scrape.
type MetricsRecorder interface {
	RouteAssigned()
	RouteUnassigned(reason string)
	RelocationPlanned()
	ServiceScheduled()
	ObserveRouteScoring(seconds float64)
	ObserveRunDuration(seconds float64)
	SetFleetSize(n int)
	SetTotalCost(pln float64)
}

type nopMetrics struct{}

func (nopMetrics) RouteAssigned()                      {}
func (nopMetrics) RouteUnassigned(reason string)       {}
func (nopMetrics) RelocationPlanned()                  {}
func (nopMetrics) ServiceScheduled()                   {}
func (nopMetrics) ObserveRouteScoring(seconds float64) {}
func (nopMetrics) ObserveRunDuration(seconds float64)  {}
func (nopMetrics) SetFleetSize(n int)                  {}
func (nopMetrics) SetTotalCost(pln float64)            {}

// NopMetrics returns a recorder that drops everything.
func NopMetrics() MetricsRecorder {
	return nopMetrics{}
}
