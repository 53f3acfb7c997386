package planning

import "time"

// Policy bundles the tariffs and hard-constraint knobs the cost and
// feasibility kernels price candidates with. It is plain data: the
// configuration layer fills it once per run and the kernels never mutate it.
type Policy struct {
	// Relocation tariff: base + dist × perKm + hours × perHour.
	RelocationBaseCostPLN float64
	RelocationPerKmPLN    float64
	RelocationPerHourPLN  float64

	// Charged per km past the annual leasing allowance.
	OveragePerKmPLN float64

	// Service scheduling and pricing. Tolerance widens the interval before
	// a vehicle counts as due; the penalty is a selection bias while the
	// cost is the money actually booked when a service happens.
	ServiceToleranceKm   int
	ServiceDurationHours int
	ServicePenaltyPLN    float64
	ServiceCostPLN       float64

	// Swap policy: at most MaxSwapsPerPeriod relocations within any
	// trailing SwapPeriodDays window.
	MaxSwapsPerPeriod int
	SwapPeriodDays    int
}

// ServiceDowntime returns how long a scheduled service keeps a vehicle off
// the road.
func (p Policy) ServiceDowntime() time.Duration {
	return time.Duration(p.ServiceDurationHours) * time.Hour
}

// SwapWindow returns the trailing window the swap policy counts
// relocations in.
func (p Policy) SwapWindow() time.Duration {
	return time.Duration(p.SwapPeriodDays) * 24 * time.Hour
}
