package fleet

import (
	"time"

	"github.com/lspgroup/fleetopt-go/internal/domain/shared"
)

// Leasing contracts above this total are lifetime caps; at or below they are
// annual allowances.
const lifetimeLimitThresholdKm = 200000

// Annual allowance assumed for vehicles whose contract carries a lifetime cap.
const defaultAnnualLimitKm = 150000

// Vehicle is a leased truck from the fleet master data.
type Vehicle struct {
	ID                 int64
	RegistrationNumber string
	Brand              string
	ServiceIntervalKm  int
	LeasingStartKm     int
	LeasingLimitKm     int
	LeasingStartDate   time.Time
	LeasingEndDate     time.Time
	CurrentOdometerKm  int
	// CurrentLocationID is 0 when the master data has no position for the
	// vehicle ("N/A"); placement decides where it starts.
	CurrentLocationID int64
}

// NewVehicle creates a validated Vehicle.
func NewVehicle(
	id int64,
	registration string,
	brand string,
	serviceIntervalKm int,
	leasingStartKm int,
	leasingLimitKm int,
	leasingStart time.Time,
	leasingEnd time.Time,
	currentOdometerKm int,
	currentLocationID int64,
) (*Vehicle, error) {
	if id <= 0 {
		return nil, shared.NewValidationError("id", "must be positive")
	}
	if registration == "" {
		return nil, shared.NewValidationError("registration_number", "cannot be empty")
	}
	if serviceIntervalKm <= 0 {
		return nil, shared.NewValidationError("service_interval_km", "must be positive")
	}
	if leasingLimitKm <= 0 {
		return nil, shared.NewValidationError("leasing_limit_km", "must be positive")
	}
	if !leasingEnd.After(leasingStart) {
		return nil, shared.NewInvalidVehicleDataError("leasing_end_date must be after leasing_start_date")
	}
	if currentOdometerKm < 0 {
		return nil, shared.NewValidationError("current_odometer_km", "cannot be negative")
	}
	return &Vehicle{
		ID:                 id,
		RegistrationNumber: registration,
		Brand:              brand,
		ServiceIntervalKm:  serviceIntervalKm,
		LeasingStartKm:     leasingStartKm,
		LeasingLimitKm:     leasingLimitKm,
		LeasingStartDate:   leasingStart,
		LeasingEndDate:     leasingEnd,
		CurrentOdometerKm:  currentOdometerKm,
		CurrentLocationID:  currentLocationID,
	}, nil
}

// HasLifetimeLimit reports whether the leasing limit is a lifetime cap
// rather than an annual allowance.
func (v *Vehicle) HasLifetimeLimit() bool {
	return v.LeasingLimitKm > lifetimeLimitThresholdKm
}

// AnnualLimitKm returns the yearly km allowance.
func (v *Vehicle) AnnualLimitKm() int {
	if v.HasLifetimeLimit() {
		return defaultAnnualLimitKm
	}
	return v.LeasingLimitKm
}

// ContractLimitKm returns the lifetime cap, or 0 when the contract only
// carries an annual allowance.
func (v *Vehicle) ContractLimitKm() int {
	if v.HasLifetimeLimit() {
		return v.LeasingLimitKm
	}
	return 0
}

// HasKnownLocation reports whether the master data positions the vehicle.
func (v *Vehicle) HasKnownLocation() bool {
	return v.CurrentLocationID > 0
}
