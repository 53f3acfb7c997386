package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Network-related errors

type NetworkError struct {
	*DomainError
}

func NewNetworkError(message string) *NetworkError {
	return &NetworkError{DomainError: &DomainError{Message: message}}
}

type UnknownLocationError struct {
	*NetworkError
	LocationID int64
}

func NewUnknownLocationError(locationID int64) *UnknownLocationError {
	return &UnknownLocationError{
		NetworkError: NewNetworkError(fmt.Sprintf("unknown location %d", locationID)),
		LocationID:   locationID,
	}
}

// Vehicle-related errors

type VehicleError struct {
	*DomainError
}

func NewVehicleError(message string) *VehicleError {
	return &VehicleError{DomainError: &DomainError{Message: message}}
}

type UnknownVehicleError struct {
	*VehicleError
	VehicleID int64
}

func NewUnknownVehicleError(vehicleID int64) *UnknownVehicleError {
	return &UnknownVehicleError{
		VehicleError: NewVehicleError(fmt.Sprintf("unknown vehicle %d", vehicleID)),
		VehicleID:    vehicleID,
	}
}

type InvalidVehicleDataError struct {
	*VehicleError
}

func NewInvalidVehicleDataError(message string) *InvalidVehicleDataError {
	return &InvalidVehicleDataError{VehicleError: NewVehicleError(message)}
}

// StateInvariantError reports a broken vehicle-state post-condition after a
// commit. It is fatal: the run aborts rather than continue from a corrupted
// state.
type StateInvariantError struct {
	*VehicleError
	VehicleID int64
	Invariant string
}

func NewStateInvariantError(vehicleID int64, invariant string) *StateInvariantError {
	return &StateInvariantError{
		VehicleError: NewVehicleError(fmt.Sprintf("vehicle %d state invariant broken: %s", vehicleID, invariant)),
		VehicleID:    vehicleID,
		Invariant:    invariant,
	}
}

// LifetimeExceededError reports a commit that would push a vehicle past its
// lifetime contract cap. Feasibility rejects such candidates up front, so
// seeing this error after a commit means the run is corrupted and must stop.
type LifetimeExceededError struct {
	*VehicleError
	VehicleID int64
	TotalKm   int
	LimitKm   int
}

func NewLifetimeExceededError(vehicleID int64, totalKm, limitKm int) *LifetimeExceededError {
	return &LifetimeExceededError{
		VehicleError: NewVehicleError(fmt.Sprintf(
			"vehicle %d lifetime contract limit exceeded: %d km over a %d km cap",
			vehicleID, totalKm, limitKm)),
		VehicleID: vehicleID,
		TotalKm:   totalKm,
		LimitKm:   limitKm,
	}
}

// Route-related errors

type RouteError struct {
	*DomainError
	RouteID int64
}

func NewRouteError(routeID int64, message string) *RouteError {
	return &RouteError{
		DomainError: &DomainError{Message: fmt.Sprintf("route %d: %s", routeID, message)},
		RouteID:     routeID,
	}
}

// UnassignableError records a route no vehicle could take, with the
// per-reason rejection counts across the fleet. It is informational: the
// engine logs it and keeps going.
type UnassignableError struct {
	*RouteError
	Reasons map[string]int
}

func NewUnassignableError(routeID int64, reasons map[string]int) *UnassignableError {
	return &UnassignableError{
		RouteError: NewRouteError(routeID, fmt.Sprintf("no feasible vehicle (rejections: %v)", reasons)),
		Reasons:    reasons,
	}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// InputInvalidError reports a dataset row that fails schema or referential
// checks. Loading aborts before phase one; nothing is partially ingested.
type InputInvalidError struct {
	*DomainError
	File string
	Row  int
}

func NewInputInvalidError(file string, row int, message string) *InputInvalidError {
	formatted := fmt.Sprintf("%s: %s", file, message)
	if row > 0 {
		formatted = fmt.Sprintf("%s row %d: %s", file, row, message)
	}
	return &InputInvalidError{
		DomainError: &DomainError{Message: formatted},
		File:        file,
		Row:         row,
	}
}

// CancelledError reports a run stopped at the between-routes checkpoint. The
// assignment log up to that point is preserved and marked partial.
type CancelledError struct {
	*DomainError
	RoutesProcessed int
	RoutesTotal     int
}

func NewCancelledError(processed, total int) *CancelledError {
	return &CancelledError{
		DomainError: &DomainError{Message: fmt.Sprintf(
			"run cancelled after %d of %d routes", processed, total)},
		RoutesProcessed: processed,
		RoutesTotal:     total,
	}
}
