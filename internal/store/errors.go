package store

import "fmt"

// ValidationError reports malformed or unresolvable input to a mutating
// operation. Maps to HTTP 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// InvalidStateError reports a violated Assignment/Trip status precondition.
// Maps to HTTP 400.
type InvalidStateError struct {
	Msg string
}

func (e *InvalidStateError) Error() string { return e.Msg }

// NoActiveTripError reports a trip-scoped position push for a vehicle with
// no STARTED assignment. Maps to HTTP 400.
type NoActiveTripError struct {
	VehicleID int64
}

func (e *NoActiveTripError) Error() string {
	return fmt.Sprintf("no active trip for vehicle %d", e.VehicleID)
}

// StoreError wraps an underlying persistence failure. Maps to HTTP 500.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string { return "store failure: " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(err error) error { return &StoreError{Err: err} }
