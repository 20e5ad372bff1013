package booking

import (
	"errors"
	"fmt"
)

var (
	ErrDeviceNotFound      = errors.New("device not found")
	ErrReservationNotFound = errors.New("reservation not found")
	// ErrInvalidTransition is returned when a reservation is not in a state
	// that allows the requested change.
	ErrInvalidTransition = errors.New("invalid reservation status transition")
)

// ValidationError reports input that was rejected before any availability
// check ran.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConflictError reports a request the availability check refused.
type ConflictError struct {
	Availability Availability
}

func (e *ConflictError) Error() string {
	return e.Availability.Reason
}
