package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validation errors
var (
	ErrInvalidBookingID     = errors.New("invalid booking ID")
	ErrInvalidPropertyID    = errors.New("invalid property ID")
	ErrInvalidGuestID       = errors.New("invalid guest ID")
	ErrInvalidGuestsCount   = errors.New("guests count must be greater than zero")
	ErrInvalidDateRange     = errors.New("check-out date must be after check-in date")
	ErrInvalidBookingStatus = errors.New("invalid booking status")
	ErrInconsistentTotal    = errors.New("total amount does not equal base + cleaning + service + taxes")
	ErrInvalidNightlyRate   = errors.New("nightly rate must be greater than zero")
	ErrInvalidFeeAmount     = errors.New("fee amounts must not be negative")

	ErrMissingPaymentDetails = errors.New("payment method and reference are required")
	ErrMissingConfirmer      = errors.New("confirming admin identity is required")
)

// Business rule errors
var (
	ErrBookingNotFound     = errors.New("booking not found")
	ErrPropertyNotFound    = errors.New("property not found")
	ErrGuestNotFound       = errors.New("guest not found")
	ErrDatesUnavailable    = errors.New("property is not available for the requested dates")
	ErrCapacityExceeded    = errors.New("guests count exceeds property capacity")
	ErrInvalidTransition   = errors.New("invalid booking status transition")
	ErrConcurrencyConflict = errors.New("booking was modified by a concurrent request")
)

// Infrastructure errors
var (
	ErrStoreUnavailable = errors.New("booking store is unavailable")
)

// InvalidTransitionError reports a rejected status change with full
// diagnostics: where the booking is, where the caller wanted it, and
// where it could legally go.
type InvalidTransitionError struct {
	From BookingStatus
	To   BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	allowed := AllowedTransitions(e.From)
	if len(allowed) == 0 {
		return fmt.Sprintf("invalid transition from %s to %s: %s is terminal", e.From, e.To, e.From)
	}
	names := make([]string, len(allowed))
	for i, s := range allowed {
		names[i] = s.String()
	}
	return fmt.Sprintf("invalid transition from %s to %s: allowed targets are [%s]", e.From, e.To, strings.Join(names, ", "))
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// DateConflict describes one existing booking that blocks a requested range.
type DateConflict struct {
	BookingID string        `json:"booking_id"`
	CheckIn   time.Time     `json:"check_in"`
	CheckOut  time.Time     `json:"check_out"`
	Status    BookingStatus `json:"status"`
}

// UnavailableError reports a date-range conflict along with the bookings
// that caused it.
type UnavailableError struct {
	PropertyID string
	Requested  StayRange
	Conflicts  []DateConflict
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("property %s is not available for %s to %s: %d conflicting booking(s)",
		e.PropertyID,
		e.Requested.CheckIn.Format("2006-01-02"),
		e.Requested.CheckOut.Format("2006-01-02"),
		len(e.Conflicts))
}

func (e *UnavailableError) Unwrap() error {
	return ErrDatesUnavailable
}

// IsNotFoundError checks if the error indicates a missing record
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrPropertyNotFound) ||
		errors.Is(err, ErrGuestNotFound)
}

// IsValidationError checks if the error is a deterministic input error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidBookingID) ||
		errors.Is(err, ErrInvalidPropertyID) ||
		errors.Is(err, ErrInvalidGuestID) ||
		errors.Is(err, ErrInvalidGuestsCount) ||
		errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrInvalidBookingStatus) ||
		errors.Is(err, ErrInconsistentTotal) ||
		errors.Is(err, ErrInvalidNightlyRate) ||
		errors.Is(err, ErrInvalidFeeAmount) ||
		errors.Is(err, ErrMissingPaymentDetails) ||
		errors.Is(err, ErrMissingConfirmer) ||
		errors.Is(err, ErrCapacityExceeded)
}

// IsUnavailableError checks if the error is a date-range conflict
func IsUnavailableError(err error) bool {
	return errors.Is(err, ErrDatesUnavailable)
}

// IsTransitionError checks if the error is a rejected status change
func IsTransitionError(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}

// IsConflictError checks if the error indicates a lost race that the
// caller may retry
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}

// IsRetryableError checks if the error is a transient infrastructure failure
func IsRetryableError(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
