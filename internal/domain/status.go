package domain

// transitions is the allowed forward path for each non-terminal status.
// Cancellation from a non-terminal status is handled separately in
// ValidateTransition so the table stays readable.
var transitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending: {
		BookingStatusAwaitingPayment, // host approves
	},
	BookingStatusAwaitingPayment: {
		BookingStatusAwaitingConfirmation, // guest submits payment proof
		BookingStatusExpired,              // payment deadline passes
	},
	BookingStatusAwaitingConfirmation: {
		BookingStatusConfirmed,     // host verifies payment
		BookingStatusPaymentFailed, // host rejects payment proof
	},
	BookingStatusPaymentFailed: {
		BookingStatusAwaitingPayment, // guest retries with a fresh deadline
	},
	BookingStatusConfirmed: {
		BookingStatusCompleted, // stay finished
	},
	BookingStatusExpired: {},
}

// AllowedTransitions returns every status reachable from the given one,
// including the cancellation escape hatch.
func AllowedTransitions(from BookingStatus) []BookingStatus {
	if from.IsTerminal() {
		return nil
	}
	allowed := make([]BookingStatus, 0, len(transitions[from])+1)
	allowed = append(allowed, transitions[from]...)
	allowed = append(allowed, BookingStatusCancelled)
	return allowed
}

// CanTransition reports whether the status machine allows from -> to.
func CanTransition(from, to BookingStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if to == BookingStatusCancelled {
		// any non-terminal booking can be cancelled
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns a typed error when from -> to is not allowed.
func ValidateTransition(from, to BookingStatus) error {
	if !from.IsValid() || !to.IsValid() {
		return ErrInvalidBookingStatus
	}
	if !CanTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}
