package domain

import (
	"errors"
	"testing"
)

var allStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusAwaitingPayment,
	BookingStatusAwaitingConfirmation,
	BookingStatusPaymentFailed,
	BookingStatusConfirmed,
	BookingStatusCancelled,
	BookingStatusCompleted,
	BookingStatusExpired,
}

// The complete transition matrix. Every (from, to) pair not listed here
// must be rejected.
var allowedPairs = map[BookingStatus][]BookingStatus{
	BookingStatusPending:              {BookingStatusAwaitingPayment, BookingStatusCancelled},
	BookingStatusAwaitingPayment:      {BookingStatusAwaitingConfirmation, BookingStatusExpired, BookingStatusCancelled},
	BookingStatusAwaitingConfirmation: {BookingStatusConfirmed, BookingStatusPaymentFailed, BookingStatusCancelled},
	BookingStatusPaymentFailed:        {BookingStatusAwaitingPayment, BookingStatusCancelled},
	BookingStatusConfirmed:            {BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusExpired:              {BookingStatusCancelled},
	BookingStatusCancelled:            {},
	BookingStatusCompleted:            {},
}

func TestCanTransition_FullMatrix(t *testing.T) {
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := false
			for _, allowed := range allowedPairs[from] {
				if allowed == to {
					want = true
					break
				}
			}
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    BookingStatus
		to      BookingStatus
		wantErr bool
	}{
		{"approve", BookingStatusPending, BookingStatusAwaitingPayment, false},
		{"submit payment", BookingStatusAwaitingPayment, BookingStatusAwaitingConfirmation, false},
		{"confirm", BookingStatusAwaitingConfirmation, BookingStatusConfirmed, false},
		{"payment retry", BookingStatusPaymentFailed, BookingStatusAwaitingPayment, false},
		{"complete", BookingStatusConfirmed, BookingStatusCompleted, false},
		{"cancel pending", BookingStatusPending, BookingStatusCancelled, false},
		{"cancel confirmed", BookingStatusConfirmed, BookingStatusCancelled, false},
		{"cancel expired", BookingStatusExpired, BookingStatusCancelled, false},
		{"skip payment", BookingStatusPending, BookingStatusConfirmed, true},
		{"reopen completed", BookingStatusCompleted, BookingStatusPending, true},
		{"cancel cancelled", BookingStatusCancelled, BookingStatusCancelled, true},
		{"cancel completed", BookingStatusCompleted, BookingStatusCancelled, true},
		{"revive expired", BookingStatusExpired, BookingStatusAwaitingPayment, true},
		{"backwards", BookingStatusConfirmed, BookingStatusAwaitingPayment, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTransition(tt.from, tt.to)
			if tt.wantErr {
				var transitionErr *InvalidTransitionError
				if !errors.As(err, &transitionErr) {
					t.Fatalf("ValidateTransition(%s, %s) = %v, want InvalidTransitionError", tt.from, tt.to, err)
				}
				if transitionErr.From != tt.from || transitionErr.To != tt.to {
					t.Errorf("error carries %s -> %s, want %s -> %s",
						transitionErr.From, transitionErr.To, tt.from, tt.to)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateTransition(%s, %s) = %v, want nil", tt.from, tt.to, err)
			}
		})
	}
}

func TestValidateTransition_UnknownStatus(t *testing.T) {
	if err := ValidateTransition("draft", BookingStatusPending); !errors.Is(err, ErrInvalidBookingStatus) {
		t.Errorf("unknown from status: got %v, want ErrInvalidBookingStatus", err)
	}
	if err := ValidateTransition(BookingStatusPending, "archived"); !errors.Is(err, ErrInvalidBookingStatus) {
		t.Errorf("unknown to status: got %v, want ErrInvalidBookingStatus", err)
	}
}

func TestAllowedTransitions(t *testing.T) {
	for _, from := range allStatuses {
		got := AllowedTransitions(from)
		want := allowedPairs[from]
		if len(got) != len(want) {
			t.Errorf("AllowedTransitions(%s) = %v, want %v", from, got, want)
			continue
		}
		for _, to := range want {
			found := false
			for _, g := range got {
				if g == to {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("AllowedTransitions(%s) missing %s", from, to)
			}
		}
	}
}

func TestStatusPredicates(t *testing.T) {
	for _, s := range allStatuses {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if BookingStatus("draft").IsValid() {
		t.Error("draft should not be valid")
	}

	terminal := map[BookingStatus]bool{
		BookingStatusCancelled: true,
		BookingStatusCompleted: true,
	}
	for _, s := range allStatuses {
		if got := s.IsTerminal(); got != terminal[s] {
			t.Errorf("%s.IsTerminal() = %v, want %v", s, got, terminal[s])
		}
	}

	active := map[BookingStatus]bool{
		BookingStatusPending:              true,
		BookingStatusAwaitingPayment:      true,
		BookingStatusAwaitingConfirmation: true,
		BookingStatusConfirmed:            true,
	}
	for _, s := range allStatuses {
		if got := s.IsActive(); got != active[s] {
			t.Errorf("%s.IsActive() = %v, want %v", s, got, active[s])
		}
	}
}
