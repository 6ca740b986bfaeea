package domain

import (
	"strings"
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending              BookingStatus = "pending"
	BookingStatusAwaitingPayment      BookingStatus = "awaiting_payment"
	BookingStatusAwaitingConfirmation BookingStatus = "awaiting_confirmation"
	BookingStatusPaymentFailed        BookingStatus = "payment_failed"
	BookingStatusConfirmed            BookingStatus = "confirmed"
	BookingStatusCancelled            BookingStatus = "cancelled"
	BookingStatusCompleted            BookingStatus = "completed"
	BookingStatusExpired              BookingStatus = "expired"
)

// IsValid checks if the status is a valid BookingStatus
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusAwaitingPayment, BookingStatusAwaitingConfirmation,
		BookingStatusPaymentFailed, BookingStatusConfirmed, BookingStatusCancelled,
		BookingStatusCompleted, BookingStatusExpired:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are permitted from this status.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusCompleted
}

// IsActive reports whether the booking occupies its stay range for conflict purposes.
func (s BookingStatus) IsActive() bool {
	switch s {
	case BookingStatusPending, BookingStatusAwaitingPayment, BookingStatusAwaitingConfirmation, BookingStatusConfirmed:
		return true
	}
	return false
}

// String returns the string representation of BookingStatus
func (s BookingStatus) String() string {
	return string(s)
}

// ActiveStatuses returns the statuses that count toward double-booking conflicts.
func ActiveStatuses() []BookingStatus {
	return []BookingStatus{
		BookingStatusPending,
		BookingStatusAwaitingPayment,
		BookingStatusAwaitingConfirmation,
		BookingStatusConfirmed,
	}
}

// StayRange is a half-open [CheckIn, CheckOut) range of calendar dates.
// Both endpoints are normalized to UTC midnight.
type StayRange struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

// NewStayRange builds a normalized stay range from two calendar dates.
func NewStayRange(checkIn, checkOut time.Time) StayRange {
	return StayRange{
		CheckIn:  NormalizeDate(checkIn),
		CheckOut: NormalizeDate(checkOut),
	}
}

// NormalizeDate strips the time component, keeping the calendar date in UTC.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Validate checks that the range covers at least one night.
func (r StayRange) Validate() error {
	if !r.CheckOut.After(r.CheckIn) {
		return ErrInvalidDateRange
	}
	return nil
}

// Nights returns the number of nights in the range.
func (r StayRange) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

// Overlaps reports whether two half-open ranges share at least one night.
// Back-to-back stays (checkout day == next check-in day) do not overlap.
func (r StayRange) Overlaps(o StayRange) bool {
	return r.CheckIn.Before(o.CheckOut) && o.CheckIn.Before(r.CheckOut)
}

// Booking represents a reservation of a property for a stay range.
// Money fields are whole currency units (the platform bills in a
// zero-decimal currency).
type Booking struct {
	ID         string `json:"id"`
	PropertyID string `json:"property_id"`
	GuestID    string `json:"guest_id"`

	CheckIn     time.Time `json:"check_in_date"`
	CheckOut    time.Time `json:"check_out_date"`
	GuestsCount int       `json:"guests_count"`

	BasePrice          int64 `json:"base_price"`
	CleaningFee        int64 `json:"cleaning_fee"`
	ServiceFee         int64 `json:"service_fee"`
	SecurityDeposit    int64 `json:"security_deposit"`
	Taxes              int64 `json:"taxes"`
	TotalAmount        int64 `json:"total_amount"`
	PlatformCommission int64 `json:"platform_commission"`
	HostPayout         int64 `json:"host_payout"`

	Status BookingStatus `json:"status"`

	PaymentMethod    string     `json:"payment_method,omitempty"`
	PaymentReference string     `json:"payment_reference,omitempty"`
	PaymentProofURL  string     `json:"payment_proof_url,omitempty"`
	ConfirmedBy      string     `json:"confirmed_by,omitempty"`
	ConfirmedAt      *time.Time `json:"confirmed_at,omitempty"`
	PaymentExpiresAt *time.Time `json:"payment_expires_at,omitempty"`

	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`

	SpecialRequests string    `json:"special_requests,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Stay returns the booking's stay range.
func (b *Booking) Stay() StayRange {
	return StayRange{CheckIn: b.CheckIn, CheckOut: b.CheckOut}
}

// TotalNights returns the number of nights booked.
func (b *Booking) TotalNights() int {
	return b.Stay().Nights()
}

// Validate validates the structural booking invariants. Capacity against the
// property's limit is checked by the lifecycle service since it requires the
// property record.
func (b *Booking) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return ErrInvalidBookingID
	}
	if strings.TrimSpace(b.PropertyID) == "" {
		return ErrInvalidPropertyID
	}
	if strings.TrimSpace(b.GuestID) == "" {
		return ErrInvalidGuestID
	}
	if err := b.Stay().Validate(); err != nil {
		return err
	}
	if b.GuestsCount <= 0 {
		return ErrInvalidGuestsCount
	}
	if !b.Status.IsValid() {
		return ErrInvalidBookingStatus
	}
	if b.TotalAmount != b.BasePrice+b.CleaningFee+b.ServiceFee+b.Taxes {
		return ErrInconsistentTotal
	}
	return nil
}

// PaymentOverdueAt reports whether the booking is awaiting payment and its
// deadline has passed at the given instant.
func (b *Booking) PaymentOverdueAt(now time.Time) bool {
	return b.Status == BookingStatusAwaitingPayment &&
		b.PaymentExpiresAt != nil &&
		b.PaymentExpiresAt.Before(now)
}

// IsConfirmed checks if the booking is in confirmed status
func (b *Booking) IsConfirmed() bool {
	return b.Status == BookingStatusConfirmed
}

// IsCancelled checks if the booking is in cancelled status
func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// BelongsToGuest checks if the booking belongs to the specified guest
func (b *Booking) BelongsToGuest(guestID string) bool {
	return b.GuestID == guestID
}

// Property is the summary of a listed property as seen by the booking engine.
// Ownership of the full property record lives elsewhere.
type Property struct {
	ID              string `json:"id"`
	HostID          string `json:"host_id"`
	Name            string `json:"name"`
	MaxGuests       int    `json:"max_guests"`
	PricePerNight   int64  `json:"price_per_night"`
	CleaningFee     int64  `json:"cleaning_fee"`
	SecurityDeposit int64  `json:"security_deposit"`
}

// Guest is the contact summary used for notification payloads.
type Guest struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}
