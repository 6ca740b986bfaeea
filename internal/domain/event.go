package domain

import "time"

// Booking event types published to the notification topic.
const (
	EventBookingCreated   = "booking.created"
	EventBookingApproved  = "booking.approved"
	EventBookingRejected  = "booking.rejected"
	EventPaymentSubmitted = "booking.payment_submitted"
	EventBookingConfirmed = "booking.confirmed"
	EventPaymentRejected  = "booking.payment_rejected"
	EventBookingCancelled = "booking.cancelled"
	EventBookingCompleted = "booking.completed"
	EventBookingExpired   = "booking.expired"
)

// BookingEvent is the notification payload handed to external delivery
// channels. It carries enough denormalized data for an email or SMS to be
// rendered without further lookups.
type BookingEvent struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`

	BookingID  string        `json:"booking_id"`
	Status     BookingStatus `json:"status"`
	PrevStatus BookingStatus `json:"prev_status,omitempty"`

	PropertyID   string `json:"property_id"`
	PropertyName string `json:"property_name,omitempty"`
	HostID       string `json:"host_id,omitempty"`

	GuestID    string `json:"guest_id"`
	GuestName  string `json:"guest_name,omitempty"`
	GuestEmail string `json:"guest_email,omitempty"`

	CheckIn     time.Time `json:"check_in"`
	CheckOut    time.Time `json:"check_out"`
	TotalAmount int64     `json:"total_amount"`

	Reason string `json:"reason,omitempty"`
}
