package repository

import (
	"context"
	"time"

	"github.com/Dandev001/maxed-homes-sub003/internal/domain"
)

// BookingRepository defines the interface for booking data access
type BookingRepository interface {
	// Create inserts a new booking. A date-range clash with another active
	// booking for the same property surfaces as an UnavailableError even
	// when the pre-flight check missed it.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by its ID
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// ListByGuestID retrieves bookings for a guest, newest first
	ListByGuestID(ctx context.Context, guestID string, limit, offset int) ([]*domain.Booking, error)

	// ListByPropertyID retrieves bookings for a property, newest first
	ListByPropertyID(ctx context.Context, propertyID string, limit, offset int) ([]*domain.Booking, error)

	// FindOverlapping returns active bookings for the property whose stay
	// range overlaps the given range
	FindOverlapping(ctx context.Context, propertyID string, stay domain.StayRange) ([]*domain.Booking, error)

	// UpdateTransition persists the booking's current field values, but
	// only if the stored status still equals fromStatus. Returns
	// ErrConcurrencyConflict when a competing writer got there first.
	UpdateTransition(ctx context.Context, booking *domain.Booking, fromStatus domain.BookingStatus) error

	// FindPaymentOverdue returns bookings awaiting payment whose deadline
	// passed before the given instant
	FindPaymentOverdue(ctx context.Context, before time.Time, limit int) ([]*domain.Booking, error)
}

// PropertyRepository defines the interface for property and guest lookups
type PropertyRepository interface {
	// GetProperty retrieves a property summary by ID
	GetProperty(ctx context.Context, id string) (*domain.Property, error)

	// GetGuest retrieves a guest contact summary by ID
	GetGuest(ctx context.Context, id string) (*domain.Guest, error)
}

// BookingCache is a short-lived read cache over booking views. It is an
// optimization only; callers always fall through to the store on a miss.
type BookingCache interface {
	// GetBooking returns the cached booking or nil on a miss
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)

	// SetBooking caches a booking view
	SetBooking(ctx context.Context, booking *domain.Booking) error

	// GetGuestBookings returns the cached guest listing or nil on a miss
	GetGuestBookings(ctx context.Context, guestID string) ([]*domain.Booking, error)

	// SetGuestBookings caches a guest listing
	SetGuestBookings(ctx context.Context, guestID string, bookings []*domain.Booking) error

	// GetPropertyBookings returns the cached property listing or nil on a miss
	GetPropertyBookings(ctx context.Context, propertyID string) ([]*domain.Booking, error)

	// SetPropertyBookings caches a property listing
	SetPropertyBookings(ctx context.Context, propertyID string, bookings []*domain.Booking) error

	// Invalidate drops every cached view touching the booking, its guest
	// and its property
	Invalidate(ctx context.Context, bookingID, guestID, propertyID string) error
}
