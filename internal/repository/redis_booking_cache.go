package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Dandev001/maxed-homes-sub003/internal/domain"
	"github.com/Dandev001/maxed-homes-sub003/pkg/redis"
	"github.com/Dandev001/maxed-homes-sub003/pkg/telemetry"
)

// Cache key layout. One key per booking plus one listing key per guest
// and per property, so invalidation after a write is three DELs.
const (
	bookingKeyPrefix          = "booking:"
	guestBookingsKeyPrefix    = "bookings:guest:"
	propertyBookingsKeyPrefix = "bookings:property:"
)

// RedisBookingCache implements BookingCache on Redis. Entries carry a TTL
// as a safety net; writes invalidate eagerly.
type RedisBookingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBookingCache creates a new RedisBookingCache
func NewRedisBookingCache(client *redis.Client, ttl time.Duration) *RedisBookingCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisBookingCache{client: client, ttl: ttl}
}

// GetBooking returns the cached booking, or nil on a miss
func (c *RedisBookingCache) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "cache.redis.booking.get")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	data, err := c.client.Get(ctx, bookingKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			span.SetAttributes(attribute.Bool("cache_hit", false))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read booking cache: %w", err)
	}

	var booking domain.Booking
	if err := json.Unmarshal(data, &booking); err != nil {
		// stale or corrupt entry, treat as a miss
		return nil, nil
	}

	span.SetAttributes(attribute.Bool("cache_hit", true))
	return &booking, nil
}

// SetBooking caches a booking view
func (c *RedisBookingCache) SetBooking(ctx context.Context, booking *domain.Booking) error {
	data, err := json.Marshal(booking)
	if err != nil {
		return fmt.Errorf("failed to marshal booking for cache: %w", err)
	}
	return c.client.Set(ctx, bookingKeyPrefix+booking.ID, data, c.ttl).Err()
}

// GetGuestBookings returns the cached guest listing, or nil on a miss
func (c *RedisBookingCache) GetGuestBookings(ctx context.Context, guestID string) ([]*domain.Booking, error) {
	return c.getList(ctx, guestBookingsKeyPrefix+guestID)
}

// SetGuestBookings caches a guest listing
func (c *RedisBookingCache) SetGuestBookings(ctx context.Context, guestID string, bookings []*domain.Booking) error {
	return c.setList(ctx, guestBookingsKeyPrefix+guestID, bookings)
}

// GetPropertyBookings returns the cached property listing, or nil on a miss
func (c *RedisBookingCache) GetPropertyBookings(ctx context.Context, propertyID string) ([]*domain.Booking, error) {
	return c.getList(ctx, propertyBookingsKeyPrefix+propertyID)
}

// SetPropertyBookings caches a property listing
func (c *RedisBookingCache) SetPropertyBookings(ctx context.Context, propertyID string, bookings []*domain.Booking) error {
	return c.setList(ctx, propertyBookingsKeyPrefix+propertyID, bookings)
}

func (c *RedisBookingCache) getList(ctx context.Context, key string) ([]*domain.Booking, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read bookings cache: %w", err)
	}

	var bookings []*domain.Booking
	if err := json.Unmarshal(data, &bookings); err != nil {
		return nil, nil
	}
	return bookings, nil
}

func (c *RedisBookingCache) setList(ctx context.Context, key string, bookings []*domain.Booking) error {
	data, err := json.Marshal(bookings)
	if err != nil {
		return fmt.Errorf("failed to marshal bookings for cache: %w", err)
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// Invalidate drops every cached view touching the booking
func (c *RedisBookingCache) Invalidate(ctx context.Context, bookingID, guestID, propertyID string) error {
	ctx, span := telemetry.StartSpan(ctx, "cache.redis.booking.invalidate")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	return c.client.Del(ctx,
		bookingKeyPrefix+bookingID,
		guestBookingsKeyPrefix+guestID,
		propertyBookingsKeyPrefix+propertyID,
	).Err()
}

// Ensure RedisBookingCache implements BookingCache
var _ BookingCache = (*RedisBookingCache)(nil)
