package repository

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Dandev001/maxed-homes-sub003/internal/domain"
	"github.com/Dandev001/maxed-homes-sub003/pkg/telemetry"
)

// PostgreSQL error codes translated into domain errors. The exclusion
// constraint on (property_id, stay range) raises 23P01 when two active
// bookings would overlap; it is the authoritative double-booking guard.
const (
	pgExclusionViolationCode = "23P01"
	pgUniqueViolationCode    = "23505"
)

// storeError wraps a driver failure, tagging transient ones with
// domain.ErrStoreUnavailable so IsRetryableError holds for outages the
// caller may retry.
func storeError(msg string, err error) error {
	if isTransientPgError(err) {
		return fmt.Errorf("%s: %w: %w", msg, err, domain.ErrStoreUnavailable)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// isTransientPgError reports whether err looks like a store outage
// rather than a statement-level failure. SQLSTATE classes 08
// (connection exception), 53 (insufficient resources) and 57 (operator
// intervention) cover server-side outages; dial and socket failures
// surface as net errors before any SQLSTATE exists.
func isTransientPgError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "08") ||
			strings.HasPrefix(pgErr.Code, "53") ||
			strings.HasPrefix(pgErr.Code, "57")
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return pgconn.SafeToRetry(err)
}

const bookingColumns = `
	id, property_id, guest_id, check_in_date, check_out_date, guests_count,
	base_price, cleaning_fee, service_fee, security_deposit, taxes,
	total_amount, platform_commission, host_payout, status,
	payment_method, payment_reference, payment_proof_url,
	confirmed_by, confirmed_at, payment_expires_at,
	cancellation_reason, cancelled_at, special_requests,
	created_at, updated_at`

// PostgresBookingRepository implements BookingRepository using PostgreSQL with pgxpool
type PostgresBookingRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresBookingRepository creates a new PostgresBookingRepository
func NewPostgresBookingRepository(pool *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{pool: pool}
}

// Create creates a new booking record in the database
func (r *PostgresBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", booking.ID),
		attribute.String("property_id", booking.PropertyID),
		attribute.String("guest_id", booking.GuestID),
	)

	query := `
		INSERT INTO bookings (
			id, property_id, guest_id, check_in_date, check_out_date, guests_count,
			base_price, cleaning_fee, service_fee, security_deposit, taxes,
			total_amount, platform_commission, host_payout, status,
			payment_method, payment_reference, payment_proof_url,
			confirmed_by, confirmed_at, payment_expires_at,
			cancellation_reason, cancelled_at, special_requests,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14, $15,
			$16, $17, $18,
			$19, $20, $21,
			$22, $23, $24,
			$25, $26
		)
	`

	_, err := r.pool.Exec(ctx, query,
		booking.ID,
		booking.PropertyID,
		booking.GuestID,
		booking.CheckIn,
		booking.CheckOut,
		booking.GuestsCount,
		booking.BasePrice,
		booking.CleaningFee,
		booking.ServiceFee,
		booking.SecurityDeposit,
		booking.Taxes,
		booking.TotalAmount,
		booking.PlatformCommission,
		booking.HostPayout,
		booking.Status.String(),
		nullString(booking.PaymentMethod),
		nullString(booking.PaymentReference),
		nullString(booking.PaymentProofURL),
		nullString(booking.ConfirmedBy),
		booking.ConfirmedAt,
		booking.PaymentExpiresAt,
		nullString(booking.CancellationReason),
		booking.CancelledAt,
		nullString(booking.SpecialRequests),
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolationCode {
			// a concurrent writer claimed an overlapping range first; report
			// it the same way the pre-flight availability check would have
			span.SetStatus(codes.Error, "date range conflict")
			return r.unavailableError(ctx, booking)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return storeError("failed to create booking", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// unavailableError loads the bookings that block the range so the caller
// sees which reservations caused the conflict.
func (r *PostgresBookingRepository) unavailableError(ctx context.Context, booking *domain.Booking) error {
	stay := booking.Stay()
	conflicting, err := r.FindOverlapping(ctx, booking.PropertyID, stay)
	if err != nil {
		// constraint already told us the range is taken
		return &domain.UnavailableError{PropertyID: booking.PropertyID, Requested: stay}
	}

	existing := make([]domain.Booking, 0, len(conflicting))
	for _, b := range conflicting {
		existing = append(existing, *b)
	}

	return &domain.UnavailableError{
		PropertyID: booking.PropertyID,
		Requested:  stay,
		Conflicts:  domain.FindConflicts(stay, existing),
	}
}

// GetByID retrieves a booking by its ID
func (r *PostgresBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrBookingNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, storeError("failed to get booking", err)
	}

	span.SetStatus(codes.Ok, "")
	return booking, nil
}

// ListByGuestID retrieves all bookings for a guest
func (r *PostgresBookingRepository) ListByGuestID(ctx context.Context, guestID string, limit, offset int) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.list_by_guest")
	defer span.End()

	span.SetAttributes(
		attribute.String("guest_id", guestID),
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	)

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE guest_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryBookings(ctx, query, guestID, limit, offset)
}

// ListByPropertyID retrieves all bookings for a property
func (r *PostgresBookingRepository) ListByPropertyID(ctx context.Context, propertyID string, limit, offset int) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.list_by_property")
	defer span.End()

	span.SetAttributes(
		attribute.String("property_id", propertyID),
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	)

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE property_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryBookings(ctx, query, propertyID, limit, offset)
}

// FindOverlapping returns active bookings whose stay range overlaps the
// given half-open range. Back-to-back stays do not overlap.
func (r *PostgresBookingRepository) FindOverlapping(ctx context.Context, propertyID string, stay domain.StayRange) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.find_overlapping")
	defer span.End()

	span.SetAttributes(
		attribute.String("property_id", propertyID),
		attribute.String("check_in", stay.CheckIn.Format("2006-01-02")),
		attribute.String("check_out", stay.CheckOut.Format("2006-01-02")),
	)

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE property_id = $1
			AND status IN ('pending', 'awaiting_payment', 'awaiting_confirmation', 'confirmed')
			AND check_in_date < $3
			AND check_out_date > $2
		ORDER BY check_in_date
	`

	return r.queryBookings(ctx, query, propertyID, stay.CheckIn, stay.CheckOut)
}

// UpdateTransition persists a validated status change. The WHERE clause
// pins the previous status so two racing writers cannot both win; the
// loser gets ErrConcurrencyConflict and may reload and retry.
func (r *PostgresBookingRepository) UpdateTransition(ctx context.Context, booking *domain.Booking, fromStatus domain.BookingStatus) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.update_transition")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", booking.ID),
		attribute.String("from_status", fromStatus.String()),
		attribute.String("to_status", booking.Status.String()),
	)

	query := `
		UPDATE bookings SET
			status = $3,
			platform_commission = $4,
			host_payout = $5,
			payment_method = $6,
			payment_reference = $7,
			payment_proof_url = $8,
			confirmed_by = $9,
			confirmed_at = $10,
			payment_expires_at = $11,
			cancellation_reason = $12,
			cancelled_at = $13,
			updated_at = $14
		WHERE id = $1 AND status = $2
	`

	result, err := r.pool.Exec(ctx, query,
		booking.ID,
		fromStatus.String(),
		booking.Status.String(),
		booking.PlatformCommission,
		booking.HostPayout,
		nullString(booking.PaymentMethod),
		nullString(booking.PaymentReference),
		nullString(booking.PaymentProofURL),
		nullString(booking.ConfirmedBy),
		booking.ConfirmedAt,
		booking.PaymentExpiresAt,
		nullString(booking.CancellationReason),
		booking.CancelledAt,
		booking.UpdatedAt,
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return storeError("failed to update booking", err)
	}

	if result.RowsAffected() == 0 {
		// Either the booking vanished or someone changed its status first
		var current string
		err := r.pool.QueryRow(ctx, "SELECT status FROM bookings WHERE id = $1", booking.ID).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				span.SetStatus(codes.Error, "not found")
				return domain.ErrBookingNotFound
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return storeError("failed to check booking status", err)
		}
		span.SetAttributes(attribute.String("current_status", current))
		span.SetStatus(codes.Error, "concurrent modification")
		return fmt.Errorf("booking %s moved to %s during update: %w",
			booking.ID, current, domain.ErrConcurrencyConflict)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// FindPaymentOverdue returns bookings stuck in awaiting_payment past
// their deadline, oldest deadline first.
func (r *PostgresBookingRepository) FindPaymentOverdue(ctx context.Context, before time.Time, limit int) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.find_payment_overdue")
	defer span.End()

	span.SetAttributes(attribute.Int("limit", limit))

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'awaiting_payment'
			AND payment_expires_at IS NOT NULL
			AND payment_expires_at < $1
		ORDER BY payment_expires_at
		LIMIT $2
	`

	return r.queryBookings(ctx, query, before, limit)
}

func (r *PostgresBookingRepository) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*domain.Booking, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeError("failed to query bookings", err)
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, storeError("error iterating bookings", err)
	}

	return bookings, nil
}

// scanBooking scans a row into a Booking struct
func scanBooking(row pgx.Row) (*domain.Booking, error) {
	booking := &domain.Booking{}
	var (
		status             string
		paymentMethod      *string
		paymentReference   *string
		paymentProofURL    *string
		confirmedBy        *string
		confirmedAt        *time.Time
		paymentExpiresAt   *time.Time
		cancellationReason *string
		cancelledAt        *time.Time
		specialRequests    *string
	)

	err := row.Scan(
		&booking.ID,
		&booking.PropertyID,
		&booking.GuestID,
		&booking.CheckIn,
		&booking.CheckOut,
		&booking.GuestsCount,
		&booking.BasePrice,
		&booking.CleaningFee,
		&booking.ServiceFee,
		&booking.SecurityDeposit,
		&booking.Taxes,
		&booking.TotalAmount,
		&booking.PlatformCommission,
		&booking.HostPayout,
		&status,
		&paymentMethod,
		&paymentReference,
		&paymentProofURL,
		&confirmedBy,
		&confirmedAt,
		&paymentExpiresAt,
		&cancellationReason,
		&cancelledAt,
		&specialRequests,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	booking.Status = domain.BookingStatus(status)
	if paymentMethod != nil {
		booking.PaymentMethod = *paymentMethod
	}
	if paymentReference != nil {
		booking.PaymentReference = *paymentReference
	}
	if paymentProofURL != nil {
		booking.PaymentProofURL = *paymentProofURL
	}
	if confirmedBy != nil {
		booking.ConfirmedBy = *confirmedBy
	}
	booking.ConfirmedAt = confirmedAt
	booking.PaymentExpiresAt = paymentExpiresAt
	if cancellationReason != nil {
		booking.CancellationReason = *cancellationReason
	}
	booking.CancelledAt = cancelledAt
	if specialRequests != nil {
		booking.SpecialRequests = *specialRequests
	}

	return booking, nil
}

// Helper function to convert empty string to nil pointer
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Ensure PostgresBookingRepository implements BookingRepository
var _ BookingRepository = (*PostgresBookingRepository)(nil)
