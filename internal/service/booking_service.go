package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Dandev001/maxed-homes-sub003/internal/domain"
	"github.com/Dandev001/maxed-homes-sub003/internal/dto"
	"github.com/Dandev001/maxed-homes-sub003/internal/metrics"
	"github.com/Dandev001/maxed-homes-sub003/internal/repository"
	"github.com/Dandev001/maxed-homes-sub003/pkg/logger"
	"github.com/Dandev001/maxed-homes-sub003/pkg/retry"
	"github.com/Dandev001/maxed-homes-sub003/pkg/telemetry"
)

// dateLayout is the calendar-date wire format for check-in/check-out.
const dateLayout = "2006-01-02"

// BookingService defines the interface for booking lifecycle logic
type BookingService interface {
	// CreateBooking checks availability, prices the stay and inserts a
	// pending booking for the guest
	CreateBooking(ctx context.Context, guestID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)

	// ApproveBooking moves a pending booking to awaiting_payment, splits
	// the commission and starts the payment deadline
	ApproveBooking(ctx context.Context, bookingID string) (*dto.BookingResponse, error)

	// RejectBooking cancels a pending booking with the host's reason
	RejectBooking(ctx context.Context, bookingID string, req *dto.RejectBookingRequest) (*dto.BookingResponse, error)

	// SubmitPayment records the guest's payment proof and moves the
	// booking to awaiting_confirmation
	SubmitPayment(ctx context.Context, bookingID, guestID string, req *dto.SubmitPaymentRequest) (*dto.BookingResponse, error)

	// ConfirmPayment verifies the payment and confirms the booking
	ConfirmPayment(ctx context.Context, bookingID string, req *dto.ConfirmPaymentRequest) (*dto.BookingResponse, error)

	// RejectPayment marks the submitted payment proof as failed
	RejectPayment(ctx context.Context, bookingID string) (*dto.BookingResponse, error)

	// CancelBooking cancels a booking from any non-terminal status
	CancelBooking(ctx context.Context, bookingID string, req *dto.CancelBookingRequest) (*dto.BookingResponse, error)

	// CompleteBooking marks a confirmed stay as completed
	CompleteBooking(ctx context.Context, bookingID string) (*dto.BookingResponse, error)

	// ExpireOverdue transitions bookings past their payment deadline to
	// expired, one validated transition per booking
	ExpireOverdue(ctx context.Context, limit int) (*dto.SweepResponse, error)

	// GetBooking retrieves a booking by ID
	GetBooking(ctx context.Context, bookingID string) (*dto.BookingResponse, error)

	// GetGuestBookings retrieves bookings for a guest, newest first
	GetGuestBookings(ctx context.Context, guestID string, page, pageSize int) (*dto.PaginatedResponse, error)

	// GetPropertyBookings retrieves bookings for a property, newest first
	GetPropertyBookings(ctx context.Context, propertyID string, page, pageSize int) (*dto.PaginatedResponse, error)
}

// bookingService implements BookingService
type bookingService struct {
	bookingRepo     repository.BookingRepository
	propertyRepo    repository.PropertyRepository
	cache           repository.BookingCache
	eventPublisher  EventPublisher
	rates           domain.PricingRates
	paymentDeadline time.Duration
	sweepRetry      *retry.Config
	now             func() time.Time
}

// BookingServiceConfig contains configuration for the booking service
type BookingServiceConfig struct {
	Rates              domain.PricingRates
	PaymentDeadline    time.Duration
	SweepMaxRetries    int
	SweepRetryInterval time.Duration
	Clock              func() time.Time
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookingRepo repository.BookingRepository,
	propertyRepo repository.PropertyRepository,
	cache repository.BookingCache,
	eventPublisher EventPublisher,
	cfg *BookingServiceConfig,
) BookingService {
	rates := domain.DefaultPricingRates()
	deadline := 2 * time.Hour
	sweepRetries := 3
	clock := time.Now
	if cfg != nil {
		if cfg.Rates.ServiceFeeBps > 0 {
			rates.ServiceFeeBps = cfg.Rates.ServiceFeeBps
		}
		if cfg.Rates.TaxBps > 0 {
			rates.TaxBps = cfg.Rates.TaxBps
		}
		if cfg.Rates.CommissionBps > 0 {
			rates.CommissionBps = cfg.Rates.CommissionBps
		}
		if cfg.PaymentDeadline > 0 {
			deadline = cfg.PaymentDeadline
		}
		if cfg.SweepMaxRetries > 0 {
			sweepRetries = cfg.SweepMaxRetries
		}
		if cfg.Clock != nil {
			clock = cfg.Clock
		}
	}
	// Use NoOpEventPublisher if none provided
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}

	sweepRetry := retry.DefaultConfig()
	sweepRetry.MaxRetries = sweepRetries
	if cfg != nil && cfg.SweepRetryInterval > 0 {
		sweepRetry.InitialInterval = cfg.SweepRetryInterval
	}

	return &bookingService{
		bookingRepo:     bookingRepo,
		propertyRepo:    propertyRepo,
		cache:           cache,
		eventPublisher:  eventPublisher,
		rates:           rates,
		paymentDeadline: deadline,
		sweepRetry:      sweepRetry,
		now:             clock,
	}
}

// CreateBooking checks availability, prices the stay and inserts a pending booking
func (s *bookingService) CreateBooking(ctx context.Context, guestID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.create")
	defer span.End()

	if req == nil || req.PropertyID == "" {
		span.SetStatus(codes.Error, "invalid property_id")
		return nil, domain.ErrInvalidPropertyID
	}
	if guestID == "" {
		span.SetStatus(codes.Error, "invalid guest_id")
		return nil, domain.ErrInvalidGuestID
	}
	if req.GuestsCount <= 0 {
		span.SetStatus(codes.Error, "invalid guests_count")
		return nil, domain.ErrInvalidGuestsCount
	}

	checkIn, err := time.Parse(dateLayout, req.CheckIn)
	if err != nil {
		span.SetStatus(codes.Error, "invalid check_in")
		return nil, domain.ErrInvalidDateRange
	}
	checkOut, err := time.Parse(dateLayout, req.CheckOut)
	if err != nil {
		span.SetStatus(codes.Error, "invalid check_out")
		return nil, domain.ErrInvalidDateRange
	}
	stay := domain.NewStayRange(checkIn, checkOut)
	if err := stay.Validate(); err != nil {
		span.SetStatus(codes.Error, "invalid date range")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("property_id", req.PropertyID),
		attribute.String("guest_id", guestID),
		attribute.String("check_in", req.CheckIn),
		attribute.String("check_out", req.CheckOut),
		attribute.Int("guests_count", req.GuestsCount),
	)

	property, err := s.propertyRepo.GetProperty(ctx, req.PropertyID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if req.GuestsCount > property.MaxGuests {
		span.SetStatus(codes.Error, "capacity exceeded")
		return nil, domain.ErrCapacityExceeded
	}

	// Pre-flight availability check. The store's range-exclusion
	// constraint is the authoritative guard; this only avoids a doomed
	// insert and gives the caller the conflicting bookings up front.
	overlapping, err := s.bookingRepo.FindOverlapping(ctx, req.PropertyID, stay)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(overlapping) > 0 {
		existing := make([]domain.Booking, len(overlapping))
		for i, b := range overlapping {
			existing[i] = *b
		}
		conflicts := domain.FindConflicts(stay, existing)
		if len(conflicts) > 0 {
			metrics.RecordConflict(ctx, req.PropertyID)
			span.SetStatus(codes.Error, "dates unavailable")
			return nil, &domain.UnavailableError{
				PropertyID: req.PropertyID,
				Requested:  stay,
				Conflicts:  conflicts,
			}
		}
	}

	quote, err := domain.PriceStay(property.PricePerNight, stay.Nights(), property.CleaningFee, property.SecurityDeposit, s.rates)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	now := s.now().UTC()
	booking := &domain.Booking{
		ID:              uuid.New().String(),
		PropertyID:      req.PropertyID,
		GuestID:         guestID,
		CheckIn:         stay.CheckIn,
		CheckOut:        stay.CheckOut,
		GuestsCount:     req.GuestsCount,
		BasePrice:       quote.BasePrice,
		CleaningFee:     quote.CleaningFee,
		ServiceFee:      quote.ServiceFee,
		SecurityDeposit: quote.SecurityDeposit,
		Taxes:           quote.Taxes,
		TotalAmount:     quote.TotalAmount,
		Status:          domain.BookingStatusPending,
		SpecialRequests: req.SpecialRequests,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := booking.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// A lost race against a concurrent create surfaces here as the same
	// UnavailableError the pre-flight check produces.
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		if domain.IsUnavailableError(err) {
			metrics.RecordConflict(ctx, req.PropertyID)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.invalidateCache(ctx, booking)
	s.publishEvent(booking, property, domain.EventBookingCreated, "", "")
	metrics.RecordCreated(ctx, booking.PropertyID)

	span.AddEvent("booking_created", trace.WithAttributes(
		attribute.String("booking_id", booking.ID),
		attribute.Int64("total_amount", booking.TotalAmount),
		attribute.Int("nights", booking.TotalNights()),
	))
	span.SetAttributes(attribute.String("booking_id", booking.ID))
	span.SetStatus(codes.Ok, "")
	return dto.FromDomain(booking), nil
}

// ApproveBooking moves a pending booking to awaiting_payment
func (s *bookingService) ApproveBooking(ctx context.Context, bookingID string) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.approve")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	booking, err := s.loadForUpdate(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	prev := booking.Status
	if err := s.validateTransition(ctx, prev, domain.BookingStatusAwaitingPayment); err != nil {
		span.SetStatus(codes.Error, "invalid transition")
		return nil, err
	}

	now := s.now().UTC()
	deadline := now.Add(s.paymentDeadline)
	commission, payout := domain.SplitCommission(booking.TotalAmount, s.rates)

	booking.Status = domain.BookingStatusAwaitingPayment
	booking.PlatformCommission = commission
	booking.HostPayout = payout
	booking.PaymentExpiresAt = &deadline
	booking.UpdatedAt = now

	if err := s.bookingRepo.UpdateTransition(ctx, booking, prev); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.invalidateCache(ctx, booking)
	s.publishEvent(booking, nil, domain.EventBookingApproved, prev, "")
	metrics.RecordApproved(ctx, booking.PropertyID)

	span.AddEvent("booking_approved", trace.WithAttributes(
		attribute.String("booking_id", booking.ID),
		attribute.Int64("platform_commission", commission),
		attribute.Int64("host_payout", payout),
	))
	span.SetStatus(codes.Ok, "")
	return dto.FromDomain(booking), nil
}

// RejectBooking cancels a pending booking with the host's reason
func (s *bookingService) RejectBooking(ctx context.Context, bookingID string, req *dto.RejectBookingRequest) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.reject")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	booking, err := s.loadForUpdate(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	prev := booking.Status
	// Only a pending request can be rejected; anything further along has
	// to go through cancel.
	if prev != domain.BookingStatusPending {
		metrics.RecordTransitionRejection(ctx, prev.String(), domain.BookingStatusCancelled.String())
		span.SetStatus(codes.Error, "invalid transition")
		return nil, &domain.InvalidTransitionError{From: prev, To: domain.BookingStatusCancelled}
	}
	if err := s.validateTransition(ctx, prev, domain.BookingStatusCancelled); err != nil {
		span.SetStatus(codes.Error, "invalid transition")
		return nil, err
	}

	reason := ""
	if req != nil {
		reason = req.Reason
	}

	now := s.now().UTC()
	booking.Status = domain.BookingStatusCancelled
	booking.CancellationReason = reason
	booking.CancelledAt = &now
	booking.UpdatedAt = now

	if err := s.bookingRepo.UpdateTransition(ctx, booking, prev); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.invalidateCache(ctx, booking)
	s.publishEvent(booking, nil, domain.EventBookingRejected, prev, reason)
	metrics.RecordCancelled(ctx, booking.PropertyID)

	span.SetStatus(codes.Ok, "")
	return dto.FromDomain(booking), nil
}

// SubmitPayment records the guest's payment proof
func (s *bookingService) SubmitPayment(ctx context.Context, bookingID, guestID string, req *dto.SubmitPaymentRequest) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.submit_payment")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", bookingID),
		attribute.String("guest_id", guestID),
	)

	if req == nil || req.PaymentMethod == "" || req.PaymentReference == "" {
		span.SetStatus(codes.Error, "missing payment details")
		return nil, domain.ErrMissingPaymentDetails
	}

	booking, err := s.loadForUpdate(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if guestID != "" && !booking.BelongsToGuest(guestID) {
		span.SetStatus(codes.Error, "invalid guest")
		return nil, domain.ErrInvalidGuestID
	}

	prev := booking.Status
	// A failed payment retries through awaiting_payment; both hops are
	// validated and then committed as one write.
	if prev == domain.BookingStatusPaymentFailed {
		if err := s.validateTransition(ctx, prev, domain.BookingStatusAwaitingPayment); err != nil {
			span.SetStatus(codes.Error, "invalid transition")
			return nil, err
		}
		if err := s.validateTransition(ctx, domain.BookingStatusAwaitingPayment, domain.BookingStatusAwaitingConfirmation); err != nil {
			span.SetStatus(codes.Error, "invalid transition")
			return nil, err
		}
	} else {
		if err := s.validateTransition(ctx, prev, domain.BookingStatusAwaitingConfirmation); err != nil {
			span.SetStatus(codes.Error, "invalid transition")
			return nil, err
		}
	}

	now := s.now().UTC()
	booking.Status = domain.BookingStatusAwaitingConfirmation
	booking.PaymentMethod = req.PaymentMethod
	booking.PaymentReference = req.PaymentReference
	booking.PaymentProofURL = req.PaymentProofURL
	booking.UpdatedAt = now

	if err := s.bookingRepo.UpdateTransition(ctx, booking, prev); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.invalidateCache(ctx, booking)
	s.publishEvent(booking, nil, domain.EventPaymentSubmitted, prev, "")

	span.SetStatus(codes.Ok, "")
	return dto.FromDomain(booking), nil
}

// ConfirmPayment verifies the payment and confirms the booking
func (s *bookingService) ConfirmPayment(ctx context.Context, bookingID string, req *dto.ConfirmPaymentRequest) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.confirm_payment")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	if req == nil || req.ConfirmedBy == "" {
		span.SetStatus(codes.Error, "missing confirmer")
		return nil, domain.ErrMissingConfirmer
	}

	booking, err := s.loadForUpdate(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	prev := booking.Status
	if err := s.validateTransition(ctx, prev, domain.BookingStatusConfirmed); err != nil {
		span.SetStatus(codes.Error, "invalid transition")
		return nil, err
	}

	now := s.now().UTC()
	booking.Status = domain.BookingStatusConfirmed
	booking.ConfirmedBy = req.ConfirmedBy
	booking.ConfirmedAt = &now
	booking.UpdatedAt = now

	if err := s.bookingRepo.UpdateTransition(ctx, booking, prev); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.invalidateCache(ctx, booking)
	s.publishEvent(booking, nil, domain.EventBookingConfirmed, prev, "")
	metrics.RecordConfirmed(ctx, booking.PropertyID)

	span.AddEvent("booking_confirmed", trace.WithAttributes(
		attribute.String("booking_id", booking.ID),
		attribute.String("confirmed_by", req.ConfirmedBy),
	))
	span.SetStatus(codes.Ok, "")
	return dto.FromDomain(booking), nil
}

// RejectPayment marks the submitted payment proof as failed
func (s *bookingService) RejectPayment(ctx context.Context, bookingID string) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.reject_payment")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	booking, err := s.loadForUpdate(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	prev := booking.Status
	if err := s.validateTransition(ctx, prev, domain.BookingStatusPaymentFailed); err != nil {
		span.SetStatus(codes.Error, "invalid transition")
		return nil, err
	}

	now := s.now().UTC()
	booking.Status = domain.BookingStatusPaymentFailed
	booking.UpdatedAt = now

	if err := s.bookingRepo.UpdateTransition(ctx, booking, prev); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.invalidateCache(ctx, booking)
	s.publishEvent(booking, nil, domain.EventPaymentRejected, prev, "")

	span.SetStatus(codes.Ok, "")
	return dto.FromDomain(booking), nil
}

// CancelBooking cancels a booking from any non-terminal status
func (s *bookingService) CancelBooking(ctx context.Context, bookingID string, req *dto.CancelBookingRequest) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.cancel")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	booking, err := s.loadForUpdate(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	prev := booking.Status
	if err := s.validateTransition(ctx, prev, domain.BookingStatusCancelled); err != nil {
		span.SetStatus(codes.Error, "invalid transition")
		return nil, err
	}

	reason := ""
	if req != nil {
		reason = req.Reason
	}

	now := s.now().UTC()
	booking.Status = domain.BookingStatusCancelled
	booking.CancellationReason = reason
	booking.CancelledAt = &now
	booking.UpdatedAt = now

	if err := s.bookingRepo.UpdateTransition(ctx, booking, prev); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.invalidateCache(ctx, booking)
	s.publishEvent(booking, nil, domain.EventBookingCancelled, prev, reason)
	metrics.RecordCancelled(ctx, booking.PropertyID)

	span.AddEvent("booking_cancelled", trace.WithAttributes(
		attribute.String("booking_id", booking.ID),
		attribute.String("previous_status", prev.String()),
	))
	span.SetStatus(codes.Ok, "")
	return dto.FromDomain(booking), nil
}

// CompleteBooking marks a confirmed stay as completed
func (s *bookingService) CompleteBooking(ctx context.Context, bookingID string) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.complete")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	booking, err := s.loadForUpdate(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	prev := booking.Status
	if err := s.validateTransition(ctx, prev, domain.BookingStatusCompleted); err != nil {
		span.SetStatus(codes.Error, "invalid transition")
		return nil, err
	}

	now := s.now().UTC()
	booking.Status = domain.BookingStatusCompleted
	booking.UpdatedAt = now

	if err := s.bookingRepo.UpdateTransition(ctx, booking, prev); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.invalidateCache(ctx, booking)
	s.publishEvent(booking, nil, domain.EventBookingCompleted, prev, "")
	metrics.RecordCompleted(ctx, booking.PropertyID)

	span.SetStatus(codes.Ok, "")
	return dto.FromDomain(booking), nil
}

// ExpireOverdue transitions bookings past their payment deadline to expired
func (s *bookingService) ExpireOverdue(ctx context.Context, limit int) (*dto.SweepResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.expire_overdue")
	defer span.End()

	if limit <= 0 {
		limit = 100
	}
	span.SetAttributes(attribute.Int("limit", limit))

	now := s.now().UTC()
	overdue, err := s.bookingRepo.FindPaymentOverdue(ctx, now, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	log := logger.Get()
	resp := &dto.SweepResponse{}
	for _, booking := range overdue {
		// Cancellable between items; committed transitions stay committed.
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return resp, err
		}
		if !booking.PaymentOverdueAt(now) {
			continue
		}
		if err := s.expireOne(ctx, booking, now); err != nil {
			if domain.IsConflictError(err) {
				// A competing writer already moved it. Not a failure.
				continue
			}
			log.Warn("failed to expire overdue booking",
				zap.String("booking_id", booking.ID),
				zap.Error(err),
			)
			resp.Failed++
			continue
		}
		resp.Expired++
	}

	if resp.Expired > 0 {
		metrics.RecordExpired(ctx, int64(resp.Expired))
	}

	span.SetAttributes(
		attribute.Int("expired_count", resp.Expired),
		attribute.Int("failed_count", resp.Failed),
	)
	span.SetStatus(codes.Ok, "")
	return resp, nil
}

// expireOne transitions a single overdue booking to expired, retrying
// transient store failures with bounded backoff.
func (s *bookingService) expireOne(ctx context.Context, booking *domain.Booking, now time.Time) error {
	prev := booking.Status
	if err := domain.ValidateTransition(prev, domain.BookingStatusExpired); err != nil {
		return err
	}

	booking.Status = domain.BookingStatusExpired
	booking.UpdatedAt = now

	result := retry.Do(ctx, s.sweepRetry, func(ctx context.Context) error {
		err := s.bookingRepo.UpdateTransition(ctx, booking, prev)
		if err != nil && !domain.IsRetryableError(err) {
			return retry.Permanent(err)
		}
		return err
	})
	if result.Err != nil {
		booking.Status = prev
		if result.LastError != nil {
			return result.LastError
		}
		return result.Err
	}

	s.invalidateCache(ctx, booking)
	s.publishEvent(booking, nil, domain.EventBookingExpired, prev, "payment deadline passed")
	return nil
}

// GetBooking retrieves a booking by ID, read-through the cache
func (s *bookingService) GetBooking(ctx context.Context, bookingID string) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.get")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	if bookingID == "" {
		span.SetStatus(codes.Error, "invalid booking_id")
		return nil, domain.ErrInvalidBookingID
	}

	if s.cache != nil {
		if cached, err := s.cache.GetBooking(ctx, bookingID); err == nil && cached != nil {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			span.SetStatus(codes.Ok, "")
			return dto.FromDomain(cached), nil
		}
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetBooking(ctx, booking); err != nil {
			logger.Get().Warn("failed to cache booking", zap.String("booking_id", bookingID), zap.Error(err))
		}
	}

	span.SetStatus(codes.Ok, "")
	return dto.FromDomain(booking), nil
}

// GetGuestBookings retrieves bookings for a guest, newest first
func (s *bookingService) GetGuestBookings(ctx context.Context, guestID string, page, pageSize int) (*dto.PaginatedResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.list_guest")
	defer span.End()

	if guestID == "" {
		span.SetStatus(codes.Error, "invalid guest_id")
		return nil, domain.ErrInvalidGuestID
	}

	page, pageSize = normalizePage(page, pageSize)
	span.SetAttributes(
		attribute.String("guest_id", guestID),
		attribute.Int("page", page),
		attribute.Int("page_size", pageSize),
	)

	// Only the first page is cached; it is the one listing hit on every
	// "my bookings" view.
	if s.cache != nil && page == 1 {
		if cached, err := s.cache.GetGuestBookings(ctx, guestID); err == nil && cached != nil {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			span.SetStatus(codes.Ok, "")
			return paginate(cached, page, pageSize), nil
		}
	}

	offset := (page - 1) * pageSize
	bookings, err := s.bookingRepo.ListByGuestID(ctx, guestID, pageSize, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if s.cache != nil && page == 1 {
		if err := s.cache.SetGuestBookings(ctx, guestID, bookings); err != nil {
			logger.Get().Warn("failed to cache guest bookings", zap.String("guest_id", guestID), zap.Error(err))
		}
	}

	span.SetAttributes(attribute.Int("count", len(bookings)))
	span.SetStatus(codes.Ok, "")
	return paginate(bookings, page, pageSize), nil
}

// GetPropertyBookings retrieves bookings for a property, newest first
func (s *bookingService) GetPropertyBookings(ctx context.Context, propertyID string, page, pageSize int) (*dto.PaginatedResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.list_property")
	defer span.End()

	if propertyID == "" {
		span.SetStatus(codes.Error, "invalid property_id")
		return nil, domain.ErrInvalidPropertyID
	}

	page, pageSize = normalizePage(page, pageSize)
	span.SetAttributes(
		attribute.String("property_id", propertyID),
		attribute.Int("page", page),
		attribute.Int("page_size", pageSize),
	)

	if s.cache != nil && page == 1 {
		if cached, err := s.cache.GetPropertyBookings(ctx, propertyID); err == nil && cached != nil {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			span.SetStatus(codes.Ok, "")
			return paginate(cached, page, pageSize), nil
		}
	}

	offset := (page - 1) * pageSize
	bookings, err := s.bookingRepo.ListByPropertyID(ctx, propertyID, pageSize, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if s.cache != nil && page == 1 {
		if err := s.cache.SetPropertyBookings(ctx, propertyID, bookings); err != nil {
			logger.Get().Warn("failed to cache property bookings", zap.String("property_id", propertyID), zap.Error(err))
		}
	}

	span.SetAttributes(attribute.Int("count", len(bookings)))
	span.SetStatus(codes.Ok, "")
	return paginate(bookings, page, pageSize), nil
}

// loadForUpdate fetches the booking straight from the store. State-changing
// operations never trust the cache.
func (s *bookingService) loadForUpdate(ctx context.Context, bookingID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, domain.ErrInvalidBookingID
	}
	return s.bookingRepo.GetByID(ctx, bookingID)
}

// validateTransition checks the status machine and records a metric for
// rejected transitions.
func (s *bookingService) validateTransition(ctx context.Context, from, to domain.BookingStatus) error {
	if err := domain.ValidateTransition(from, to); err != nil {
		metrics.RecordTransitionRejection(ctx, from.String(), to.String())
		return err
	}
	return nil
}

// invalidateCache drops every cached view touching the booking. Detached
// from the request context so a caller timeout cannot leave a stale entry.
func (s *bookingService) invalidateCache(ctx context.Context, booking *domain.Booking) {
	if s.cache == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if err := s.cache.Invalidate(ctx, booking.ID, booking.GuestID, booking.PropertyID); err != nil {
		logger.Get().Warn("failed to invalidate booking cache",
			zap.String("booking_id", booking.ID),
			zap.Error(err),
		)
	}
}

// publishEvent builds and publishes the notification payload in the
// background. Publish failures are logged and never fail the operation.
func (s *bookingService) publishEvent(booking *domain.Booking, property *domain.Property, eventType string, prevStatus domain.BookingStatus, reason string) {
	b := *booking
	var prop *domain.Property
	if property != nil {
		p := *property
		prop = &p
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		event := &domain.BookingEvent{
			Type:        eventType,
			OccurredAt:  s.now().UTC(),
			BookingID:   b.ID,
			Status:      b.Status,
			PrevStatus:  prevStatus,
			PropertyID:  b.PropertyID,
			GuestID:     b.GuestID,
			CheckIn:     b.CheckIn,
			CheckOut:    b.CheckOut,
			TotalAmount: b.TotalAmount,
			Reason:      reason,
		}

		// Best-effort denormalization for downstream delivery channels.
		if prop == nil {
			if p, err := s.propertyRepo.GetProperty(ctx, b.PropertyID); err == nil {
				prop = p
			}
		}
		if prop != nil {
			event.PropertyName = prop.Name
			event.HostID = prop.HostID
		}
		if guest, err := s.propertyRepo.GetGuest(ctx, b.GuestID); err == nil {
			event.GuestName = guest.FullName
			event.GuestEmail = guest.Email
		}

		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			logger.Get().Warn("failed to publish booking event",
				zap.String("booking_id", b.ID),
				zap.String("event_type", eventType),
				zap.Error(err),
			)
		}
	}()
}

// normalizePage clamps pagination parameters to sane bounds.
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

// paginate wraps bookings into the paginated response shape.
func paginate(bookings []*domain.Booking, page, pageSize int) *dto.PaginatedResponse {
	responses := make([]*dto.BookingResponse, len(bookings))
	for i, b := range bookings {
		responses[i] = dto.FromDomain(b)
	}
	return &dto.PaginatedResponse{
		Data:     responses,
		Page:     page,
		PageSize: pageSize,
	}
}
