package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Dandev001/maxed-homes-sub003/internal/domain"
	"github.com/Dandev001/maxed-homes-sub003/internal/dto"
	"github.com/Dandev001/maxed-homes-sub003/internal/service"
	"github.com/Dandev001/maxed-homes-sub003/pkg/telemetry"
)

// BookingHandler handles booking HTTP requests
type BookingHandler struct {
	bookingService service.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
	}
}

// CreateBooking handles POST /bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	guestID := c.GetString("guest_id")
	if guestID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "unauthorized",
			Code:  "UNAUTHORIZED",
		})
		return
	}

	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid request",
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		})
		return
	}

	span.SetAttributes(
		attribute.String("guest_id", guestID),
		attribute.String("property_id", req.PropertyID),
		attribute.String("check_in", req.CheckIn),
		attribute.String("check_out", req.CheckOut),
		attribute.Int("guests_count", req.GuestsCount),
	)

	result, err := h.bookingService.CreateBooking(ctx, guestID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("booking_id", result.ID))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, result)
}

// ApproveBooking handles POST /bookings/:id/approve
func (h *BookingHandler) ApproveBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.approve")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	bookingID := c.Param("id")
	if bookingID == "" {
		span.SetStatus(codes.Error, "booking id required")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "booking id required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	span.SetAttributes(attribute.String("booking_id", bookingID))

	result, err := h.bookingService.ApproveBooking(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// RejectBooking handles POST /bookings/:id/reject
func (h *BookingHandler) RejectBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.reject")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	bookingID := c.Param("id")
	if bookingID == "" {
		span.SetStatus(codes.Error, "booking id required")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "booking id required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	var req dto.RejectBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid request",
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		})
		return
	}

	span.SetAttributes(attribute.String("booking_id", bookingID))

	result, err := h.bookingService.RejectBooking(ctx, bookingID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// SubmitPayment handles POST /bookings/:id/payment
func (h *BookingHandler) SubmitPayment(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.submit_payment")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	guestID := c.GetString("guest_id")
	if guestID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "unauthorized",
			Code:  "UNAUTHORIZED",
		})
		return
	}

	bookingID := c.Param("id")
	if bookingID == "" {
		span.SetStatus(codes.Error, "booking id required")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "booking id required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	var req dto.SubmitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid request",
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		})
		return
	}

	span.SetAttributes(
		attribute.String("booking_id", bookingID),
		attribute.String("guest_id", guestID),
		attribute.String("payment_method", req.PaymentMethod),
	)

	result, err := h.bookingService.SubmitPayment(ctx, bookingID, guestID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// ConfirmPayment handles POST /bookings/:id/payment/confirm
func (h *BookingHandler) ConfirmPayment(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.confirm_payment")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	bookingID := c.Param("id")
	if bookingID == "" {
		span.SetStatus(codes.Error, "booking id required")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "booking id required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	var req dto.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid request",
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		})
		return
	}

	span.SetAttributes(
		attribute.String("booking_id", bookingID),
		attribute.String("confirmed_by", req.ConfirmedBy),
	)

	result, err := h.bookingService.ConfirmPayment(ctx, bookingID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// RejectPayment handles POST /bookings/:id/payment/reject
func (h *BookingHandler) RejectPayment(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.reject_payment")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	bookingID := c.Param("id")
	if bookingID == "" {
		span.SetStatus(codes.Error, "booking id required")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "booking id required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	span.SetAttributes(attribute.String("booking_id", bookingID))

	result, err := h.bookingService.RejectPayment(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// CancelBooking handles POST /bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.cancel")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	bookingID := c.Param("id")
	if bookingID == "" {
		span.SetStatus(codes.Error, "booking id required")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "booking id required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	var req dto.CancelBookingRequest
	// Reason is recorded but a bare cancel is accepted
	_ = c.ShouldBindJSON(&req)

	span.SetAttributes(attribute.String("booking_id", bookingID))

	result, err := h.bookingService.CancelBooking(ctx, bookingID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// CompleteBooking handles POST /bookings/:id/complete
func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.complete")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	bookingID := c.Param("id")
	if bookingID == "" {
		span.SetStatus(codes.Error, "booking id required")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "booking id required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	span.SetAttributes(attribute.String("booking_id", bookingID))

	result, err := h.bookingService.CompleteBooking(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// GetBooking handles GET /bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	bookingID := c.Param("id")
	if bookingID == "" {
		span.SetStatus(codes.Error, "booking id required")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "booking id required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	span.SetAttributes(attribute.String("booking_id", bookingID))

	result, err := h.bookingService.GetBooking(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// GetGuestBookings handles GET /bookings
func (h *BookingHandler) GetGuestBookings(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.list_guest")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	guestID := c.GetString("guest_id")
	if guestID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "unauthorized",
			Code:  "UNAUTHORIZED",
		})
		return
	}

	page, pageSize := parsePagination(c)

	span.SetAttributes(
		attribute.String("guest_id", guestID),
		attribute.Int("page", page),
		attribute.Int("page_size", pageSize),
	)

	result, err := h.bookingService.GetGuestBookings(ctx, guestID, page, pageSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// GetPropertyBookings handles GET /properties/:id/bookings
func (h *BookingHandler) GetPropertyBookings(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.list_property")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	propertyID := c.Param("id")
	if propertyID == "" {
		span.SetStatus(codes.Error, "property id required")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "property id required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	page, pageSize := parsePagination(c)

	span.SetAttributes(
		attribute.String("property_id", propertyID),
		attribute.Int("page", page),
		attribute.Int("page_size", pageSize),
	)

	result, err := h.bookingService.GetPropertyBookings(ctx, propertyID, page, pageSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// ExpireOverdue handles POST /admin/bookings/expire
func (h *BookingHandler) ExpireOverdue(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.expire_overdue")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	limit := 100
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	span.SetAttributes(attribute.Int("limit", limit))

	result, err := h.bookingService.ExpireOverdue(ctx, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetAttributes(
		attribute.Int("expired_count", result.Expired),
		attribute.Int("failed_count", result.Failed),
	)
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, dto.SuccessResponse{
		Success: true,
		Data:    result,
	})
}

// parsePagination reads page/page_size query parameters with defaults
func parsePagination(c *gin.Context) (int, int) {
	page := 1
	pageSize := 20
	if p := c.Query("page"); p != "" {
		if n, err := strconv.Atoi(p); err == nil && n > 0 {
			page = n
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if n, err := strconv.Atoi(ps); err == nil && n > 0 && n <= 100 {
			pageSize = n
		}
	}
	return page, pageSize
}

// handleError converts domain errors to HTTP responses
func (h *BookingHandler) handleError(c *gin.Context, err error) {
	var unavailable *domain.UnavailableError
	switch {
	case errors.As(err, &unavailable):
		c.JSON(http.StatusConflict, dto.UnavailableResponse{
			Error:     err.Error(),
			Code:      "DATES_UNAVAILABLE",
			Conflicts: unavailable.Conflicts,
		})
	case errors.Is(err, domain.ErrDatesUnavailable):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "DATES_UNAVAILABLE",
		})
	case domain.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "NOT_FOUND",
		})
	case domain.IsTransitionError(err):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_TRANSITION",
		})
	case domain.IsConflictError(err):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:   err.Error(),
			Code:    "CONCURRENCY_CONFLICT",
			Message: "The booking changed underneath this request. Retry the operation.",
		})
	case errors.Is(err, domain.ErrInvalidGuestID):
		c.JSON(http.StatusForbidden, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "FORBIDDEN",
		})
	case domain.IsValidationError(err):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_REQUEST",
		})
	case domain.IsRetryableError(err):
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "STORE_UNAVAILABLE",
		})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "internal server error",
			Code:  "INTERNAL_ERROR",
		})
	}
}
