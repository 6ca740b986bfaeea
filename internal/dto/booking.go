package dto

import (
	"time"

	"github.com/Dandev001/maxed-homes-sub003/internal/domain"
)

// CreateBookingRequest represents a guest's booking request
type CreateBookingRequest struct {
	PropertyID      string `json:"property_id" binding:"required"`
	CheckIn         string `json:"check_in" binding:"required"`  // YYYY-MM-DD
	CheckOut        string `json:"check_out" binding:"required"` // YYYY-MM-DD
	GuestsCount     int    `json:"guests_count" binding:"required,min=1"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

// RejectBookingRequest represents a host rejecting a booking request
type RejectBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// SubmitPaymentRequest represents a guest submitting payment proof
type SubmitPaymentRequest struct {
	PaymentMethod    string `json:"payment_method" binding:"required"`
	PaymentReference string `json:"payment_reference" binding:"required"`
	PaymentProofURL  string `json:"payment_proof_url,omitempty"`
}

// ConfirmPaymentRequest represents an admin verifying payment
type ConfirmPaymentRequest struct {
	ConfirmedBy string `json:"confirmed_by" binding:"required"`
}

// CancelBookingRequest represents a cancellation with reason
type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// QuoteResponse is the pricing breakdown for a booking
type QuoteResponse struct {
	BasePrice       int64 `json:"base_price"`
	CleaningFee     int64 `json:"cleaning_fee"`
	ServiceFee      int64 `json:"service_fee"`
	Taxes           int64 `json:"taxes"`
	SecurityDeposit int64 `json:"security_deposit"`
	TotalAmount     int64 `json:"total_amount"`
}

// BookingResponse represents a booking in API responses
type BookingResponse struct {
	ID                 string        `json:"id"`
	PropertyID         string        `json:"property_id"`
	GuestID            string        `json:"guest_id"`
	CheckIn            string        `json:"check_in"`
	CheckOut           string        `json:"check_out"`
	Nights             int           `json:"nights"`
	GuestsCount        int           `json:"guests_count"`
	Status             string        `json:"status"`
	Pricing            QuoteResponse `json:"pricing"`
	Commission         int64         `json:"platform_commission,omitempty"`
	HostPayout         int64         `json:"host_payout,omitempty"`
	PaymentExpiresAt   *time.Time    `json:"payment_expires_at,omitempty"`
	ConfirmedAt        *time.Time    `json:"confirmed_at,omitempty"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	SpecialRequests    string        `json:"special_requests,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// SweepResponse reports the outcome of one expiration pass
type SweepResponse struct {
	Expired int `json:"expired"`
	Failed  int `json:"failed"`
}

// PaginatedResponse wraps a page of results
type PaginatedResponse struct {
	Data     interface{} `json:"data"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// FromDomain converts a domain Booking to a BookingResponse
func FromDomain(b *domain.Booking) *BookingResponse {
	return &BookingResponse{
		ID:          b.ID,
		PropertyID:  b.PropertyID,
		GuestID:     b.GuestID,
		CheckIn:     b.CheckIn.Format("2006-01-02"),
		CheckOut:    b.CheckOut.Format("2006-01-02"),
		Nights:      b.TotalNights(),
		GuestsCount: b.GuestsCount,
		Status:      string(b.Status),
		Pricing: QuoteResponse{
			BasePrice:       b.BasePrice,
			CleaningFee:     b.CleaningFee,
			ServiceFee:      b.ServiceFee,
			Taxes:           b.Taxes,
			SecurityDeposit: b.SecurityDeposit,
			TotalAmount:     b.TotalAmount,
		},
		Commission:         b.PlatformCommission,
		HostPayout:         b.HostPayout,
		PaymentExpiresAt:   b.PaymentExpiresAt,
		ConfirmedAt:        b.ConfirmedAt,
		CancelledAt:        b.CancelledAt,
		CancellationReason: b.CancellationReason,
		SpecialRequests:    b.SpecialRequests,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}
