package dto

import "github.com/Dandev001/maxed-homes-sub003/internal/domain"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// UnavailableResponse reports a date-range conflict with the bookings
// that caused it, so callers can suggest alternative dates.
type UnavailableResponse struct {
	Error     string                `json:"error"`
	Code      string                `json:"code"`
	Conflicts []domain.DateConflict `json:"conflicts,omitempty"`
}
