package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Dandev001/maxed-homes-sub003/internal/domain"
	"github.com/Dandev001/maxed-homes-sub003/internal/dto"
)

// MockBookingService is a mock implementation of BookingService for testing
type MockBookingService struct {
	CreateBookingFunc       func(ctx context.Context, guestID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)
	ApproveBookingFunc      func(ctx context.Context, bookingID string) (*dto.BookingResponse, error)
	RejectBookingFunc       func(ctx context.Context, bookingID string, req *dto.RejectBookingRequest) (*dto.BookingResponse, error)
	SubmitPaymentFunc       func(ctx context.Context, bookingID, guestID string, req *dto.SubmitPaymentRequest) (*dto.BookingResponse, error)
	ConfirmPaymentFunc      func(ctx context.Context, bookingID string, req *dto.ConfirmPaymentRequest) (*dto.BookingResponse, error)
	RejectPaymentFunc       func(ctx context.Context, bookingID string) (*dto.BookingResponse, error)
	CancelBookingFunc       func(ctx context.Context, bookingID string, req *dto.CancelBookingRequest) (*dto.BookingResponse, error)
	CompleteBookingFunc     func(ctx context.Context, bookingID string) (*dto.BookingResponse, error)
	ExpireOverdueFunc       func(ctx context.Context, limit int) (*dto.SweepResponse, error)
	GetBookingFunc          func(ctx context.Context, bookingID string) (*dto.BookingResponse, error)
	GetGuestBookingsFunc    func(ctx context.Context, guestID string, page, pageSize int) (*dto.PaginatedResponse, error)
	GetPropertyBookingsFunc func(ctx context.Context, propertyID string, page, pageSize int) (*dto.PaginatedResponse, error)
}

func (m *MockBookingService) CreateBooking(ctx context.Context, guestID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	if m.CreateBookingFunc != nil {
		return m.CreateBookingFunc(ctx, guestID, req)
	}
	return nil, nil
}

func (m *MockBookingService) ApproveBooking(ctx context.Context, bookingID string) (*dto.BookingResponse, error) {
	if m.ApproveBookingFunc != nil {
		return m.ApproveBookingFunc(ctx, bookingID)
	}
	return nil, nil
}

func (m *MockBookingService) RejectBooking(ctx context.Context, bookingID string, req *dto.RejectBookingRequest) (*dto.BookingResponse, error) {
	if m.RejectBookingFunc != nil {
		return m.RejectBookingFunc(ctx, bookingID, req)
	}
	return nil, nil
}

func (m *MockBookingService) SubmitPayment(ctx context.Context, bookingID, guestID string, req *dto.SubmitPaymentRequest) (*dto.BookingResponse, error) {
	if m.SubmitPaymentFunc != nil {
		return m.SubmitPaymentFunc(ctx, bookingID, guestID, req)
	}
	return nil, nil
}

func (m *MockBookingService) ConfirmPayment(ctx context.Context, bookingID string, req *dto.ConfirmPaymentRequest) (*dto.BookingResponse, error) {
	if m.ConfirmPaymentFunc != nil {
		return m.ConfirmPaymentFunc(ctx, bookingID, req)
	}
	return nil, nil
}

func (m *MockBookingService) RejectPayment(ctx context.Context, bookingID string) (*dto.BookingResponse, error) {
	if m.RejectPaymentFunc != nil {
		return m.RejectPaymentFunc(ctx, bookingID)
	}
	return nil, nil
}

func (m *MockBookingService) CancelBooking(ctx context.Context, bookingID string, req *dto.CancelBookingRequest) (*dto.BookingResponse, error) {
	if m.CancelBookingFunc != nil {
		return m.CancelBookingFunc(ctx, bookingID, req)
	}
	return nil, nil
}

func (m *MockBookingService) CompleteBooking(ctx context.Context, bookingID string) (*dto.BookingResponse, error) {
	if m.CompleteBookingFunc != nil {
		return m.CompleteBookingFunc(ctx, bookingID)
	}
	return nil, nil
}

func (m *MockBookingService) ExpireOverdue(ctx context.Context, limit int) (*dto.SweepResponse, error) {
	if m.ExpireOverdueFunc != nil {
		return m.ExpireOverdueFunc(ctx, limit)
	}
	return &dto.SweepResponse{}, nil
}

func (m *MockBookingService) GetBooking(ctx context.Context, bookingID string) (*dto.BookingResponse, error) {
	if m.GetBookingFunc != nil {
		return m.GetBookingFunc(ctx, bookingID)
	}
	return nil, nil
}

func (m *MockBookingService) GetGuestBookings(ctx context.Context, guestID string, page, pageSize int) (*dto.PaginatedResponse, error) {
	if m.GetGuestBookingsFunc != nil {
		return m.GetGuestBookingsFunc(ctx, guestID, page, pageSize)
	}
	return nil, nil
}

func (m *MockBookingService) GetPropertyBookings(ctx context.Context, propertyID string, page, pageSize int) (*dto.PaginatedResponse, error) {
	if m.GetPropertyBookingsFunc != nil {
		return m.GetPropertyBookingsFunc(ctx, propertyID, page, pageSize)
	}
	return nil, nil
}

func setupTestRouter(handler *BookingHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	bookings := router.Group("/bookings")
	{
		bookings.POST("", handler.CreateBooking)
		bookings.GET("", handler.GetGuestBookings)
		bookings.GET("/:id", handler.GetBooking)
		bookings.POST("/:id/approve", handler.ApproveBooking)
		bookings.POST("/:id/reject", handler.RejectBooking)
		bookings.POST("/:id/payment", handler.SubmitPayment)
		bookings.POST("/:id/payment/confirm", handler.ConfirmPayment)
		bookings.POST("/:id/payment/reject", handler.RejectPayment)
		bookings.POST("/:id/cancel", handler.CancelBooking)
		bookings.POST("/:id/complete", handler.CompleteBooking)
	}
	router.GET("/properties/:id/bookings", handler.GetPropertyBookings)
	router.POST("/admin/bookings/expire", handler.ExpireOverdue)

	return router
}

func setupTestRouterWithAuth(handler *BookingHandler, guestID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	// Middleware to set guest_id, standing in for the gateway
	router.Use(func(c *gin.Context) {
		c.Set("guest_id", guestID)
		c.Next()
	})

	bookings := router.Group("/bookings")
	{
		bookings.POST("", handler.CreateBooking)
		bookings.GET("", handler.GetGuestBookings)
		bookings.GET("/:id", handler.GetBooking)
		bookings.POST("/:id/approve", handler.ApproveBooking)
		bookings.POST("/:id/reject", handler.RejectBooking)
		bookings.POST("/:id/payment", handler.SubmitPayment)
		bookings.POST("/:id/payment/confirm", handler.ConfirmPayment)
		bookings.POST("/:id/payment/reject", handler.RejectPayment)
		bookings.POST("/:id/cancel", handler.CancelBooking)
		bookings.POST("/:id/complete", handler.CompleteBooking)
	}
	router.GET("/properties/:id/bookings", handler.GetPropertyBookings)
	router.POST("/admin/bookings/expire", handler.ExpireOverdue)

	return router
}

func TestBookingHandler_CreateBooking(t *testing.T) {
	tests := []struct {
		name           string
		guestID        string
		request        *dto.CreateBookingRequest
		mockFunc       func(ctx context.Context, guestID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:    "successful booking",
			guestID: "guest-123",
			request: &dto.CreateBookingRequest{
				PropertyID:  "prop-123",
				CheckIn:     "2026-06-10",
				CheckOut:    "2026-06-13",
				GuestsCount: 2,
			},
			mockFunc: func(ctx context.Context, guestID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
				return &dto.BookingResponse{
					ID:     "booking-123",
					Status: "pending",
					Nights: 3,
				}, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "unauthorized - no guest_id",
			guestID:        "",
			request:        &dto.CreateBookingRequest{},
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "UNAUTHORIZED",
		},
		{
			name:    "dates unavailable",
			guestID: "guest-123",
			request: &dto.CreateBookingRequest{
				PropertyID:  "prop-123",
				CheckIn:     "2026-06-10",
				CheckOut:    "2026-06-13",
				GuestsCount: 2,
			},
			mockFunc: func(ctx context.Context, guestID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
				return nil, &domain.UnavailableError{
					PropertyID: req.PropertyID,
					Conflicts: []domain.DateConflict{
						{BookingID: "booking-999", Status: domain.BookingStatusConfirmed},
					},
				}
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "DATES_UNAVAILABLE",
		},
		{
			name:    "capacity exceeded",
			guestID: "guest-123",
			request: &dto.CreateBookingRequest{
				PropertyID:  "prop-123",
				CheckIn:     "2026-06-10",
				CheckOut:    "2026-06-13",
				GuestsCount: 12,
			},
			mockFunc: func(ctx context.Context, guestID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
				return nil, domain.ErrCapacityExceeded
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_REQUEST",
		},
		{
			name:    "property not found",
			guestID: "guest-123",
			request: &dto.CreateBookingRequest{
				PropertyID:  "prop-missing",
				CheckIn:     "2026-06-10",
				CheckOut:    "2026-06-13",
				GuestsCount: 2,
			},
			mockFunc: func(ctx context.Context, guestID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
				return nil, domain.ErrPropertyNotFound
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockBookingService{
				CreateBookingFunc: tt.mockFunc,
			}
			handler := NewBookingHandler(mockService)

			var router *gin.Engine
			if tt.guestID != "" {
				router = setupTestRouterWithAuth(handler, tt.guestID)
			} else {
				router = setupTestRouter(handler)
			}

			body, _ := json.Marshal(tt.request)
			req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedCode != "" {
				var response dto.ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &response); err == nil {
					if response.Code != tt.expectedCode {
						t.Errorf("expected code %s, got %s", tt.expectedCode, response.Code)
					}
				}
			}
		})
	}
}

func TestBookingHandler_CreateBooking_ConflictBody(t *testing.T) {
	mockService := &MockBookingService{
		CreateBookingFunc: func(ctx context.Context, guestID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
			return nil, &domain.UnavailableError{
				PropertyID: req.PropertyID,
				Conflicts: []domain.DateConflict{
					{
						BookingID: "booking-999",
						CheckIn:   time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC),
						CheckOut:  time.Date(2026, 6, 13, 0, 0, 0, 0, time.UTC),
						Status:    domain.BookingStatusConfirmed,
					},
				},
			}
		},
	}
	handler := NewBookingHandler(mockService)
	router := setupTestRouterWithAuth(handler, "guest-123")

	body, _ := json.Marshal(&dto.CreateBookingRequest{
		PropertyID: "prop-123", CheckIn: "2026-06-10", CheckOut: "2026-06-13", GuestsCount: 2,
	})
	req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, w.Code)
	}
	var response dto.UnavailableResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(response.Conflicts) != 1 || response.Conflicts[0].BookingID != "booking-999" {
		t.Errorf("expected conflicting booking-999 in response, got %+v", response.Conflicts)
	}
}

func TestBookingHandler_ApproveBooking(t *testing.T) {
	tests := []struct {
		name           string
		bookingID      string
		mockFunc       func(ctx context.Context, bookingID string) (*dto.BookingResponse, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:      "successful approval",
			bookingID: "booking-123",
			mockFunc: func(ctx context.Context, bookingID string) (*dto.BookingResponse, error) {
				return &dto.BookingResponse{ID: bookingID, Status: "awaiting_payment"}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:      "booking not found",
			bookingID: "non-existent",
			mockFunc: func(ctx context.Context, bookingID string) (*dto.BookingResponse, error) {
				return nil, domain.ErrBookingNotFound
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
		{
			name:      "already approved",
			bookingID: "booking-123",
			mockFunc: func(ctx context.Context, bookingID string) (*dto.BookingResponse, error) {
				return nil, &domain.InvalidTransitionError{
					From: domain.BookingStatusAwaitingPayment,
					To:   domain.BookingStatusAwaitingPayment,
				}
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "INVALID_TRANSITION",
		},
		{
			name:      "lost race",
			bookingID: "booking-123",
			mockFunc: func(ctx context.Context, bookingID string) (*dto.BookingResponse, error) {
				return nil, domain.ErrConcurrencyConflict
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "CONCURRENCY_CONFLICT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockBookingService{
				ApproveBookingFunc: tt.mockFunc,
			}
			handler := NewBookingHandler(mockService)
			router := setupTestRouterWithAuth(handler, "host-123")

			req := httptest.NewRequest(http.MethodPost, "/bookings/"+tt.bookingID+"/approve", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedCode != "" {
				var response dto.ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &response); err == nil {
					if response.Code != tt.expectedCode {
						t.Errorf("expected code %s, got %s", tt.expectedCode, response.Code)
					}
				}
			}
		})
	}
}

func TestBookingHandler_SubmitPayment(t *testing.T) {
	tests := []struct {
		name           string
		guestID        string
		request        *dto.SubmitPaymentRequest
		mockFunc       func(ctx context.Context, bookingID, guestID string, req *dto.SubmitPaymentRequest) (*dto.BookingResponse, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:    "successful submission",
			guestID: "guest-123",
			request: &dto.SubmitPaymentRequest{
				PaymentMethod:    "bank_transfer",
				PaymentReference: "TXN-1",
			},
			mockFunc: func(ctx context.Context, bookingID, guestID string, req *dto.SubmitPaymentRequest) (*dto.BookingResponse, error) {
				return &dto.BookingResponse{ID: bookingID, Status: "awaiting_confirmation"}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unauthorized - no guest_id",
			guestID:        "",
			request:        &dto.SubmitPaymentRequest{PaymentMethod: "bank_transfer", PaymentReference: "TXN-1"},
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "UNAUTHORIZED",
		},
		{
			name:           "missing payment reference",
			guestID:        "guest-123",
			request:        &dto.SubmitPaymentRequest{PaymentMethod: "bank_transfer"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_REQUEST",
		},
		{
			name:    "not the booking's guest",
			guestID: "guest-456",
			request: &dto.SubmitPaymentRequest{
				PaymentMethod:    "bank_transfer",
				PaymentReference: "TXN-1",
			},
			mockFunc: func(ctx context.Context, bookingID, guestID string, req *dto.SubmitPaymentRequest) (*dto.BookingResponse, error) {
				return nil, domain.ErrInvalidGuestID
			},
			expectedStatus: http.StatusForbidden,
			expectedCode:   "FORBIDDEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockBookingService{
				SubmitPaymentFunc: tt.mockFunc,
			}
			handler := NewBookingHandler(mockService)

			var router *gin.Engine
			if tt.guestID != "" {
				router = setupTestRouterWithAuth(handler, tt.guestID)
			} else {
				router = setupTestRouter(handler)
			}

			body, _ := json.Marshal(tt.request)
			req := httptest.NewRequest(http.MethodPost, "/bookings/booking-123/payment", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedCode != "" {
				var response dto.ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &response); err == nil {
					if response.Code != tt.expectedCode {
						t.Errorf("expected code %s, got %s", tt.expectedCode, response.Code)
					}
				}
			}
		})
	}
}

func TestBookingHandler_CancelBooking(t *testing.T) {
	t.Run("cancel with reason", func(t *testing.T) {
		var gotReason string
		mockService := &MockBookingService{
			CancelBookingFunc: func(ctx context.Context, bookingID string, req *dto.CancelBookingRequest) (*dto.BookingResponse, error) {
				gotReason = req.Reason
				return &dto.BookingResponse{ID: bookingID, Status: "cancelled"}, nil
			},
		}
		handler := NewBookingHandler(mockService)
		router := setupTestRouterWithAuth(handler, "guest-123")

		body, _ := json.Marshal(&dto.CancelBookingRequest{Reason: "plans changed"})
		req := httptest.NewRequest(http.MethodPost, "/bookings/booking-123/cancel", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
		}
		if gotReason != "plans changed" {
			t.Errorf("expected reason to reach the service, got %q", gotReason)
		}
	})

	t.Run("bare cancel without body is accepted", func(t *testing.T) {
		mockService := &MockBookingService{
			CancelBookingFunc: func(ctx context.Context, bookingID string, req *dto.CancelBookingRequest) (*dto.BookingResponse, error) {
				return &dto.BookingResponse{ID: bookingID, Status: "cancelled"}, nil
			},
		}
		handler := NewBookingHandler(mockService)
		router := setupTestRouterWithAuth(handler, "guest-123")

		req := httptest.NewRequest(http.MethodPost, "/bookings/booking-123/cancel", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
		}
	})

	t.Run("terminal booking", func(t *testing.T) {
		mockService := &MockBookingService{
			CancelBookingFunc: func(ctx context.Context, bookingID string, req *dto.CancelBookingRequest) (*dto.BookingResponse, error) {
				return nil, &domain.InvalidTransitionError{
					From: domain.BookingStatusCompleted,
					To:   domain.BookingStatusCancelled,
				}
			},
		}
		handler := NewBookingHandler(mockService)
		router := setupTestRouterWithAuth(handler, "guest-123")

		req := httptest.NewRequest(http.MethodPost, "/bookings/booking-123/cancel", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusConflict {
			t.Errorf("expected status %d, got %d", http.StatusConflict, w.Code)
		}
	})
}

func TestBookingHandler_ExpireOverdue(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		mockFunc       func(ctx context.Context, limit int) (*dto.SweepResponse, error)
		expectedStatus int
	}{
		{
			name:  "default limit",
			query: "",
			mockFunc: func(ctx context.Context, limit int) (*dto.SweepResponse, error) {
				if limit != 100 {
					t.Errorf("expected default limit 100, got %d", limit)
				}
				return &dto.SweepResponse{Expired: 2}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "custom limit",
			query: "?limit=50",
			mockFunc: func(ctx context.Context, limit int) (*dto.SweepResponse, error) {
				if limit != 50 {
					t.Errorf("expected limit 50, got %d", limit)
				}
				return &dto.SweepResponse{}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "out-of-range limit falls back to default",
			query: "?limit=9999",
			mockFunc: func(ctx context.Context, limit int) (*dto.SweepResponse, error) {
				if limit != 100 {
					t.Errorf("expected default limit 100, got %d", limit)
				}
				return &dto.SweepResponse{}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "store unavailable",
			query: "",
			mockFunc: func(ctx context.Context, limit int) (*dto.SweepResponse, error) {
				return nil, domain.ErrStoreUnavailable
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockBookingService{
				ExpireOverdueFunc: tt.mockFunc,
			}
			handler := NewBookingHandler(mockService)
			router := setupTestRouterWithAuth(handler, "admin")

			req := httptest.NewRequest(http.MethodPost, "/admin/bookings/expire"+tt.query, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestBookingHandler_GetGuestBookings(t *testing.T) {
	tests := []struct {
		name           string
		guestID        string
		query          string
		mockFunc       func(ctx context.Context, guestID string, page, pageSize int) (*dto.PaginatedResponse, error)
		expectedStatus int
	}{
		{
			name:    "defaults",
			guestID: "guest-123",
			query:   "",
			mockFunc: func(ctx context.Context, guestID string, page, pageSize int) (*dto.PaginatedResponse, error) {
				if page != 1 || pageSize != 20 {
					t.Errorf("expected page/page_size 1/20, got %d/%d", page, pageSize)
				}
				return &dto.PaginatedResponse{Data: []*dto.BookingResponse{}, Page: page, PageSize: pageSize}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:    "explicit pagination",
			guestID: "guest-123",
			query:   "?page=2&page_size=50",
			mockFunc: func(ctx context.Context, guestID string, page, pageSize int) (*dto.PaginatedResponse, error) {
				if page != 2 || pageSize != 50 {
					t.Errorf("expected page/page_size 2/50, got %d/%d", page, pageSize)
				}
				return &dto.PaginatedResponse{Data: []*dto.BookingResponse{}, Page: page, PageSize: pageSize}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unauthorized - no guest_id",
			guestID:        "",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockBookingService{
				GetGuestBookingsFunc: tt.mockFunc,
			}
			handler := NewBookingHandler(mockService)

			var router *gin.Engine
			if tt.guestID != "" {
				router = setupTestRouterWithAuth(handler, tt.guestID)
			} else {
				router = setupTestRouter(handler)
			}

			req := httptest.NewRequest(http.MethodGet, "/bookings"+tt.query, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestBookingHandler_HandleError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "booking not found",
			err:            domain.ErrBookingNotFound,
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
		{
			name:           "property not found",
			err:            domain.ErrPropertyNotFound,
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
		{
			name:           "dates unavailable",
			err:            domain.ErrDatesUnavailable,
			expectedStatus: http.StatusConflict,
			expectedCode:   "DATES_UNAVAILABLE",
		},
		{
			name: "invalid transition",
			err: &domain.InvalidTransitionError{
				From: domain.BookingStatusPending,
				To:   domain.BookingStatusConfirmed,
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "INVALID_TRANSITION",
		},
		{
			name:           "concurrency conflict",
			err:            domain.ErrConcurrencyConflict,
			expectedStatus: http.StatusConflict,
			expectedCode:   "CONCURRENCY_CONFLICT",
		},
		{
			name:           "wrong guest",
			err:            domain.ErrInvalidGuestID,
			expectedStatus: http.StatusForbidden,
			expectedCode:   "FORBIDDEN",
		},
		{
			name:           "capacity exceeded",
			err:            domain.ErrCapacityExceeded,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_REQUEST",
		},
		{
			name:           "store unavailable",
			err:            domain.ErrStoreUnavailable,
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   "STORE_UNAVAILABLE",
		},
		{
			name:           "unknown error",
			err:            context.DeadlineExceeded,
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockBookingService{
				GetBookingFunc: func(ctx context.Context, bookingID string) (*dto.BookingResponse, error) {
					return nil, tt.err
				},
			}
			handler := NewBookingHandler(mockService)
			router := setupTestRouterWithAuth(handler, "guest-123")

			req := httptest.NewRequest(http.MethodGet, "/bookings/test-id", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			var response dto.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if response.Code != tt.expectedCode {
				t.Errorf("expected code %s, got %s", tt.expectedCode, response.Code)
			}
		})
	}
}

func TestBookingHandler_InvalidRequestBody(t *testing.T) {
	mockService := &MockBookingService{}
	handler := NewBookingHandler(mockService)
	router := setupTestRouterWithAuth(handler, "guest-123")

	// Send invalid JSON
	req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewBufferString("invalid json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	var response dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if response.Code != "INVALID_REQUEST" {
		t.Errorf("expected code INVALID_REQUEST, got %s", response.Code)
	}
}
