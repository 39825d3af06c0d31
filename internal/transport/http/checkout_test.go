package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gigfolk/boxoffice/internal/app"
	"github.com/gigfolk/boxoffice/internal/domain"
	"github.com/shopspring/decimal"
)

func TestHandleCheckout(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	successResult := app.CheckoutResult{
		Order: domain.Order{
			ID:            "order-1",
			BookingCode:   "BK-0A1B2C3D",
			BuyerName:     "Ada",
			BuyerEmail:    "ada@example.com",
			TotalAmount:   decimal.RequireFromString("59.80"),
			PaymentStatus: domain.PaymentStatusPending,
			CreatedAt:     now,
		},
		Items: []domain.OrderItem{
			{ID: "item-1", OrderID: "order-1", TicketTypeID: "tt-1", Description: "General", Quantity: 2, UnitPrice: decimal.RequireFromString("29.90")},
		},
	}

	validBody := `{"buyer_name":"Ada","buyer_email":"ada@example.com"}`

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "success",
			body:           validBody,
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"booking_code":"BK-0A1B2C3D"`,
		},
		{
			name:           "invalid json",
			body:           `{"buyer_name":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown field",
			body:           `{"buyer_name":"Ada","buyer_email":"a@b.c","extra":true}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "buyer required",
			body:           validBody,
			serviceErr:     domain.ErrBuyerRequired,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: `"code":"buyer_required"`,
		},
		{
			name:           "cart not found",
			body:           validBody,
			serviceErr:     domain.ErrCartNotFound,
			expectedStatus: http.StatusNotFound,
			expectedSubstr: `"code":"cart_not_found"`,
		},
		{
			name:           "empty cart",
			body:           validBody,
			serviceErr:     domain.ErrEmptyCart,
			expectedStatus: http.StatusConflict,
			expectedSubstr: `"code":"cart_empty"`,
		},
		{
			name:           "ticket type not found",
			body:           validBody,
			serviceErr:     &domain.TicketNotFoundError{TicketTypeID: "tt-9"},
			expectedStatus: http.StatusNotFound,
			expectedSubstr: "tt-9",
		},
		{
			name:           "sold out",
			body:           validBody,
			serviceErr:     &domain.InsufficientInventoryError{TicketTypeID: "tt-1", Requested: 4, Remaining: 1},
			expectedStatus: http.StatusConflict,
			expectedSubstr: `"code":"sold_out"`,
		},
		{
			name:           "lock wait timeout",
			body:           validBody,
			serviceErr:     domain.ErrLockWaitTimeout,
			expectedStatus: http.StatusServiceUnavailable,
			expectedSubstr: `"code":"checkout_contention"`,
		},
		{
			name:           "order persistence failure",
			body:           validBody,
			serviceErr:     domain.ErrOrderPersistence,
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "internal error",
			body:           validBody,
			serviceErr:     errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubCheckoutService{
				result: successResult,
				err:    tt.serviceErr,
			}
			req := httptest.NewRequest(http.MethodPost, "/carts/cart-1/checkout", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			handler := HandleCartRoutes(&stubCartService{}, svc)
			handler.ServeHTTP(rec, req)

			res := rec.Result()
			if res.StatusCode != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, res.StatusCode)
			}
			if tt.expectedSubstr != "" {
				body := rec.Body.String()
				if !strings.Contains(body, tt.expectedSubstr) {
					t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, body)
				}
			}
		})
	}
}

func TestHandleCheckout_PassesCartID(t *testing.T) {
	t.Parallel()

	svc := &stubCheckoutService{}
	req := httptest.NewRequest(http.MethodPost, "/carts/cart-42/checkout", bytes.NewBufferString(`{"buyer_name":"Ada","buyer_email":"a@b.c"}`))
	rec := httptest.NewRecorder()

	HandleCartRoutes(&stubCartService{}, svc).ServeHTTP(rec, req)

	if svc.gotInput.CartID != "cart-42" {
		t.Fatalf("expected cart ID cart-42, got %q", svc.gotInput.CartID)
	}
	if svc.gotInput.BuyerName != "Ada" {
		t.Fatalf("expected buyer name Ada, got %q", svc.gotInput.BuyerName)
	}
}

func TestHandleCheckout_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/carts/cart-1/checkout", nil)
	rec := httptest.NewRecorder()

	HandleCartRoutes(&stubCartService{}, &stubCheckoutService{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
}

type stubCheckoutService struct {
	result   app.CheckoutResult
	err      error
	gotInput app.CheckoutInput
}

func (s *stubCheckoutService) Checkout(_ context.Context, in app.CheckoutInput) (app.CheckoutResult, error) {
	s.gotInput = in
	return s.result, s.err
}
