package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gigfolk/boxoffice/internal/app"
	"github.com/gigfolk/boxoffice/internal/domain"
	"github.com/shopspring/decimal"
)

func handleCheckout(w http.ResponseWriter, r *http.Request, svc CheckoutRunner, cartID string) {
	var req checkoutRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	result, err := svc.Checkout(r.Context(), app.CheckoutInput{
		CartID:     cartID,
		BuyerName:  req.BuyerName,
		BuyerEmail: req.BuyerEmail,
	})
	if err != nil {
		writeCheckoutError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newOrderResponse(result.Order, result.Items))
}

func writeCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrCartNotFound):
		writeError(w, http.StatusNotFound, codeCartNotFound, err.Error())
	case errors.Is(err, domain.ErrEmptyCart):
		writeError(w, http.StatusConflict, codeCartEmpty, err.Error())
	case errors.Is(err, domain.ErrBuyerRequired):
		writeError(w, http.StatusBadRequest, codeBuyerRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case isTicketNotFound(err):
		writeError(w, http.StatusNotFound, codeTicketTypeNotFound, err.Error())
	case errors.Is(err, domain.ErrInsufficientInventory):
		writeError(w, http.StatusConflict, codeSoldOut, err.Error())
	case errors.Is(err, domain.ErrLockWaitTimeout):
		writeError(w, http.StatusServiceUnavailable, codeCheckoutContention, err.Error())
	case errors.Is(err, domain.ErrOrderPersistence):
		writeError(w, http.StatusInternalServerError, codeInternalError, "could not persist order")
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func isTicketNotFound(err error) bool {
	return errors.Is(err, domain.ErrTicketTypeNotFound)
}

type checkoutRequest struct {
	BuyerName  string `json:"buyer_name"`
	BuyerEmail string `json:"buyer_email"`
}

type orderItemResponse struct {
	TicketTypeID string          `json:"ticket_type_id,omitempty"`
	Description  string          `json:"description"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	GuestName    string          `json:"guest_name,omitempty"`
}

type orderResponse struct {
	ID            string              `json:"id"`
	BookingCode   string              `json:"booking_code"`
	BuyerName     string              `json:"buyer_name"`
	BuyerEmail    string              `json:"buyer_email"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	PaymentStatus string              `json:"payment_status"`
	Items         []orderItemResponse `json:"items"`
	CheckedInAt   *time.Time          `json:"checked_in_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

func newOrderResponse(order domain.Order, items []domain.OrderItem) orderResponse {
	out := make([]orderItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, orderItemResponse{
			TicketTypeID: item.TicketTypeID,
			Description:  item.Description,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			GuestName:    item.GuestName,
		})
	}
	return orderResponse{
		ID:            order.ID,
		BookingCode:   order.BookingCode,
		BuyerName:     order.BuyerName,
		BuyerEmail:    order.BuyerEmail,
		TotalAmount:   order.TotalAmount,
		PaymentStatus: string(order.PaymentStatus),
		Items:         out,
		CheckedInAt:   order.CheckedInAt,
		CreatedAt:     order.CreatedAt,
	}
}
