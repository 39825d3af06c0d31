package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gigfolk/boxoffice/internal/app"
	"github.com/gigfolk/boxoffice/internal/domain"
	"github.com/shopspring/decimal"
)

// CartManager is the minimal interface the cart endpoints need.
type CartManager interface {
	CreateCart(ctx context.Context, buyerRef string) (domain.Cart, error)
	GetCart(ctx context.Context, cartID string) (app.CartView, error)
	AddLine(ctx context.Context, in app.AddLineInput) (domain.CartLine, error)
	RemoveLine(ctx context.Context, cartID, lineID string) error
}

// CheckoutRunner is the minimal interface the checkout endpoint needs.
type CheckoutRunner interface {
	Checkout(ctx context.Context, in app.CheckoutInput) (app.CheckoutResult, error)
}

// HandleCreateCart returns an HTTP handler for POST /carts.
func HandleCreateCart(svc CartManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createCartRequest
		if r.Body != nil && r.ContentLength != 0 {
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
		}

		cart, err := svc.CreateCart(r.Context(), req.BuyerRef)
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		writeJSON(w, http.StatusCreated, cartResponse{
			ID:        cart.ID,
			BuyerRef:  cart.BuyerRef,
			CreatedAt: cart.CreatedAt,
		})
	}
}

// HandleCartRoutes dispatches everything under /carts/: cart view, line
// management, and checkout.
func HandleCartRoutes(carts CartManager, checkout CheckoutRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := splitPath(r.URL.Path)
		if len(parts) < 2 || parts[0] != "carts" || parts[1] == "" {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		cartID := parts[1]

		switch {
		case len(parts) == 2 && r.Method == http.MethodGet:
			handleGetCart(w, r, carts, cartID)
		case len(parts) == 3 && parts[2] == "lines" && r.Method == http.MethodPost:
			handleAddLine(w, r, carts, cartID)
		case len(parts) == 4 && parts[2] == "lines" && r.Method == http.MethodDelete:
			handleRemoveLine(w, r, carts, cartID, parts[3])
		case len(parts) == 3 && parts[2] == "checkout" && r.Method == http.MethodPost:
			handleCheckout(w, r, checkout, cartID)
		case len(parts) == 2 || (len(parts) == 3 && (parts[2] == "lines" || parts[2] == "checkout")) || (len(parts) == 4 && parts[2] == "lines"):
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func handleGetCart(w http.ResponseWriter, r *http.Request, svc CartManager, cartID string) {
	view, err := svc.GetCart(r.Context(), cartID)
	if err != nil {
		writeCartError(w, err)
		return
	}

	lines := make([]cartLineResponse, 0, len(view.Lines))
	for _, line := range view.Lines {
		lines = append(lines, newCartLineResponse(line))
	}
	writeJSON(w, http.StatusOK, cartViewResponse{
		ID:        view.Cart.ID,
		BuyerRef:  view.Cart.BuyerRef,
		Lines:     lines,
		Total:     view.Total,
		CreatedAt: view.Cart.CreatedAt,
	})
}

func handleAddLine(w http.ResponseWriter, r *http.Request, svc CartManager, cartID string) {
	var req addLineRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	price := decimal.Zero
	if req.Price != "" {
		parsed, err := decimal.NewFromString(req.Price)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidPrice, "invalid price")
			return
		}
		price = parsed
	}

	line, err := svc.AddLine(r.Context(), app.AddLineInput{
		CartID:       cartID,
		TicketTypeID: req.TicketTypeID,
		Description:  req.Description,
		Quantity:     req.Quantity,
		Price:        price,
		GuestName:    req.GuestName,
	})
	if err != nil {
		writeCartError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCartLineResponse(line))
}

func handleRemoveLine(w http.ResponseWriter, r *http.Request, svc CartManager, cartID, lineID string) {
	if err := svc.RemoveLine(r.Context(), cartID, lineID); err != nil {
		writeCartError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeCartError(w http.ResponseWriter, err error) {
	switch err {
	case domain.ErrCartNotFound:
		writeError(w, http.StatusNotFound, codeCartNotFound, err.Error())
	case domain.ErrCartLineNotFound:
		writeError(w, http.StatusNotFound, codeCartLineNotFound, err.Error())
	case domain.ErrTicketTypeInactive:
		writeError(w, http.StatusConflict, codeTicketTypeInactive, err.Error())
	case domain.ErrInvalidQuantity:
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case domain.ErrInvalidPrice:
		writeError(w, http.StatusBadRequest, codeInvalidPrice, err.Error())
	case domain.ErrDescriptionRequired:
		writeError(w, http.StatusBadRequest, codeDescriptionRequired, err.Error())
	case domain.ErrInvalidID:
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	default:
		if isTicketNotFound(err) {
			writeError(w, http.StatusNotFound, codeTicketTypeNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func splitPath(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}

type createCartRequest struct {
	BuyerRef string `json:"buyer_ref"`
}

type cartResponse struct {
	ID        string    `json:"id"`
	BuyerRef  string    `json:"buyer_ref,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type addLineRequest struct {
	TicketTypeID string `json:"ticket_type_id"`
	Description  string `json:"description"`
	Quantity     int    `json:"quantity"`
	Price        string `json:"price"`
	GuestName    string `json:"guest_name"`
}

type cartLineResponse struct {
	ID           string          `json:"id"`
	TicketTypeID string          `json:"ticket_type_id,omitempty"`
	Description  string          `json:"description"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	GuestName    string          `json:"guest_name,omitempty"`
}

func newCartLineResponse(line domain.CartLine) cartLineResponse {
	return cartLineResponse{
		ID:           line.ID,
		TicketTypeID: line.TicketTypeID,
		Description:  line.Description,
		Quantity:     line.Quantity,
		UnitPrice:    line.UnitPrice,
		GuestName:    line.GuestName,
	}
}

type cartViewResponse struct {
	ID        string             `json:"id"`
	BuyerRef  string             `json:"buyer_ref,omitempty"`
	Lines     []cartLineResponse `json:"lines"`
	Total     decimal.Decimal    `json:"total"`
	CreatedAt time.Time          `json:"created_at"`
}
