package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gigfolk/boxoffice/internal/app"
	"github.com/gigfolk/boxoffice/internal/domain"
)

// OrderManager is the minimal interface the order endpoints need. Orders are
// always addressed by booking code, never by internal ID.
type OrderManager interface {
	GetByBookingCode(ctx context.Context, code string) (app.OrderView, error)
	MarkPaid(ctx context.Context, code string) (domain.Order, error)
	CheckIn(ctx context.Context, code string) (domain.Order, error)
	Cancel(ctx context.Context, code string) (domain.Order, error)
}

// HandleOrderRoutes dispatches everything under /orders/.
func HandleOrderRoutes(svc OrderManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := splitPath(r.URL.Path)
		if len(parts) < 2 || parts[0] != "orders" || parts[1] == "" {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		code := parts[1]

		switch {
		case len(parts) == 2 && r.Method == http.MethodGet:
			handleGetOrder(w, r, svc, code)
		case len(parts) == 3 && r.Method == http.MethodPost:
			switch parts[2] {
			case "pay":
				handleOrderTransition(w, r, code, svc.MarkPaid)
			case "checkin":
				handleOrderTransition(w, r, code, svc.CheckIn)
			case "cancel":
				handleOrderTransition(w, r, code, svc.Cancel)
			default:
				writeError(w, http.StatusNotFound, codeNotFound, "not found")
			}
		case len(parts) == 2 || len(parts) == 3:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func handleGetOrder(w http.ResponseWriter, r *http.Request, svc OrderManager, code string) {
	view, err := svc.GetByBookingCode(r.Context(), code)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderResponse(view.Order, view.Items))
}

func handleOrderTransition(w http.ResponseWriter, r *http.Request, code string, fn func(context.Context, string) (domain.Order, error)) {
	order, err := fn(r.Context(), code)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderResponse(order, nil))
}

func writeOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, codeOrderNotFound, err.Error())
	case errors.Is(err, domain.ErrOrderNotPaid):
		writeError(w, http.StatusConflict, codeOrderNotPaid, err.Error())
	case errors.Is(err, domain.ErrOrderAlreadyPaid):
		writeError(w, http.StatusConflict, codeOrderAlreadyPaid, err.Error())
	case errors.Is(err, domain.ErrOrderCancelled):
		writeError(w, http.StatusConflict, codeOrderCancelled, err.Error())
	case errors.Is(err, domain.ErrAlreadyCheckedIn):
		writeError(w, http.StatusConflict, codeAlreadyCheckedIn, err.Error())
	case errors.Is(err, domain.ErrLockWaitTimeout):
		writeError(w, http.StatusServiceUnavailable, codeCheckoutContention, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
