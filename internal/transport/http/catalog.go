package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gigfolk/boxoffice/internal/domain"
	"github.com/shopspring/decimal"
)

// CatalogReader is the minimal interface the public event endpoints need.
type CatalogReader interface {
	ListTicketTypes(ctx context.Context, eventID string) ([]domain.TicketType, error)
	Availability(ctx context.Context, eventID string) (map[string]int, error)
}

// HandleEventRoutes dispatches the public read-only routes under /events/.
func HandleEventRoutes(svc CatalogReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := splitPath(r.URL.Path)
		if len(parts) != 3 || parts[0] != "events" || parts[1] == "" {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		eventID := parts[1]

		switch parts[2] {
		case "ticket-types":
			handleListTicketTypes(w, r, svc, eventID)
		case "availability":
			handleAvailability(w, r, svc, eventID)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func handleListTicketTypes(w http.ResponseWriter, r *http.Request, svc CatalogReader, eventID string) {
	types, err := svc.ListTicketTypes(r.Context(), eventID)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	out := make([]ticketTypeResponse, 0, len(types))
	for _, tt := range types {
		out = append(out, newTicketTypeResponse(tt))
	}
	writeJSON(w, http.StatusOK, out)
}

func handleAvailability(w http.ResponseWriter, r *http.Request, svc CatalogReader, eventID string) {
	counts, err := svc.Availability(r.Context(), eventID)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, availabilityResponse{
		EventID:   eventID,
		Remaining: counts,
	})
}

func writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEventNotFound):
		writeError(w, http.StatusNotFound, codeEventNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

type ticketTypeResponse struct {
	ID        string          `json:"id"`
	EventID   string          `json:"event_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Total     int             `json:"total"`
	Remaining int             `json:"remaining"`
	Active    bool            `json:"active"`
}

func newTicketTypeResponse(tt domain.TicketType) ticketTypeResponse {
	return ticketTypeResponse{
		ID:        tt.ID,
		EventID:   tt.EventID,
		Name:      tt.Name,
		Price:     tt.Price,
		Total:     tt.Total,
		Remaining: tt.Remaining,
		Active:    tt.Active,
	}
}

type availabilityResponse struct {
	EventID   string         `json:"event_id"`
	Remaining map[string]int `json:"remaining"`
}
