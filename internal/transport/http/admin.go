package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gigfolk/boxoffice/internal/app"
	"github.com/gigfolk/boxoffice/internal/domain"
	"github.com/shopspring/decimal"
)

// AdminManager is the minimal interface the admin endpoints need.
type AdminManager interface {
	CreateEvent(ctx context.Context, in app.CreateEventInput) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	CreateTicketType(ctx context.Context, in app.CreateTicketTypeInput) (domain.TicketType, error)
	ListTicketTypes(ctx context.Context, eventID string) ([]domain.TicketType, error)
}

// HandleAdminEvents returns an HTTP handler for /admin/events.
func HandleAdminEvents(svc AdminManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			handleCreateEvent(w, r, svc)
		case http.MethodGet:
			handleListEvents(w, r, svc)
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleAdminEventRoutes dispatches /admin/events/{id}/ticket-types.
func HandleAdminEventRoutes(svc AdminManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := splitPath(r.URL.Path)
		if len(parts) != 4 || parts[0] != "admin" || parts[1] != "events" || parts[2] == "" || parts[3] != "ticket-types" {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		eventID := parts[2]

		switch r.Method {
		case http.MethodPost:
			handleCreateTicketType(w, r, svc, eventID)
		case http.MethodGet:
			handleAdminListTicketTypes(w, r, svc, eventID)
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func handleCreateEvent(w http.ResponseWriter, r *http.Request, svc AdminManager) {
	var req createEventRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	event, err := svc.CreateEvent(r.Context(), app.CreateEventInput{
		Name:     req.Name,
		StartsAt: req.StartsAt,
	})
	if err != nil {
		writeAdminError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newEventResponse(event))
}

func handleListEvents(w http.ResponseWriter, r *http.Request, svc AdminManager) {
	events, err := svc.ListEvents(r.Context())
	if err != nil {
		writeAdminError(w, err)
		return
	}
	out := make([]eventResponse, 0, len(events))
	for _, event := range events {
		out = append(out, newEventResponse(event))
	}
	writeJSON(w, http.StatusOK, out)
}

func handleCreateTicketType(w http.ResponseWriter, r *http.Request, svc AdminManager, eventID string) {
	var req createTicketTypeRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidPrice, "invalid price")
		return
	}

	tt, err := svc.CreateTicketType(r.Context(), app.CreateTicketTypeInput{
		EventID: eventID,
		Name:    req.Name,
		Price:   price,
		Total:   req.Total,
	})
	if err != nil {
		writeAdminError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTicketTypeResponse(tt))
}

func handleAdminListTicketTypes(w http.ResponseWriter, r *http.Request, svc AdminManager, eventID string) {
	types, err := svc.ListTicketTypes(r.Context(), eventID)
	if err != nil {
		writeAdminError(w, err)
		return
	}
	out := make([]ticketTypeResponse, 0, len(types))
	for _, tt := range types {
		out = append(out, newTicketTypeResponse(tt))
	}
	writeJSON(w, http.StatusOK, out)
}

func writeAdminError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEventNotFound):
		writeError(w, http.StatusNotFound, codeEventNotFound, err.Error())
	case errors.Is(err, domain.ErrEventNameRequired):
		writeError(w, http.StatusBadRequest, codeEventNameRequired, err.Error())
	case errors.Is(err, domain.ErrTicketTypeNameRequired):
		writeError(w, http.StatusBadRequest, codeTicketTypeNameRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case errors.Is(err, domain.ErrInvalidPrice):
		writeError(w, http.StatusBadRequest, codeInvalidPrice, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

type createEventRequest struct {
	Name     string     `json:"name"`
	StartsAt *time.Time `json:"starts_at"`
}

type eventResponse struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	StartsAt time.Time `json:"starts_at"`
}

func newEventResponse(event domain.Event) eventResponse {
	return eventResponse{
		ID:       event.ID,
		Name:     event.Name,
		StartsAt: event.StartsAt,
	}
}

type createTicketTypeRequest struct {
	Name  string `json:"name"`
	Price string `json:"price"`
	Total int    `json:"total"`
}
