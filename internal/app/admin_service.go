package app

import (
	"context"
	"time"

	"github.com/gigfolk/boxoffice/internal/clock"
	"github.com/gigfolk/boxoffice/internal/domain"
	"github.com/shopspring/decimal"
)

type AdminRepository interface {
	CreateEvent(ctx context.Context, event domain.Event) error
	ListEvents(ctx context.Context) ([]domain.Event, error)
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	CreateTicketType(ctx context.Context, tt domain.TicketType) error
	ListTicketTypesByEvent(ctx context.Context, eventID string) ([]domain.TicketType, error)
}

type AdminService struct {
	repo  AdminRepository
	clock clock.Clock
}

func NewAdminService(repo AdminRepository, clk clock.Clock) *AdminService {
	return &AdminService{repo: repo, clock: clk}
}

type CreateEventInput struct {
	Name     string
	StartsAt *time.Time
}

func (s *AdminService) CreateEvent(ctx context.Context, in CreateEventInput) (domain.Event, error) {
	if in.Name == "" {
		return domain.Event{}, domain.ErrEventNameRequired
	}
	startsAt := s.clock.Now()
	if in.StartsAt != nil {
		startsAt = *in.StartsAt
	}

	event := domain.Event{
		ID:       newID(),
		Name:     in.Name,
		StartsAt: startsAt,
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return domain.Event{}, err
	}
	return event, nil
}

func (s *AdminService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return s.repo.ListEvents(ctx)
}

type CreateTicketTypeInput struct {
	EventID string
	Name    string
	Price   decimal.Decimal
	Total   int
}

// CreateTicketType provisions stock for an event. Remaining starts at Total;
// after this only checkout and cancellation touch it.
func (s *AdminService) CreateTicketType(ctx context.Context, in CreateTicketTypeInput) (domain.TicketType, error) {
	if in.EventID == "" {
		return domain.TicketType{}, domain.ErrInvalidID
	}
	if in.Name == "" {
		return domain.TicketType{}, domain.ErrTicketTypeNameRequired
	}
	if in.Total <= 0 {
		return domain.TicketType{}, domain.ErrInvalidQuantity
	}
	if in.Price.IsNegative() {
		return domain.TicketType{}, domain.ErrInvalidPrice
	}

	tt := domain.TicketType{
		ID:        newID(),
		EventID:   in.EventID,
		Name:      in.Name,
		Price:     in.Price,
		Total:     in.Total,
		Remaining: in.Total,
		Active:    true,
	}
	if err := s.repo.CreateTicketType(ctx, tt); err != nil {
		return domain.TicketType{}, err
	}
	return tt, nil
}

func (s *AdminService) ListTicketTypes(ctx context.Context, eventID string) ([]domain.TicketType, error) {
	if eventID == "" {
		return nil, domain.ErrInvalidID
	}
	return s.repo.ListTicketTypesByEvent(ctx, eventID)
}
