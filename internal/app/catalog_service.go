package app

import (
	"context"

	"github.com/gigfolk/boxoffice/internal/domain"
)

// AvailabilityCache is the read-side cache of remaining counts. Implemented
// by cache.Availability.
type AvailabilityCache interface {
	GetRemaining(ctx context.Context, eventID string) (map[string]int, bool)
	SetRemaining(ctx context.Context, eventID string, remaining map[string]int)
}

type CatalogRepository interface {
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	ListTicketTypesByEvent(ctx context.Context, eventID string) ([]domain.TicketType, error)
}

// CatalogService serves public listing reads. Availability counts come from
// the cache when warm; they may be a few seconds stale, which is safe because
// the checkout transaction re-verifies under lock before selling anything.
type CatalogService struct {
	repo  CatalogRepository
	avail AvailabilityCache
}

func NewCatalogService(repo CatalogRepository, avail AvailabilityCache) *CatalogService {
	return &CatalogService{repo: repo, avail: avail}
}

func (s *CatalogService) ListTicketTypes(ctx context.Context, eventID string) ([]domain.TicketType, error) {
	if eventID == "" {
		return nil, domain.ErrInvalidID
	}
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListTicketTypesByEvent(ctx, eventID)
}

// Availability returns remaining counts per ticket type, read through the
// cache. The counts poll on ticket pages, so this is the hot read path.
func (s *CatalogService) Availability(ctx context.Context, eventID string) (map[string]int, error) {
	if eventID == "" {
		return nil, domain.ErrInvalidID
	}

	if s.avail != nil {
		if cached, ok := s.avail.GetRemaining(ctx, eventID); ok {
			return cached, nil
		}
	}

	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	types, err := s.repo.ListTicketTypesByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	remaining := make(map[string]int, len(types))
	for _, tt := range types {
		remaining[tt.ID] = tt.Remaining
	}
	if s.avail != nil {
		s.avail.SetRemaining(ctx, eventID, remaining)
	}
	return remaining, nil
}
