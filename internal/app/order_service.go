package app

import (
	"context"
	"sort"
	"time"

	"github.com/gigfolk/boxoffice/internal/clock"
	"github.com/gigfolk/boxoffice/internal/domain"
)

type OrderRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetOrderByBookingCode(ctx context.Context, code string) (domain.Order, error)
	GetOrderForUpdate(ctx context.Context, code string) (domain.Order, error)
	ListOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error)
	SetPaymentStatus(ctx context.Context, orderID string, status domain.PaymentStatus) error
	SetCheckedInAt(ctx context.Context, orderID string, at time.Time) error
	GetTicketTypeForUpdate(ctx context.Context, ticketTypeID string) (domain.TicketType, error)
	IncrementRemaining(ctx context.Context, ticketTypeID string, quantity int) error
}

type OrderService struct {
	repo  OrderRepository
	clock clock.Clock
	avail AvailabilityInvalidator
}

func NewOrderService(repo OrderRepository, clk clock.Clock, opts ...OrderServiceOption) *OrderService {
	svc := &OrderService{repo: repo, clock: clk}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type OrderServiceOption func(*OrderService)

func WithOrderAvailabilityInvalidator(avail AvailabilityInvalidator) OrderServiceOption {
	return func(s *OrderService) {
		s.avail = avail
	}
}

type OrderView struct {
	Order domain.Order
	Items []domain.OrderItem
}

func (s *OrderService) GetByBookingCode(ctx context.Context, code string) (OrderView, error) {
	order, err := s.repo.GetOrderByBookingCode(ctx, code)
	if err != nil {
		return OrderView{}, err
	}
	items, err := s.repo.ListOrderItems(ctx, order.ID)
	if err != nil {
		return OrderView{}, err
	}
	return OrderView{Order: order, Items: items}, nil
}

func (s *OrderService) MarkPaid(ctx context.Context, code string) (domain.Order, error) {
	var result domain.Order
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, code)
		if err != nil {
			return err
		}
		switch order.PaymentStatus {
		case domain.PaymentStatusPaid:
			return domain.ErrOrderAlreadyPaid
		case domain.PaymentStatusCancelled:
			return domain.ErrOrderCancelled
		}
		if err := s.repo.SetPaymentStatus(txCtx, order.ID, domain.PaymentStatusPaid); err != nil {
			return err
		}
		order.PaymentStatus = domain.PaymentStatusPaid
		result = order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return result, nil
}

func (s *OrderService) CheckIn(ctx context.Context, code string) (domain.Order, error) {
	now := s.clock.Now()
	var result domain.Order
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, code)
		if err != nil {
			return err
		}
		if order.PaymentStatus == domain.PaymentStatusCancelled {
			return domain.ErrOrderCancelled
		}
		if order.PaymentStatus != domain.PaymentStatusPaid {
			return domain.ErrOrderNotPaid
		}
		if order.CheckedInAt != nil {
			return domain.ErrAlreadyCheckedIn
		}
		if err := s.repo.SetCheckedInAt(txCtx, order.ID, now); err != nil {
			return err
		}
		order.CheckedInAt = &now
		result = order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return result, nil
}

// Cancel voids an order and returns every ticket line's quantity to the
// ledger, atomically with the status change. Ticket types are locked in the
// same sorted order checkout uses.
func (s *OrderService) Cancel(ctx context.Context, code string) (domain.Order, error) {
	var result domain.Order
	events := make(map[string]struct{})

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, code)
		if err != nil {
			return err
		}
		if order.PaymentStatus == domain.PaymentStatusCancelled {
			return domain.ErrOrderCancelled
		}
		if order.CheckedInAt != nil {
			return domain.ErrAlreadyCheckedIn
		}

		items, err := s.repo.ListOrderItems(txCtx, order.ID)
		if err != nil {
			return err
		}
		ticketItems := make([]domain.OrderItem, 0, len(items))
		for _, item := range items {
			if item.TicketTypeID != "" {
				ticketItems = append(ticketItems, item)
			}
		}
		sort.Slice(ticketItems, func(i, j int) bool {
			return ticketItems[i].TicketTypeID < ticketItems[j].TicketTypeID
		})

		for _, item := range ticketItems {
			tt, err := s.repo.GetTicketTypeForUpdate(txCtx, item.TicketTypeID)
			if err != nil {
				return err
			}
			if err := s.repo.IncrementRemaining(txCtx, item.TicketTypeID, item.Quantity); err != nil {
				return err
			}
			events[tt.EventID] = struct{}{}
		}

		if err := s.repo.SetPaymentStatus(txCtx, order.ID, domain.PaymentStatusCancelled); err != nil {
			return err
		}
		order.PaymentStatus = domain.PaymentStatusCancelled
		result = order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	if s.avail != nil && len(events) > 0 {
		eventIDs := make([]string, 0, len(events))
		for eventID := range events {
			eventIDs = append(eventIDs, eventID)
		}
		s.avail.Invalidate(ctx, eventIDs...)
	}

	return result, nil
}
