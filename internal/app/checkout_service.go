package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gigfolk/boxoffice/internal/clock"
	"github.com/gigfolk/boxoffice/internal/domain"
	"github.com/gigfolk/boxoffice/internal/metrics"
	"github.com/shopspring/decimal"
)

// CheckoutRepository is the transactional surface the coordinator needs: the
// inventory ledger operations plus the order and cart writes that must commit
// with them.
type CheckoutRepository interface {
	WithCheckoutTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetCart(ctx context.Context, cartID string) (domain.Cart, error)
	CountCartLines(ctx context.Context, cartID string) (int, error)
	GetCartForUpdate(ctx context.Context, cartID string) (domain.Cart, error)
	ListCartLines(ctx context.Context, cartID string) ([]domain.CartLine, error)
	GetTicketTypeForUpdate(ctx context.Context, ticketTypeID string) (domain.TicketType, error)
	DecrementRemaining(ctx context.Context, ticketTypeID string, quantity int) error
	CreateOrder(ctx context.Context, order domain.Order) error
	CreateOrderItems(ctx context.Context, items []domain.OrderItem) error
	DeleteCartLines(ctx context.Context, cartID string) error
}

// BookingCodeGenerator produces candidate booking codes. Collisions are
// detected by the orders table and retried with a fresh code.
type BookingCodeGenerator interface {
	BookingCode() (string, error)
}

// AvailabilityInvalidator drops cached remaining counts after a commit.
type AvailabilityInvalidator interface {
	Invalidate(ctx context.Context, eventIDs ...string)
}

const maxBookingCodeAttempts = 5

type CheckoutService struct {
	repo  CheckoutRepository
	codes BookingCodeGenerator
	clock clock.Clock
	avail AvailabilityInvalidator
}

func NewCheckoutService(repo CheckoutRepository, codes BookingCodeGenerator, clk clock.Clock, opts ...CheckoutServiceOption) *CheckoutService {
	svc := &CheckoutService{
		repo:  repo,
		codes: codes,
		clock: clk,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type CheckoutServiceOption func(*CheckoutService)

// WithAvailabilityInvalidator wires the read-side cache; invalidation runs
// only after a successful commit.
func WithAvailabilityInvalidator(avail AvailabilityInvalidator) CheckoutServiceOption {
	return func(s *CheckoutService) {
		s.avail = avail
	}
}

type CheckoutInput struct {
	CartID     string
	BuyerName  string
	BuyerEmail string
}

type CheckoutResult struct {
	Order domain.Order
	Items []domain.OrderItem
}

// Checkout converts a cart into an order inside one transaction: lock the
// cart, lock each referenced ticket type in canonical order, validate and
// decrement remaining, persist the order and its items, clear the cart. Any
// failure rolls everything back; nothing externally observable happens before
// commit.
func (s *CheckoutService) Checkout(ctx context.Context, in CheckoutInput) (CheckoutResult, error) {
	start := time.Now()

	if in.BuyerName == "" || in.BuyerEmail == "" {
		return CheckoutResult{}, domain.ErrBuyerRequired
	}

	if _, err := s.repo.GetCart(ctx, in.CartID); err != nil {
		return CheckoutResult{}, err
	}

	// A cart known to be empty fails before paying for a transaction.
	count, err := s.repo.CountCartLines(ctx, in.CartID)
	if err != nil {
		return CheckoutResult{}, err
	}
	if count == 0 {
		metrics.RecordCheckout("empty_cart", time.Since(start))
		return CheckoutResult{}, domain.ErrEmptyCart
	}

	now := s.clock.Now()
	var result CheckoutResult
	sold := make(map[string]int)
	events := make(map[string]struct{})

	err = s.repo.WithCheckoutTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetCartForUpdate(txCtx, in.CartID); err != nil {
			return err
		}

		lines, err := s.repo.ListCartLines(txCtx, in.CartID)
		if err != nil {
			return err
		}
		// A double-submitted checkout blocks on the cart lock above, then
		// finds the lines already consumed by the winning attempt.
		if len(lines) == 0 {
			return domain.ErrEmptyCart
		}

		ticketLines := make([]domain.CartLine, 0, len(lines))
		for _, line := range lines {
			if line.IsTicket() {
				ticketLines = append(ticketLines, line)
			}
		}
		// Canonical lock order: every checkout locks ticket types in the same
		// sorted order, so overlapping carts cannot deadlock.
		sort.Slice(ticketLines, func(i, j int) bool {
			return ticketLines[i].TicketTypeID < ticketLines[j].TicketTypeID
		})

		for _, line := range ticketLines {
			tt, err := s.repo.GetTicketTypeForUpdate(txCtx, line.TicketTypeID)
			if err != nil {
				return err
			}
			if tt.Remaining < line.Quantity {
				return &domain.InsufficientInventoryError{
					TicketTypeID: tt.ID,
					Requested:    line.Quantity,
					Remaining:    tt.Remaining,
				}
			}
			if err := s.repo.DecrementRemaining(txCtx, line.TicketTypeID, line.Quantity); err != nil {
				return err
			}
			sold[tt.ID] += line.Quantity
			events[tt.EventID] = struct{}{}
		}

		total := decimal.Zero
		for _, line := range lines {
			total = total.Add(line.Subtotal())
		}

		order := domain.Order{
			ID:            newID(),
			BuyerName:     in.BuyerName,
			BuyerEmail:    in.BuyerEmail,
			TotalAmount:   total,
			PaymentStatus: domain.PaymentStatusPending,
			CreatedAt:     now,
		}
		if err := s.createOrderWithFreshCode(txCtx, &order); err != nil {
			return err
		}

		items := make([]domain.OrderItem, 0, len(lines))
		for _, line := range lines {
			items = append(items, domain.OrderItem{
				ID:           newID(),
				OrderID:      order.ID,
				TicketTypeID: line.TicketTypeID,
				Description:  line.Description,
				Quantity:     line.Quantity,
				UnitPrice:    line.UnitPrice,
				GuestName:    line.GuestName,
			})
		}
		if err := s.repo.CreateOrderItems(txCtx, items); err != nil {
			return err
		}

		if err := s.repo.DeleteCartLines(txCtx, in.CartID); err != nil {
			return err
		}

		result = CheckoutResult{Order: order, Items: items}
		return nil
	})
	if err != nil {
		metrics.RecordCheckout(checkoutOutcome(err), time.Since(start))
		return CheckoutResult{}, err
	}

	metrics.RecordCheckout("success", time.Since(start))
	for ticketTypeID, quantity := range sold {
		metrics.RecordTicketsSold(ticketTypeID, quantity)
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

// createOrderWithFreshCode regenerates the booking code on collision, a small
// bounded number of times, then fails the attempt deterministically.
func (s *CheckoutService) createOrderWithFreshCode(ctx context.Context, order *domain.Order) error {
	for attempt := 0; attempt < maxBookingCodeAttempts; attempt++ {
		code, err := s.codes.BookingCode()
		if err != nil {
			return fmt.Errorf("generate booking code: %w", err)
		}
		order.BookingCode = code

		err = s.repo.CreateOrder(ctx, *order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrBookingCodeTaken) {
			return err
		}
	}
	return fmt.Errorf("booking code collisions exhausted after %d attempts: %w", maxBookingCodeAttempts, domain.ErrOrderPersistence)
}

func checkoutOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, domain.ErrInsufficientInventory):
		return "sold_out"
	case errors.Is(err, domain.ErrTicketTypeNotFound), errors.Is(err, domain.ErrCartNotFound):
		return "not_found"
	default:
		return "error"
	}
}
