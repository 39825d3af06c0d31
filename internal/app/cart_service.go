package app

import (
	"context"

	"github.com/gigfolk/boxoffice/internal/clock"
	"github.com/gigfolk/boxoffice/internal/domain"
	"github.com/shopspring/decimal"
)

type CartRepository interface {
	CreateCart(ctx context.Context, cart domain.Cart) error
	GetCart(ctx context.Context, cartID string) (domain.Cart, error)
	ListCartLines(ctx context.Context, cartID string) ([]domain.CartLine, error)
	GetTicketType(ctx context.Context, ticketTypeID string) (domain.TicketType, error)
	InsertCartLine(ctx context.Context, line domain.CartLine) error
	DeleteCartLine(ctx context.Context, cartID, lineID string) error
}

type CartService struct {
	repo  CartRepository
	clock clock.Clock
}

func NewCartService(repo CartRepository, clk clock.Clock) *CartService {
	return &CartService{repo: repo, clock: clk}
}

func (s *CartService) CreateCart(ctx context.Context, buyerRef string) (domain.Cart, error) {
	cart := domain.Cart{
		ID:        newID(),
		BuyerRef:  buyerRef,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.CreateCart(ctx, cart); err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

type CartView struct {
	Cart  domain.Cart
	Lines []domain.CartLine
	Total decimal.Decimal
}

func (s *CartService) GetCart(ctx context.Context, cartID string) (CartView, error) {
	cart, err := s.repo.GetCart(ctx, cartID)
	if err != nil {
		return CartView{}, err
	}
	lines, err := s.repo.ListCartLines(ctx, cartID)
	if err != nil {
		return CartView{}, err
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	return CartView{Cart: cart, Lines: lines, Total: total}, nil
}

type AddLineInput struct {
	CartID       string
	TicketTypeID string
	Description  string
	Quantity     int
	// Price applies to non-ticket lines only; ticket lines snapshot the
	// ticket type's current price.
	Price     decimal.Decimal
	GuestName string
}

// AddLine appends a line to the cart. Availability is not checked here: the
// cart layer makes no promise the checkout transaction does not re-verify
// under lock.
func (s *CartService) AddLine(ctx context.Context, in AddLineInput) (domain.CartLine, error) {
	if in.Quantity <= 0 {
		return domain.CartLine{}, domain.ErrInvalidQuantity
	}

	if _, err := s.repo.GetCart(ctx, in.CartID); err != nil {
		return domain.CartLine{}, err
	}

	line := domain.CartLine{
		ID:        newID(),
		CartID:    in.CartID,
		Quantity:  in.Quantity,
		GuestName: in.GuestName,
	}

	if in.TicketTypeID != "" {
		tt, err := s.repo.GetTicketType(ctx, in.TicketTypeID)
		if err != nil {
			return domain.CartLine{}, err
		}
		if !tt.Active {
			return domain.CartLine{}, domain.ErrTicketTypeInactive
		}
		line.TicketTypeID = tt.ID
		line.Description = tt.Name
		line.UnitPrice = tt.Price
	} else {
		if in.Description == "" {
			return domain.CartLine{}, domain.ErrDescriptionRequired
		}
		if in.Price.IsNegative() {
			return domain.CartLine{}, domain.ErrInvalidPrice
		}
		line.Description = in.Description
		line.UnitPrice = in.Price
	}

	if err := s.repo.InsertCartLine(ctx, line); err != nil {
		return domain.CartLine{}, err
	}
	return line, nil
}

func (s *CartService) RemoveLine(ctx context.Context, cartID, lineID string) error {
	return s.repo.DeleteCartLine(ctx, cartID, lineID)
}
