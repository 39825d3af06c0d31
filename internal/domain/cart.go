package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart holds a buyer's in-progress selection. BuyerRef is an opaque session
// or account identifier; the cart layer enforces no inventory invariant.
type Cart struct {
	ID        string
	BuyerRef  string
	CreatedAt time.Time
}

// CartLine is one requested item. TicketTypeID is empty for non-ticket lines
// (fees, merchandise); only ticket lines participate in the inventory
// invariant, but every line prices into the order. UnitPrice is snapshotted
// when the line is added.
type CartLine struct {
	ID           string
	CartID       string
	TicketTypeID string
	Description  string
	Quantity     int
	UnitPrice    decimal.Decimal
	GuestName    string
}

// IsTicket reports whether the line references a ticket type.
func (l CartLine) IsTicket() bool {
	return l.TicketTypeID != ""
}

// Subtotal is quantity times the snapshotted unit price.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
