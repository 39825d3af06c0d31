package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// Order is the aggregate created exactly once per successful checkout.
// Immutable after creation except for the payment and check-in status fields.
type Order struct {
	ID            string
	BookingCode   string
	BuyerName     string
	BuyerEmail    string
	TotalAmount   decimal.Decimal
	PaymentStatus PaymentStatus
	CheckedInAt   *time.Time
	CreatedAt     time.Time
}

// OrderItem records one purchased cart line. TicketTypeID is empty for
// non-ticket lines, mirroring CartLine.
type OrderItem struct {
	ID           string
	OrderID      string
	TicketTypeID string
	Description  string
	Quantity     int
	UnitPrice    decimal.Decimal
	GuestName    string
}
