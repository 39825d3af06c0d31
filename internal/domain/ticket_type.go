package domain

import "github.com/shopspring/decimal"

// TicketType is a purchasable ticket category with finite stock.
// Total is immutable after creation; Remaining is mutated only under a row
// lock by the checkout and cancellation paths, and always satisfies
// 0 <= Remaining <= Total.
type TicketType struct {
	ID        string
	EventID   string
	Name      string
	Price     decimal.Decimal
	Total     int
	Remaining int
	Active    bool
}
