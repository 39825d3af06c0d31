package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart              = errors.New("cart is empty")
	ErrCartNotFound           = errors.New("cart not found")
	ErrCartLineNotFound       = errors.New("cart line not found")
	ErrTicketTypeNotFound     = errors.New("ticket type not found")
	ErrTicketTypeInactive     = errors.New("ticket type not on sale")
	ErrInsufficientInventory  = errors.New("insufficient inventory")
	ErrOrderNotFound          = errors.New("order not found")
	ErrOrderPersistence       = errors.New("order persistence failure")
	ErrBookingCodeTaken       = errors.New("booking code already taken")
	ErrLockWaitTimeout        = errors.New("lock wait timeout")
	ErrOrderNotPaid           = errors.New("order not paid")
	ErrOrderAlreadyPaid       = errors.New("order already paid")
	ErrOrderCancelled         = errors.New("order cancelled")
	ErrAlreadyCheckedIn       = errors.New("order already checked in")
	ErrEventNotFound          = errors.New("event not found")
	ErrEventNameRequired      = errors.New("event name is required")
	ErrTicketTypeNameRequired = errors.New("ticket type name is required")
	ErrInvalidQuantity        = errors.New("invalid quantity")
	ErrInvalidPrice           = errors.New("invalid price")
	ErrDescriptionRequired    = errors.New("description is required")
	ErrBuyerRequired          = errors.New("buyer name and email are required")
	ErrInvalidID              = errors.New("invalid id")
)

// TicketNotFoundError tags ErrTicketTypeNotFound with the offending ticket
// type so callers can report which cart line failed.
type TicketNotFoundError struct {
	TicketTypeID string
}

func (e *TicketNotFoundError) Error() string {
	return fmt.Sprintf("ticket type %s not found", e.TicketTypeID)
}

func (e *TicketNotFoundError) Is(target error) bool {
	return target == ErrTicketTypeNotFound
}

// InsufficientInventoryError tags ErrInsufficientInventory with the ticket
// type that ran out and the quantities involved.
type InsufficientInventoryError struct {
	TicketTypeID string
	Requested    int
	Remaining    int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("ticket type %s: requested %d, remaining %d", e.TicketTypeID, e.Requested, e.Remaining)
}

func (e *InsufficientInventoryError) Is(target error) bool {
	return target == ErrInsufficientInventory
}
