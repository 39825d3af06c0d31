package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/gigfolk/boxoffice/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CheckoutRepository is the inventory ledger plus the writes a checkout
// transaction performs. Every mutation here expects to run inside WithCheckoutTx.
type CheckoutRepository struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

func NewCheckoutRepository(pool *pgxpool.Pool, lockTimeout time.Duration) *CheckoutRepository {
	return &CheckoutRepository{pool: pool, lockTimeout: lockTimeout}
}

func (r *CheckoutRepository) WithCheckoutTx(ctx context.Context, fn func(ctx context.Context) error) error {
	err := withLockBoundedTx(ctx, r.pool, r.lockTimeout, fn)
	if err != nil && isLockNotAvailable(err) {
		return domain.ErrLockWaitTimeout
	}
	return err
}

// GetCart is a plain read used for the empty-cart precondition, outside any
// transaction.
func (r *CheckoutRepository) GetCart(ctx context.Context, cartID string) (domain.Cart, error) {
	const query = `SELECT id, buyer_ref, created_at FROM carts WHERE id = $1`

	var c domain.Cart
	err := r.queryRow(ctx, query, cartID).Scan(&c.ID, &c.BuyerRef, &c.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Cart{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Cart{}, domain.ErrCartNotFound
		}
		return domain.Cart{}, fmt.Errorf("get cart: %w", err)
	}
	return c, nil
}

func (r *CheckoutRepository) CountCartLines(ctx context.Context, cartID string) (int, error) {
	const query = `SELECT COUNT(*) FROM cart_lines WHERE cart_id = $1`

	var count int
	if err := r.queryRow(ctx, query, cartID).Scan(&count); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("count cart lines: %w", err)
	}
	return count, nil
}

// GetCartForUpdate locks the cart row so a double-submitted checkout
// serialises behind the first attempt and then sees the cleared cart.
func (r *CheckoutRepository) GetCartForUpdate(ctx context.Context, cartID string) (domain.Cart, error) {
	const query = `SELECT id, buyer_ref, created_at FROM carts WHERE id = $1 FOR UPDATE`

	var c domain.Cart
	err := r.queryRow(ctx, query, cartID).Scan(&c.ID, &c.BuyerRef, &c.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Cart{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Cart{}, domain.ErrCartNotFound
		}
		return domain.Cart{}, fmt.Errorf("get cart for update: %w", err)
	}
	return c, nil
}

func (r *CheckoutRepository) ListCartLines(ctx context.Context, cartID string) ([]domain.CartLine, error) {
	const query = `
SELECT id, cart_id, COALESCE(ticket_type_id::text, ''), description, quantity, unit_price, guest_name
FROM cart_lines
WHERE cart_id = $1
ORDER BY created_at ASC`

	rows, err := r.query(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(&l.ID, &l.CartID, &l.TicketTypeID, &l.Description, &l.Quantity, &l.UnitPrice, &l.GuestName); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate cart lines: %w", rows.Err())
	}
	return lines, nil
}

// GetTicketTypeForUpdate acquires the row lock that guards remaining. The
// lock is held until the enclosing transaction commits or rolls back.
func (r *CheckoutRepository) GetTicketTypeForUpdate(ctx context.Context, ticketTypeID string) (domain.TicketType, error) {
	const query = `
SELECT id, event_id, name, price, total, remaining, active
FROM ticket_types
WHERE id = $1
FOR UPDATE`

	var tt domain.TicketType
	err := r.queryRow(ctx, query, ticketTypeID).
		Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.Price, &tt.Total, &tt.Remaining, &tt.Active)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.TicketType{}, &domain.TicketNotFoundError{TicketTypeID: ticketTypeID}
		}
		if err == pgx.ErrNoRows {
			return domain.TicketType{}, &domain.TicketNotFoundError{TicketTypeID: ticketTypeID}
		}
		return domain.TicketType{}, fmt.Errorf("get ticket type for update: %w", err)
	}
	return tt, nil
}

// DecrementRemaining consumes inventory. The guard in the WHERE clause and
// the table CHECK constraint both refuse to take remaining below zero, so a
// stale caller cannot oversell even without the snapshot check.
func (r *CheckoutRepository) DecrementRemaining(ctx context.Context, ticketTypeID string, quantity int) error {
	const stmt = `
UPDATE ticket_types
SET remaining = remaining - $2
WHERE id = $1 AND remaining >= $2`

	tag, err := r.exec(ctx, stmt, ticketTypeID, quantity)
	if err != nil {
		return fmt.Errorf("decrement remaining: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.InsufficientInventoryError{TicketTypeID: ticketTypeID, Requested: quantity}
	}
	return nil
}

func (r *CheckoutRepository) CreateOrder(ctx context.Context, order domain.Order) error {
	const stmt = `
INSERT INTO orders (id, booking_code, buyer_name, buyer_email, total_amount, payment_status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	args := []any{
		order.ID,
		order.BookingCode,
		order.BuyerName,
		order.BuyerEmail,
		order.TotalAmount,
		order.PaymentStatus,
		order.CreatedAt,
	}

	tx := txFromContext(ctx)
	if tx == nil {
		if _, err := r.pool.Exec(ctx, stmt, args...); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrBookingCodeTaken
			}
			return fmt.Errorf("create order: %w", err)
		}
		return nil
	}

	// Insert under a savepoint: a booking-code collision must not poison the
	// enclosing checkout transaction, which retries with a fresh code.
	nested, err := tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("create order savepoint: %w", err)
	}
	if _, err := nested.Exec(ctx, stmt, args...); err != nil {
		_ = nested.Rollback(ctx)
		if isUniqueViolation(err) {
			return domain.ErrBookingCodeTaken
		}
		return fmt.Errorf("create order: %w", err)
	}
	return nested.Commit(ctx)
}

func (r *CheckoutRepository) CreateOrderItems(ctx context.Context, items []domain.OrderItem) error {
	const stmt = `
INSERT INTO order_items (id, order_id, ticket_type_id, description, quantity, unit_price, guest_name)
VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7)`

	for _, item := range items {
		_, err := r.exec(ctx, stmt,
			item.ID,
			item.OrderID,
			item.TicketTypeID,
			item.Description,
			item.Quantity,
			item.UnitPrice,
			item.GuestName,
		)
		if err != nil {
			return fmt.Errorf("create order item: %w", err)
		}
	}
	return nil
}

func (r *CheckoutRepository) DeleteCartLines(ctx context.Context, cartID string) error {
	const stmt = `DELETE FROM cart_lines WHERE cart_id = $1`

	if _, err := r.exec(ctx, stmt, cartID); err != nil {
		return fmt.Errorf("delete cart lines: %w", err)
	}
	return nil
}

func (r *CheckoutRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *CheckoutRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *CheckoutRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
