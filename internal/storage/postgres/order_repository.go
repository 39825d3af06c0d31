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

// OrderRepository covers order lifecycle after checkout: lookup, payment,
// check-in, and the cancellation path that returns inventory to the ledger.
type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *OrderRepository) GetOrderByBookingCode(ctx context.Context, code string) (domain.Order, error) {
	const query = `
SELECT id, booking_code, buyer_name, buyer_email, total_amount, payment_status, checked_in_at, created_at
FROM orders
WHERE booking_code = $1`

	return r.scanOrder(r.queryRow(ctx, query, code))
}

// GetOrderForUpdate locks the order row so concurrent pay/check-in/cancel
// requests for the same booking code serialise.
func (r *OrderRepository) GetOrderForUpdate(ctx context.Context, code string) (domain.Order, error) {
	const query = `
SELECT id, booking_code, buyer_name, buyer_email, total_amount, payment_status, checked_in_at, created_at
FROM orders
WHERE booking_code = $1
FOR UPDATE`

	return r.scanOrder(r.queryRow(ctx, query, code))
}

func (r *OrderRepository) scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	var status string
	err := row.Scan(&o.ID, &o.BookingCode, &o.BuyerName, &o.BuyerEmail, &o.TotalAmount, &status, &o.CheckedInAt, &o.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	o.PaymentStatus = domain.PaymentStatus(status)
	return o, nil
}

func (r *OrderRepository) ListOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	const query = `
SELECT id, order_id, COALESCE(ticket_type_id::text, ''), description, quantity, unit_price, guest_name
FROM order_items
WHERE order_id = $1
ORDER BY created_at ASC`

	rows, err := r.query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.TicketTypeID, &item.Description, &item.Quantity, &item.UnitPrice, &item.GuestName); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate order items: %w", rows.Err())
	}
	return items, nil
}

func (r *OrderRepository) SetPaymentStatus(ctx context.Context, orderID string, status domain.PaymentStatus) error {
	const stmt = `UPDATE orders SET payment_status = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, orderID, status)
	if err != nil {
		return fmt.Errorf("set payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) SetCheckedInAt(ctx context.Context, orderID string, at time.Time) error {
	const stmt = `UPDATE orders SET checked_in_at = $2 WHERE id = $1 AND checked_in_at IS NULL`

	tag, err := r.exec(ctx, stmt, orderID, at)
	if err != nil {
		return fmt.Errorf("set checked in: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyCheckedIn
	}
	return nil
}

// GetTicketTypeForUpdate mirrors the checkout-side lock so cancellation
// increments under the same row lock decrements use.
func (r *OrderRepository) GetTicketTypeForUpdate(ctx context.Context, ticketTypeID string) (domain.TicketType, error) {
	const query = `
SELECT id, event_id, name, price, total, remaining, active
FROM ticket_types
WHERE id = $1
FOR UPDATE`

	var tt domain.TicketType
	err := r.queryRow(ctx, query, ticketTypeID).
		Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.Price, &tt.Total, &tt.Remaining, &tt.Active)
	if err != nil {
		if isInvalidUUID(err) || err == pgx.ErrNoRows {
			return domain.TicketType{}, &domain.TicketNotFoundError{TicketTypeID: ticketTypeID}
		}
		return domain.TicketType{}, fmt.Errorf("get ticket type for update: %w", err)
	}
	return tt, nil
}

// IncrementRemaining returns inventory on cancellation. The table CHECK
// constraint refuses to push remaining past total.
func (r *OrderRepository) IncrementRemaining(ctx context.Context, ticketTypeID string, quantity int) error {
	const stmt = `UPDATE ticket_types SET remaining = remaining + $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, ticketTypeID, quantity)
	if err != nil {
		return fmt.Errorf("increment remaining: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.TicketNotFoundError{TicketTypeID: ticketTypeID}
	}
	return nil
}

func (r *OrderRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *OrderRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *OrderRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
