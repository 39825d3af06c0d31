package postgres

import (
	"context"
	"fmt"

	"github.com/gigfolk/boxoffice/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CartRepository covers cart CRUD. No inventory invariant lives here; a cart
// line only snapshots the price at the time it was added.
type CartRepository struct {
	pool *pgxpool.Pool
}

func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

func (r *CartRepository) CreateCart(ctx context.Context, cart domain.Cart) error {
	const stmt = `INSERT INTO carts (id, buyer_ref, created_at) VALUES ($1, $2, $3)`

	if _, err := r.pool.Exec(ctx, stmt, cart.ID, cart.BuyerRef, cart.CreatedAt); err != nil {
		return fmt.Errorf("create cart: %w", err)
	}
	return nil
}

func (r *CartRepository) GetCart(ctx context.Context, cartID string) (domain.Cart, error) {
	const query = `SELECT id, buyer_ref, created_at FROM carts WHERE id = $1`

	var c domain.Cart
	err := r.pool.QueryRow(ctx, query, cartID).Scan(&c.ID, &c.BuyerRef, &c.CreatedAt)
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

func (r *CartRepository) ListCartLines(ctx context.Context, cartID string) ([]domain.CartLine, error) {
	const query = `
SELECT id, cart_id, COALESCE(ticket_type_id::text, ''), description, quantity, unit_price, guest_name
FROM cart_lines
WHERE cart_id = $1
ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, cartID)
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

// GetTicketType is an unlocked read used to snapshot prices when a line is
// added. Availability is never decided here.
func (r *CartRepository) GetTicketType(ctx context.Context, ticketTypeID string) (domain.TicketType, error) {
	const query = `
SELECT id, event_id, name, price, total, remaining, active
FROM ticket_types
WHERE id = $1`

	var tt domain.TicketType
	err := r.pool.QueryRow(ctx, query, ticketTypeID).
		Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.Price, &tt.Total, &tt.Remaining, &tt.Active)
	if err != nil {
		if isInvalidUUID(err) || err == pgx.ErrNoRows {
			return domain.TicketType{}, &domain.TicketNotFoundError{TicketTypeID: ticketTypeID}
		}
		return domain.TicketType{}, fmt.Errorf("get ticket type: %w", err)
	}
	return tt, nil
}

func (r *CartRepository) InsertCartLine(ctx context.Context, line domain.CartLine) error {
	const stmt = `
INSERT INTO cart_lines (id, cart_id, ticket_type_id, description, quantity, unit_price, guest_name)
VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, stmt,
		line.ID,
		line.CartID,
		line.TicketTypeID,
		line.Description,
		line.Quantity,
		line.UnitPrice,
		line.GuestName,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrCartNotFound
		}
		return fmt.Errorf("insert cart line: %w", err)
	}
	return nil
}

func (r *CartRepository) DeleteCartLine(ctx context.Context, cartID, lineID string) error {
	const stmt = `DELETE FROM cart_lines WHERE id = $1 AND cart_id = $2`

	tag, err := r.pool.Exec(ctx, stmt, lineID, cartID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete cart line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCartLineNotFound
	}
	return nil
}
