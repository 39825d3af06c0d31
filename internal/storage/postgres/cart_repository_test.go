package postgres

import (
	"context"
	"testing"

	"github.com/gigfolk/boxoffice/internal/domain"
	"github.com/gigfolk/boxoffice/internal/testutil"
	"github.com/shopspring/decimal"
)

func TestCartRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewCartRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	t.Run("InsertCartLine and ListCartLines", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		eventID := testutil.InsertEvent(t, ctx, pool, "Concert")
		ttID := testutil.InsertTicketType(t, ctx, pool, eventID, "General", "29.90", 100)
		cartID := testutil.InsertCart(t, ctx, pool)

		line := domain.CartLine{
			ID:           "33333333-3333-3333-3333-333333333333",
			CartID:       cartID,
			TicketTypeID: ttID,
			Description:  "General",
			Quantity:     2,
			UnitPrice:    decimal.RequireFromString("29.90"),
			GuestName:    "Ada",
		}
		if err := repo.InsertCartLine(ctx, line); err != nil {
			t.Fatalf("insert line: %v", err)
		}

		lines, err := repo.ListCartLines(ctx, cartID)
		if err != nil {
			t.Fatalf("list lines: %v", err)
		}
		if len(lines) != 1 {
			t.Fatalf("expected 1 line, got %d", len(lines))
		}
		if lines[0].TicketTypeID != ttID || lines[0].Quantity != 2 || lines[0].GuestName != "Ada" {
			t.Fatalf("unexpected line: %+v", lines[0])
		}
		if !lines[0].UnitPrice.Equal(decimal.RequireFromString("29.90")) {
			t.Fatalf("unexpected unit price: %s", lines[0].UnitPrice)
		}
	})

	t.Run("InsertCartLine maps missing cart", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		line := domain.CartLine{
			ID:          "44444444-4444-4444-4444-444444444444",
			CartID:      "00000000-0000-0000-0000-000000000001",
			Description: "Service fee",
			Quantity:    1,
			UnitPrice:   decimal.RequireFromString("5.00"),
		}
		if err := repo.InsertCartLine(ctx, line); err != domain.ErrCartNotFound {
			t.Fatalf("expected ErrCartNotFound, got %v", err)
		}
	})

	t.Run("DeleteCartLine", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		eventID := testutil.InsertEvent(t, ctx, pool, "Concert")
		ttID := testutil.InsertTicketType(t, ctx, pool, eventID, "General", "29.90", 100)
		cartID := testutil.InsertCart(t, ctx, pool)
		lineID := testutil.InsertTicketLine(t, ctx, pool, cartID, ttID, 1)

		if err := repo.DeleteCartLine(ctx, cartID, lineID); err != nil {
			t.Fatalf("delete line: %v", err)
		}
		if err := repo.DeleteCartLine(ctx, cartID, lineID); err != domain.ErrCartLineNotFound {
			t.Fatalf("expected ErrCartLineNotFound, got %v", err)
		}
	})

	t.Run("GetTicketType reads current price", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		eventID := testutil.InsertEvent(t, ctx, pool, "Concert")
		ttID := testutil.InsertTicketType(t, ctx, pool, eventID, "VIP", "99.00", 10)

		tt, err := repo.GetTicketType(ctx, ttID)
		if err != nil {
			t.Fatalf("get ticket type: %v", err)
		}
		if tt.Name != "VIP" || !tt.Price.Equal(decimal.RequireFromString("99.00")) {
			t.Fatalf("unexpected ticket type: %+v", tt)
		}
	})
}
