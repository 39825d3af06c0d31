package migrations_test

import (
	"context"
	"testing"

	"github.com/gigfolk/boxoffice/internal/testutil"
	"github.com/gigfolk/boxoffice/migrations"
)

func TestApply_Idempotent(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()

	if err := migrations.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count < 4 {
		t.Fatalf("expected at least 4 migrations, got %d", count)
	}

	if err := migrations.Apply(ctx, pool); err != nil {
		t.Fatalf("re-apply migrations: %v", err)
	}

	var count2 int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&count2); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count2 != count {
		t.Fatalf("expected migration count unchanged, got %d vs %d", count2, count)
	}
}

func TestSchema_RemainingCheckConstraint(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	eventID := testutil.InsertEvent(t, ctx, pool, "Concert")
	ttID := testutil.InsertTicketType(t, ctx, pool, eventID, "General", "10.00", 5)

	// The CHECK constraint is the last line of defence against oversell.
	if _, err := pool.Exec(ctx, `UPDATE ticket_types SET remaining = -1 WHERE id = $1`, ttID); err == nil {
		t.Fatalf("expected CHECK violation for remaining < 0")
	}
	if _, err := pool.Exec(ctx, `UPDATE ticket_types SET remaining = 6 WHERE id = $1`, ttID); err == nil {
		t.Fatalf("expected CHECK violation for remaining > total")
	}
}
