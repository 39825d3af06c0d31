// Package cache holds the Redis-backed read cache of remaining ticket counts.
// It serves listing pages only; the checkout transaction never consults it and
// trusts only the row it has locked.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type Availability struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewAvailability returns a cache over rdb. A nil client disables the cache;
// every lookup misses and writes are no-ops.
func NewAvailability(rdb *redis.Client, ttl time.Duration) *Availability {
	return &Availability{rdb: rdb, ttl: ttl}
}

func eventKey(eventID string) string {
	return fmt.Sprintf("avail:%s", eventID)
}

// GetRemaining returns the cached ticket-type remaining counts for an event,
// or ok=false on a miss.
func (a *Availability) GetRemaining(ctx context.Context, eventID string) (map[string]int, bool) {
	if a == nil || a.rdb == nil {
		return nil, false
	}

	fields, err := a.rdb.HGetAll(ctx, eventKey(eventID)).Result()
	if err != nil || len(fields) == 0 {
		return nil, false
	}

	remaining := make(map[string]int, len(fields))
	for ticketTypeID, raw := range fields {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, false
		}
		remaining[ticketTypeID] = n
	}
	return remaining, true
}

// SetRemaining replaces the cached counts for an event.
func (a *Availability) SetRemaining(ctx context.Context, eventID string, remaining map[string]int) {
	if a == nil || a.rdb == nil || len(remaining) == 0 {
		return
	}

	key := eventKey(eventID)
	fields := make(map[string]any, len(remaining))
	for ticketTypeID, n := range remaining {
		fields[ticketTypeID] = n
	}

	pipe := a.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, a.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("availability cache write failed", "event_id", eventID, "error", err)
	}
}

// Invalidate drops the cached counts for the given events. Called after a
// checkout commit or a cancellation; failures only delay freshness until the
// TTL expires.
func (a *Availability) Invalidate(ctx context.Context, eventIDs ...string) {
	if a == nil || a.rdb == nil || len(eventIDs) == 0 {
		return
	}

	keys := make([]string, 0, len(eventIDs))
	for _, eventID := range eventIDs {
		keys = append(keys, eventKey(eventID))
	}
	if err := a.rdb.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("availability cache invalidation failed", "error", err)
	}
}
