package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestAvailability_GetRemaining(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	avail := NewAvailability(rdb, time.Minute)
	ctx := context.Background()

	mock.ExpectHGetAll("avail:ev-1").SetVal(map[string]string{
		"tt-1": "12",
		"tt-2": "0",
	})

	remaining, ok := avail.GetRemaining(ctx, "ev-1")
	assert.True(t, ok)
	assert.Equal(t, map[string]int{"tt-1": 12, "tt-2": 0}, remaining)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailability_GetRemaining_Miss(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	avail := NewAvailability(rdb, time.Minute)

	mock.ExpectHGetAll("avail:ev-1").SetVal(map[string]string{})

	_, ok := avail.GetRemaining(context.Background(), "ev-1")
	assert.False(t, ok)
}

func TestAvailability_SetRemaining(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	avail := NewAvailability(rdb, time.Minute)

	mock.ExpectTxPipeline()
	mock.ExpectDel("avail:ev-1").SetVal(1)
	mock.ExpectHSet("avail:ev-1", map[string]any{"tt-1": 7}).SetVal(1)
	mock.ExpectExpire("avail:ev-1", time.Minute).SetVal(true)
	mock.ExpectTxPipelineExec()

	avail.SetRemaining(context.Background(), "ev-1", map[string]int{"tt-1": 7})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailability_Invalidate(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	avail := NewAvailability(rdb, time.Minute)

	mock.ExpectDel("avail:ev-1", "avail:ev-2").SetVal(2)

	avail.Invalidate(context.Background(), "ev-1", "ev-2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailability_NilClientDisabled(t *testing.T) {
	avail := NewAvailability(nil, time.Minute)
	ctx := context.Background()

	_, ok := avail.GetRemaining(ctx, "ev-1")
	assert.False(t, ok)

	// No-ops must not panic.
	avail.SetRemaining(ctx, "ev-1", map[string]int{"tt-1": 1})
	avail.Invalidate(ctx, "ev-1")

	var nilAvail *Availability
	_, ok = nilAvail.GetRemaining(ctx, "ev-1")
	assert.False(t, ok)
}
