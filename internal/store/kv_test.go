package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKV(t *testing.T) (*miniredis.Miniredis, *RedisKV) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisKV(client)
}

func TestRedisKV_GetSet(t *testing.T) {
	mr, kv := newTestKV(t)
	ctx := context.Background()

	_, err := kv.Get(ctx, "homecare:stats:assistiti")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, kv.Set(ctx, "homecare:stats:assistiti", `{"total":3}`, time.Minute))
	v, err := kv.Get(ctx, "homecare:stats:assistiti")
	require.NoError(t, err)
	assert.Equal(t, `{"total":3}`, v)

	mr.FastForward(2 * time.Minute)
	_, err = kv.Get(ctx, "homecare:stats:assistiti")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestJSONHelpersAndInvalidate(t *testing.T) {
	_, kv := newTestKV(t)
	ctx := context.Background()

	type stats struct {
		Total  int `json:"total"`
		Active int `json:"active"`
	}
	require.NoError(t, SetJSON(ctx, kv, "homecare:assistiti:stats", stats{Total: 3, Active: 2}, time.Minute))
	require.NoError(t, SetJSON(ctx, kv, "homecare:assistiti:export", []int{1, 2}, time.Minute))
	require.NoError(t, SetJSON(ctx, kv, "homecare:operatori:stats", stats{Total: 5}, time.Minute))

	var got stats
	require.NoError(t, GetJSON(ctx, kv, "homecare:assistiti:stats", &got))
	assert.Equal(t, stats{Total: 3, Active: 2}, got)

	require.NoError(t, Invalidate(ctx, kv, "homecare:assistiti:*"))
	assert.ErrorIs(t, GetJSON(ctx, kv, "homecare:assistiti:stats", &got), ErrMiss)
	assert.ErrorIs(t, GetJSON(ctx, kv, "homecare:assistiti:export", &got), ErrMiss)
	require.NoError(t, GetJSON(ctx, kv, "homecare:operatori:stats", &got))
	assert.Equal(t, 5, got.Total)

	// nothing left to match
	require.NoError(t, Invalidate(ctx, kv, "homecare:assistiti:*"))
}

func TestNopKV(t *testing.T) {
	var kv KV = NopKV{}
	ctx := context.Background()
	require.NoError(t, SetJSON(ctx, kv, "k", 1, time.Minute))
	var n int
	assert.ErrorIs(t, GetJSON(ctx, kv, "k", &n), ErrMiss)
	assert.NoError(t, Invalidate(ctx, kv, "*"))
}
