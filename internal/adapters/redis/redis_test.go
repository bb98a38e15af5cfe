package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisad "qrate/internal/adapters/redis"
)

type page struct {
	Keys  []string
	Total int64
}

func TestCache_SetGetDel(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(redisad.NewClient(mr.Addr(), "", 0))
	ctx := context.Background()

	var got page
	ok, err := c.Get(ctx, "catalog:course:g0:1:10", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "catalog:course:g0:1:10", page{Keys: []string{"CISC124"}, Total: 7}, 60))
	ok, err = c.Get(ctx, "catalog:course:g0:1:10", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, page{Keys: []string{"CISC124"}, Total: 7}, got)
	assert.Equal(t, time.Minute, mr.TTL("catalog:course:g0:1:10"))

	mr.FastForward(2 * time.Minute)
	ok, _ = c.Get(ctx, "catalog:course:g0:1:10", &got)
	assert.False(t, ok, "entry should expire")

	require.NoError(t, c.Set(ctx, "gen", int64(3), 0))
	assert.Zero(t, mr.TTL("gen"))
	require.NoError(t, c.Del(ctx, "gen"))
	assert.False(t, mr.Exists("gen"))
}

func TestFixedWindowLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	l, err := redisad.NewFixedWindowLimiter(redisad.NewClient(mr.Addr(), "", 0), "test:rl", 2, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	assert.True(t, l.Allow(ctx, "login:10.0.0.1"))
	assert.True(t, l.Allow(ctx, "login:10.0.0.1"))
	assert.False(t, l.Allow(ctx, "login:10.0.0.1"))
	assert.True(t, l.Allow(ctx, "login:10.0.0.2"), "keys are independent")
}

func TestFixedWindowLimiter_FailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	l, err := redisad.NewFixedWindowLimiter(redisad.NewClient(mr.Addr(), "", 0), "", 1, time.Minute)
	require.NoError(t, err)
	mr.Close()
	assert.True(t, l.Allow(context.Background(), "x"))
}

func TestFixedWindowLimiter_RequiresPositiveLimit(t *testing.T) {
	_, err := redisad.NewFixedWindowLimiter(nil, "", 0, time.Minute)
	assert.Error(t, err)
}
