package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_RoundTripAndTTL(t *testing.T) {
	c := NewCache()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	type page struct {
		Items []string
		Total int64
	}
	require.NoError(t, c.Set(ctx, "k", page{Items: []string{"a"}, Total: 1}, 10))
	require.NoError(t, c.Set(ctx, "forever", 42, 0))

	var got page
	ok, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, page{Items: []string{"a"}, Total: 1}, got)

	now = now.Add(10 * time.Second)
	ok, err = c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok, "expired")

	var n int
	ok, _ = c.Get(ctx, "forever", &n)
	assert.True(t, ok)
	assert.Equal(t, 42, n)

	require.NoError(t, c.Del(ctx, "forever"))
	ok, _ = c.Get(ctx, "forever", &n)
	assert.False(t, ok)
}

func TestCache_SetRejectsUnmarshalable(t *testing.T) {
	c := NewCache()
	err := c.Set(context.Background(), "k", make(chan int), 0)
	assert.Error(t, err)
}
