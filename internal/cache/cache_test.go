package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocalCache_SetGet(t *testing.T) {
	c := NewLocalCache(time.Minute, time.Minute)
	ctx := context.Background()

	c.Set(ctx, "margin:pizza", "data", time.Minute)
	v, ok := c.Get(ctx, "margin:pizza")
	assert.True(t, ok)
	assert.Equal(t, "data", v)
}

func TestLocalCache_InvalidatePrefixes(t *testing.T) {
	c := NewLocalCache(time.Minute, time.Minute)
	ctx := context.Background()

	c.Set(ctx, "margin:pizza", "a", time.Minute)
	c.Set(ctx, "margin:pasta", "b", time.Minute)
	c.Set(ctx, "dashboard:summary", "c", time.Minute)
	c.Set(ctx, "other:key", "d", time.Minute)

	require := assert.New(t)
	require.NoError(c.InvalidatePrefixes(ctx, "margin:", "dashboard:"))

	_, ok := c.Get(ctx, "margin:pizza")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "margin:pasta")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "dashboard:summary")
	assert.False(t, ok)
	v, ok := c.Get(ctx, "other:key")
	assert.True(t, ok)
	assert.Equal(t, "d", v)
}
