package local

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKV(t *testing.T) *KV {
	c := NewCache(Config{GCInterval: time.Minute})
	t.Cleanup(c.Close)
	return c
}

func TestGetSet(t *testing.T) {
	c := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "profile:brute", `{"aggression":0.9}`, 0))
	v, err := c.Get(ctx, "profile:brute")
	require.NoError(t, err)
	assert.Equal(t, `{"aggression":0.9}`, v)
}

func TestGetMissing(t *testing.T) {
	c := newTestKV(t)
	_, err := c.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTTLExpiry(t *testing.T) {
	c := newTestKV(t)
	ctx := context.Background()
	clock := time.Unix(1000, 0)
	c.now = func() time.Time { return clock }

	require.NoError(t, c.Set(ctx, "k", "v", 10*time.Second))
	ok, _ := c.Exists(ctx, "k")
	assert.True(t, ok)

	clock = clock.Add(11 * time.Second)
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
	ok, _ = c.Exists(ctx, "k")
	assert.False(t, ok)

	assert.Equal(t, 1, c.purge())
	assert.Equal(t, 0, c.Len())
}

func TestDel(t *testing.T) {
	c := newTestKV(t)
	ctx := context.Background()
	_ = c.Set(ctx, "a", "1", 0)
	_ = c.Set(ctx, "b", "2", 0)
	require.NoError(t, c.Del(ctx, "a", "b", "never"))
	assert.Equal(t, 0, c.Len())
}

func TestCloseTwice(t *testing.T) {
	c := NewCache(Config{})
	assert.NotPanics(t, func() {
		c.Close()
		c.Close()
	})
}
