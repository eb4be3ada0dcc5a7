package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperapi/internal/config"
)

type item struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedis(context.Background(), config.RedisConfig{Addr: mr.Addr(), TTLSec: 30})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache_SetGet(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	var got item
	hit, err := c.GetJSON(ctx, "papers", "list:1", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.SetJSON(ctx, "papers", "list:1", item{ID: 1, Title: "A"}))

	hit, err = c.GetJSON(ctx, "papers", "list:1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, item{ID: 1, Title: "A"}, got)

	assert.Equal(t, 30*time.Second, mr.TTL("paperapi:papers:v0:list:1"))
}

func TestRedisCache_Invalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "papers", "k", item{ID: 1}))
	require.NoError(t, c.SetJSON(ctx, "categories", "k", item{ID: 2}))

	require.NoError(t, c.Invalidate(ctx, "papers"))

	var got item
	hit, err := c.GetJSON(ctx, "papers", "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	hit, err = c.GetJSON(ctx, "categories", "k", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, int64(2), got.ID)

	require.NoError(t, c.SetJSON(ctx, "papers", "k", item{ID: 3}))
	hit, err = c.GetJSON(ctx, "papers", "k", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, int64(3), got.ID)
}

func TestRedisCache_CorruptEntry(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("paperapi:papers:v0:bad", "{not json"))

	var got item
	hit, err := c.GetJSON(context.Background(), "papers", "bad", &got)
	assert.Error(t, err)
	assert.False(t, hit)
}

func TestNewRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedis(context.Background(), config.RedisConfig{Addr: addr})
	assert.ErrorContains(t, err, "redis ping")
}

func TestNoop(t *testing.T) {
	var c Cache = Noop{}
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "ns", "k", item{ID: 1}))
	hit, err := c.GetJSON(ctx, "ns", "k", &item{})
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.Invalidate(ctx, "ns"))
}
