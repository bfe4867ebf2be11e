package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stats struct {
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

func setupTestRedis(t *testing.T) (*StatsCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStatsCache(client, 30*time.Second), mr
}

func TestStatsCache_RoundTrip(t *testing.T) {
	c, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "dashboard:admin-1", stats{Total: 6, Percent: 16.7}))

	var got stats
	hit, err := c.Get(ctx, "dashboard:admin-1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, stats{Total: 6, Percent: 16.7}, got)
}

func TestStatsCache_Miss(t *testing.T) {
	c, _ := setupTestRedis(t)

	var got stats
	hit, err := c.Get(context.Background(), "nada", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestStatsCache_Expires(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", stats{Total: 1}))
	assert.Equal(t, 30*time.Second, mr.TTL(keyPrefix+"k"))

	mr.FastForward(31 * time.Second)

	var got stats
	hit, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestStatsCache_CorruptValue(t *testing.T) {
	c, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(keyPrefix+"k", "{not json"))

	var got stats
	hit, err := c.Get(context.Background(), "k", &got)
	assert.Error(t, err)
	assert.False(t, hit)
}

func TestNewClient(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := NewClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	_, err = NewClient(context.Background(), "not a url")
	assert.Error(t, err)
}
