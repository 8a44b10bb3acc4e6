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

func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := &Client{
		Redis: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		TTL:   time.Minute,
	}
	t.Cleanup(func() { client.Close() })
	return client, mr
}

type payload struct {
	Total int    `json:"total"`
	Label string `json:"label"`
}

func TestClient_JSONRoundTrip(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.SetJSON(ctx, KeyDashboard, payload{Total: 3, Label: "leads"}))

	var got payload
	require.NoError(t, client.GetJSON(ctx, KeyDashboard, &got))
	assert.Equal(t, payload{Total: 3, Label: "leads"}, got)
	assert.Equal(t, time.Minute, mr.TTL(KeyDashboard))
}

func TestClient_MissAfterTTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()

	var got payload
	assert.ErrorIs(t, client.GetJSON(ctx, KeyDashboard, &got), ErrMiss)

	require.NoError(t, client.SetJSON(ctx, KeyDashboard, payload{Total: 1}))
	mr.FastForward(2 * time.Minute)

	assert.ErrorIs(t, client.GetJSON(ctx, KeyDashboard, &got), ErrMiss)
}

func TestClient_InvalidateOnlyAnalyticsKeys(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.SetJSON(ctx, KeyDashboard, payload{}))
	require.NoError(t, client.SetJSON(ctx, KeyPrefix+"sales", payload{}))
	require.NoError(t, mr.Set("session:abc", "keep"))

	n, err := client.Invalidate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.False(t, mr.Exists(KeyDashboard))
	assert.True(t, mr.Exists("session:abc"))
}

func TestClient_CorruptValue(t *testing.T) {
	client, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(KeyDashboard, "{not json"))

	var got payload
	err := client.GetJSON(context.Background(), KeyDashboard, &got)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}
