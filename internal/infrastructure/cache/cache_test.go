package cache

import (
	"context"
	"testing"
	"time"

	"github.com/gym/backend/internal/infrastructure/auth"
	"github.com/gym/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestInMemoryProductNameCache(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	c := NewInMemoryProductNameCache(time.Minute)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "empty cache misses")

	names := []string{"Baton", "Woda"}
	require.NoError(t, c.Set(ctx, names))
	names[0] = "mutated"

	got, ok, err := c.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"Baton", "Woda"}, got)

	now = now.Add(time.Minute)
	_, ok, _ = c.Get(ctx)
	assert.False(t, ok, "entry expires after ttl")

	require.NoError(t, c.Set(ctx, nil))
	got, ok, _ = c.Get(ctx)
	assert.True(t, ok, "an empty catalogue is cached too")
	assert.Empty(t, got)

	require.NoError(t, c.Invalidate(ctx))
	_, ok, _ = c.Get(ctx)
	assert.False(t, ok)
}

func TestFactory_RedisDisabled(t *testing.T) {
	f := NewFactory(config.RedisConfig{}, time.Minute, WithLogger(zaptest.NewLogger(t)))

	client, err := f.Connect(context.Background())
	require.NoError(t, err)
	assert.Nil(t, client)

	assert.IsType(t, &InMemoryProductNameCache{}, f.ProductNameCache())
	assert.IsType(t, &auth.InMemoryTokenBlacklist{}, f.TokenBlacklist())
	assert.NoError(t, f.Close())
}

func TestFactory_RedisUnreachable(t *testing.T) {
	cfg := config.RedisConfig{Host: "127.0.0.1", Port: 1}

	t.Run("falls back", func(t *testing.T) {
		f := NewFactory(cfg, time.Minute)
		client, err := f.Connect(context.Background())
		require.NoError(t, err)
		assert.Nil(t, client)
		assert.IsType(t, &InMemoryProductNameCache{}, f.ProductNameCache())
	})

	t.Run("fails when fallback is disabled", func(t *testing.T) {
		f := NewFactory(cfg, time.Minute, WithInMemoryFallback(false))
		_, err := f.Connect(context.Background())
		assert.Error(t, err)
	})
}
