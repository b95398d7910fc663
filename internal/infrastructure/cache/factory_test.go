package cache

import (
	"context"
	"testing"

	"github.com/bizledger/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewIdempotencyStore_NoRedisConfigured(t *testing.T) {
	store, err := NewIdempotencyStore(context.Background(), config.RedisConfig{}, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, &InMemoryIdempotencyStore{}, store)
}

func TestNewIdempotencyStore_UnreachableRedis(t *testing.T) {
	// port 1 on loopback refuses connections immediately
	cfg := config.RedisConfig{Host: "127.0.0.1", Port: 1}

	t.Run("falls back to in-memory", func(t *testing.T) {
		store, err := NewIdempotencyStore(context.Background(), cfg)
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("fails without fallback", func(t *testing.T) {
		store, err := NewIdempotencyStore(context.Background(), cfg, WithInMemoryFallback(false))
		assert.Error(t, err)
		assert.Nil(t, store)
	})
}
