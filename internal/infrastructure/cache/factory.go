// Package cache provides the idempotency stores that guard repeated GRV submissions.
package cache

import (
	"context"
	"fmt"

	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/bizledger/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// FactoryOption configures NewIdempotencyStore
type FactoryOption func(*factory)

type factory struct {
	logger        *zap.Logger
	allowFallback bool
}

// WithLogger sets the logger used to report which store was chosen
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-memory store instead of failing startup. Defaults to true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *factory) {
		f.allowFallback = allow
	}
}

// NewIdempotencyStore returns a Redis store when Redis is configured, otherwise an in-memory one
func NewIdempotencyStore(ctx context.Context, cfg config.RedisConfig, opts ...FactoryOption) (shared.IdempotencyStore, error) {
	f := &factory{logger: zap.NewNop(), allowFallback: true}
	for _, opt := range opts {
		opt(f)
	}

	if cfg.Host == "" {
		f.logger.Info("Redis not configured, using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	}

	store, err := NewRedisIdempotencyStore(ctx, RedisOptions{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err == nil {
		f.logger.Info("Using Redis idempotency store", zap.String("addr", cfg.Addr()))
		return store, nil
	}
	if !f.allowFallback {
		return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store; duplicate GRVs across instances are only caught by the database",
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(), nil
}
