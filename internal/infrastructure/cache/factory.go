package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/gym/backend/internal/infrastructure/auth"
	"github.com/gym/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const pingTimeout = 5 * time.Second

// Factory builds the Redis-backed stores, or their in-memory fallbacks when
// Redis is disabled or unreachable
type Factory struct {
	redisConfig           config.RedisConfig
	productTTL            time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool

	client redis.UniversalClient
}

// FactoryOption configures a Factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis is an error.
// Fallback is allowed by default.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// WithClient uses an existing client instead of dialing one
func WithClient(client redis.UniversalClient) FactoryOption {
	return func(f *Factory) {
		f.client = client
	}
}

// NewFactory creates a factory. productTTL bounds how stale the product filter list may get.
func NewFactory(cfg config.RedisConfig, productTTL time.Duration, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		productTTL:            productTTL,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Connect dials Redis once. It returns a nil client, and no error, when Redis
// is disabled or unreachable with fallback allowed.
func (f *Factory) Connect(ctx context.Context) (redis.UniversalClient, error) {
	if f.client != nil {
		return f.client, nil
	}
	if f.redisConfig.Host == "" {
		f.logger.Info("Redis not configured, using in-memory stores")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         f.redisConfig.Addr(),
		Password:     f.redisConfig.Password,
		DB:           f.redisConfig.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  pingTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis required but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory stores. "+
			"Revoked tokens are not shared between instances.",
			zap.String("addr", f.redisConfig.Addr()),
			zap.Error(err),
		)
		return nil, nil
	}

	f.logger.Info("Connected to Redis", zap.String("addr", f.redisConfig.Addr()))
	f.client = client
	return client, nil
}

// ProductNameCache returns the product name cache for the connected backend
func (f *Factory) ProductNameCache() ProductNameCache {
	if f.client != nil {
		return NewRedisProductNameCache(f.client, f.productTTL)
	}
	return NewInMemoryProductNameCache(f.productTTL)
}

// TokenBlacklist returns the logout blacklist for the connected backend
func (f *Factory) TokenBlacklist() auth.TokenBlacklist {
	if f.client != nil {
		return auth.NewRedisTokenBlacklist(f.client)
	}
	return auth.NewInMemoryTokenBlacklist()
}

// Close closes the Redis client if one was dialed
func (f *Factory) Close() error {
	if f.client == nil {
		return nil
	}
	return f.client.Close()
}
