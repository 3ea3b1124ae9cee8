package cache

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/stockplan/backend/internal/application/planning"
	"github.com/stockplan/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// LockerFactory builds the lock backend selected in configuration.
type LockerFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// LockerFactoryOption configures a LockerFactory
type LockerFactoryOption func(*LockerFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to
// in-process locks. Default is false: across replicas an in-process lock
// does not prevent concurrent recalculation.
func WithInMemoryFallback(allow bool) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewLockerFactory creates a new factory
func NewLockerFactory(cfg config.RedisConfig, opts ...LockerFactoryOption) *LockerFactory {
	f := &LockerFactory{redisConfig: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns a locker for backend ("redis" or "memory") and a closer
// for the resources it holds.
func (f *LockerFactory) Create(ctx context.Context, backend string) (planning.Locker, io.Closer, error) {
	switch backend {
	case "memory":
		f.logger.Info("using in-process plan locks")
		l := NewMemoryLocker(time.Minute)
		return l, l, nil
	case "redis":
		client, err := NewRedisClient(ctx, f.redisConfig)
		if err == nil {
			f.logger.Info("using Redis plan locks", zap.String("addr", f.redisConfig.Addr()))
			return NewRedisLocker(client, ""), client, nil
		}
		if !f.allowInMemoryFallback {
			return nil, nil, fmt.Errorf("redis required for plan locks but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-process plan locks", zap.Error(err))
		l := NewMemoryLocker(time.Minute)
		return l, l, nil
	default:
		return nil, nil, fmt.Errorf("unknown lock backend %q", backend)
	}
}
