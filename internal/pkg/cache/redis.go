package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/northernchefs/storefront/internal/config"
	"github.com/northernchefs/storefront/internal/pkg/logger"
)

const pingTimeout = 5 * time.Second

// NewRedisClient creates a Redis client and pings it
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:       cfg.GetRedisAddr(),
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		ClientName: "storefront",
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.GetRedisAddr(), err)
	}

	return client, nil
}

// WaitForRedis retries NewRedisClient until it succeeds, attempts run out or ctx is done
func WaitForRedis(ctx context.Context, cfg *config.Config, log *logger.Logger, attempts int, delay time.Duration) (*redis.Client, error) {
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		client, err := NewRedisClient(ctx, cfg)
		if err == nil {
			return client, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		log.With("attempt", attempt).Warnf("Redis not ready, retrying in %s: %v", delay, err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("redis unavailable after %d attempts: %w", attempts, lastErr)
}
