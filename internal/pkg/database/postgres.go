package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/northernchefs/storefront/internal/config"
	"github.com/northernchefs/storefront/internal/pkg/logger"
)

const pingTimeout = 5 * time.Second

// NewPostgresDB opens the connection pool and pings it
func NewPostgresDB(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database %s on %s:%s: %w",
			cfg.Database.Name, cfg.Database.Host, cfg.Database.Port, err)
	}

	return db, nil
}

// WaitForDB retries NewPostgresDB until it succeeds, attempts run out or ctx is done
func WaitForDB(ctx context.Context, cfg *config.Config, log *logger.Logger, attempts int, delay time.Duration) (*sqlx.DB, error) {
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		db, err := NewPostgresDB(ctx, cfg)
		if err == nil {
			return db, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		log.With("attempt", attempt).Warnf("PostgreSQL not ready, retrying in %s: %v", delay, err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("database unavailable after %d attempts: %w", attempts, lastErr)
}
