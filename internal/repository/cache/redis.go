package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/northernchefs/storefront/internal/domain"
)

// ReviewCache caches approved review listings and rating stats per product
type ReviewCache struct {
	client         *redis.Client
	reviewsListTTL time.Duration
	ratingStatsTTL time.Duration
}

// NewReviewCache creates a new Redis-backed review cache
func NewReviewCache(client *redis.Client, reviewsListTTL, ratingStatsTTL time.Duration) *ReviewCache {
	return &ReviewCache{
		client:         client,
		reviewsListTTL: reviewsListTTL,
		ratingStatsTTL: ratingStatsTTL,
	}
}

// Entries are keyed by the product's cache version. InvalidateProduct bumps the
// version, so a listing loaded before a write and stored after it lands under a
// version nobody reads again.
func versionKey(productID uuid.UUID) string {
	return fmt.Sprintf("product:%s:cache_version", productID.String())
}

func reviewsKey(productID uuid.UUID, version int64) string {
	return fmt.Sprintf("product:%s:reviews:v%d", productID.String(), version)
}

func ratingStatsKey(productID uuid.UUID, version int64) string {
	return fmt.Sprintf("product:%s:rating_stats:v%d", productID.String(), version)
}

// Version returns the product's current cache version, zero before the first invalidation
func (c *ReviewCache) Version(ctx context.Context, productID uuid.UUID) (int64, error) {
	version, err := c.client.Get(ctx, versionKey(productID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return version, err
}

// GetReviews returns the cached approved reviews of a product
func (c *ReviewCache) GetReviews(ctx context.Context, productID uuid.UUID, version int64) ([]*domain.ReviewDetails, error) {
	var reviews []*domain.ReviewDetails
	if err := c.get(ctx, reviewsKey(productID, version), &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// SetReviews stores the approved reviews of a product under the version they were loaded at
func (c *ReviewCache) SetReviews(ctx context.Context, productID uuid.UUID, version int64, reviews []*domain.ReviewDetails) error {
	return c.set(ctx, reviewsKey(productID, version), reviews, c.reviewsListTTL)
}

// GetRatingStats returns the cached rating stats of a product
func (c *ReviewCache) GetRatingStats(ctx context.Context, productID uuid.UUID, version int64) (*domain.RatingStats, error) {
	var stats domain.RatingStats
	if err := c.get(ctx, ratingStatsKey(productID, version), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SetRatingStats stores the rating stats of a product under the version they were computed at
func (c *ReviewCache) SetRatingStats(ctx context.Context, productID uuid.UUID, version int64, stats *domain.RatingStats) error {
	return c.set(ctx, ratingStatsKey(productID, version), stats, c.ratingStatsTTL)
}

// InvalidateProduct moves the product to a new cache version and drops the entries of the previous one
func (c *ReviewCache) InvalidateProduct(ctx context.Context, productID uuid.UUID) error {
	version, err := c.client.Incr(ctx, versionKey(productID)).Result()
	if err != nil {
		return err
	}

	err = c.client.Unlink(ctx, reviewsKey(productID, version-1), ratingStatsKey(productID, version-1)).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

func (c *ReviewCache) get(ctx context.Context, key string, dest interface{}) error {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.ErrNotFound
		}
		return err
	}
	return json.Unmarshal(val, dest)
}

func (c *ReviewCache) set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}
