package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/northernchefs/storefront/internal/domain"
	"github.com/northernchefs/storefront/internal/pkg/logger"
)

// Calculator keeps the denormalized rating columns of products in line with approved reviews
type Calculator struct {
	db     *sqlx.DB
	logger *logger.Logger
	now    func() time.Time
}

// NewCalculator creates a new rating calculator
func NewCalculator(db *sqlx.DB, log *logger.Logger) *Calculator {
	return &Calculator{
		db:     db,
		logger: log,
		now:    time.Now,
	}
}

// Recalculate recomputes average_rating and review_count of a product from its
// approved reviews. A full recount corrects any drift left by lost events.
func (c *Calculator) Recalculate(ctx context.Context, productID uuid.UUID) error {
	query := `
		UPDATE products p
		SET
			average_rating = COALESCE(stats.average, 0),
			review_count = stats.total,
			updated_at = $3
		FROM (
			SELECT ROUND(AVG(rating)::numeric, 1) AS average, COUNT(*) AS total
			FROM reviews
			WHERE product_id = $1 AND status = $2
		) stats
		WHERE p.id = $1
	`

	result, err := c.db.ExecContext(ctx, query, productID, string(domain.ReviewApproved), c.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update product rating: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		c.logger.With("product_id", productID.String()).Info("Product not found, skipping rating update")
		return nil
	}

	c.logger.With("product_id", productID.String()).Info("Updated product rating")
	return nil
}
