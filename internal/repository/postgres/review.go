package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/northernchefs/storefront/internal/domain"
)

const reviewColumns = `r.id, r.product_id, r.user_id, r.rating, r.title, r.content, r.status,
		r.helpful_count, r.moderated_at, r.moderated_by, r.created_at, r.updated_at`

// Rows that reference a review, deleted before the review itself
var reviewDependents = []string{
	"review_images",
	"review_replies",
	"review_flags",
	"review_helpfulness",
}

// ReviewRepository implements domain.ReviewRepository for PostgreSQL
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository creates a new PostgreSQL review repository
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// ExistsForUser reports whether the user already reviewed the product
func (r *ReviewRepository) ExistsForUser(ctx context.Context, productID, userID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM reviews WHERE product_id = $1 AND user_id = $2)`
	if err := r.db.GetContext(ctx, &exists, query, productID, userID); err != nil {
		return false, fmt.Errorf("check existing review: %w", err)
	}
	return exists, nil
}

// Create inserts the review and its images in one transaction
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review, images []*domain.ReviewImage) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO reviews (product_id, user_id, rating, title, content, status, helpful_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRowxContext(
		ctx,
		query,
		review.ProductID,
		review.UserID,
		review.Rating,
		review.Title,
		review.Content,
		review.Status,
		review.HelpfulCount,
	).Scan(
		&review.ID,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		return translateError(err, domain.ErrDuplicateReview)
	}

	imageQuery := `
		INSERT INTO review_images (review_id, image_url, display_order)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	for _, img := range images {
		img.ReviewID = review.ID
		if err := tx.QueryRowxContext(ctx, imageQuery, img.ReviewID, img.ImageURL, img.DisplayOrder).Scan(&img.ID); err != nil {
			return fmt.Errorf("insert review image %d: %w", img.DisplayOrder, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit review: %w", err)
	}

	return nil
}

// GetByID retrieves a review by ID
func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews r WHERE r.id = $1`

	var review domain.Review
	err := r.db.GetContext(ctx, &review, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return &review, nil
}

// ListByProduct returns reviews with the given status, newest first, with author names
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID uuid.UUID, status domain.ReviewStatus) ([]*domain.ReviewDetails, error) {
	query := `
		SELECT ` + reviewColumns + `,
			COALESCE(u.first_name, '') AS author_first_name,
			COALESCE(u.last_name, '') AS author_last_name
		FROM reviews r
		LEFT JOIN users u ON u.id = r.user_id
		WHERE r.product_id = $1 AND r.status = $2
		ORDER BY r.created_at DESC
	`

	reviews := []*domain.ReviewDetails{}
	if err := r.db.SelectContext(ctx, &reviews, query, productID, status); err != nil {
		return nil, err
	}

	return reviews, nil
}

// ListImages returns the images of the given reviews ordered by display order
func (r *ReviewRepository) ListImages(ctx context.Context, reviewIDs []uuid.UUID) ([]*domain.ReviewImage, error) {
	if len(reviewIDs) == 0 {
		return []*domain.ReviewImage{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, review_id, image_url, display_order
		FROM review_images
		WHERE review_id IN (?)
		ORDER BY display_order ASC
	`, reviewIDs)
	if err != nil {
		return nil, err
	}

	images := []*domain.ReviewImage{}
	if err := r.db.SelectContext(ctx, &images, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	return images, nil
}

// ListReplies returns the replies of the given reviews, oldest first, with authors
func (r *ReviewRepository) ListReplies(ctx context.Context, reviewIDs []uuid.UUID) ([]*domain.ReplyDetails, error) {
	if len(reviewIDs) == 0 {
		return []*domain.ReplyDetails{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT rr.id, rr.review_id, rr.user_id, rr.content, rr.is_business_reply, rr.created_at,
			COALESCE(u.first_name, '') AS author_first_name,
			COALESCE(u.last_name, '') AS author_last_name,
			COALESCE(u.role, 'customer') AS author_role
		FROM review_replies rr
		LEFT JOIN users u ON u.id = rr.user_id
		WHERE rr.review_id IN (?)
		ORDER BY rr.created_at ASC
	`, reviewIDs)
	if err != nil {
		return nil, err
	}

	replies := []*domain.ReplyDetails{}
	if err := r.db.SelectContext(ctx, &replies, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	return replies, nil
}

// RatingDistribution counts reviews with the given status per rating
func (r *ReviewRepository) RatingDistribution(ctx context.Context, productID uuid.UUID, status domain.ReviewStatus) (map[int]int, error) {
	query := `
		SELECT rating, COUNT(*) AS count
		FROM reviews
		WHERE product_id = $1 AND status = $2
		GROUP BY rating
	`

	var rows []struct {
		Rating int `db:"rating"`
		Count  int `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, productID, status); err != nil {
		return nil, err
	}

	distribution := make(map[int]int, len(rows))
	for _, row := range rows {
		distribution[row.Rating] = row.Count
	}

	return distribution, nil
}

// Delete removes the review together with its images, replies, flags and votes
func (r *ReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range reviewDependents {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE review_id = $1`, id); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return tx.Commit()
}

// Moderate applies a moderation decision and transitions the review's pending flags
func (r *ReviewRepository) Moderate(ctx context.Context, m *domain.Moderation) (*domain.Review, int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE reviews r
		SET status = $1, moderated_at = $2, moderated_by = $3, updated_at = $2
		WHERE r.id = $4
		RETURNING ` + reviewColumns

	var review domain.Review
	err = tx.GetContext(ctx, &review, query, m.Status, m.ModeratedAt, m.ModeratorID, m.ReviewID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, fmt.Errorf("update review status: %w", err)
	}

	result, err := tx.ExecContext(
		ctx,
		`UPDATE review_flags SET status = $1 WHERE review_id = $2 AND status = $3`,
		m.FlagStatus,
		m.ReviewID,
		domain.FlagPending,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("transition flags: %w", err)
	}

	flagsUpdated, err := result.RowsAffected()
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit moderation: %w", err)
	}

	return &review, flagsUpdated, nil
}

// ListForAdmin returns reviews across products, most-flagged first
func (r *ReviewRepository) ListForAdmin(ctx context.Context, filter domain.ReviewFilter) ([]*domain.AdminReview, error) {
	query := `
		SELECT ` + reviewColumns + `,
			COALESCE(p.name, '') AS product_name,
			COALESCE(u.first_name, '') AS author_first_name,
			COALESCE(u.last_name, '') AS author_last_name,
			(SELECT COUNT(*) FROM review_flags f WHERE f.review_id = r.id AND f.status = 'pending') AS pending_flags
		FROM reviews r
		LEFT JOIN products p ON p.id = r.product_id
		LEFT JOIN users u ON u.id = r.user_id
		WHERE ($1::text = '' OR r.status = $1)
		ORDER BY pending_flags DESC, r.created_at DESC
		LIMIT $2 OFFSET $3
	`

	reviews := []*domain.AdminReview{}
	if err := r.db.SelectContext(ctx, &reviews, query, string(filter.Status), filter.Limit, filter.Offset); err != nil {
		return nil, err
	}

	return reviews, nil
}
