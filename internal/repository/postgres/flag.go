package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/northernchefs/storefront/internal/domain"
)

// FlagRepository implements domain.FlagRepository for PostgreSQL
type FlagRepository struct {
	db *sqlx.DB
}

// NewFlagRepository creates a new PostgreSQL flag repository
func NewFlagRepository(db *sqlx.DB) *FlagRepository {
	return &FlagRepository{db: db}
}

// ExistsForUser reports whether the user already flagged the review
func (r *FlagRepository) ExistsForUser(ctx context.Context, reviewID, userID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM review_flags WHERE review_id = $1 AND user_id = $2)`
	if err := r.db.GetContext(ctx, &exists, query, reviewID, userID); err != nil {
		return false, fmt.Errorf("check existing flag: %w", err)
	}
	return exists, nil
}

// Create inserts a pending flag
func (r *FlagRepository) Create(ctx context.Context, flag *domain.ReviewFlag) error {
	query := `
		INSERT INTO review_flags (review_id, user_id, reason, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, status, created_at
	`

	err := r.db.QueryRowxContext(
		ctx,
		query,
		flag.ReviewID,
		flag.UserID,
		flag.Reason,
		flag.Description,
	).Scan(&flag.ID, &flag.Status, &flag.CreatedAt)
	if err != nil {
		return translateError(err, domain.ErrDuplicateFlag)
	}

	return nil
}

// List returns flags with the given status, newest first
func (r *FlagRepository) List(ctx context.Context, status domain.FlagStatus, limit, offset int) ([]*domain.ReviewFlag, error) {
	query := `
		SELECT id, review_id, user_id, reason, description, status, created_at
		FROM review_flags
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	flags := []*domain.ReviewFlag{}
	if err := r.db.SelectContext(ctx, &flags, query, status, limit, offset); err != nil {
		return nil, err
	}

	return flags, nil
}
