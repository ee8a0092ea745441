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

// VoteRepository implements domain.VoteRepository for PostgreSQL
type VoteRepository struct {
	db *sqlx.DB
}

// NewVoteRepository creates a new PostgreSQL helpfulness vote repository
func NewVoteRepository(db *sqlx.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Apply records a helpfulness vote and moves helpful_count by the vote's delta.
// The existing vote row is locked so concurrent votes by the same user serialise.
func (r *VoteRepository) Apply(ctx context.Context, reviewID, userID uuid.UUID, isHelpful bool) (*domain.VoteResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing domain.ReviewHelpfulness
	var previous *domain.ReviewHelpfulness
	err = tx.GetContext(ctx, &existing, `
		SELECT id, review_id, user_id, is_helpful, created_at
		FROM review_helpfulness
		WHERE review_id = $1 AND user_id = $2
		FOR UPDATE
	`, reviewID, userID)
	switch {
	case err == nil:
		previous = &existing
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("load existing vote: %w", err)
	}

	transition := domain.NextVote(previous, isHelpful)
	result := &domain.VoteResult{Action: transition.Action}

	switch transition.Action {
	case domain.VoteInserted:
		vote := &domain.ReviewHelpfulness{ReviewID: reviewID, UserID: userID, IsHelpful: isHelpful}
		err = tx.QueryRowxContext(ctx, `
			INSERT INTO review_helpfulness (review_id, user_id, is_helpful)
			VALUES ($1, $2, $3)
			RETURNING id, created_at
		`, reviewID, userID, isHelpful).Scan(&vote.ID, &vote.CreatedAt)
		if err != nil {
			return nil, translateError(err, domain.ErrConflict)
		}
		result.Vote = vote
	case domain.VoteUpdated:
		if _, err := tx.ExecContext(ctx, `UPDATE review_helpfulness SET is_helpful = $1 WHERE id = $2`, isHelpful, previous.ID); err != nil {
			return nil, fmt.Errorf("update vote: %w", err)
		}
		previous.IsHelpful = isHelpful
		result.Vote = previous
	case domain.VoteRemoved:
		if _, err := tx.ExecContext(ctx, `DELETE FROM review_helpfulness WHERE id = $1`, previous.ID); err != nil {
			return nil, fmt.Errorf("delete vote: %w", err)
		}
	}

	err = tx.QueryRowxContext(ctx, `
		UPDATE reviews
		SET helpful_count = GREATEST(helpful_count + $1, 0)
		WHERE id = $2
		RETURNING helpful_count, product_id
	`, transition.Delta, reviewID).Scan(&result.HelpfulCount, &result.ProductID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update helpful count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit vote: %w", err)
	}

	return result, nil
}
