package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/northernchefs/storefront/internal/domain"
)

// ReplyRepository implements domain.ReplyRepository for PostgreSQL
type ReplyRepository struct {
	db *sqlx.DB
}

// NewReplyRepository creates a new PostgreSQL reply repository
func NewReplyRepository(db *sqlx.DB) *ReplyRepository {
	return &ReplyRepository{db: db}
}

// Create inserts a reply
func (r *ReplyRepository) Create(ctx context.Context, reply *domain.ReviewReply) error {
	query := `
		INSERT INTO review_replies (review_id, user_id, content, is_business_reply)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(
		ctx,
		query,
		reply.ReviewID,
		reply.UserID,
		reply.Content,
		reply.IsBusinessReply,
	).Scan(&reply.ID, &reply.CreatedAt)
	if err != nil {
		return translateError(err, nil)
	}

	return nil
}
