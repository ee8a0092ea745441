package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReviewStatus is the moderation state of a review
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// Valid reports whether s is a known review status
func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewPending, ReviewApproved, ReviewRejected:
		return true
	}
	return false
}

// FlagStatus is the lifecycle state of a review flag
type FlagStatus string

const (
	FlagPending   FlagStatus = "pending"
	FlagResolved  FlagStatus = "resolved"
	FlagDismissed FlagStatus = "dismissed"
)

// Valid reports whether s is a known flag status
func (s FlagStatus) Valid() bool {
	switch s {
	case FlagPending, FlagResolved, FlagDismissed:
		return true
	}
	return false
}

// MaxReviewImages caps the number of images attached to one review
const MaxReviewImages = 10

// Review represents a customer review of a product
type Review struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	ProductID    uuid.UUID    `json:"product_id" db:"product_id" validate:"required"`
	UserID       uuid.UUID    `json:"user_id" db:"user_id" validate:"required"`
	Rating       int          `json:"rating" db:"rating" validate:"required,min=1,max=5"`
	Title        string       `json:"title" db:"title" validate:"required,min=1,max=200"`
	Content      string       `json:"content" db:"content" validate:"max=5000"`
	Status       ReviewStatus `json:"status" db:"status" validate:"required,oneof=pending approved rejected"`
	HelpfulCount int          `json:"helpful_count" db:"helpful_count" validate:"gte=0"`
	ModeratedAt  *time.Time   `json:"moderated_at,omitempty" db:"moderated_at"`
	ModeratedBy  *uuid.UUID   `json:"moderated_by,omitempty" db:"moderated_by"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// ReviewImage is an already-hosted image attached to a review
type ReviewImage struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ReviewID     uuid.UUID `json:"review_id" db:"review_id"`
	ImageURL     string    `json:"image_url" db:"image_url" validate:"required,url,max=2048"`
	DisplayOrder int       `json:"display_order" db:"display_order"`
}

// ReviewReply is a comment on a review, optionally posted on behalf of the business
type ReviewReply struct {
	ID              uuid.UUID `json:"id" db:"id"`
	ReviewID        uuid.UUID `json:"review_id" db:"review_id" validate:"required"`
	UserID          uuid.UUID `json:"user_id" db:"user_id" validate:"required"`
	Content         string    `json:"content" db:"content" validate:"required,min=1,max=2000"`
	IsBusinessReply bool      `json:"is_business_reply" db:"is_business_reply"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// ReviewHelpfulness is one user's helpfulness vote on a review
type ReviewHelpfulness struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ReviewID  uuid.UUID `json:"review_id" db:"review_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	IsHelpful bool      `json:"is_helpful" db:"is_helpful"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ReviewFlag is a user report against a review
type ReviewFlag struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	ReviewID    uuid.UUID  `json:"review_id" db:"review_id" validate:"required"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id" validate:"required"`
	Reason      string     `json:"reason" db:"reason" validate:"required,oneof=spam inappropriate offensive fake other"`
	Description string     `json:"description" db:"description" validate:"max=1000"`
	Status      FlagStatus `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// ReviewDetails is an approved review as shown on the product page
type ReviewDetails struct {
	Review
	AuthorFirstName string          `json:"author_first_name" db:"author_first_name"`
	AuthorLastName  string          `json:"author_last_name" db:"author_last_name"`
	Images          []*ReviewImage  `json:"images" db:"-"`
	Replies         []*ReplyDetails `json:"replies" db:"-"`
}

// ReplyDetails is a reply enriched with its author
type ReplyDetails struct {
	ReviewReply
	AuthorFirstName string `json:"author_first_name" db:"author_first_name"`
	AuthorLastName  string `json:"author_last_name" db:"author_last_name"`
	AuthorRole      Role   `json:"author_role" db:"author_role"`
}

// AdminReview is a review row for the moderation queue
type AdminReview struct {
	Review
	ProductName     string `json:"product_name" db:"product_name"`
	AuthorFirstName string `json:"author_first_name" db:"author_first_name"`
	AuthorLastName  string `json:"author_last_name" db:"author_last_name"`
	PendingFlags    int    `json:"pending_flags" db:"pending_flags"`
}

// RatingStats summarises approved ratings for a product
type RatingStats struct {
	AverageRating      float64     `json:"average_rating"`
	TotalReviews       int         `json:"total_reviews"`
	RatingDistribution map[int]int `json:"rating_distribution"`
}

// EmptyRatingStats returns the zeroed stats with every bucket present
func EmptyRatingStats() *RatingStats {
	return &RatingStats{
		RatingDistribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}
}

// Moderation carries a moderation decision to the store
type Moderation struct {
	ReviewID    uuid.UUID
	Status      ReviewStatus
	ModeratorID uuid.UUID
	ModeratedAt time.Time
	// FlagStatus is applied to every pending flag on the review
	FlagStatus FlagStatus
}

// FlagStatusFor returns the status pending flags move to when a review is moderated
func FlagStatusFor(status ReviewStatus) (FlagStatus, error) {
	switch status {
	case ReviewRejected:
		return FlagResolved, nil
	case ReviewApproved:
		return FlagDismissed, nil
	}
	return "", fmt.Errorf("%w: cannot moderate review to status %q", ErrInvalidInput, status)
}

// VoteAction is the write a helpfulness vote turns into
type VoteAction string

const (
	VoteInserted VoteAction = "inserted"
	VoteUpdated  VoteAction = "updated"
	VoteRemoved  VoteAction = "removed"
)

// VoteTransition describes the vote write and its effect on helpful_count
type VoteTransition struct {
	Action VoteAction
	Delta  int
}

// NextVote decides what a vote does given the user's existing vote, if any.
// Repeating the same vote removes it.
func NextVote(existing *ReviewHelpfulness, isHelpful bool) VoteTransition {
	switch {
	case existing == nil:
		if isHelpful {
			return VoteTransition{Action: VoteInserted, Delta: 1}
		}
		return VoteTransition{Action: VoteInserted}
	case existing.IsHelpful == isHelpful:
		if existing.IsHelpful {
			return VoteTransition{Action: VoteRemoved, Delta: -1}
		}
		return VoteTransition{Action: VoteRemoved}
	case isHelpful:
		return VoteTransition{Action: VoteUpdated, Delta: 1}
	default:
		return VoteTransition{Action: VoteUpdated, Delta: -1}
	}
}

// VoteResult is the outcome of applying a helpfulness vote
type VoteResult struct {
	Action       VoteAction         `json:"action"`
	Vote         *ReviewHelpfulness `json:"vote,omitempty"`
	HelpfulCount int                `json:"helpful_count"`
	ProductID    uuid.UUID          `json:"product_id"`
}

// ReviewFilter narrows admin review listings. A zero Status matches every status.
type ReviewFilter struct {
	Status ReviewStatus
	Limit  int
	Offset int
}

// ReviewRepository defines the interface for review data access
type ReviewRepository interface {
	// ExistsForUser reports whether the user already reviewed the product
	ExistsForUser(ctx context.Context, productID, userID uuid.UUID) (bool, error)

	// Create inserts the review and its images in one transaction
	Create(ctx context.Context, review *Review, images []*ReviewImage) error

	// GetByID retrieves a review by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Review, error)

	// ListByProduct returns reviews with the given status, newest first, with author names
	ListByProduct(ctx context.Context, productID uuid.UUID, status ReviewStatus) ([]*ReviewDetails, error)

	// ListImages returns the images of the given reviews ordered by display order
	ListImages(ctx context.Context, reviewIDs []uuid.UUID) ([]*ReviewImage, error)

	// ListReplies returns the replies of the given reviews, oldest first, with authors
	ListReplies(ctx context.Context, reviewIDs []uuid.UUID) ([]*ReplyDetails, error)

	// RatingDistribution counts reviews with the given status per rating
	RatingDistribution(ctx context.Context, productID uuid.UUID, status ReviewStatus) (map[int]int, error)

	// Delete removes the review together with its images, replies, flags and votes
	Delete(ctx context.Context, id uuid.UUID) error

	// Moderate applies a moderation decision and transitions pending flags.
	// It returns the updated review and the number of flags transitioned.
	Moderate(ctx context.Context, m *Moderation) (*Review, int64, error)

	// ListForAdmin returns reviews across products for the moderation queue
	ListForAdmin(ctx context.Context, filter ReviewFilter) ([]*AdminReview, error)
}

// VoteRepository defines access to helpfulness votes
type VoteRepository interface {
	// Apply records the vote per NextVote and adjusts helpful_count in the same transaction
	Apply(ctx context.Context, reviewID, userID uuid.UUID, isHelpful bool) (*VoteResult, error)
}

// ReplyRepository defines access to review replies
type ReplyRepository interface {
	Create(ctx context.Context, reply *ReviewReply) error
}

// FlagRepository defines access to review flags
type FlagRepository interface {
	// ExistsForUser reports whether the user already flagged the review
	ExistsForUser(ctx context.Context, reviewID, userID uuid.UUID) (bool, error)

	// Create inserts a pending flag
	Create(ctx context.Context, flag *ReviewFlag) error

	// List returns flags with the given status, newest first
	List(ctx context.Context, status FlagStatus, limit, offset int) ([]*ReviewFlag, error)
}
