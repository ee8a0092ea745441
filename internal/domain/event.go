package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SubjectReviewEvents is the JetStream subject review mutations are published on
	SubjectReviewEvents = "reviews.events"

	// SubjectRevalidate is the core NATS subject stale page paths are announced on
	SubjectRevalidate = "storefront.revalidate"
)

// EventType names a review mutation
type EventType string

const (
	EventReviewCreated   EventType = "review.created"
	EventReviewDeleted   EventType = "review.deleted"
	EventReviewVoted     EventType = "review.voted"
	EventReviewReplied   EventType = "review.replied"
	EventReviewFlagged   EventType = "review.flagged"
	EventReviewModerated EventType = "review.moderated"
)

// AffectsRating reports whether the event can change a product's approved ratings
func (t EventType) AffectsRating() bool {
	switch t {
	case EventReviewCreated, EventReviewDeleted, EventReviewModerated:
		return true
	}
	return false
}

// ReviewEvent is published after every review mutation
type ReviewEvent struct {
	EventType EventType `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	ProductID uuid.UUID `json:"product_id"`
	ReviewID  uuid.UUID `json:"review_id"`
	Review    *Review   `json:"review,omitempty"`
}

// RevalidateSignal lists page paths whose rendered content is stale
type RevalidateSignal struct {
	Paths     []string  `json:"paths"`
	ProductID uuid.UUID `json:"product_id"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	HomePath         = "/"
	AdminReviewsPath = "/admin/reviews"
)

// ProductPath is the storefront page of a product
func ProductPath(productID uuid.UUID) string {
	return "/products/" + productID.String()
}
