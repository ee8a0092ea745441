package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/northernchefs/storefront/internal/domain"
	"github.com/northernchefs/storefront/internal/pkg/logger"
	"github.com/northernchefs/storefront/internal/pkg/validator"
)

const publishTimeout = 5 * time.Second

// Authenticator resolves the caller of a request
type Authenticator interface {
	CurrentUser(ctx context.Context) (*domain.User, error)
	VerifiedUser(ctx context.Context) (*domain.User, error)
}

// ReviewCache caches the read side of a product's reviews. Entries are read and
// written at the product's cache version; InvalidateProduct advances it.
type ReviewCache interface {
	Version(ctx context.Context, productID uuid.UUID) (int64, error)
	GetReviews(ctx context.Context, productID uuid.UUID, version int64) ([]*domain.ReviewDetails, error)
	SetReviews(ctx context.Context, productID uuid.UUID, version int64, reviews []*domain.ReviewDetails) error
	GetRatingStats(ctx context.Context, productID uuid.UUID, version int64) (*domain.RatingStats, error)
	SetRatingStats(ctx context.Context, productID uuid.UUID, version int64, stats *domain.RatingStats) error
	InvalidateProduct(ctx context.Context, productID uuid.UUID) error
}

// EventPublisher publishes durable events and fire-and-forget notifications
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Notify(ctx context.Context, subject string, data []byte) error
}

// Options tune the review workflow
type Options struct {
	// AutoApprove publishes new reviews immediately. When false they start pending.
	AutoApprove bool
}

// Service implements the review workflow: submission, listing, rating stats,
// deletion, helpfulness votes, replies, flags and moderation
type Service struct {
	reviews   domain.ReviewRepository
	votes     domain.VoteRepository
	replies   domain.ReplyRepository
	flags     domain.FlagRepository
	auth      Authenticator
	cache     ReviewCache
	publisher EventPublisher
	logger    *logger.Logger
	opts      Options
	now       func() time.Time
	inflight  sync.WaitGroup
}

// NewService creates a new review service
func NewService(
	reviews domain.ReviewRepository,
	votes domain.VoteRepository,
	replies domain.ReplyRepository,
	flags domain.FlagRepository,
	auth Authenticator,
	cache ReviewCache,
	publisher EventPublisher,
	log *logger.Logger,
	opts Options,
) *Service {
	return &Service{
		reviews:   reviews,
		votes:     votes,
		replies:   replies,
		flags:     flags,
		auth:      auth,
		cache:     cache,
		publisher: publisher,
		logger:    log,
		opts:      opts,
		now:       time.Now,
	}
}

// CreateInput is a review submission
type CreateInput struct {
	ProductID uuid.UUID `json:"product_id"`
	// Rating is a float so fractional submissions can be rejected rather than truncated
	Rating  float64  `json:"rating" validate:"required,min=1,max=5"`
	Title   string   `json:"title" validate:"required,max=200"`
	Content string   `json:"content" validate:"max=5000"`
	Images  []string `json:"images" validate:"max=10,dive,required,http_url,max=2048"`
}

// Create submits a review for the current user
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.ReviewDetails, error) {
	user, err := s.auth.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	if err := validateCreate(in); err != nil {
		s.logger.Debugf("Review validation failed: %v", err)
		return nil, err
	}

	exists, err := s.reviews.ExistsForUser(ctx, in.ProductID, user.ID)
	if err != nil {
		s.logger.Error("Failed to check for existing review", err)
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateReview
	}

	status := domain.ReviewPending
	if s.opts.AutoApprove {
		status = domain.ReviewApproved
	}

	review := &domain.Review{
		ProductID: in.ProductID,
		UserID:    user.ID,
		Rating:    int(in.Rating),
		Title:     in.Title,
		Content:   in.Content,
		Status:    status,
	}
	images := make([]*domain.ReviewImage, 0, len(in.Images))
	for i, url := range in.Images {
		images = append(images, &domain.ReviewImage{ImageURL: url, DisplayOrder: i})
	}

	if err := s.reviews.Create(ctx, review, images); err != nil {
		s.logger.Error("Failed to create review", err)
		return nil, err
	}

	s.signal(ctx, domain.EventReviewCreated, review.ProductID, review.ID, review,
		domain.ProductPath(review.ProductID), domain.HomePath, domain.AdminReviewsPath)

	s.logger.WithFields(map[string]interface{}{
		"review_id":  review.ID,
		"product_id": review.ProductID,
		"rating":     review.Rating,
		"status":     review.Status,
		"images":     len(images),
	}).Info("Review created successfully")

	return &domain.ReviewDetails{
		Review:          *review,
		AuthorFirstName: user.FirstName,
		AuthorLastName:  user.LastName,
		Images:          images,
		Replies:         []*domain.ReplyDetails{},
	}, nil
}

func validateCreate(in CreateInput) error {
	if in.ProductID == uuid.Nil {
		return fmt.Errorf("%w: product_id: required", domain.ErrInvalidInput)
	}
	if err := validator.Get().Struct(in); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, validator.Describe(err))
	}
	if in.Rating != math.Trunc(in.Rating) {
		return fmt.Errorf("%w: rating: must be a whole number from 1 to 5", domain.ErrInvalidInput)
	}
	return nil
}

// Delete removes a review. Only its author or an admin may delete it.
func (s *Service) Delete(ctx context.Context, reviewID uuid.UUID) error {
	user, err := s.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}

	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to get review for deletion", err)
		}
		return err
	}

	if review.UserID != user.ID {
		if user, err = s.auth.VerifiedUser(ctx); err != nil {
			return err
		}
		if !user.IsAdmin() {
			return domain.ErrForbidden
		}
	}

	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		s.logger.Error("Failed to delete review", err)
		return err
	}

	s.signal(ctx, domain.EventReviewDeleted, review.ProductID, review.ID, review,
		domain.ProductPath(review.ProductID), domain.AdminReviewsPath)

	s.logger.WithFields(map[string]interface{}{
		"review_id":  reviewID,
		"product_id": review.ProductID,
		"by_admin":   review.UserID != user.ID,
	}).Info("Review deleted successfully")

	return nil
}

// MarkHelpful records the caller's helpfulness vote. Repeating the same vote withdraws it.
func (s *Service) MarkHelpful(ctx context.Context, reviewID uuid.UUID, isHelpful bool) (*domain.VoteResult, error) {
	user, err := s.auth.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.votes.Apply(ctx, reviewID, user.ID, isHelpful)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to apply helpfulness vote", err)
		}
		return nil, err
	}

	s.signal(ctx, domain.EventReviewVoted, result.ProductID, reviewID, nil,
		domain.ProductPath(result.ProductID))

	s.logger.WithFields(map[string]interface{}{
		"review_id":     reviewID,
		"action":        result.Action,
		"helpful_count": result.HelpfulCount,
	}).Debug("Helpfulness vote applied")

	return result, nil
}

// ReplyInput is a reply to a review
type ReplyInput struct {
	ReviewID        uuid.UUID `json:"review_id"`
	Content         string    `json:"content" validate:"required,max=2000"`
	IsBusinessReply bool      `json:"is_business_reply"`
}

// AddReply posts a reply on a review. Business replies are reserved to admins.
func (s *Service) AddReply(ctx context.Context, in ReplyInput) (*domain.ReplyDetails, error) {
	resolve := s.auth.CurrentUser
	if in.IsBusinessReply {
		resolve = s.auth.VerifiedUser
	}

	user, err := resolve(ctx)
	if err != nil {
		return nil, err
	}

	if in.IsBusinessReply && !user.IsAdmin() {
		return nil, domain.ErrBusinessReplyForbidden
	}

	in.Content = strings.TrimSpace(in.Content)
	if err := validator.Get().Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, validator.Describe(err))
	}

	review, err := s.reviews.GetByID(ctx, in.ReviewID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to get review for reply", err)
		}
		return nil, err
	}

	reply := &domain.ReviewReply{
		ReviewID:        in.ReviewID,
		UserID:          user.ID,
		Content:         in.Content,
		IsBusinessReply: in.IsBusinessReply,
	}
	if err := s.replies.Create(ctx, reply); err != nil {
		s.logger.Error("Failed to create reply", err)
		return nil, err
	}

	s.signal(ctx, domain.EventReviewReplied, review.ProductID, review.ID, nil,
		domain.ProductPath(review.ProductID))

	return &domain.ReplyDetails{
		ReviewReply:     *reply,
		AuthorFirstName: user.FirstName,
		AuthorLastName:  user.LastName,
		AuthorRole:      user.Role,
	}, nil
}

// FlagInput is a report against a review
type FlagInput struct {
	ReviewID    uuid.UUID `json:"review_id"`
	Reason      string    `json:"reason" validate:"required,oneof=spam inappropriate offensive fake other"`
	Description string    `json:"description" validate:"max=1000"`
}

// Flag reports a review for moderation. A user can flag a review once.
func (s *Service) Flag(ctx context.Context, in FlagInput) (*domain.ReviewFlag, error) {
	user, err := s.auth.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	in.Description = strings.TrimSpace(in.Description)
	if err := validator.Get().Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, validator.Describe(err))
	}

	review, err := s.reviews.GetByID(ctx, in.ReviewID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to get review for flag", err)
		}
		return nil, err
	}

	exists, err := s.flags.ExistsForUser(ctx, in.ReviewID, user.ID)
	if err != nil {
		s.logger.Error("Failed to check for existing flag", err)
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateFlag
	}

	flag := &domain.ReviewFlag{
		ReviewID:    in.ReviewID,
		UserID:      user.ID,
		Reason:      in.Reason,
		Description: in.Description,
		Status:      domain.FlagPending,
	}
	if err := s.flags.Create(ctx, flag); err != nil {
		if !errors.Is(err, domain.ErrAlreadyExists) {
			s.logger.Error("Failed to create flag", err)
		}
		return nil, err
	}

	s.signal(ctx, domain.EventReviewFlagged, review.ProductID, review.ID, review)

	s.logger.WithFields(map[string]interface{}{
		"review_id": in.ReviewID,
		"flag_id":   flag.ID,
		"reason":    flag.Reason,
	}).Info("Review flagged")

	return flag, nil
}

// Moderate approves or rejects a review and settles its pending flags. Admin only.
func (s *Service) Moderate(ctx context.Context, reviewID uuid.UUID, status domain.ReviewStatus) (*domain.Review, error) {
	user, err := s.auth.VerifiedUser(ctx)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	flagStatus, err := domain.FlagStatusFor(status)
	if err != nil {
		return nil, err
	}

	review, flagsUpdated, err := s.reviews.Moderate(ctx, &domain.Moderation{
		ReviewID:    reviewID,
		Status:      status,
		ModeratorID: user.ID,
		ModeratedAt: s.now().UTC(),
		FlagStatus:  flagStatus,
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to moderate review", err)
		}
		return nil, err
	}

	s.signal(ctx, domain.EventReviewModerated, review.ProductID, review.ID, review,
		domain.ProductPath(review.ProductID), domain.AdminReviewsPath)

	s.logger.WithFields(map[string]interface{}{
		"review_id":     reviewID,
		"status":        status,
		"moderator_id":  user.ID,
		"flags_settled": flagsUpdated,
	}).Info("Review moderated")

	return review, nil
}

// signal announces a mutation: the product's cached reads are dropped and the
// stale paths announced when paths are given, and a review event is published.
// Publishing happens in the background and never fails the caller.
func (s *Service) signal(ctx context.Context, eventType domain.EventType, productID, reviewID uuid.UUID, review *domain.Review, paths ...string) {
	if len(paths) > 0 {
		if err := s.cache.InvalidateProduct(ctx, productID); err != nil {
			s.logger.Warnf("Failed to invalidate cache for product %s: %v", productID, err)
		}
	}

	now := s.now().UTC()
	event, err := json.Marshal(domain.ReviewEvent{
		EventType: eventType,
		Timestamp: now,
		ProductID: productID,
		ReviewID:  reviewID,
		Review:    review,
	})
	if err != nil {
		s.logger.Errorf(err, "Failed to marshal %s event for review %s", eventType, reviewID)
		return
	}

	var revalidate []byte
	if len(paths) > 0 {
		revalidate, err = json.Marshal(domain.RevalidateSignal{
			Paths:     paths,
			ProductID: productID,
			Timestamp: now,
		})
		if err != nil {
			s.logger.Errorf(err, "Failed to marshal revalidate signal for product %s", productID)
		}
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := s.publisher.Publish(ctx, domain.SubjectReviewEvents, event); err != nil {
			s.logger.Errorf(err, "Failed to publish %s event for review %s", eventType, reviewID)
		}
		if revalidate != nil {
			if err := s.publisher.Notify(ctx, domain.SubjectRevalidate, revalidate); err != nil {
				s.logger.Errorf(err, "Failed to announce stale paths for product %s", productID)
			}
		}
	}()
}

// Wait blocks until background publishes finish or ctx is done.
// Call it before closing the publisher.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for review events to publish: %w", ctx.Err())
	}
}
