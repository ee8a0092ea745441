package review

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/northernchefs/storefront/internal/domain"
)

const (
	defaultAdminLimit = 50
	maxAdminLimit     = 200
)

// ListByProduct returns a product's approved reviews, newest first, with their
// authors, images and replies.
// On failure it returns an empty list together with the error, so callers that
// must not fail can render the empty list.
func (s *Service) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ReviewDetails, error) {
	version, cacheErr := s.cache.Version(ctx, productID)
	if cacheErr != nil {
		s.logger.Warnf("Review cache unavailable for product %s: %v", productID, cacheErr)
	} else {
		cached, err := s.cache.GetReviews(ctx, productID, version)
		if err == nil {
			s.logger.Debugf("Cache hit for product %s reviews", productID)
			return cached, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warnf("Failed to read cached reviews for product %s: %v", productID, err)
		}
	}

	reviews, err := s.loadApproved(ctx, productID)
	if err != nil {
		s.logger.WithFields(map[string]interface{}{
			"product_id": productID,
			"degraded":   true,
		}).Error("Failed to list reviews", err)
		return []*domain.ReviewDetails{}, err
	}

	if cacheErr == nil {
		if err := s.cache.SetReviews(ctx, productID, version, reviews); err != nil {
			s.logger.Warnf("Failed to cache reviews for product %s: %v", productID, err)
		}
	}

	return reviews, nil
}

// loadApproved runs the three listing queries in order and groups images and
// replies under their reviews
func (s *Service) loadApproved(ctx context.Context, productID uuid.UUID) ([]*domain.ReviewDetails, error) {
	reviews, err := s.reviews.ListByProduct(ctx, productID, domain.ReviewApproved)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	if len(reviews) == 0 {
		return []*domain.ReviewDetails{}, nil
	}

	ids := make([]uuid.UUID, len(reviews))
	for i, r := range reviews {
		ids[i] = r.ID
	}

	images, err := s.reviews.ListImages(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list review images: %w", err)
	}

	replies, err := s.reviews.ListReplies(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list review replies: %w", err)
	}

	imagesByReview := make(map[uuid.UUID][]*domain.ReviewImage, len(reviews))
	for _, img := range images {
		imagesByReview[img.ReviewID] = append(imagesByReview[img.ReviewID], img)
	}
	repliesByReview := make(map[uuid.UUID][]*domain.ReplyDetails, len(reviews))
	for _, reply := range replies {
		repliesByReview[reply.ReviewID] = append(repliesByReview[reply.ReviewID], reply)
	}

	for _, r := range reviews {
		r.Images = imagesByReview[r.ID]
		if r.Images == nil {
			r.Images = []*domain.ReviewImage{}
		}
		r.Replies = repliesByReview[r.ID]
		if r.Replies == nil {
			r.Replies = []*domain.ReplyDetails{}
		}
	}

	return reviews, nil
}

// RatingStats summarises a product's approved ratings.
// On failure it returns zeroed stats together with the error.
func (s *Service) RatingStats(ctx context.Context, productID uuid.UUID) (*domain.RatingStats, error) {
	version, cacheErr := s.cache.Version(ctx, productID)
	if cacheErr != nil {
		s.logger.Warnf("Review cache unavailable for product %s: %v", productID, cacheErr)
	} else {
		cached, err := s.cache.GetRatingStats(ctx, productID, version)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warnf("Failed to read cached rating stats for product %s: %v", productID, err)
		}
	}

	distribution, err := s.reviews.RatingDistribution(ctx, productID, domain.ReviewApproved)
	if err != nil {
		s.logger.WithFields(map[string]interface{}{
			"product_id": productID,
			"degraded":   true,
		}).Error("Failed to compute rating stats", err)
		return domain.EmptyRatingStats(), err
	}

	stats := ComputeRatingStats(distribution)

	if cacheErr == nil {
		if err := s.cache.SetRatingStats(ctx, productID, version, stats); err != nil {
			s.logger.Warnf("Failed to cache rating stats for product %s: %v", productID, err)
		}
	}

	return stats, nil
}

// ComputeRatingStats builds stats from per-rating counts. The average is
// rounded half-up to one decimal.
func ComputeRatingStats(distribution map[int]int) *domain.RatingStats {
	stats := domain.EmptyRatingStats()

	sum := 0
	for rating := 1; rating <= 5; rating++ {
		count := distribution[rating]
		stats.RatingDistribution[rating] = count
		stats.TotalReviews += count
		sum += rating * count
	}

	if stats.TotalReviews > 0 {
		avg := float64(sum) / float64(stats.TotalReviews)
		stats.AverageRating = math.Round(avg*10) / 10
	}

	return stats
}

// ListForAdmin returns reviews across products for the moderation queue. Admin only.
func (s *Service) ListForAdmin(ctx context.Context, status domain.ReviewStatus, limit, offset int) ([]*domain.AdminReview, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown review status %q", domain.ErrInvalidInput, status)
	}

	limit, offset = clampPage(limit, offset)
	reviews, err := s.reviews.ListForAdmin(ctx, domain.ReviewFilter{Status: status, Limit: limit, Offset: offset})
	if err != nil {
		s.logger.Error("Failed to list reviews for admin", err)
		return nil, err
	}

	return reviews, nil
}

// ListFlags returns flags with the given status, pending by default. Admin only.
func (s *Service) ListFlags(ctx context.Context, status domain.FlagStatus, limit, offset int) ([]*domain.ReviewFlag, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	if status == "" {
		status = domain.FlagPending
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown flag status %q", domain.ErrInvalidInput, status)
	}

	limit, offset = clampPage(limit, offset)
	flags, err := s.flags.List(ctx, status, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list flags", err)
		return nil, err
	}

	return flags, nil
}

func (s *Service) requireAdmin(ctx context.Context) error {
	user, err := s.auth.VerifiedUser(ctx)
	if err != nil {
		return err
	}
	if !user.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultAdminLimit
	}
	if limit > maxAdminLimit {
		limit = maxAdminLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
