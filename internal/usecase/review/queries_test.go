package review

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/northernchefs/storefront/internal/domain"
)

func TestService_ListByProduct_GroupsImagesAndReplies(t *testing.T) {
	f := newFixture(Options{})

	productID := uuid.New()
	first := &domain.ReviewDetails{Review: domain.Review{ID: uuid.New(), ProductID: productID, Status: domain.ReviewApproved}}
	second := &domain.ReviewDetails{Review: domain.Review{ID: uuid.New(), ProductID: productID, Status: domain.ReviewApproved}}
	ids := []uuid.UUID{first.ID, second.ID}

	images := []*domain.ReviewImage{
		{ID: uuid.New(), ReviewID: first.ID, ImageURL: "https://cdn.example.com/1.jpg", DisplayOrder: 0},
		{ID: uuid.New(), ReviewID: first.ID, ImageURL: "https://cdn.example.com/2.jpg", DisplayOrder: 1},
	}
	replies := []*domain.ReplyDetails{
		{ReviewReply: domain.ReviewReply{ID: uuid.New(), ReviewID: second.ID, Content: "Merci"}, AuthorRole: domain.RoleAdmin},
	}

	f.cache.On("Version", mock.Anything, productID).Return(int64(3), nil)
	f.cache.On("GetReviews", mock.Anything, productID, int64(3)).Return(nil, domain.ErrNotFound)
	f.reviews.On("ListByProduct", mock.Anything, productID, domain.ReviewApproved).
		Return([]*domain.ReviewDetails{first, second}, nil)
	f.reviews.On("ListImages", mock.Anything, ids).Return(images, nil)
	f.reviews.On("ListReplies", mock.Anything, ids).Return(replies, nil)
	f.cache.On("SetReviews", mock.Anything, productID, int64(3), mock.Anything).Return(nil)

	reviews, err := f.svc.ListByProduct(context.Background(), productID)

	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Len(t, reviews[0].Images, 2)
	assert.Equal(t, 1, reviews[0].Images[1].DisplayOrder)
	assert.NotNil(t, reviews[0].Replies)
	assert.Empty(t, reviews[0].Replies)
	assert.NotNil(t, reviews[1].Images)
	assert.Empty(t, reviews[1].Images)
	require.Len(t, reviews[1].Replies, 1)
	assert.Equal(t, "Merci", reviews[1].Replies[0].Content)

	f.reviews.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func TestService_ListByProduct_EmptySkipsFollowUpQueries(t *testing.T) {
	f := newFixture(Options{})

	productID := uuid.New()
	f.cache.On("Version", mock.Anything, productID).Return(int64(3), nil)
	f.cache.On("GetReviews", mock.Anything, productID, int64(3)).Return(nil, domain.ErrNotFound)
	f.reviews.On("ListByProduct", mock.Anything, productID, domain.ReviewApproved).Return([]*domain.ReviewDetails{}, nil)
	f.cache.On("SetReviews", mock.Anything, productID, int64(3), mock.Anything).Return(nil)

	reviews, err := f.svc.ListByProduct(context.Background(), productID)

	require.NoError(t, err)
	assert.NotNil(t, reviews)
	assert.Empty(t, reviews)
	f.reviews.AssertNotCalled(t, "ListImages", mock.Anything, mock.Anything)
	f.reviews.AssertNotCalled(t, "ListReplies", mock.Anything, mock.Anything)
}

func TestService_ListByProduct_CacheHit(t *testing.T) {
	f := newFixture(Options{})

	productID := uuid.New()
	cached := []*domain.ReviewDetails{{Review: domain.Review{ID: uuid.New(), ProductID: productID}}}
	f.cache.On("Version", mock.Anything, productID).Return(int64(3), nil)
	f.cache.On("GetReviews", mock.Anything, productID, int64(3)).Return(cached, nil)

	reviews, err := f.svc.ListByProduct(context.Background(), productID)

	require.NoError(t, err)
	assert.Equal(t, cached, reviews)
	f.reviews.AssertNotCalled(t, "ListByProduct", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_ListByProduct_DegradesWithoutCaching(t *testing.T) {
	t.Run("reviews query fails", func(t *testing.T) {
		f := newFixture(Options{})
		productID := uuid.New()

		f.cache.On("Version", mock.Anything, productID).Return(int64(3), nil)
		f.cache.On("GetReviews", mock.Anything, productID, int64(3)).Return(nil, domain.ErrNotFound)
		f.reviews.On("ListByProduct", mock.Anything, productID, domain.ReviewApproved).Return(nil, assert.AnError)

		reviews, err := f.svc.ListByProduct(context.Background(), productID)

		assert.ErrorIs(t, err, assert.AnError)
		assert.NotNil(t, reviews)
		assert.Empty(t, reviews)
		f.cache.AssertNotCalled(t, "SetReviews", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("replies query fails", func(t *testing.T) {
		f := newFixture(Options{})
		productID := uuid.New()
		review := &domain.ReviewDetails{Review: domain.Review{ID: uuid.New(), ProductID: productID}}

		f.cache.On("Version", mock.Anything, productID).Return(int64(3), nil)
		f.cache.On("GetReviews", mock.Anything, productID, int64(3)).Return(nil, assert.AnError)
		f.reviews.On("ListByProduct", mock.Anything, productID, domain.ReviewApproved).Return([]*domain.ReviewDetails{review}, nil)
		f.reviews.On("ListImages", mock.Anything, mock.Anything).Return([]*domain.ReviewImage{}, nil)
		f.reviews.On("ListReplies", mock.Anything, mock.Anything).Return(nil, assert.AnError)

		reviews, err := f.svc.ListByProduct(context.Background(), productID)

		assert.Error(t, err)
		assert.Empty(t, reviews)
		f.cache.AssertNotCalled(t, "SetReviews", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_ListByProduct_CacheUnavailable(t *testing.T) {
	f := newFixture(Options{})

	productID := uuid.New()
	f.cache.On("Version", mock.Anything, productID).Return(int64(0), assert.AnError)
	f.reviews.On("ListByProduct", mock.Anything, productID, domain.ReviewApproved).Return([]*domain.ReviewDetails{}, nil)

	reviews, err := f.svc.ListByProduct(context.Background(), productID)

	require.NoError(t, err)
	assert.Empty(t, reviews)
	f.cache.AssertNotCalled(t, "GetReviews", mock.Anything, mock.Anything, mock.Anything)
	f.cache.AssertNotCalled(t, "SetReviews", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_RatingStats(t *testing.T) {
	t.Run("no approved reviews", func(t *testing.T) {
		f := newFixture(Options{})
		productID := uuid.New()

		f.cache.On("Version", mock.Anything, productID).Return(int64(3), nil)
		f.cache.On("GetRatingStats", mock.Anything, productID, int64(3)).Return(nil, domain.ErrNotFound)
		f.reviews.On("RatingDistribution", mock.Anything, productID, domain.ReviewApproved).Return(map[int]int{}, nil)
		f.cache.On("SetRatingStats", mock.Anything, productID, int64(3), mock.Anything).Return(nil)

		stats, err := f.svc.RatingStats(context.Background(), productID)

		require.NoError(t, err)
		assert.Equal(t, &domain.RatingStats{
			AverageRating:      0,
			TotalReviews:       0,
			RatingDistribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
		}, stats)
	})

	t.Run("five five four", func(t *testing.T) {
		f := newFixture(Options{})
		productID := uuid.New()

		f.cache.On("Version", mock.Anything, productID).Return(int64(3), nil)
		f.cache.On("GetRatingStats", mock.Anything, productID, int64(3)).Return(nil, domain.ErrNotFound)
		f.reviews.On("RatingDistribution", mock.Anything, productID, domain.ReviewApproved).Return(map[int]int{5: 2, 4: 1}, nil)
		f.cache.On("SetRatingStats", mock.Anything, productID, int64(3), mock.Anything).Return(nil)

		stats, err := f.svc.RatingStats(context.Background(), productID)

		require.NoError(t, err)
		assert.Equal(t, 4.7, stats.AverageRating)
		assert.Equal(t, 3, stats.TotalReviews)
		assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 0, 4: 1, 5: 2}, stats.RatingDistribution)
	})

	t.Run("store failure yields zeroed stats", func(t *testing.T) {
		f := newFixture(Options{})
		productID := uuid.New()

		f.cache.On("Version", mock.Anything, productID).Return(int64(3), nil)
		f.cache.On("GetRatingStats", mock.Anything, productID, int64(3)).Return(nil, domain.ErrNotFound)
		f.reviews.On("RatingDistribution", mock.Anything, productID, domain.ReviewApproved).Return(nil, assert.AnError)

		stats, err := f.svc.RatingStats(context.Background(), productID)

		assert.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, domain.EmptyRatingStats(), stats)
		f.cache.AssertNotCalled(t, "SetRatingStats", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestComputeRatingStats_RoundsHalfUp(t *testing.T) {
	tests := []struct {
		name         string
		distribution map[int]int
		want         float64
	}{
		{"single", map[int]int{3: 1}, 3},
		{"one and two", map[int]int{1: 1, 2: 1}, 1.5},
		{"quarter rounds up", map[int]int{4: 3, 5: 1}, 4.3},
		{"two thirds", map[int]int{1: 1, 2: 2}, 1.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeRatingStats(tt.distribution).AverageRating)
		})
	}
}

func TestService_ListForAdmin(t *testing.T) {
	t.Run("customers are forbidden", func(t *testing.T) {
		f := newFixture(Options{})
		f.as(customer())

		_, err := f.svc.ListForAdmin(context.Background(), "", 10, 0)

		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("unknown status", func(t *testing.T) {
		f := newFixture(Options{})
		f.as(admin())

		_, err := f.svc.ListForAdmin(context.Background(), "archived", 10, 0)

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("filters and clamps", func(t *testing.T) {
		f := newFixture(Options{})
		f.as(admin())

		f.reviews.On("ListForAdmin", mock.Anything, domain.ReviewFilter{Status: domain.ReviewPending, Limit: maxAdminLimit, Offset: 0}).
			Return([]*domain.AdminReview{{PendingFlags: 2}}, nil)

		reviews, err := f.svc.ListForAdmin(context.Background(), domain.ReviewPending, 1000, -5)

		require.NoError(t, err)
		assert.Len(t, reviews, 1)
		f.reviews.AssertExpectations(t)
	})
}

func TestService_ListFlags_DefaultsToPending(t *testing.T) {
	f := newFixture(Options{})
	f.as(admin())

	f.flags.On("List", mock.Anything, domain.FlagPending, defaultAdminLimit, 0).Return([]*domain.ReviewFlag{}, nil)

	flags, err := f.svc.ListFlags(context.Background(), "", 0, 0)

	require.NoError(t, err)
	assert.Empty(t, flags)
	f.flags.AssertExpectations(t)
}
