package review

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/northernchefs/storefront/internal/domain"
)

// MockReviewRepository is a mock implementation of domain.ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) ExistsForUser(ctx context.Context, productID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, productID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) Create(ctx context.Context, review *domain.Review, images []*domain.ReviewImage) error {
	args := m.Called(ctx, review, images)
	return args.Error(0)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *MockReviewRepository) ListByProduct(ctx context.Context, productID uuid.UUID, status domain.ReviewStatus) ([]*domain.ReviewDetails, error) {
	args := m.Called(ctx, productID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReviewDetails), args.Error(1)
}

func (m *MockReviewRepository) ListImages(ctx context.Context, reviewIDs []uuid.UUID) ([]*domain.ReviewImage, error) {
	args := m.Called(ctx, reviewIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReviewImage), args.Error(1)
}

func (m *MockReviewRepository) ListReplies(ctx context.Context, reviewIDs []uuid.UUID) ([]*domain.ReplyDetails, error) {
	args := m.Called(ctx, reviewIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReplyDetails), args.Error(1)
}

func (m *MockReviewRepository) RatingDistribution(ctx context.Context, productID uuid.UUID, status domain.ReviewStatus) (map[int]int, error) {
	args := m.Called(ctx, productID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]int), args.Error(1)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReviewRepository) Moderate(ctx context.Context, mod *domain.Moderation) (*domain.Review, int64, error) {
	args := m.Called(ctx, mod)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).(*domain.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepository) ListForAdmin(ctx context.Context, filter domain.ReviewFilter) ([]*domain.AdminReview, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AdminReview), args.Error(1)
}

// MockVoteRepository is a mock implementation of domain.VoteRepository
type MockVoteRepository struct {
	mock.Mock
}

func (m *MockVoteRepository) Apply(ctx context.Context, reviewID, userID uuid.UUID, isHelpful bool) (*domain.VoteResult, error) {
	args := m.Called(ctx, reviewID, userID, isHelpful)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VoteResult), args.Error(1)
}

// MockReplyRepository is a mock implementation of domain.ReplyRepository
type MockReplyRepository struct {
	mock.Mock
}

func (m *MockReplyRepository) Create(ctx context.Context, reply *domain.ReviewReply) error {
	args := m.Called(ctx, reply)
	return args.Error(0)
}

// MockFlagRepository is a mock implementation of domain.FlagRepository
type MockFlagRepository struct {
	mock.Mock
}

func (m *MockFlagRepository) ExistsForUser(ctx context.Context, reviewID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, reviewID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFlagRepository) Create(ctx context.Context, flag *domain.ReviewFlag) error {
	args := m.Called(ctx, flag)
	return args.Error(0)
}

func (m *MockFlagRepository) List(ctx context.Context, status domain.FlagStatus, limit, offset int) ([]*domain.ReviewFlag, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReviewFlag), args.Error(1)
}

// MockAuthenticator is a mock implementation of Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) CurrentUser(ctx context.Context) (*domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthenticator) VerifiedUser(ctx context.Context) (*domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockReviewCache is a mock implementation of ReviewCache
type MockReviewCache struct {
	mock.Mock
}

func (m *MockReviewCache) Version(ctx context.Context, productID uuid.UUID) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReviewCache) GetReviews(ctx context.Context, productID uuid.UUID, version int64) ([]*domain.ReviewDetails, error) {
	args := m.Called(ctx, productID, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReviewDetails), args.Error(1)
}

func (m *MockReviewCache) SetReviews(ctx context.Context, productID uuid.UUID, version int64, reviews []*domain.ReviewDetails) error {
	args := m.Called(ctx, productID, version, reviews)
	return args.Error(0)
}

func (m *MockReviewCache) GetRatingStats(ctx context.Context, productID uuid.UUID, version int64) (*domain.RatingStats, error) {
	args := m.Called(ctx, productID, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RatingStats), args.Error(1)
}

func (m *MockReviewCache) SetRatingStats(ctx context.Context, productID uuid.UUID, version int64, stats *domain.RatingStats) error {
	args := m.Called(ctx, productID, version, stats)
	return args.Error(0)
}

func (m *MockReviewCache) InvalidateProduct(ctx context.Context, productID uuid.UUID) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

type published struct {
	subject string
	data    []byte
}

// recordingPublisher captures what the service publishes from its background goroutine
type recordingPublisher struct {
	mu       sync.Mutex
	events   []published
	notified []published
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{subject, data})
	return nil
}

func (p *recordingPublisher) Notify(_ context.Context, subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notified = append(p.notified, published{subject, data})
	return nil
}

func (p *recordingPublisher) counts() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events), len(p.notified)
}

func (p *recordingPublisher) lastEvent() published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

func (p *recordingPublisher) lastNotification() published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.notified[len(p.notified)-1]
}

// gatedPublisher holds every publish until release is closed
type gatedPublisher struct {
	recordingPublisher
	release chan struct{}
}

func (p *gatedPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	<-p.release
	return p.recordingPublisher.Publish(ctx, subject, data)
}
