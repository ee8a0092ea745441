package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/northernchefs/storefront/internal/domain"
	"github.com/northernchefs/storefront/internal/pkg/logger"
	"github.com/northernchefs/storefront/internal/repository/cache"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type mapCache map[uuid.UUID]*domain.User

func (c mapCache) Get(id uuid.UUID) (*domain.User, bool) {
	u, ok := c[id]
	return u, ok
}

func (c mapCache) Set(user *domain.User) {
	c[user.ID] = user
}

func (c mapCache) Delete(id uuid.UUID) {
	delete(c, id)
}

func TestTokens_IssueAndParse(t *testing.T) {
	tokens := NewTokens("secret", "northern-chefs")
	userID := uuid.New()

	signed, err := tokens.Issue(userID, "chef@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := tokens.Parse(signed)
	require.NoError(t, err)

	got, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, got)
	assert.Equal(t, "chef@example.com", claims.Email)
}

func TestTokens_ParseRejects(t *testing.T) {
	tokens := NewTokens("secret", "northern-chefs")
	userID := uuid.New()

	expired, err := tokens.Issue(userID, "", -time.Minute)
	require.NoError(t, err)

	otherSecret, err := NewTokens("other", "northern-chefs").Issue(userID, "", time.Hour)
	require.NoError(t, err)

	otherIssuer, err := NewTokens("secret", "someone-else").Issue(userID, "", time.Hour)
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-a-uuid",
			Issuer:    "northern-chefs",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"expired":      expired,
		"wrong secret": otherSecret,
		"wrong issuer": otherIssuer,
		"bad subject":  badSubject,
		"garbage":      "not.a.token",
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := tokens.Parse(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestService_CurrentUser_NoSession(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewService(repo, mapCache{}, logger.New("test"))

	_, err := svc.CurrentUser(context.Background())

	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestService_CurrentUser_LoadsOnceThenCaches(t *testing.T) {
	repo := new(MockUserRepository)
	cache := mapCache{}
	svc := NewService(repo, cache, logger.New("test"))

	user := &domain.User{ID: uuid.New(), Role: domain.RoleCustomer}
	ctx := WithUserID(context.Background(), user.ID)

	repo.On("GetByID", ctx, user.ID).Return(user, nil).Once()

	first, err := svc.CurrentUser(ctx)
	require.NoError(t, err)
	second, err := svc.CurrentUser(ctx)
	require.NoError(t, err)

	assert.Same(t, user, first)
	assert.Same(t, user, second)
	repo.AssertNumberOfCalls(t, "GetByID", 1)
}

func TestService_CurrentUser_DeletedUserIsUnauthenticated(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewService(repo, mapCache{}, logger.New("test"))

	userID := uuid.New()
	ctx := WithUserID(context.Background(), userID)
	repo.On("GetByID", ctx, userID).Return(nil, domain.ErrNotFound)

	_, err := svc.CurrentUser(ctx)

	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestService_CurrentUser_StoreFailure(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewService(repo, mapCache{}, logger.New("test"))

	userID := uuid.New()
	ctx := WithUserID(context.Background(), userID)
	repo.On("GetByID", ctx, userID).Return(nil, assert.AnError)

	_, err := svc.CurrentUser(ctx)

	assert.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestService_VerifiedUser_SeesRoleChange(t *testing.T) {
	repo := new(MockUserRepository)
	users, err := cache.NewUserCache(100, time.Minute)
	require.NoError(t, err)
	defer users.Close()

	svc := NewService(repo, users, logger.New("test"))

	userID := uuid.New()
	ctx := WithUserID(context.Background(), userID)
	repo.On("GetByID", ctx, userID).Return(&domain.User{ID: userID, Role: domain.RoleAdmin}, nil).Once()
	repo.On("GetByID", ctx, userID).Return(&domain.User{ID: userID, Role: domain.RoleCustomer}, nil).Once()

	before, err := svc.CurrentUser(ctx)
	require.NoError(t, err)
	assert.True(t, before.IsAdmin())

	verified, err := svc.VerifiedUser(ctx)
	require.NoError(t, err)
	assert.False(t, verified.IsAdmin())

	// the store read replaced the cached copy
	after, err := svc.CurrentUser(ctx)
	require.NoError(t, err)
	assert.False(t, after.IsAdmin())
	repo.AssertNumberOfCalls(t, "GetByID", 2)
}

func TestService_VerifiedUser_DeletedUserLeavesCache(t *testing.T) {
	repo := new(MockUserRepository)
	users := mapCache{}
	svc := NewService(repo, users, logger.New("test"))

	user := &domain.User{ID: uuid.New(), Role: domain.RoleAdmin}
	users.Set(user)
	ctx := WithUserID(context.Background(), user.ID)
	repo.On("GetByID", ctx, user.ID).Return(nil, domain.ErrNotFound)

	_, err := svc.VerifiedUser(ctx)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, cached := users.Get(user.ID)
	assert.False(t, cached)
}
