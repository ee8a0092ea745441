package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/northernchefs/storefront/internal/domain"
	"github.com/northernchefs/storefront/internal/pkg/logger"
)

// UserCache is an in-process cache of resolved users
type UserCache interface {
	Get(id uuid.UUID) (*domain.User, bool)
	Set(user *domain.User)
	Delete(id uuid.UUID)
}

// Service resolves the session user of a request
type Service struct {
	users  domain.UserRepository
	cache  UserCache
	logger *logger.Logger
}

// NewService creates a new session service
func NewService(users domain.UserRepository, cache UserCache, log *logger.Logger) *Service {
	return &Service{
		users:  users,
		cache:  cache,
		logger: log,
	}
}

// CurrentUser returns the user behind the request's session, from the cache when possible.
// A request without a session, or whose user no longer exists, is unauthenticated.
// The cached copy may lag role changes; use VerifiedUser when the role gates the operation.
func (s *Service) CurrentUser(ctx context.Context) (*domain.User, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	if user, ok := s.cache.Get(userID); ok {
		return user, nil
	}

	return s.load(ctx, userID)
}

// VerifiedUser returns the session user read from the store, refreshing the cached copy
func (s *Service) VerifiedUser(ctx context.Context) (*domain.User, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	return s.load(ctx, userID)
}

func (s *Service) load(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.cache.Delete(userID)
			s.logger.Debugf("Session user %s no longer exists", userID)
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("load session user: %w", err)
	}

	s.cache.Set(user)
	return user, nil
}
