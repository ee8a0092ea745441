package cache

import (
	"time"

	"github.com/google/uuid"
	"github.com/maypok86/otter"

	"github.com/northernchefs/storefront/internal/domain"
)

// UserCache keeps recently resolved session users in process memory
type UserCache struct {
	c otter.Cache[uuid.UUID, *domain.User]
}

// NewUserCache creates a user cache holding up to size entries for ttl
func NewUserCache(size int, ttl time.Duration) (*UserCache, error) {
	c, err := otter.MustBuilder[uuid.UUID, *domain.User](size).
		CollectStats().
		Cost(func(key uuid.UUID, value *domain.User) uint32 {
			return 1
		}).
		WithTTL(ttl).
		Build()
	if err != nil {
		return nil, err
	}

	return &UserCache{c: c}, nil
}

// Get returns the cached user
func (c *UserCache) Get(id uuid.UUID) (*domain.User, bool) {
	return c.c.Get(id)
}

// Set caches a user under its ID
func (c *UserCache) Set(user *domain.User) {
	c.c.Set(user.ID, user)
}

// Delete drops a user, typically one that no longer exists
func (c *UserCache) Delete(id uuid.UUID) {
	c.c.Delete(id)
}

// Close releases the cache's background resources
func (c *UserCache) Close() {
	c.c.Close()
}
