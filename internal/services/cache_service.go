package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"referralhub/internal/cache"
	"referralhub/internal/models"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

const userKeyPrefix = "referralhub:user:"

// UserCache caches user records by id for token resolution and profile reads
type UserCache struct {
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewUserCache wraps a cache backend; a nil backend disables caching
func NewUserCache(backend cache.Cache, ttl time.Duration, logger *zap.Logger) *UserCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserCache{cache: backend, ttl: ttl, logger: logger}
}

func userKey(id uuid.UUID) string {
	return fmt.Sprintf("%s%s", userKeyPrefix, id)
}

// Get returns the cached user, if any. The password hash is never cached.
func (c *UserCache) Get(ctx context.Context, id uuid.UUID) (*models.User, bool) {
	if c == nil || c.cache == nil {
		return nil, false
	}

	user, err := cache.GetJSON[*models.User](ctx, c.cache, userKey(id))
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			c.logger.Warn("Failed to decode cached user", zap.String("user_id", id.String()), zap.Error(err))
		}
		return nil, false
	}
	return user, user != nil
}

// Set stores the user
func (c *UserCache) Set(ctx context.Context, user *models.User) {
	if c == nil || c.cache == nil || user == nil {
		return
	}
	if err := cache.SetJSON(ctx, c.cache, userKey(user.ID), user, c.ttl); err != nil {
		c.logger.Warn("Failed to cache user", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
}

// Invalidate drops the cached user
func (c *UserCache) Invalidate(ctx context.Context, id uuid.UUID) {
	if c == nil || c.cache == nil {
		return
	}
	if err := c.cache.Delete(ctx, userKey(id)); err != nil {
		c.logger.Warn("Failed to invalidate cached user", zap.String("user_id", id.String()), zap.Error(err))
	}
}
