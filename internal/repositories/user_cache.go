package repositories

import (
	"context"
	"errors"
	"time"

	"user-profile-api/internal/models"
	"user-profile-api/pkg/cache"
	"user-profile-api/pkg/metrics"

	"github.com/go-redis/redis/v8"
)

// versionTTL outlives any read-through so an old generation cannot recur.
const versionTTL = 24 * time.Hour

type userCache struct {
	client redis.Cmdable
}

func NewUserCache(client redis.Cmdable) UserCache {
	if client == nil {
		return noopUserCache{}
	}
	return &userCache{client: client}
}

func (c *userCache) GetUser(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	err := cache.Get(ctx, c.client, cache.UserKey(uid), &user)
	if errors.Is(err, cache.ErrCacheMiss) {
		metrics.CacheMissesTotal.Inc()
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	metrics.CacheHitsTotal.Inc()
	return &user, nil
}

func (c *userCache) Version(ctx context.Context, uid string) (int64, error) {
	return cache.Version(ctx, c.client, cache.UserVersionKey(uid))
}

func (c *userCache) SetUser(ctx context.Context, user *models.User, version int64, expiration time.Duration) error {
	uid := user.SupabaseUID
	_, err := cache.SetIfVersion(ctx, c.client, cache.UserKey(uid), cache.UserVersionKey(uid), version, user, expiration)
	return err
}

func (c *userCache) InvalidateUser(ctx context.Context, uid string) error {
	return cache.BumpVersion(ctx, c.client, cache.UserVersionKey(uid), versionTTL, cache.UserKey(uid))
}

func (c *userCache) Ping(ctx context.Context) error {
	start := time.Now()
	err := c.client.Ping(ctx).Err()
	metrics.ObserveRedis("ping", start, err)
	return err
}

// noopUserCache is used when redis is disabled; every read misses.
type noopUserCache struct{}

func (noopUserCache) GetUser(context.Context, string) (*models.User, error) { return nil, nil }

func (noopUserCache) Version(context.Context, string) (int64, error) { return 0, nil }

func (noopUserCache) SetUser(context.Context, *models.User, int64, time.Duration) error { return nil }

func (noopUserCache) InvalidateUser(context.Context, string) error { return nil }

func (noopUserCache) Ping(context.Context) error { return nil }
