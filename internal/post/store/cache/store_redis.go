// Package cache keeps rendered post views in Redis so hot public reads skip
// normalization and HTML rendering.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"inkwell/internal/post/models"
	"inkwell/pkg/platform/sentinel"
)

const viewKeyPrefix = "inkwell:post:view:"

// DefaultTTL bounds staleness if an invalidation is lost.
const DefaultTTL = 5 * time.Minute

// RedisCache stores PostView JSON keyed by slug.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache constructs a cache whose entries live for ttl.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

// FindView returns the cached view of slug, or sentinel.ErrNotFound on a miss.
func (c *RedisCache) FindView(ctx context.Context, slug string) (*models.PostView, error) {
	raw, err := c.client.Get(ctx, viewKeyPrefix+slug).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post view: %w: %w", sentinel.ErrUnavailable, err)
	}
	var view models.PostView
	if err := json.Unmarshal(raw, &view); err != nil {
		// A payload from an older release reads as a miss and is overwritten.
		return nil, sentinel.ErrNotFound
	}
	return &view, nil
}

// SaveView caches view under its slug.
func (c *RedisCache) SaveView(ctx context.Context, view *models.PostView) error {
	raw, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("encode post view: %w", err)
	}
	if err := c.client.Set(ctx, viewKeyPrefix+view.Slug, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set post view: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

// Invalidate drops the cached views of slugs. Empty slugs are ignored.
func (c *RedisCache) Invalidate(ctx context.Context, slugs ...string) error {
	keys := make([]string, 0, len(slugs))
	for _, s := range slugs {
		if s != "" {
			keys = append(keys, viewKeyPrefix+s)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate post views: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}
