package cache

import (
	"context"
	"sync"

	"inkwell/internal/post/models"
	"inkwell/pkg/platform/sentinel"
)

// InMemoryCache is the single-process view cache used when Redis is not
// configured. Entries never expire; every write path invalidates.
type InMemoryCache struct {
	mu    sync.RWMutex
	views map[string]models.PostView
}

func NewInMemory() *InMemoryCache {
	return &InMemoryCache{views: make(map[string]models.PostView)}
}

func (c *InMemoryCache) FindView(_ context.Context, slug string) (*models.PostView, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.views[slug]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &v, nil
}

func (c *InMemoryCache) SaveView(_ context.Context, view *models.PostView) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[view.Slug] = *view
	return nil
}

func (c *InMemoryCache) Invalidate(_ context.Context, slugs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range slugs {
		delete(c.views, s)
	}
	return nil
}
