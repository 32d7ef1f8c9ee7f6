package embedding

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/agentstation/fieldmatch/pkg/constants"
)

// Cached memoizes vectors from another embedder. Failures are not cached.
// It is safe for concurrent use.
type Cached struct {
	next  Embedder
	cache *gocache.Cache
}

// NewCached wraps next with a cache whose entries live for ttl. A zero ttl
// uses the default.
func NewCached(next Embedder, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = constants.CacheTTL
	}
	return &Cached{
		next:  next,
		cache: gocache.New(ttl, constants.CacheCleanupInterval),
	}
}

// Embed implements Embedder.
func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.cache.Get(text); ok {
		return v.([]float32), nil
	}
	vec, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(text, vec)
	return vec, nil
}

// Len returns the number of cached vectors.
func (c *Cached) Len() int {
	return c.cache.ItemCount()
}

// Flush drops every cached vector.
func (c *Cached) Flush() {
	c.cache.Flush()
}
