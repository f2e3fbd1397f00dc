// Package cache fronts a token blacklist with an in-process LRU of hashes
// known to be revoked. Only positive answers are cached: a revoked token
// stays revoked until it expires, so a cached hit can never become stale,
// while a miss always goes to the backing store.
package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/platinummonkey/shopadmin/pkg/auth"
	"github.com/platinummonkey/shopadmin/pkg/observability"
)

const cacheName = "blacklist"

// BlacklistCache wraps a BlacklistStore with a positive-result LRU
type BlacklistCache struct {
	next    auth.BlacklistStore
	cache   *lru.LRU[string, struct{}]
	metrics *observability.Metrics
}

// NewBlacklistCache creates the cache. Entries live at most ttl.
func NewBlacklistCache(next auth.BlacklistStore, size int, ttl time.Duration, metrics *observability.Metrics) *BlacklistCache {
	if size <= 0 {
		size = 10000
	}
	return &BlacklistCache{
		next:    next,
		cache:   lru.NewLRU[string, struct{}](size, nil, ttl),
		metrics: metrics,
	}
}

func (c *BlacklistCache) Add(ctx context.Context, tokenHash string, expiresAt time.Time) (bool, error) {
	added, err := c.next.Add(ctx, tokenHash, expiresAt)
	if err != nil {
		return false, err
	}
	c.cache.Add(tokenHash, struct{}{})
	return added, nil
}

func (c *BlacklistCache) Contains(ctx context.Context, tokenHash string) (bool, error) {
	if _, ok := c.cache.Get(tokenHash); ok {
		c.metrics.RecordCache(cacheName, true)
		return true, nil
	}
	c.metrics.RecordCache(cacheName, false)

	listed, err := c.next.Contains(ctx, tokenHash)
	if err != nil {
		return false, err
	}
	if listed {
		c.cache.Add(tokenHash, struct{}{})
	}
	return listed, nil
}

// Len returns the number of cached hashes
func (c *BlacklistCache) Len() int {
	return c.cache.Len()
}
