package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/kurral/feedengine/internal/domain"
)

// FeedCache memoizes ranked feeds keyed by (viewer, config hash,
// candidate-set version). Any of the three changing produces a new key,
// which is the whole invalidation story; stale entries just age out.
type FeedCache struct {
	cache *gocache.Cache
}

// NewFeedCache creates a feed cache with the given TTL.
func NewFeedCache(ttl, cleanupInterval time.Duration) *FeedCache {
	return &FeedCache{cache: gocache.New(ttl, cleanupInterval)}
}

// Key builds the memoization key for one rank invocation.
func (c *FeedCache) Key(viewerID string, cfg domain.ForYouConfig, candidateVersion int64) string {
	return fmt.Sprintf("feed:v1:%s:%s:%d", viewerID, ConfigHash(cfg), candidateVersion)
}

// Get returns a cached feed, if present.
func (c *FeedCache) Get(key string) (domain.Feed, bool) {
	if v, found := c.cache.Get(key); found {
		return v.(domain.Feed), true
	}
	return domain.Feed{}, false
}

// Set stores a feed under the key for the cache's default TTL.
func (c *FeedCache) Set(key string, feed domain.Feed) {
	c.cache.SetDefault(key, feed)
}

// Flush drops every cached feed.
func (c *FeedCache) Flush() {
	c.cache.Flush()
}

// ConfigHash digests a ForYouConfig into a stable short hash. JSON
// encoding of the struct is deterministic for fixed field order.
func ConfigHash(cfg domain.ForYouConfig) string {
	b, err := json.Marshal(cfg)
	if err != nil {
		return "unhashable"
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:8])
}
