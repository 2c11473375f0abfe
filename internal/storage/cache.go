package storage

import (
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/yourusername/boatrace-vote/internal/feed"
)

// FeedCache keeps parsed feeds keyed by object key, so a feed read for both
// the vote and the payoff step of a cycle is downloaded and parsed once.
type FeedCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewFeedCache creates a new feed cache
func NewFeedCache(ttl time.Duration) *FeedCache {
	return &FeedCache{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// Get retrieves cached tables
func (fc *FeedCache) Get(key string) (*feed.Tables, bool) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if v, found := fc.cache.Get(key); found {
		if tables, ok := v.(*feed.Tables); ok {
			fc.hitCount++
			return tables, true
		}
	}
	fc.missCount++
	return nil, false
}

// Set stores parsed tables
func (fc *FeedCache) Set(key string, tables *feed.Tables) {
	fc.cache.Set(key, tables, fc.ttl)
}

// Invalidate drops one feed, e.g. an after-race feed whose payoffs were not
// published yet
func (fc *FeedCache) Invalidate(key string) {
	fc.cache.Delete(key)
}

// Stats returns cache statistics
func (fc *FeedCache) Stats() (hits, misses uint64, ratio float64) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	hits = fc.hitCount
	misses = fc.missCount
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of cached feeds
func (fc *FeedCache) ItemCount() int {
	return fc.cache.ItemCount()
}
