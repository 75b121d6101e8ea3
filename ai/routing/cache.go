package routing

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/neusearch/neusearch/ai/cache"
)

// CacheEntry is a cached LLM routing decision.
type CacheEntry struct {
	Intent    Intent
	Timestamp int64
}

// RouterCache keeps LLM classifications so repeated queries skip the model call.
type RouterCache struct {
	cache *cache.LRUCache[string, CacheEntry]
}

// CacheConfig contains configuration for RouterCache.
type CacheConfig struct {
	Capacity int           // default: 500
	TTL      time.Duration // default: 30min
}

// NewRouterCache creates a router cache.
func NewRouterCache(cfg CacheConfig) *RouterCache {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 500
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	return &RouterCache{
		cache: cache.NewLRUCache[string, CacheEntry](cfg.Capacity, cfg.TTL),
	}
}

// Get returns the cached intent for input.
func (c *RouterCache) Get(input string) (Intent, bool) {
	entry, ok := c.cache.Get(hashKey(input))
	if !ok {
		return "", false
	}
	slog.Debug("router cache hit", "input", truncate(input, 50), "intent", entry.Intent)
	return entry.Intent, true
}

// Set stores the intent for input with the default TTL.
func (c *RouterCache) Set(input string, intent Intent) {
	c.cache.Set(hashKey(input), CacheEntry{Intent: intent, Timestamp: time.Now().Unix()}, 0)
}

// Stats returns hit and miss counts.
func (c *RouterCache) Stats() (hits, misses int64) {
	return c.cache.Stats()
}

// Size returns the number of cached decisions.
func (c *RouterCache) Size() int {
	return c.cache.Size()
}

// hashKey keys by the normalized message so "Hi " and "hi" share an entry.
func hashKey(input string) string {
	sum := sha256.Sum256([]byte(normalize(input)))
	return hex.EncodeToString(sum[:16])
}
