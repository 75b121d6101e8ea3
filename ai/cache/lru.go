package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"
)

// LRUCache is a bounded, goroutine-safe cache. Entries expire after their TTL
// and the least recently read entry is evicted when the cache is full.
// It backs the in-process query embedding cache, the intent decision cache
// and the compiled catalog filter cache.
type LRUCache[K comparable, V any] struct {
	mu         sync.Mutex
	items      map[K]*list.Element
	recency    *list.List // front is most recently used
	capacity   int
	defaultTTL time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

type lruItem[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
}

// NewLRUCache creates a cache holding at most capacity entries.
// Non-positive arguments fall back to 1000 entries and five minutes.
func NewLRUCache[K comparable, V any](capacity int, defaultTTL time.Duration) *LRUCache[K, V] {
	if capacity <= 0 {
		capacity = 1000
	}
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return &LRUCache[K, V]{
		items:      make(map[K]*list.Element, capacity),
		recency:    list.New(),
		capacity:   capacity,
		defaultTTL: defaultTTL,
	}
}

// Get returns the live value for key and marks it recently used.
// Expired entries are dropped on read and count as misses.
func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		c.misses.Add(1)
		return zero, false
	}
	item := el.Value.(*lruItem[K, V])
	if time.Now().After(item.expiresAt) {
		c.drop(el)
		c.misses.Add(1)
		return zero, false
	}
	c.recency.MoveToFront(el)
	c.hits.Add(1)
	return item.value, true
}

// Set stores value under key. A non-positive ttl uses the default.
func (c *LRUCache[K, V]) Set(key K, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	expiresAt := time.Now().Add(ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		item := el.Value.(*lruItem[K, V])
		item.value = value
		item.expiresAt = expiresAt
		c.recency.MoveToFront(el)
		return
	}
	for len(c.items) >= c.capacity {
		c.drop(c.recency.Back())
	}
	c.items[key] = c.recency.PushFront(&lruItem[K, V]{key: key, value: value, expiresAt: expiresAt})
}

// Size returns the number of entries, expired ones included until read.
func (c *LRUCache[K, V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns the hit and miss counts since creation.
func (c *LRUCache[K, V]) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Clear drops every entry. Stats are kept.
func (c *LRUCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.items)
	c.recency.Init()
}

// drop must be called with mu held.
func (c *LRUCache[K, V]) drop(el *list.Element) {
	if el == nil {
		return
	}
	c.recency.Remove(el)
	delete(c.items, el.Value.(*lruItem[K, V]).key)
}
