package routing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRouterCache_BasicOperations(t *testing.T) {
	c := NewRouterCache(CacheConfig{Capacity: 10, TTL: time.Minute})

	c.Set("thanks a lot", IntentGeneral)
	intent, found := c.Get("thanks a lot")
	assert.True(t, found)
	assert.Equal(t, IntentGeneral, intent)

	intent, found = c.Get("  THANKS A LOT ")
	assert.True(t, found, "keys are normalized")
	assert.Equal(t, IntentGeneral, intent)

	_, found = c.Get("red sneakers")
	assert.False(t, found)

	hits, misses := c.Stats()
	assert.EqualValues(t, 2, hits)
	assert.EqualValues(t, 1, misses)
	assert.Equal(t, 1, c.Size())
}

func TestRouterCache_TTL(t *testing.T) {
	c := NewRouterCache(CacheConfig{Capacity: 10, TTL: 30 * time.Millisecond})

	c.Set("coffee", IntentProduct)
	time.Sleep(60 * time.Millisecond)
	_, found := c.Get("coffee")
	assert.False(t, found)
}

func TestRouterCache_Capacity(t *testing.T) {
	c := NewRouterCache(CacheConfig{Capacity: 2})

	c.Set("a1", IntentProduct)
	c.Set("a2", IntentProduct)
	c.Set("a3", IntentGeneral)

	assert.Equal(t, 2, c.Size())
	_, found := c.Get("a1")
	assert.False(t, found)
}
