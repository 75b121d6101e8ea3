package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUCache_Defaults(t *testing.T) {
	c := NewLRUCache[string, int](-5, 0)
	assert.Equal(t, 1000, c.capacity)
	assert.Equal(t, 5*time.Minute, c.defaultTTL)
	assert.Equal(t, 0, c.Size())
}

func TestLRUCache_SetGet(t *testing.T) {
	c := NewLRUCache[string, []float32](100, time.Minute)

	c.Set("running shoes", []float32{0.1, 0.2}, 0)
	v, ok := c.Get("running shoes")
	require.True(t, ok)
	assert.Equal(t, []float32{0.1, 0.2}, v)

	_, ok = c.Get("coffee maker")
	assert.False(t, ok)

	c.Set("running shoes", []float32{0.3}, 0)
	v, _ = c.Get("running shoes")
	assert.Equal(t, []float32{0.3}, v)
	assert.Equal(t, 1, c.Size())
}

func TestLRUCache_TTLExpiration(t *testing.T) {
	c := NewLRUCache[string, int](100, 50*time.Millisecond)

	c.Set("short", 1, 10*time.Millisecond)
	c.Set("default", 2, 0)
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("short")
	assert.False(t, ok, "entry with short TTL should expire")
	v, ok := c.Get("default")
	require.True(t, ok)
	assert.Equal(t, 2, v)

	time.Sleep(60 * time.Millisecond)
	_, ok = c.Get("default")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size(), "expired entries are removed on access")
}

func TestLRUCache_Eviction(t *testing.T) {
	c := NewLRUCache[string, int](3, time.Minute)
	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	c.Set("c", 3, 0)

	// Reading "a" makes "b" the least recently used.
	_, ok := c.Get("a")
	require.True(t, ok)
	c.Set("d", 4, 0)

	assert.Equal(t, 3, c.Size())
	_, ok = c.Get("b")
	assert.False(t, ok)
	for _, k := range []string{"a", "c", "d"} {
		_, ok := c.Get(k)
		assert.True(t, ok, k)
	}
}

func TestLRUCache_Stats(t *testing.T) {
	c := NewLRUCache[string, int](10, time.Minute)
	c.Set("a", 1, 0)

	c.Get("a")
	c.Get("a")
	c.Get("b")

	hits, misses := c.Stats()
	assert.EqualValues(t, 2, hits)
	assert.EqualValues(t, 1, misses)

	c.Clear()
	assert.Equal(t, 0, c.Size())
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, misses = c.Stats()
	assert.EqualValues(t, 2, misses)
}

func TestLRUCache_Concurrent(t *testing.T) {
	c := NewLRUCache[string, int](50, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", (n*100+j)%80)
				c.Set(key, j, 0)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Size(), 50)
	hits, misses := c.Stats()
	assert.EqualValues(t, 2000, hits+misses)
}
