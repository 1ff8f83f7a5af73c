package gmaps

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseCacheSetGet(t *testing.T) {
	cache := newResponseCache[string](10, time.Minute)

	cache.set("route|a|b", "cached")
	got, ok := cache.get("route|a|b")
	require.True(t, ok)
	assert.Equal(t, "cached", got)

	_, ok = cache.get("route|a|c")
	assert.False(t, ok)
}

func TestResponseCacheOverwrite(t *testing.T) {
	cache := newResponseCache[string](10, time.Minute)

	cache.set("k", "first")
	cache.set("k", "second")

	got, ok := cache.get("k")
	require.True(t, ok)
	assert.Equal(t, "second", got)
	assert.Equal(t, 1, cache.size())
}

func TestResponseCacheEviction(t *testing.T) {
	cache := newResponseCache[int](3, time.Minute)

	for i := 0; i < 3; i++ {
		cache.set(fmt.Sprintf("k%d", i), i)
	}

	// Touch k0 so k1 becomes least recently used.
	_, ok := cache.get("k0")
	require.True(t, ok)

	cache.set("k3", 3)

	_, ok = cache.get("k1")
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok = cache.get("k0")
	assert.True(t, ok)
	_, ok = cache.get("k3")
	assert.True(t, ok)
	assert.Equal(t, 3, cache.size())
}

func TestResponseCacheExpiry(t *testing.T) {
	cache := newResponseCache[string](10, 10*time.Millisecond)

	cache.set("k", "v")
	time.Sleep(25 * time.Millisecond)

	_, ok := cache.get("k")
	assert.False(t, ok, "expired entry should not be returned")
	assert.Equal(t, 0, cache.size())
}

func TestResponseCacheDefaults(t *testing.T) {
	cache := newResponseCache[string](0, 0)
	assert.Equal(t, 256, cache.capacity)
	assert.Equal(t, 10*time.Minute, cache.defaultTTL)
}
