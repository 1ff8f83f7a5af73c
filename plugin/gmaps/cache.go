package gmaps

import (
	"container/list"
	"sync"
	"time"
)

// responseCache is a small LRU with per-entry TTL, used to keep repeated
// directions and geocoding lookups off the Maps API quota.
type responseCache[V any] struct {
	entries    map[string]*cacheEntry[V]
	order      *list.List
	capacity   int
	defaultTTL time.Duration
	mu         sync.Mutex
}

type cacheEntry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
	element   *list.Element
}

func newResponseCache[V any](capacity int, defaultTTL time.Duration) *responseCache[V] {
	if capacity <= 0 {
		capacity = 256
	}
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	return &responseCache[V]{
		entries:    make(map[string]*cacheEntry[V]),
		order:      list.New(),
		capacity:   capacity,
		defaultTTL: defaultTTL,
	}
}

func (c *responseCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if time.Now().After(e.expiresAt) {
		c.remove(e)
		var zero V
		return zero, false
	}
	c.order.MoveToFront(e.element)
	return e.value, true
}

func (c *responseCache[V]) set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiresAt = time.Now().Add(c.defaultTTL)
		c.order.MoveToFront(e.element)
		return
	}

	for len(c.entries) >= c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.remove(oldest.Value.(*cacheEntry[V]))
	}

	e := &cacheEntry[V]{
		key:       key,
		value:     value,
		expiresAt: time.Now().Add(c.defaultTTL),
	}
	e.element = c.order.PushFront(e)
	c.entries[key] = e
}

// remove must be called with the lock held.
func (c *responseCache[V]) remove(e *cacheEntry[V]) {
	c.order.Remove(e.element)
	delete(c.entries, e.key)
}

func (c *responseCache[V]) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
