package adapter

import "sync"

// Cache is a process-wide, concurrency-safe keyed cache. Adapters use one
// per concern (connector clients keyed by app id / audience / service URL;
// Auth implementations typically keep another for credentials) so lifetime
// and test isolation stay controllable; there is no package-level state.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
}

// NewCache constructs an empty cache.
func NewCache[V any]() *Cache[V] {
	return &Cache[V]{entries: make(map[string]V)}
}

// Get returns the cached value for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// Set stores value under key.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

// GetOrCreate returns the cached value for key, invoking create to fill
// the slot on a miss. Concurrent callers for the same key may both invoke
// create; exactly one result wins the slot.
func (c *Cache[V]) GetOrCreate(key string, create func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err := create()
	if err != nil {
		var zero V
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		return existing, nil
	}
	c.entries[key] = v
	return v, nil
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
