package doc

import (
	"sync"
	"sync/atomic"
)

// Cache holds derived per-row presentation state. Plugins invalidate single
// rows when their data changes; hook registration clears the whole cache
// because a hook can alter output for any row.
type Cache struct {
	mu      sync.RWMutex
	entries map[int]any
	version uint64

	// Stats (atomic for access without the lock)
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[int]any)}
}

// Get returns the cached value for row.
func (c *Cache) Get(row int) (any, bool) {
	c.mu.RLock()
	v, ok := c.entries[row]
	c.mu.RUnlock()

	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Set stores the derived value for row.
func (c *Cache) Set(row int, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[row] = value
}

// Invalidate drops the cached value for a single row.
func (c *Cache) Invalidate(row int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, row)
}

// Clear drops every cached value and bumps the cache version.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[int]any)
	c.version++
}

// Len returns the number of cached rows.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Version returns the current cache generation. It increments on Clear.
func (c *Cache) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Stats returns cache statistics.
func (c *Cache) Stats() CacheStats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	c.mu.RLock()
	defer c.mu.RUnlock()

	return CacheStats{
		Size:    len(c.entries),
		Hits:    hits,
		Misses:  misses,
		Version: c.version,
	}
}

// CacheStats holds cache statistics.
type CacheStats struct {
	Size    int
	Hits    uint64
	Misses  uint64
	Version uint64
}
