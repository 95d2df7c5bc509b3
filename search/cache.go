package search

import "sync"

// Cache memoizes filtered, sorted restaurant lists keyed by
// Criteria.CacheKey. Entries never expire; they live for the process
// session and are superseded only by a differing key.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]Restaurant
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[string][]Restaurant),
	}
}

func (c *Cache) Get(key string) ([]Restaurant, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rs, ok := c.entries[key]

	return rs, ok
}

func (c *Cache) Put(key string, rs []Restaurant) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = rs
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
