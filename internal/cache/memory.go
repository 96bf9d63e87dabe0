package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is an in-process cache in front of the disk layer
type MemoryCache struct {
	cache *gocache.Cache
	ttl   time.Duration
	now   func() time.Time
}

type memoryEntry struct {
	data     []byte
	storedAt time.Time
}

// NewMemoryCache creates a new memory cache; entries expire after ttl regardless of maxAge
func NewMemoryCache(ttl time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(ttl, cleanupInterval),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get retrieves a value stored no longer than maxAge ago
func (c *MemoryCache) Get(key string, maxAge time.Duration) ([]byte, bool) {
	val, found := c.cache.Get(key)
	if !found {
		return nil, false
	}
	entry := val.(memoryEntry)
	if c.now().Sub(entry.storedAt) > maxAge {
		return nil, false
	}
	return entry.data, true
}

// Set stores a value with the cache's default TTL
func (c *MemoryCache) Set(key string, value []byte) error {
	c.setAt(key, value, c.now())
	return nil
}

// setAt stores a value whose age counts from storedAt
func (c *MemoryCache) setAt(key string, value []byte, storedAt time.Time) {
	c.cache.Set(key, memoryEntry{data: value, storedAt: storedAt}, gocache.DefaultExpiration)
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(key string) error {
	c.cache.Delete(key)
	return nil
}

// Clear removes all values from the cache
func (c *MemoryCache) Clear() error {
	c.cache.Flush()
	return nil
}
