package cache

import "time"

// LayeredCache checks memory first, then disk
type LayeredCache struct {
	memory *MemoryCache
	disk   *DiskCache
}

// NewLayeredCache creates a memory+disk cache rooted at diskDir
func NewLayeredCache(memoryTTL time.Duration, diskDir string) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:   NewDiskCache(diskDir),
	}
}

// Get retrieves a value from the cache (checks memory first, then disk)
func (c *LayeredCache) Get(key string, maxAge time.Duration) ([]byte, bool) {
	if val, found := c.memory.Get(key, maxAge); found {
		return val, true
	}

	if val, modTime, found := c.disk.getWithTime(key, maxAge); found {
		// promoted entries keep the disk age
		c.memory.setAt(key, val, modTime)
		return val, true
	}

	return nil, false
}

// Set stores a value in both layers; the disk error is the one reported
func (c *LayeredCache) Set(key string, value []byte) error {
	_ = c.memory.Set(key, value)
	return c.disk.Set(key, value)
}

// Delete removes a value from both caches
func (c *LayeredCache) Delete(key string) error {
	_ = c.memory.Delete(key)
	return c.disk.Delete(key)
}

// Clear removes all values from both caches
func (c *LayeredCache) Clear() error {
	_ = c.memory.Clear()
	return c.disk.Clear()
}
