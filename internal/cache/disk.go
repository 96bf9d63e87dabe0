package cache

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
)

// DiskCache keeps one JSON file per key; freshness is the file mtime
type DiskCache struct {
	dir string
	now func() time.Time
}

// NewDiskCache creates a new disk cache rooted at dir
func NewDiskCache(dir string) *DiskCache {
	return &DiskCache{
		dir: dir,
		now: time.Now,
	}
}

// Get returns the cached bytes when the file exists and is not older than maxAge.
// Unreadable or stale files are a miss.
func (c *DiskCache) Get(key string, maxAge time.Duration) ([]byte, bool) {
	data, _, ok := c.getWithTime(key, maxAge)
	return data, ok
}

// getWithTime is Get that also reports when the file was written
func (c *DiskCache) getWithTime(key string, maxAge time.Duration) ([]byte, time.Time, bool) {
	path := c.path(key)

	info, err := os.Stat(path)
	if err != nil {
		return nil, time.Time{}, false
	}
	if c.now().Sub(info.ModTime()) > maxAge {
		return nil, time.Time{}, false
	}

	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return nil, time.Time{}, false
	}
	return data, info.ModTime(), true
}

// Set writes value to the key's file, creating the directory if needed
func (c *DiskCache) Set(key string, value []byte) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return errors.Wrap(err, "create cache dir")
	}
	if err := os.WriteFile(c.path(key), value, 0o644); err != nil {
		return errors.Wrap(err, "write cache file")
	}
	return nil
}

// Delete removes a value from the disk cache
func (c *DiskCache) Delete(key string) error {
	err := os.Remove(c.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Clear removes all cached files
func (c *DiskCache) Clear() error {
	return os.RemoveAll(c.dir)
}

// Path returns the file a key is stored in
func (c *DiskCache) Path(key string) string {
	return c.path(key)
}

func (c *DiskCache) path(key string) string {
	return filepath.Join(c.dir, SafeKey(key)+".json")
}
