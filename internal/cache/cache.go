package cache

import (
	"strings"
	"time"
)

// Cache is a read-through store for fetched payloads.
// Freshness is decided by the caller through maxAge on every read.
type Cache interface {
	Get(key string, maxAge time.Duration) ([]byte, bool)
	Set(key string, value []byte) error
	Delete(key string) error
	Clear() error
}

// SafeKey maps an arbitrary cache key to a file-name-safe one.
// Letters, digits, '-', '_' and '.' are kept, everything else becomes '_'.
func SafeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
