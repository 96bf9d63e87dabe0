package cache

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"vendor_names", "vendor_names"},
		{"os_seed", "os_seed"},
		{"https://x.io/api?q=os", "https___x.io_api_q_os"},
		{"a b/c", "a_b_c"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeKey(tt.in), tt.in)
	}
}

func TestDiskCache_FreshAndStale(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir)

	require.NoError(t, c.Set("reddit_seed", []byte(`[1,2]`)))

	got, ok := c.Get("reddit_seed", time.Hour)
	require.True(t, ok)
	assert.Equal(t, `[1,2]`, string(got))

	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(c.Path("reddit_seed"), old, old))

	_, ok = c.Get("reddit_seed", time.Hour)
	assert.False(t, ok, "file older than ttl must be a miss")

	_, ok = c.Get("reddit_seed", 3*time.Hour)
	assert.True(t, ok, "same file is fresh under a longer ttl")
}

func TestDiskCache_MissingAndEmpty(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir)

	_, ok := c.Get("nope", time.Hour)
	assert.False(t, ok)

	require.NoError(t, c.Set("empty", nil))
	_, ok = c.Get("empty", time.Hour)
	assert.False(t, ok)

	require.NoError(t, c.Delete("nope"))
}

func TestMemoryCache_MaxAge(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }

	require.NoError(t, c.Set("k", []byte("v")))

	c.now = func() time.Time { return base.Add(10 * time.Second) }
	got, ok := c.Get("k", 30*time.Second)
	require.True(t, ok)
	assert.Equal(t, "v", string(got))

	_, ok = c.Get("k", 5*time.Second)
	assert.False(t, ok)
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	disk := NewDiskCache(dir)
	require.NoError(t, disk.Set("os_seed", []byte(`{"data":[]}`)))

	c := NewLayeredCache(time.Minute, dir)
	got, ok := c.Get("os_seed", time.Hour)
	require.True(t, ok)
	assert.Equal(t, `{"data":[]}`, string(got))

	require.NoError(t, os.Remove(disk.Path("os_seed")))
	got, ok = c.Get("os_seed", time.Hour)
	require.True(t, ok, "served from memory after promotion")
	assert.Equal(t, `{"data":[]}`, string(got))

	require.NoError(t, c.Clear())
	_, ok = c.Get("os_seed", time.Hour)
	assert.False(t, ok)
}

func TestLayeredCache_PromotionKeepsDiskAge(t *testing.T) {
	dir := t.TempDir()
	base := time.Now()

	c := NewLayeredCache(time.Hour, dir)
	c.disk.now = func() time.Time { return base }
	c.memory.now = func() time.Time { return base }

	require.NoError(t, c.disk.Set("os_seed", []byte(`{"data":[]}`)))
	written := base.Add(-50 * time.Second)
	require.NoError(t, os.Chtimes(c.disk.Path("os_seed"), written, written))

	_, ok := c.Get("os_seed", time.Minute)
	require.True(t, ok, "50s old file is fresh under a 1m max age")

	require.NoError(t, os.Remove(c.disk.Path("os_seed")))
	c.memory.now = func() time.Time { return base.Add(20 * time.Second) }

	_, ok = c.Get("os_seed", time.Minute)
	assert.False(t, ok, "promoted entry is 70s old, not 20s")

	_, ok = c.Get("os_seed", 2*time.Minute)
	assert.True(t, ok)
}
