package suggest

import (
	"sync/atomic"
	"unicode/utf8"

	"github.com/puzpuzpuz/xsync/v3"
)

// DefaultMaxCachedPrefix is the longest prefix, in runes, whose results are kept.
const DefaultMaxCachedPrefix = 3

// Cache maps short prefixes to the sorted match list computed against one
// index snapshot. There is no eviction: entries live until Clear, and the
// prefix length bound keeps the entry count small.
type Cache struct {
	entries      *xsync.MapOf[string, []string]
	maxPrefixLen int
	hits         atomic.Int64
	misses       atomic.Int64
}

// NewCache returns an empty cache keeping prefixes of up to maxPrefixLen runes.
func NewCache(maxPrefixLen int) *Cache {
	if maxPrefixLen < 0 {
		maxPrefixLen = 0
	}
	return &Cache{
		entries:      xsync.NewMapOf[string, []string](),
		maxPrefixLen: maxPrefixLen,
	}
}

// Get returns the cached result for prefix, if any.
func (c *Cache) Get(prefix string) ([]string, bool) {
	words, ok := c.entries.Load(prefix)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return words, ok
}

// Put stores result only when prefix is short enough. It reports whether the
// entry was kept. result must not be modified afterwards.
func (c *Cache) Put(prefix string, result []string) bool {
	if !c.Cacheable(prefix) {
		return false
	}
	c.entries.Store(prefix, result)
	return true
}

func (c *Cache) Cacheable(prefix string) bool {
	n := utf8.RuneCountInString(prefix)
	return n > 0 && n <= c.maxPrefixLen
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.entries.Clear()
}

func (c *Cache) Len() int {
	return c.entries.Size()
}

// CacheStats is a point-in-time view of cache counters.
type CacheStats struct {
	Entries int
	Hits    int64
	Misses  int64
}

func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Entries: c.Len(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}
