package suggest

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCachePrefixBound(t *testing.T) {
	c := NewCache(DefaultMaxCachedPrefix)

	assert.True(t, c.Put("S", []string{"Space"}))
	assert.True(t, c.Put("Spo", []string{"Sports"}))
	assert.False(t, c.Put("Spor", []string{"Sports"}))
	assert.False(t, c.Put("", []string{}))
	// three runes, nine bytes
	assert.True(t, c.Put("体育新", []string{"体育新闻"}))

	assert.Equal(t, 3, c.Len())

	_, ok := c.Get("Spor")
	assert.False(t, ok)
	words, ok := c.Get("Spo")
	assert.True(t, ok)
	assert.Equal(t, []string{"Sports"}, words)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestCacheClear(t *testing.T) {
	c := NewCache(3)
	c.Put("a", []string{"ab"})
	c.Clear()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestCacheDisabled(t *testing.T) {
	c := NewCache(0)
	assert.False(t, c.Put("a", []string{"ab"}))
	assert.Equal(t, 0, c.Len())
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := NewCache(3)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("%d", i%10)
			c.Put(key, []string{key})
			c.Get(key)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 10, c.Len())
}
