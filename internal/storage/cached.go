package storage

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/newsinsight/newsserve/pkg/model"
)

// DefaultNewsCacheSize bounds the article cache when no size is configured.
const DefaultNewsCacheSize = 1000

// CachedStorage wraps a Storage and memoises single-article lookups, which
// are immutable once written. Writes through the wrapper evict the entry.
type CachedStorage struct {
	Storage
	news *lru.Cache[int64, *model.NewsSummary]
}

func NewCachedStorage(inner Storage, size int) (*CachedStorage, error) {
	if size <= 0 {
		size = DefaultNewsCacheSize
	}
	cache, err := lru.New[int64, *model.NewsSummary](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create news cache: %w", err)
	}
	return &CachedStorage{Storage: inner, news: cache}, nil
}

func (c *CachedStorage) GetNews(ctx context.Context, id int64) (*model.NewsSummary, error) {
	if n, ok := c.news.Get(id); ok {
		copied := *n
		return &copied, nil
	}
	n, err := c.Storage.GetNews(ctx, id)
	if err != nil {
		return nil, err
	}
	stored := *n
	c.news.Add(id, &stored)
	return n, nil
}

func (c *CachedStorage) InsertNews(ctx context.Context, n *model.News) error {
	if err := c.Storage.InsertNews(ctx, n); err != nil {
		return err
	}
	c.news.Remove(n.ID)
	return nil
}

// Purge drops every cached article, e.g. after a bulk import.
func (c *CachedStorage) Purge() {
	c.news.Purge()
}

func (c *CachedStorage) Len() int {
	return c.news.Len()
}

// Ping reaches through to the wrapped store when it supports it.
func (c *CachedStorage) Ping(ctx context.Context) error {
	if p, ok := c.Storage.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
