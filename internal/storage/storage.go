package storage

import (
	"context"
	"errors"

	"github.com/newsinsight/newsserve/pkg/model"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidQuery is returned when a raw query is not a read-only SELECT
	ErrInvalidQuery = errors.New("invalid query")
)

// NewsReader is the read side used by the HTTP API and the agent tools.
type NewsReader interface {
	ListNews(ctx context.Context, filter model.NewsFilter) (*model.Page[model.NewsSummary], error)
	GetNews(ctx context.Context, id int64) (*model.NewsSummary, error)
	Headlines(ctx context.Context, limit int) ([]string, error)
	NewsByHeadline(ctx context.Context, headline string) (*model.News, error)
	QueryNews(ctx context.Context, query string) ([]model.Headline, error)

	UserRecords(ctx context.Context, userID int64, r model.DateRange, p model.Pagination) (*model.Page[model.BrowseRecordView], error)
	UserDailyTrend(ctx context.Context, userID int64, r model.DateRange) ([]model.DailyTrend, error)
	CategoryHeatmap(ctx context.Context, categories []string, r model.DateRange) (*model.CategoryHeatmap, error)
	UserInterestDistribution(ctx context.Context, userID int64, r model.DateRange) (*model.InterestDistribution, error)

	DistinctCategories(ctx context.Context) ([]string, error)
	DistinctTopics(ctx context.Context) ([]string, error)
}

// NewsWriter loads rows, used by the importer and tests.
type NewsWriter interface {
	InsertNews(ctx context.Context, n *model.News) error
	InsertBrowseRecord(ctx context.Context, r *model.BrowseRecord) error
	UpsertDailyCategory(ctx context.Context, c *model.DailyCategory) error
	UpsertUserInterest(ctx context.Context, ui *model.UserInterest) error
}

// Storage is the full persistence interface.
type Storage interface {
	NewsReader
	NewsWriter

	// BeginTx starts a transaction for batched writes.
	BeginTx(ctx context.Context) (Tx, error)
	Close() error
}

// Tx is a write transaction.
type Tx interface {
	NewsWriter
	Commit() error
	Rollback() error
}
