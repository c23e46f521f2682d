// Package storage provides SQLite-based persistence for the news dataset.
//
// # Database Schema
//
// Tables:
//   - t_news: articles with headline, body, category, topic and browse totals
//   - t_news_browse_record: one row per (user, article) view
//   - t_news_daily_category: per-day browse totals by category
//   - t_user_interest: per-user click and dwell totals by category
//   - schema_version: applied migrations
//
// All timestamps are unix seconds; day stamps count whole days since
// 1970-01-01 UTC.
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("~/.newsserve/news.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	page, err := db.ListNews(ctx, model.NewsFilter{Category: "sports"})
//
// The distinct category and topic queries double as loaders for the
// completion matchers:
//
//	svc := suggest.NewService(map[suggest.Field]suggest.Loader{
//	    suggest.FieldCategory: db.DistinctCategories,
//	    suggest.FieldTopic:    db.DistinctTopics,
//	})
//
// # Build Tags
//
// The default build uses the pure Go modernc.org/sqlite driver. Building
// with the cgo_sqlite tag switches to github.com/mattn/go-sqlite3:
//
//	CGO_ENABLED=1 go build -tags "cgo_sqlite" ./...
package storage
