package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/newsinsight/newsserve/internal/utils"
	"github.com/newsinsight/newsserve/pkg/model"
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

var _ Storage = (*SQLiteStorage)(nil)

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// one connection: a single writer, and ":memory:" stays one database
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage opens dbPath and brings its schema up to date.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(utils.ExpandHome(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Ping checks the connection, for health reporting.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTx) InsertNews(ctx context.Context, n *model.News) error {
	return insertNews(ctx, t.tx, n)
}

func (t *sqliteTx) InsertBrowseRecord(ctx context.Context, r *model.BrowseRecord) error {
	return insertBrowseRecord(ctx, t.tx, r)
}

func (t *sqliteTx) UpsertDailyCategory(ctx context.Context, c *model.DailyCategory) error {
	return upsertDailyCategory(ctx, t.tx, c)
}

func (t *sqliteTx) UpsertUserInterest(ctx context.Context, ui *model.UserInterest) error {
	return upsertUserInterest(ctx, t.tx, ui)
}

// Write operations

func (s *SQLiteStorage) InsertNews(ctx context.Context, n *model.News) error {
	return insertNews(ctx, s.db, n)
}

func (s *SQLiteStorage) InsertBrowseRecord(ctx context.Context, r *model.BrowseRecord) error {
	return insertBrowseRecord(ctx, s.db, r)
}

func (s *SQLiteStorage) UpsertDailyCategory(ctx context.Context, c *model.DailyCategory) error {
	return upsertDailyCategory(ctx, s.db, c)
}

func (s *SQLiteStorage) UpsertUserInterest(ctx context.Context, ui *model.UserInterest) error {
	return upsertUserInterest(ctx, s.db, ui)
}

// insertNews stores n. A zero ID lets SQLite assign one, which is written back.
func insertNews(ctx context.Context, q querier, n *model.News) error {
	query := `
		INSERT INTO t_news (news_id, headline, content, category, topic,
		                    total_browse_num, total_browse_duration, released_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	var id any
	if n.ID != 0 {
		id = n.ID
	}
	result, err := q.ExecContext(ctx, query,
		id, n.Headline, n.Content, n.Category, n.Topic,
		n.TotalBrowseNum, n.TotalBrowseDuration, n.ReleasedTime)
	if err != nil {
		return fmt.Errorf("failed to insert news: %w", err)
	}
	if n.ID == 0 {
		newID, err := result.LastInsertId()
		if err != nil {
			return err
		}
		n.ID = newID
	}
	return nil
}

// insertBrowseRecord derives StartDay from StartTs when it is unset.
func insertBrowseRecord(ctx context.Context, q querier, r *model.BrowseRecord) error {
	if r.StartDay == 0 && r.StartTs > 0 {
		r.StartDay = utils.ToDayStamp(utils.FromUnix(r.StartTs))
	}
	query := `
		INSERT OR REPLACE INTO t_news_browse_record (user_id, news_id, start_ts, duration, start_day)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := q.ExecContext(ctx, query, r.UserID, r.NewsID, r.StartTs, r.Duration, r.StartDay); err != nil {
		return fmt.Errorf("failed to insert browse record: %w", err)
	}
	return nil
}

func upsertDailyCategory(ctx context.Context, q querier, c *model.DailyCategory) error {
	query := `
		INSERT INTO t_news_daily_category (day_stamp, category, browse_count, browse_duration)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(day_stamp, category) DO UPDATE SET
			browse_count = excluded.browse_count,
			browse_duration = excluded.browse_duration
	`
	if _, err := q.ExecContext(ctx, query, c.DayStamp, c.Category, c.BrowseCount, c.BrowseDuration); err != nil {
		return fmt.Errorf("failed to upsert daily category: %w", err)
	}
	return nil
}

func upsertUserInterest(ctx context.Context, q querier, ui *model.UserInterest) error {
	query := `
		INSERT INTO t_user_interest (user_id, category, topic, click_count, dwell_time, update_time)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, category) DO UPDATE SET
			topic = excluded.topic,
			click_count = excluded.click_count,
			dwell_time = excluded.dwell_time,
			update_time = excluded.update_time
	`
	if _, err := q.ExecContext(ctx, query, ui.UserID, ui.Category, ui.Topic, ui.ClickCount, ui.DwellTime, ui.UpdateTime); err != nil {
		return fmt.Errorf("failed to upsert user interest: %w", err)
	}
	return nil
}
