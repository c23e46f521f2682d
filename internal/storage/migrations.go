package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

const (
	// CurrentSchemaVersion tracks the database schema version
	CurrentSchemaVersion = "1.1.0"
)

// Migration represents a database schema migration
type Migration struct {
	Version string
	Up      string
	Down    string
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Up:      migrationV1Up,
		Down:    migrationV1Down,
	},
	{
		Version: "1.1.0",
		Up:      migrationV11Up,
		Down:    migrationV11Down,
	},
}

const migrationV1Up = `
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS t_news (
    news_id INTEGER PRIMARY KEY,
    headline TEXT NOT NULL,
    content TEXT NOT NULL,
    category TEXT NOT NULL,
    topic TEXT NOT NULL DEFAULT '',
    total_browse_num INTEGER NOT NULL DEFAULT 0,
    total_browse_duration INTEGER NOT NULL DEFAULT 0,
    released_time INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS t_news_browse_record (
    user_id INTEGER NOT NULL,
    news_id INTEGER NOT NULL,
    start_ts INTEGER NOT NULL,
    duration INTEGER NOT NULL DEFAULT 0,
    start_day INTEGER NOT NULL,
    PRIMARY KEY (user_id, news_id),
    FOREIGN KEY (news_id) REFERENCES t_news(news_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS t_news_daily_category (
    day_stamp INTEGER NOT NULL,
    category TEXT NOT NULL,
    browse_count INTEGER NOT NULL DEFAULT 0,
    browse_duration INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (day_stamp, category)
);

CREATE TABLE IF NOT EXISTS t_user_interest (
    user_id INTEGER NOT NULL,
    category TEXT NOT NULL,
    topic TEXT NOT NULL DEFAULT '',
    click_count INTEGER NOT NULL DEFAULT 0,
    dwell_time INTEGER NOT NULL DEFAULT 0,
    update_time INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (user_id, category)
);
`

const migrationV1Down = `
DROP TABLE IF EXISTS t_user_interest;
DROP TABLE IF EXISTS t_news_daily_category;
DROP TABLE IF EXISTS t_news_browse_record;
DROP TABLE IF EXISTS t_news;
`

// 1.1.0 adds the indexes behind the listing and distinct-value queries.
const migrationV11Up = `
CREATE INDEX IF NOT EXISTS idx_news_category ON t_news(category);
CREATE INDEX IF NOT EXISTS idx_news_topic ON t_news(topic);
CREATE INDEX IF NOT EXISTS idx_news_released ON t_news(released_time);
CREATE INDEX IF NOT EXISTS idx_news_headline ON t_news(headline);
CREATE INDEX IF NOT EXISTS idx_browse_user_ts ON t_news_browse_record(user_id, start_ts);
CREATE INDEX IF NOT EXISTS idx_browse_user_day ON t_news_browse_record(user_id, start_day);
`

const migrationV11Down = `
DROP INDEX IF EXISTS idx_browse_user_day;
DROP INDEX IF EXISTS idx_browse_user_ts;
DROP INDEX IF EXISTS idx_news_headline;
DROP INDEX IF EXISTS idx_news_released;
DROP INDEX IF EXISTS idx_news_topic;
DROP INDEX IF EXISTS idx_news_category;
`

// SchemaVersion returns the highest applied migration, or 0.0.0 on a fresh
// database.
func SchemaVersion(ctx context.Context, db *sql.DB) (*semver.Version, error) {
	zero := semver.MustParse("0.0.0")

	var tableName string
	err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableName)
	if err == sql.ErrNoRows {
		return zero, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check schema_version table: %w", err)
	}

	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_version")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_version: %w", err)
	}
	defer rows.Close()

	current := zero
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		v, err := semver.NewVersion(s)
		if err != nil {
			return nil, fmt.Errorf("invalid schema version %s: %w", s, err)
		}
		if v.GreaterThan(current) {
			current = v
		}
	}
	return current, rows.Err()
}

// ApplyMigrations runs every migration newer than the recorded version.
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	currentVersion, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, migration := range AllMigrations {
		migrationVersion, err := semver.NewVersion(migration.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", migration.Version, err)
		}
		if !currentVersion.LessThan(migrationVersion) {
			continue
		}

		if _, err := db.ExecContext(ctx, migration.Up); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
		}
		if _, err := db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
		}
		currentVersion = migrationVersion
	}

	return nil
}

// RollbackMigration rolls back the most recent migration
func RollbackMigration(ctx context.Context, db *sql.DB) error {
	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}
	if current.Equal(semver.MustParse("0.0.0")) {
		return fmt.Errorf("no migrations to rollback")
	}

	var migration *Migration
	for i := range AllMigrations {
		if v, err := semver.NewVersion(AllMigrations[i].Version); err == nil && v.Equal(current) {
			migration = &AllMigrations[i]
			break
		}
	}
	if migration == nil {
		return fmt.Errorf("migration %s not found", current)
	}

	if _, err := db.ExecContext(ctx, migration.Down); err != nil {
		return fmt.Errorf("failed to rollback migration %s: %w", migration.Version, err)
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM schema_version WHERE version = ?", migration.Version); err != nil {
		return fmt.Errorf("failed to remove migration record %s: %w", migration.Version, err)
	}
	return nil
}
