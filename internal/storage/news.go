package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/newsinsight/newsserve/internal/utils"
	"github.com/newsinsight/newsserve/pkg/model"
)

const defaultHeadlineLimit = 10

// conditions accumulates a WHERE clause and its arguments.
type conditions struct {
	clauses []string
	args    []any
}

func (c *conditions) add(clause string, args ...any) {
	c.clauses = append(c.clauses, clause)
	c.args = append(c.args, args...)
}

// unixRange adds inclusive bounds on a unix-seconds column.
func (c *conditions) unixRange(column string, r model.DateRange) {
	if r.Start != nil {
		c.add(column+" >= ?", utils.ToUnix(*r.Start))
	}
	if r.End != nil {
		c.add(column+" <= ?", utils.ToUnix(*r.End))
	}
}

// dayRange adds inclusive bounds on a day-stamp column.
func (c *conditions) dayRange(column string, r model.DateRange) {
	if r.Start != nil {
		c.add(column+" >= ?", utils.ToDayStamp(*r.Start))
	}
	if r.End != nil {
		c.add(column+" <= ?", utils.ToDayStamp(*r.End))
	}
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// escapeLike makes s match literally inside a LIKE pattern using '\' as escape.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func sortColumn(key model.SortKey) string {
	switch key {
	case model.SortPopularity:
		return "total_browse_num"
	case model.SortDuration:
		return "total_browse_duration"
	default:
		return "released_time"
	}
}

// ListNews returns one page of news summaries matching filter.
func (s *SQLiteStorage) ListNews(ctx context.Context, filter model.NewsFilter) (*model.Page[model.NewsSummary], error) {
	p := filter.Pagination.Normalize()

	var cond conditions
	if filter.Category != "" {
		cond.add("category = ?", filter.Category)
	}
	if filter.Keyword != "" {
		pattern := "%" + escapeLike(filter.Keyword) + "%"
		cond.add(`(headline LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	cond.unixRange("released_time", filter.Range)

	var total int64
	countQuery := "SELECT COUNT(*) FROM t_news" + cond.where()
	if err := s.db.QueryRowContext(ctx, countQuery, cond.args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count news: %w", err)
	}

	dir := "ASC"
	if filter.SortDesc {
		dir = "DESC"
	}
	query := fmt.Sprintf(`
		SELECT news_id, headline, category, topic, released_time, total_browse_num
		FROM t_news%s
		ORDER BY %s %s, news_id ASC
		LIMIT ? OFFSET ?
	`, cond.where(), sortColumn(filter.SortBy), dir)

	args := append(cond.args, p.PageSize, p.Offset())
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list news: %w", err)
	}
	defer rows.Close()

	items := []model.NewsSummary{}
	for rows.Next() {
		var n model.NewsSummary
		var released int64
		if err := rows.Scan(&n.ID, &n.Headline, &n.Category, &n.Topic, &released, &n.BrowseCount); err != nil {
			return nil, err
		}
		n.ReleasedTime = utils.FromUnix(released)
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &model.Page[model.NewsSummary]{
		Items:      items,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalCount: total,
	}, nil
}

// GetNews returns one article including its content.
func (s *SQLiteStorage) GetNews(ctx context.Context, id int64) (*model.NewsSummary, error) {
	query := `
		SELECT news_id, headline, category, topic, released_time, total_browse_num, content
		FROM t_news
		WHERE news_id = ?
	`
	var n model.NewsSummary
	var released int64
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&n.ID, &n.Headline, &n.Category, &n.Topic, &released, &n.BrowseCount, &n.Content,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	n.ReleasedTime = utils.FromUnix(released)
	return &n, nil
}

// Headlines returns the newest headlines. A non-positive limit means 10.
func (s *SQLiteStorage) Headlines(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = defaultHeadlineLimit
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT headline FROM t_news ORDER BY released_time DESC, news_id ASC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query headlines: %w", err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

// NewsByHeadline finds the newest article with exactly this headline.
func (s *SQLiteStorage) NewsByHeadline(ctx context.Context, headline string) (*model.News, error) {
	query := `
		SELECT news_id, headline, content, category, topic,
		       total_browse_num, total_browse_duration, released_time
		FROM t_news
		WHERE headline = ?
		ORDER BY released_time DESC
		LIMIT 1
	`
	var n model.News
	err := s.db.QueryRowContext(ctx, query, headline).Scan(
		&n.ID, &n.Headline, &n.Content, &n.Category, &n.Topic,
		&n.TotalBrowseNum, &n.TotalBrowseDuration, &n.ReleasedTime,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// QueryNews runs a read-only SELECT and maps the headline, content, category
// and topic columns of each row by name. Missing columns stay empty. Callers
// are expected to have vetted the statement; this only refuses non-SELECTs.
func (s *SQLiteStorage) QueryNews(ctx context.Context, query string) ([]model.Headline, error) {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(query)), "select") {
		return nil, fmt.Errorf("%w: only SELECT statements are allowed", ErrInvalidQuery)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	results := []model.Headline{}
	for rows.Next() {
		values := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		var h model.Headline
		for i, col := range cols {
			switch strings.ToLower(col) {
			case "headline":
				h.Headline = values[i].String
			case "content":
				h.Content = values[i].String
			case "category":
				h.Category = values[i].String
			case "topic":
				h.Topic = values[i].String
			}
		}
		results = append(results, h)
	}
	return results, rows.Err()
}

// DistinctCategories lists every non-empty category, ascending.
func (s *SQLiteStorage) DistinctCategories(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "category")
}

// DistinctTopics lists every non-empty topic, ascending.
func (s *SQLiteStorage) DistinctTopics(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "topic")
}

func (s *SQLiteStorage) distinct(ctx context.Context, column string) ([]string, error) {
	query := fmt.Sprintf("SELECT DISTINCT %[1]s FROM t_news WHERE %[1]s <> '' ORDER BY %[1]s", column)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query distinct %s: %w", column, err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
