package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/newsinsight/newsserve/internal/utils"
	"github.com/newsinsight/newsserve/pkg/model"
)

var hundred = decimal.NewFromInt(100)

// UserRecords returns a user's browse history joined with the article
// headline and category, newest first.
func (s *SQLiteStorage) UserRecords(ctx context.Context, userID int64, r model.DateRange, p model.Pagination) (*model.Page[model.BrowseRecordView], error) {
	p = p.Normalize()

	var cond conditions
	cond.add("r.user_id = ?", userID)
	cond.unixRange("r.start_ts", r)

	from := " FROM t_news_browse_record r JOIN t_news n ON n.news_id = r.news_id"

	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*)"+from+cond.where(), cond.args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count browse records: %w", err)
	}

	query := "SELECT r.user_id, r.news_id, r.start_ts, r.duration, n.headline, n.category" +
		from + cond.where() + " ORDER BY r.start_ts DESC, r.news_id ASC LIMIT ? OFFSET ?"
	args := append(cond.args, p.PageSize, p.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query browse records: %w", err)
	}
	defer rows.Close()

	items := []model.BrowseRecordView{}
	for rows.Next() {
		var v model.BrowseRecordView
		var startTs int64
		if err := rows.Scan(&v.UserID, &v.NewsID, &startTs, &v.Duration, &v.NewsHeadline, &v.NewsCategory); err != nil {
			return nil, err
		}
		v.StartTime = utils.FromUnix(startTs)
		items = append(items, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &model.Page[model.BrowseRecordView]{
		Items:      items,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalCount: total,
	}, nil
}

// UserDailyTrend counts a user's views and sums their duration per day,
// oldest day first.
func (s *SQLiteStorage) UserDailyTrend(ctx context.Context, userID int64, r model.DateRange) ([]model.DailyTrend, error) {
	var cond conditions
	cond.add("user_id = ?", userID)
	cond.dayRange("start_day", r)

	query := "SELECT start_day, COUNT(*), COALESCE(SUM(duration), 0) FROM t_news_browse_record" +
		cond.where() + " GROUP BY start_day ORDER BY start_day ASC"

	rows, err := s.db.QueryContext(ctx, query, cond.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily trend: %w", err)
	}
	defer rows.Close()

	trend := []model.DailyTrend{}
	for rows.Next() {
		var day int
		var t model.DailyTrend
		if err := rows.Scan(&day, &t.BrowseCount, &t.TotalDuration); err != nil {
			return nil, err
		}
		t.Date = utils.FromDayStamp(day)
		trend = append(trend, t)
	}
	return trend, rows.Err()
}

// CategoryHeatmap sums daily browse totals for the given categories, grouped
// by day (ascending) and then category. No categories yields no days.
func (s *SQLiteStorage) CategoryHeatmap(ctx context.Context, categories []string, r model.DateRange) (*model.CategoryHeatmap, error) {
	heatmap := &model.CategoryHeatmap{HeatmapData: []model.CategoryHeatmapDay{}}
	if r.Start != nil {
		heatmap.StartDate = *r.Start
	}
	if r.End != nil {
		heatmap.EndDate = *r.End
	}
	if len(categories) == 0 {
		return heatmap, nil
	}

	var cond conditions
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(categories)), ",")
	args := make([]any, len(categories))
	for i, c := range categories {
		args[i] = c
	}
	cond.add("category IN ("+placeholders+")", args...)
	cond.dayRange("day_stamp", r)

	query := "SELECT day_stamp, category, SUM(browse_count), SUM(browse_duration) FROM t_news_daily_category" +
		cond.where() + " GROUP BY day_stamp, category ORDER BY day_stamp ASC, category ASC"

	rows, err := s.db.QueryContext(ctx, query, cond.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query category heatmap: %w", err)
	}
	defer rows.Close()

	lastDay := -1
	for rows.Next() {
		var day int
		var item model.CategoryHeatItem
		if err := rows.Scan(&day, &item.Category, &item.BrowseCount, &item.BrowseDuration); err != nil {
			return nil, err
		}
		if day != lastDay {
			heatmap.HeatmapData = append(heatmap.HeatmapData, model.CategoryHeatmapDay{
				Date:       utils.FromDayStamp(day),
				Categories: []model.CategoryHeatItem{},
			})
			lastDay = day
		}
		cur := &heatmap.HeatmapData[len(heatmap.HeatmapData)-1]
		cur.Categories = append(cur.Categories, item)
	}
	return heatmap, rows.Err()
}

// UserInterestDistribution sums a user's clicks and dwell time per category
// and computes each category's share of the clicks.
func (s *SQLiteStorage) UserInterestDistribution(ctx context.Context, userID int64, r model.DateRange) (*model.InterestDistribution, error) {
	var cond conditions
	cond.add("user_id = ?", userID)
	cond.unixRange("update_time", r)

	query := "SELECT category, SUM(click_count), SUM(dwell_time) FROM t_user_interest" +
		cond.where() + " GROUP BY category ORDER BY category ASC"

	rows, err := s.db.QueryContext(ctx, query, cond.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query user interest: %w", err)
	}
	defer rows.Close()

	dist := &model.InterestDistribution{UserID: userID, Distribution: []model.InterestItem{}}
	var totalClicks int64
	for rows.Next() {
		var item model.InterestItem
		if err := rows.Scan(&item.Category, &item.TotalClicks, &item.TotalDwellTime); err != nil {
			return nil, err
		}
		totalClicks += item.TotalClicks
		dist.Distribution = append(dist.Distribution, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	applyClickShare(dist.Distribution, totalClicks)
	return dist, nil
}

// applyClickShare sets each item's percentage of total, to two places.
func applyClickShare(items []model.InterestItem, total int64) {
	if total <= 0 {
		for i := range items {
			items[i].ClickShare = decimal.Zero
		}
		return
	}
	denom := decimal.NewFromInt(total)
	for i := range items {
		items[i].ClickShare = decimal.NewFromInt(items[i].TotalClicks).
			Mul(hundred).
			DivRound(denom, 2)
	}
}
