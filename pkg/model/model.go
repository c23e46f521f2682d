// Package model holds the stored entities and the response shapes shared by
// the HTTP API and the agent tools.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// News is one article row of t_news. Times are unix seconds.
type News struct {
	ID                  int64  `json:"id" msgpack:"id"`
	Headline            string `json:"headline" msgpack:"headline"`
	Content             string `json:"content" msgpack:"content"`
	Category            string `json:"category" msgpack:"category"`
	Topic               string `json:"topic" msgpack:"topic"`
	TotalBrowseNum      int64  `json:"totalBrowseNum" msgpack:"totalBrowseNum"`
	TotalBrowseDuration int64  `json:"totalBrowseDuration" msgpack:"totalBrowseDuration"`
	ReleasedTime        int64  `json:"releasedTime" msgpack:"releasedTime"`
}

// BrowseRecord is one row of t_news_browse_record.
type BrowseRecord struct {
	UserID   int64 `json:"userId" msgpack:"userId"`
	NewsID   int64 `json:"newsId" msgpack:"newsId"`
	StartTs  int64 `json:"startTs" msgpack:"startTs"`
	Duration int64 `json:"duration" msgpack:"duration"`
	StartDay int   `json:"startDay" msgpack:"startDay"`
}

// DailyCategory is one row of t_news_daily_category.
type DailyCategory struct {
	DayStamp       int    `json:"dayStamp" msgpack:"dayStamp"`
	Category       string `json:"category" msgpack:"category"`
	BrowseCount    int64  `json:"browseCount" msgpack:"browseCount"`
	BrowseDuration int64  `json:"browseDuration" msgpack:"browseDuration"`
}

// UserInterest is one row of t_user_interest.
type UserInterest struct {
	UserID     int64  `json:"userId" msgpack:"userId"`
	Category   string `json:"category" msgpack:"category"`
	Topic      string `json:"topic" msgpack:"topic"`
	ClickCount int64  `json:"clickCount" msgpack:"clickCount"`
	DwellTime  int64  `json:"dwellTime" msgpack:"dwellTime"`
	UpdateTime int64  `json:"updateTime" msgpack:"updateTime"`
}

// Page is a window over a larger result set.
type Page[T any] struct {
	Items      []T   `json:"items" msgpack:"items"`
	Page       int   `json:"page" msgpack:"page"`
	PageSize   int   `json:"pageSize" msgpack:"pageSize"`
	TotalCount int64 `json:"totalCount" msgpack:"totalCount"`
}

// NewsSummary is a news row without its body. Content is only filled by the
// single-article lookup.
type NewsSummary struct {
	ID           int64     `json:"id" msgpack:"id"`
	Headline     string    `json:"headline" msgpack:"headline"`
	Category     string    `json:"category" msgpack:"category"`
	Topic        string    `json:"topic" msgpack:"topic"`
	ReleasedTime time.Time `json:"releasedTime" msgpack:"releasedTime"`
	BrowseCount  int64     `json:"browseCount" msgpack:"browseCount"`
	Content      string    `json:"content,omitempty" msgpack:"content,omitempty"`
}

type BrowseRecordView struct {
	UserID       int64     `json:"userId" msgpack:"userId"`
	NewsID       int64     `json:"newsId" msgpack:"newsId"`
	StartTime    time.Time `json:"startTime" msgpack:"startTime"`
	Duration     int64     `json:"duration" msgpack:"duration"`
	NewsHeadline string    `json:"newsHeadline" msgpack:"newsHeadline"`
	NewsCategory string    `json:"newsCategory" msgpack:"newsCategory"`
}

type DailyTrend struct {
	Date          time.Time `json:"date" msgpack:"date"`
	BrowseCount   int64     `json:"browseCount" msgpack:"browseCount"`
	TotalDuration int64     `json:"totalDuration" msgpack:"totalDuration"`
}

type CategoryHeatItem struct {
	Category       string `json:"category" msgpack:"category"`
	BrowseCount    int64  `json:"browseCount" msgpack:"browseCount"`
	BrowseDuration int64  `json:"browseDuration" msgpack:"browseDuration"`
}

type CategoryHeatmapDay struct {
	Date       time.Time          `json:"date" msgpack:"date"`
	Categories []CategoryHeatItem `json:"categories" msgpack:"categories"`
}

type CategoryHeatmap struct {
	StartDate   time.Time            `json:"startDate" msgpack:"startDate"`
	EndDate     time.Time            `json:"endDate" msgpack:"endDate"`
	HeatmapData []CategoryHeatmapDay `json:"heatmapData" msgpack:"heatmapData"`
}

// InterestItem aggregates one category of a user's interest rows. ClickShare
// is the percentage of the user's clicks, rounded to two places.
type InterestItem struct {
	Category       string          `json:"category" msgpack:"category"`
	TotalClicks    int64           `json:"totalClicks" msgpack:"totalClicks"`
	TotalDwellTime int64           `json:"totalDwellTime" msgpack:"totalDwellTime"`
	ClickShare     decimal.Decimal `json:"clickShare" msgpack:"-"`
}

type InterestDistribution struct {
	UserID       int64          `json:"userId" msgpack:"userId"`
	Distribution []InterestItem `json:"distribution" msgpack:"distribution"`
}

// Headline is the projection returned by agent queries over t_news.
type Headline struct {
	Headline string `json:"headline"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Topic    string `json:"topic"`
}
