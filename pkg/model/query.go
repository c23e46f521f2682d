package model

import (
	"strings"
	"time"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SortKey selects the ordering column of a news listing.
type SortKey string

const (
	SortReleased   SortKey = "released"
	SortPopularity SortKey = "popularity"
	SortDuration   SortKey = "duration"
)

// ParseSortKey is case-insensitive; anything unrecognised sorts by release time.
func ParseSortKey(s string) SortKey {
	switch SortKey(strings.ToLower(s)) {
	case SortPopularity:
		return SortPopularity
	case SortDuration:
		return SortDuration
	default:
		return SortReleased
	}
}

// DateRange is an inclusive, optionally open-ended time window.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Pagination is a 1-based page request.
type Pagination struct {
	Page     int
	PageSize int
}

// Normalize fills defaults and clamps the page size to MaxPageSize.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// NewsFilter describes a news listing request.
type NewsFilter struct {
	Category string
	Keyword  string
	Range    DateRange
	SortBy   SortKey
	SortDesc bool
	Pagination
}
