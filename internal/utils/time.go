package utils

import (
	"fmt"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// DateLayouts are the accepted query-string date formats, tried in order.
var DateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ToUnix converts t to unix seconds.
func ToUnix(t time.Time) int64 {
	return t.Unix()
}

// FromUnix converts unix seconds to a UTC time.
func FromUnix(ts int64) time.Time {
	return time.Unix(ts, 0).UTC()
}

// ToDayStamp returns the number of whole days between 1970-01-01 and the UTC
// calendar date of t.
func ToDayStamp(t time.Time) int {
	u := t.UTC()
	midnight := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return int(midnight.Unix() / secondsPerDay)
}

// FromDayStamp returns midnight UTC of the given day stamp.
func FromDayStamp(day int) time.Time {
	return time.Unix(int64(day)*secondsPerDay, 0).UTC()
}

// ParseDate accepts any of DateLayouts. Dates without a zone are read as UTC.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range DateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC3339", s)
}
