package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/newsinsight/newsserve/internal/utils"
	"github.com/newsinsight/newsserve/pkg/model"
)

const dateLayout = "2006-01-02"

// parseDateRange reads the optional startDate and endDate parameters.
func parseDateRange(r *http.Request) (model.DateRange, error) {
	var dr model.DateRange
	q := r.URL.Query()
	if v := q.Get("startDate"); v != "" {
		t, err := utils.ParseDate(v)
		if err != nil {
			return dr, badRequest("startDate: %v", err)
		}
		dr.Start = &t
	}
	if v := q.Get("endDate"); v != "" {
		t, err := utils.ParseDate(v)
		if err != nil {
			return dr, badRequest("endDate: %v", err)
		}
		dr.End = &t
	}
	if dr.Start != nil && dr.End != nil && dr.End.Before(*dr.Start) {
		return dr, badRequest("endDate must not be before startDate")
	}
	return dr, nil
}

// parsePagination reads page and pageSize; missing values take defaults.
func parsePagination(r *http.Request) (model.Pagination, error) {
	var p model.Pagination
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, badRequest("page must be a positive integer")
		}
		p.Page = n
	}
	if v := q.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > model.MaxPageSize {
			return p, badRequest("pageSize must be between 1 and %d", model.MaxPageSize)
		}
		p.PageSize = n
	}
	return p.Normalize(), nil
}

// parseBool accepts the strconv forms; empty means def.
func parseBool(r *http.Request, key string, def bool) (bool, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, badRequest("%s must be true or false", key)
	}
	return b, nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, badRequest("%s must be an integer", name)
	}
	return id, nil
}

// queryList collects repeated parameters and comma-separated values.
func queryList(r *http.Request, key string) []string {
	var out []string
	for _, v := range r.URL.Query()[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
