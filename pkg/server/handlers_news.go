package server

import (
	"net/http"
	"strings"

	"github.com/newsinsight/newsserve/pkg/model"
)

// handleListNews serves GET /api/news.
func (s *Server) handleListNews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	dr, err := parseDateRange(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	page, err := parsePagination(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	desc, err := parseBool(r, "sortDesc", true)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	filter := model.NewsFilter{
		Category:   strings.TrimSpace(q.Get("category")),
		Keyword:    strings.TrimSpace(q.Get("keyword")),
		Range:      dr,
		SortBy:     model.ParseSortKey(q.Get("sortBy")),
		SortDesc:   desc,
		Pagination: page,
	}

	result, err := s.store.ListNews(r.Context(), filter)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeResponse(w, r, http.StatusOK, result)
}

// handleGetNews serves GET /api/news/{id}.
func (s *Server) handleGetNews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	news, err := s.store.GetNews(r.Context(), id)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeResponse(w, r, http.StatusOK, news)
}
