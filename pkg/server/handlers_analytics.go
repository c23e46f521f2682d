package server

import (
	"net/http"
)

func (s *Server) handleUserRecords(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
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

	records, err := s.store.UserRecords(r.Context(), userID, dr, page)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeResponse(w, r, http.StatusOK, records)
}

func (s *Server) handleUserDailyTrend(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	dr, err := parseDateRange(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	trend, err := s.store.UserDailyTrend(r.Context(), userID, dr)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeResponse(w, r, http.StatusOK, trend)
}

// handleCategoryHeatmap accepts categories both repeated and comma-separated.
func (s *Server) handleCategoryHeatmap(w http.ResponseWriter, r *http.Request) {
	dr, err := parseDateRange(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	heatmap, err := s.store.CategoryHeatmap(r.Context(), queryList(r, "categories"), dr)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeResponse(w, r, http.StatusOK, heatmap)
}

func (s *Server) handleUserInterestDistribution(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	dr, err := parseDateRange(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	dist, err := s.store.UserInterestDistribution(r.Context(), userID, dr)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeResponse(w, r, http.StatusOK, dist)
}
