package server

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/newsinsight/newsserve/internal/utils"
	"github.com/newsinsight/newsserve/pkg/suggest"
)

// handleAutocomplete serves GET /api/autocomplete/{field}?prefix=.
func (s *Server) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	field, err := suggest.ParseField(r.PathValue("field"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	prefix := r.URL.Query().Get("prefix")
	if utils.ContainsControlChars(prefix) {
		s.writeErr(w, r, badRequest("prefix contains control characters"))
		return
	}
	if n := utf8.RuneCountInString(prefix); n > s.cfg.MaxPrefixLen {
		s.writeErr(w, r, badRequest("prefix too long: %d characters, maximum is %d", n, s.cfg.MaxPrefixLen))
		return
	}

	resp := CompletionResponse{
		Field:       field.String(),
		Prefix:      prefix,
		Suggestions: []string{},
	}

	if strings.TrimSpace(prefix) != "" {
		words, err := s.suggest.EnsureAndMatch(r.Context(), field, prefix)
		if err != nil {
			s.writeErr(w, r, err)
			return
		}
		resp.Suggestions = words
	}

	m, err := s.suggest.Matcher(field)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	resp.Ready = m.Ready()
	resp.Count = len(resp.Suggestions)
	resp.TimeTaken = time.Since(start).Microseconds()

	writeResponse(w, r, http.StatusOK, resp)
}

// handleRefresh rebuilds ?field= or, without it, every field.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("field")

	var refreshed []string
	if name != "" {
		field, err := suggest.ParseField(name)
		if err != nil {
			s.writeErr(w, r, err)
			return
		}
		if err := s.suggest.Refresh(r.Context(), field); err != nil {
			s.writeErr(w, r, err)
			return
		}
		refreshed = []string{field.String()}
	} else {
		if err := s.suggest.RefreshAll(r.Context()); err != nil {
			s.writeErr(w, r, err)
			return
		}
		for _, st := range s.suggest.Stats() {
			refreshed = append(refreshed, st.Field.String())
		}
	}

	s.log.Info("Autocomplete index refreshed", "fields", strings.Join(refreshed, ","))
	writeResponse(w, r, http.StatusOK, RefreshResponse{
		Refreshed: refreshed,
		Stats:     s.suggest.Stats(),
	})
}

func (s *Server) handleAutocompleteStats(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, r, http.StatusOK, s.suggest.Stats())
}
