package server

import (
	"context"
	"net/http"
	"time"
)

// handleHealth reports "ok" or, when the store does not answer a ping,
// "degraded" with status 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:   "ok",
		Store:    "ok",
		Matchers: s.suggest.Stats(),
	}
	status := http.StatusOK

	if p, ok := s.store.(Pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			s.log.Warn("Store ping failed", "error", err)
			resp.Status = "degraded"
			resp.Store = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}

	writeResponse(w, r, status, resp)
}
