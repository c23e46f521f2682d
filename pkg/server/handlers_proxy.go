package server

import (
	"errors"
	"io"
	"net/http"
)

// handleGetAnalysis relays the request body to the analysis model and
// returns its reply unchanged.
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	if s.proxy == nil {
		s.writeErr(w, r, errUnavailable)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxProxyBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeErr(w, r, badRequest("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		s.writeErr(w, r, badRequest("reading request body: %v", err))
		return
	}

	reply, err := s.proxy.Forward(r.Context(), body)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(reply)
}
