package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/newsinsight/newsserve/internal/proxy"
	"github.com/newsinsight/newsserve/internal/storage"
	"github.com/newsinsight/newsserve/pkg/suggest"
)

const (
	contentTypeJSON    = "application/json"
	contentTypeMsgpack = "application/msgpack"
)

var (
	errInternal    = errors.New("internal server error")
	errUnavailable = errors.New("analysis proxy is not configured")
)

// requestError is a client mistake reported with status 400.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

// wantsMsgpack reports whether the client prefers msgpack over JSON.
func wantsMsgpack(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, contentTypeMsgpack) || strings.Contains(accept, "application/x-msgpack")
}

// writeResponse encodes v as msgpack or JSON depending on the Accept header.
func writeResponse(w http.ResponseWriter, r *http.Request, status int, v any) {
	if wantsMsgpack(r) {
		data, err := msgpack.Marshal(v)
		if err != nil {
			log.Errorf("Marshaling msgpack response: %v", err)
			http.Error(w, errInternal.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentTypeMsgpack)
		w.WriteHeader(status)
		_, _ = w.Write(data)
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		log.Errorf("Marshaling JSON response: %v", err)
		http.Error(w, errInternal.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// WriteError writes the error envelope with the given status.
func WriteError(w http.ResponseWriter, r *http.Request, err error, status int) {
	writeResponse(w, r, status, ErrorResponse{
		Error:  err.Error(),
		Code:   errorCode(status),
		Status: status,
	})
}

// writeErr maps err onto a status. Internal failures are logged and hidden
// behind a generic message.
func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *requestError
	var upstream *proxy.UpstreamError

	switch {
	case errors.As(err, &reqErr):
		WriteError(w, r, err, http.StatusBadRequest)
	case errors.Is(err, storage.ErrNotFound):
		WriteError(w, r, err, http.StatusNotFound)
	case errors.Is(err, suggest.ErrUnknownField):
		WriteError(w, r, err, http.StatusBadRequest)
	case errors.Is(err, proxy.ErrMissingAPIKey), errors.Is(err, proxy.ErrEmptyBody):
		WriteError(w, r, err, http.StatusBadRequest)
	case errors.Is(err, errUnavailable):
		WriteError(w, r, err, http.StatusServiceUnavailable)
	case errors.As(err, &upstream):
		WriteError(w, r, err, http.StatusBadGateway)
	default:
		s.log.Error("Request failed", "path", r.URL.Path, "error", err, "requestID", GetRequestID(r.Context()))
		WriteError(w, r, errInternal, http.StatusInternalServerError)
	}
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusBadGateway:
		return "UPSTREAM_ERROR"
	case http.StatusServiceUnavailable:
		return "UNAVAILABLE"
	default:
		return "INTERNAL_ERROR"
	}
}
