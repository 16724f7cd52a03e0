package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/hupe1980/roadnet"
)

// APIVersion is reported in every response.
const APIVersion = "v1"

// Response is the envelope of every reply.
type Response struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
	Meta      *Meta  `json:"meta,omitempty"`
	RequestID string `json:"request_id"`
}

// Error describes a failed request.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta carries request timing and result counts.
type Meta struct {
	ProcessTime string `json:"process_time_ms"`
	APIVersion  string `json:"api_version"`
	ResultCount *int   `json:"result_count,omitempty"`
}

func (s *Server) write(w http.ResponseWriter, r *http.Request, status int, resp Response) {
	resp.RequestID = requestID(r.Context())
	if resp.Meta == nil {
		resp.Meta = &Meta{}
	}
	resp.Meta.APIVersion = APIVersion
	if start, ok := r.Context().Value(startKey{}).(time.Time); ok {
		resp.Meta.ProcessTime = strconv.FormatFloat(float64(time.Since(start).Microseconds())/1000, 'f', 3, 64)
	}

	body, err := s.codec.Marshal(resp)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "encode response", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *Server) ok(w http.ResponseWriter, r *http.Request, data any, count *int) {
	s.write(w, r, http.StatusOK, Response{Success: true, Data: data, Meta: &Meta{ResultCount: count}})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, code string, err error) {
	s.write(w, r, status, Response{Error: &Error{Code: code, Message: err.Error()}})
}

// failErr maps router errors onto status codes.
func (s *Server) failErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, roadnet.ErrNoRoute):
		s.fail(w, r, http.StatusNotFound, "no_route", err)
	case errors.Is(err, roadnet.ErrUnresolved):
		s.fail(w, r, http.StatusUnprocessableEntity, "unresolved", err)
	case errors.Is(err, roadnet.ErrInvalidArgument):
		s.fail(w, r, http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, roadnet.ErrNoScores):
		s.fail(w, r, http.StatusConflict, "no_scores", err)
	case errors.Is(err, roadnet.ErrClosed):
		s.fail(w, r, http.StatusServiceUnavailable, "closed", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.fail(w, r, http.StatusServiceUnavailable, "cancelled", err)
	default:
		s.logger.ErrorContext(r.Context(), "request failed", "error", err)
		s.fail(w, r, http.StatusInternalServerError, "internal", err)
	}
}

func ptr[T any](v T) *T { return &v }
