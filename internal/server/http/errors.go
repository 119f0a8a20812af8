package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/pakegate/internal/common"
)

type errorResponse struct {
	Message string `json:"message"`
}

// statusOf maps flow errors to HTTP statuses. The returned message is the
// sentinel's text so that wrapped causes never reach the client.
func statusOf(err error) (int, string) {
	for _, m := range []struct {
		err    error
		status int
	}{
		{common.ErrValidation, http.StatusBadRequest},
		{common.ErrUsernameTaken, http.StatusConflict},
		{common.ErrConflict, http.StatusConflict},
		{common.ErrUserNotFound, http.StatusNotFound},
		{common.ErrNotFound, http.StatusNotFound},
		{common.ErrInvalidFollowUp, http.StatusUnauthorized},
		{common.ErrInvalidToken, http.StatusUnauthorized},
		{common.ErrTokenExpired, http.StatusUnauthorized},
		{common.ErrRateLimited, http.StatusTooManyRequests},
		{common.ErrUnavailable, http.StatusServiceUnavailable},
	} {
		if errors.Is(err, m.err) {
			return m.status, m.err.Error()
		}
	}
	return http.StatusInternalServerError, "internal error"
}

func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusOf(err)
	s.writeMessage(w, r, status, msg)
}

func (s *HTTPServer) writeMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.writeJSON(w, r, status, errorResponse{Message: msg})
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn(r.Context(), "writing response failed", "error", err)
	}
}
