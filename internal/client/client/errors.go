package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/pakegate/internal/common"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is a non-2xx response. It wraps the matching common sentinel so
// callers can use errors.Is.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return common.ErrValidation
	case http.StatusConflict:
		if e.Message == common.ErrConflict.Error() {
			return common.ErrConflict
		}
		return common.ErrUsernameTaken
	case http.StatusNotFound:
		if e.Message == common.ErrUserNotFound.Error() {
			return common.ErrUserNotFound
		}
		return common.ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return common.ErrRateLimited
	case http.StatusServiceUnavailable:
		return ErrUnavailable
	default:
		return nil
	}
}
