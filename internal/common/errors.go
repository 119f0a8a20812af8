// Package common defines shared constants and sentinel errors used across
// the pakegate server and client. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Flow errors. Transports map each of these to a status code.
	ErrValidation      = errors.New("validation error")
	ErrUsernameTaken   = errors.New("username taken")
	ErrUserNotFound    = errors.New("user not found")
	ErrConflict        = errors.New("session key conflict")
	ErrInvalidFollowUp = errors.New("invalid follow-up message")
	ErrStorage         = errors.New("storage error")
	ErrRateLimited     = errors.New("rate limited")
	ErrUnavailable     = errors.New("service unavailable")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
