// Package services implements the registration and login flows. Each flow
// bridges the two rounds of an OPAQUE handshake across stateless requests:
// the first round creates a server-side session keyed by a correlation key,
// the second round takes that session out exactly once and finishes it.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pakegate/internal/common"
	"github.com/dmitrijs2005/pakegate/internal/cryptox"
	"github.com/dmitrijs2005/pakegate/internal/logging"
	"github.com/dmitrijs2005/pakegate/internal/server/handshake"
	"github.com/dmitrijs2005/pakegate/internal/server/session"
)

// StartResult is returned by the first round of either flow. Key must be
// echoed back by the client with its follow-up message.
type StartResult struct {
	Key     string
	Message []byte
}

func validateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("%w: username is required", common.ErrValidation)
	}
	if len(username) > common.MaxUsernameLength {
		return fmt.Errorf("%w: username is too long", common.ErrValidation)
	}
	return nil
}

func validateMessage(msg []byte) error {
	if len(msg) == 0 {
		return fmt.Errorf("%w: request message is required", common.ErrValidation)
	}
	return nil
}

// insertSession stores value under the correlation key of messageOut and
// translates store failures into flow errors.
func insertSession[T any](store *session.Store[T], messageOut []byte, value T) (string, error) {
	key := cryptox.CorrelationKey(messageOut)
	switch err := store.Insert(key, value); {
	case err == nil:
		return key, nil
	case errors.Is(err, session.ErrKeyCollision):
		return "", common.ErrConflict
	case errors.Is(err, session.ErrCapacity):
		return "", common.ErrUnavailable
	default:
		return "", fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
}

// takeSession resolves a follow-up key. Malformed keys are treated like
// unknown ones.
func takeSession[T any](store *session.Store[T], key string) (T, error) {
	var zero T
	if !cryptox.ValidCorrelationKey(key) {
		return zero, common.ErrNotFound
	}
	v, ok := store.Take(key)
	if !ok {
		return zero, common.ErrNotFound
	}
	return v, nil
}

// startError maps a capability start failure to the error returned to the
// caller.
func startError(err error) error {
	switch {
	case errors.Is(err, handshake.ErrBadCredential):
		return common.ErrStorage
	case errors.Is(err, handshake.ErrProtocol):
		return fmt.Errorf("%w: handshake message rejected", common.ErrValidation)
	default:
		return common.ErrStorage
	}
}

// NewRegistrationSessions creates the session store used by the
// registration flow. Expired sessions are logged at debug level.
func NewRegistrationSessions(ttl time.Duration, maxEntries int, log logging.Logger) *session.Store[*RegistrationSession] {
	log = log.With("module", "sessions", "flow", "registration")
	return session.NewStore(ttl,
		session.WithMaxEntries[*RegistrationSession](maxEntries),
		session.WithEvictHook(func(key string, s *RegistrationSession) {
			log.Debug(context.Background(), "session expired", "key", cryptox.ShortKey(key))
		}),
	)
}

// NewLoginSessions creates the session store used by the login flow.
func NewLoginSessions(ttl time.Duration, maxEntries int, log logging.Logger) *session.Store[*LoginSession] {
	log = log.With("module", "sessions", "flow", "login")
	return session.NewStore(ttl,
		session.WithMaxEntries[*LoginSession](maxEntries),
		session.WithEvictHook(func(key string, s *LoginSession) {
			log.Debug(context.Background(), "session expired", "key", cryptox.ShortKey(key))
		}),
	)
}
