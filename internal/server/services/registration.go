package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/pakegate/internal/common"
	"github.com/dmitrijs2005/pakegate/internal/cryptox"
	"github.com/dmitrijs2005/pakegate/internal/logging"
	"github.com/dmitrijs2005/pakegate/internal/server/handshake"
	"github.com/dmitrijs2005/pakegate/internal/server/models"
	"github.com/dmitrijs2005/pakegate/internal/server/ratelimit"
	"github.com/dmitrijs2005/pakegate/internal/server/repositories/users"
	"github.com/dmitrijs2005/pakegate/internal/server/session"
)

// RegistrationStart carries the first registration round.
type RegistrationStart struct {
	Username string
	Message  []byte
	Wallet   string
	Salt     string
	ClientIP string
}

// RegistrationSession is the in-flight state between the two rounds.
type RegistrationSession struct {
	handle   handshake.RegistrationHandle
	username string
	wallet   string
	salt     string
}

// RegistrationService creates accounts. A registration is Started by Start
// and either Finished by Finish or abandoned until its session expires.
type RegistrationService struct {
	capability handshake.Capability
	users      users.Repository
	sessions   *session.Store[*RegistrationSession]
	limiter    ratelimit.Limiter
	log        logging.Logger

	now   func() time.Time
	newID func() string
}

func NewRegistrationService(
	capability handshake.Capability,
	repo users.Repository,
	sessions *session.Store[*RegistrationSession],
	limiter ratelimit.Limiter,
	log logging.Logger,
) *RegistrationService {
	if limiter == nil {
		limiter = ratelimit.Nop{}
	}
	return &RegistrationService{
		capability: capability,
		users:      repo,
		sessions:   sessions,
		limiter:    limiter,
		log:        log.With("module", "registration"),
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Start validates the request, checks that the username is free and runs
// the first handshake round.
func (s *RegistrationService) Start(ctx context.Context, req RegistrationStart) (*StartResult, error) {
	if err := validateUsername(req.Username); err != nil {
		return nil, err
	}

	if err := s.limiter.Allow(ctx, ratelimit.ScopeRegister, req.Username, req.ClientIP); err != nil {
		s.log.Warn(ctx, "registration throttled", "ip", req.ClientIP)
		return nil, err
	}

	_, err := s.users.FindByUsername(ctx, req.Username)
	switch {
	case err == nil:
		return nil, common.ErrUsernameTaken
	case !errors.Is(err, common.ErrNotFound):
		s.log.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrStorage
	}

	if err := validateMessage(req.Message); err != nil {
		return nil, err
	}
	if req.Salt == "" {
		return nil, fmt.Errorf("%w: salt is required", common.ErrValidation)
	}

	handle, messageOut, err := s.capability.StartRegistration(req.Username, req.Message)
	if err != nil {
		s.log.Warn(ctx, "registration start rejected", "error", err)
		return nil, startError(err)
	}

	key, err := insertSession(s.sessions, messageOut, &RegistrationSession{
		handle:   handle,
		username: req.Username,
		wallet:   req.Wallet,
		salt:     req.Salt,
	})
	if err != nil {
		s.log.Warn(ctx, "registration session not stored", "error", err)
		return nil, err
	}

	s.log.Info(ctx, "registration started", "key", cryptox.ShortKey(key))
	return &StartResult{Key: key, Message: messageOut}, nil
}

// Finish consumes the session under key, completes the handshake and
// persists the account. The session is gone afterwards whatever the
// outcome; a failed finish has to start over.
func (s *RegistrationService) Finish(ctx context.Context, key string, followUp []byte) error {
	sess, err := takeSession(s.sessions, key)
	if err != nil {
		return err
	}

	credential, err := sess.handle.Finish(followUp)
	if err != nil {
		s.log.Warn(ctx, "registration finish rejected", "key", cryptox.ShortKey(key), "error", err)
		return common.ErrInvalidFollowUp
	}

	rec := &models.UserRecord{
		ID:         s.newID(),
		Username:   sess.username,
		Suite:      s.capability.Suite(),
		Credential: credential,
		Wallet:     sess.wallet,
		Salt:       sess.salt,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.users.Save(ctx, rec); err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			s.log.Info(ctx, "username taken while registering", "key", cryptox.ShortKey(key))
			return common.ErrUsernameTaken
		}
		s.log.Error(ctx, "saving user failed", "key", cryptox.ShortKey(key), "error", err)
		return common.ErrStorage
	}

	s.log.Info(ctx, "registration finished", "key", cryptox.ShortKey(key), "user_id", rec.ID)
	return nil
}
