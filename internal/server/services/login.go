package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/pakegate/internal/common"
	"github.com/dmitrijs2005/pakegate/internal/cryptox"
	"github.com/dmitrijs2005/pakegate/internal/logging"
	"github.com/dmitrijs2005/pakegate/internal/server/auth"
	"github.com/dmitrijs2005/pakegate/internal/server/handshake"
	"github.com/dmitrijs2005/pakegate/internal/server/models"
	"github.com/dmitrijs2005/pakegate/internal/server/ratelimit"
	"github.com/dmitrijs2005/pakegate/internal/server/repositories/users"
	"github.com/dmitrijs2005/pakegate/internal/server/session"
)

// LoginStart carries the first login round.
type LoginStart struct {
	Username string
	Message  []byte
	ClientIP string
}

// LoginResult is returned by a successful Finish. AccessToken is empty when
// no token secret is configured.
type LoginResult struct {
	UserID      string
	Wallet      string
	Salt        string
	AccessToken string
}

// LoginSession is the in-flight state between the two rounds.
type LoginSession struct {
	handle   handshake.LoginHandle
	username string
}

// TokenConfig enables access tokens on successful logins.
type TokenConfig struct {
	Secret   []byte
	Validity time.Duration
}

type LoginService struct {
	capability handshake.Capability
	users      users.Repository
	sessions   *session.Store[*LoginSession]
	limiter    ratelimit.Limiter
	tokens     TokenConfig
	log        logging.Logger
}

func NewLoginService(
	capability handshake.Capability,
	repo users.Repository,
	sessions *session.Store[*LoginSession],
	limiter ratelimit.Limiter,
	tokens TokenConfig,
	log logging.Logger,
) *LoginService {
	if limiter == nil {
		limiter = ratelimit.Nop{}
	}
	return &LoginService{
		capability: capability,
		users:      repo,
		sessions:   sessions,
		limiter:    limiter,
		tokens:     tokens,
		log:        log.With("module", "login"),
	}
}

// Start looks up the account and runs the first handshake round against its
// stored credential.
func (s *LoginService) Start(ctx context.Context, req LoginStart) (*StartResult, error) {
	if err := validateUsername(req.Username); err != nil {
		return nil, err
	}
	if err := validateMessage(req.Message); err != nil {
		return nil, err
	}

	if err := s.limiter.Allow(ctx, ratelimit.ScopeLogin, req.Username, req.ClientIP); err != nil {
		s.log.Warn(ctx, "login throttled", "ip", req.ClientIP)
		return nil, err
	}

	rec, err := s.findUser(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if rec.Suite != "" && rec.Suite != s.capability.Suite() {
		s.log.Error(ctx, "credential suite mismatch", "user_id", rec.ID, "suite", rec.Suite)
		return nil, common.ErrStorage
	}

	handle, messageOut, err := s.capability.StartLogin(req.Username, req.Message, rec.Credential)
	if err != nil {
		if errors.Is(err, handshake.ErrBadCredential) {
			s.log.Error(ctx, "stored credential unusable", "user_id", rec.ID, "error", err)
		} else {
			s.log.Warn(ctx, "login start rejected", "error", err)
		}
		return nil, startError(err)
	}

	key, err := insertSession(s.sessions, messageOut, &LoginSession{handle: handle, username: req.Username})
	if err != nil {
		s.log.Warn(ctx, "login session not stored", "error", err)
		return nil, err
	}

	s.log.Info(ctx, "login started", "key", cryptox.ShortKey(key))
	return &StartResult{Key: key, Message: messageOut}, nil
}

// Finish consumes the session under key and confirms the handshake. On
// success the account's wallet and salt are returned.
func (s *LoginService) Finish(ctx context.Context, key string, followUp []byte) (*LoginResult, error) {
	sess, err := takeSession(s.sessions, key)
	if err != nil {
		return nil, err
	}

	secret, err := sess.handle.Finish(followUp)
	if err != nil {
		s.log.Warn(ctx, "login finish rejected", "key", cryptox.ShortKey(key), "error", err)
		s.limiter.Penalize(ctx, ratelimit.ScopeLogin, sess.username)
		return nil, common.ErrInvalidFollowUp
	}
	common.WipeByteArray(secret)

	rec, err := s.findUser(ctx, sess.username)
	if err != nil {
		return nil, err
	}

	res := &LoginResult{UserID: rec.ID, Wallet: rec.Wallet, Salt: rec.Salt}
	if len(s.tokens.Secret) > 0 {
		res.AccessToken, err = auth.GenerateToken(rec.ID, rec.Username, s.tokens.Secret, s.tokens.Validity)
		if err != nil {
			s.log.Error(ctx, "issuing access token failed", "error", err)
			return nil, common.ErrStorage
		}
	}

	s.log.Info(ctx, "login finished", "key", cryptox.ShortKey(key), "user_id", rec.ID)
	return res, nil
}

// Authenticate validates an access token and returns the user ID it was
// issued for.
func (s *LoginService) Authenticate(_ context.Context, token string) (string, error) {
	if len(s.tokens.Secret) == 0 {
		return "", common.ErrInvalidToken
	}
	claims, err := auth.ParseToken(token, s.tokens.Secret)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (s *LoginService) findUser(ctx context.Context, username string) (*models.UserRecord, error) {
	rec, err := s.users.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return rec, nil
	case errors.Is(err, common.ErrNotFound):
		return nil, common.ErrUserNotFound
	default:
		s.log.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrStorage
	}
}
