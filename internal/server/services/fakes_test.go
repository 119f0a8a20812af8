package services

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/pakegate/internal/common"
	"github.com/dmitrijs2005/pakegate/internal/logging"
	"github.com/dmitrijs2005/pakegate/internal/server/handshake"
	"github.com/dmitrijs2005/pakegate/internal/server/models"
	"github.com/dmitrijs2005/pakegate/internal/server/repositories/users"
)

// fakeCapability produces deterministic replies: the server reply is a fixed
// prefix plus the client message, so equal messages derive equal keys.
// A message starting with 0xFF is rejected as malformed, and so is an empty
// follow-up.
type fakeCapability struct {
	regFinishes   atomic.Int32
	loginFinishes atomic.Int32
}

func (f *fakeCapability) Suite() string { return "fake" }

func (f *fakeCapability) StartRegistration(username string, msg []byte) (handshake.RegistrationHandle, []byte, error) {
	if len(msg) == 0 || msg[0] == 0xFF {
		return nil, nil, handshake.ErrProtocol
	}
	out := append([]byte("reg:"+username+":"), msg...)
	return &fakeRegHandle{c: f, username: username}, out, nil
}

func (f *fakeCapability) StartLogin(username string, msg, credential []byte) (handshake.LoginHandle, []byte, error) {
	if !bytes.HasPrefix(credential, []byte("cred:")) {
		return nil, nil, handshake.ErrBadCredential
	}
	if len(msg) == 0 || msg[0] == 0xFF {
		return nil, nil, handshake.ErrProtocol
	}
	out := append([]byte("login:"+username+":"), msg...)
	return &fakeLoginHandle{c: f}, out, nil
}

type fakeRegHandle struct {
	c        *fakeCapability
	username string
	used     atomic.Bool
}

func (h *fakeRegHandle) Finish(followUp []byte) ([]byte, error) {
	h.c.regFinishes.Add(1)
	if h.used.Swap(true) {
		return nil, handshake.ErrHandleConsumed
	}
	if len(followUp) == 0 {
		return nil, handshake.ErrProtocol
	}
	return append([]byte("cred:"), followUp...), nil
}

type fakeLoginHandle struct {
	c    *fakeCapability
	used atomic.Bool
}

func (h *fakeLoginHandle) Finish(followUp []byte) ([]byte, error) {
	h.c.loginFinishes.Add(1)
	if h.used.Swap(true) {
		return nil, handshake.ErrHandleConsumed
	}
	if len(followUp) == 0 {
		return nil, handshake.ErrProtocol
	}
	return []byte("shared secret"), nil
}

// failingRepo returns err from every call.
type failingRepo struct{ err error }

func (r failingRepo) FindByUsername(context.Context, string) (*models.UserRecord, error) {
	return nil, r.err
}
func (r failingRepo) Save(context.Context, *models.UserRecord) error { return r.err }

// saveFailsRepo lets lookups through to a memory repository but fails Save.
type saveFailsRepo struct {
	*users.MemoryRepository
	err error
}

func (r saveFailsRepo) Save(context.Context, *models.UserRecord) error { return r.err }

type countingLimiter struct {
	mu        sync.Mutex
	deny      bool
	allowed   int
	penalties []string
}

func (l *countingLimiter) Allow(context.Context, string, string, string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.deny {
		return common.ErrRateLimited
	}
	l.allowed++
	return nil
}

func (l *countingLimiter) Penalize(_ context.Context, _ string, username string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.penalties = append(l.penalties, username)
}

type fixture struct {
	capability *fakeCapability
	repo       *users.MemoryRepository
	regStore   interface{ Len() int }
	loginStore interface{ Len() int }
	reg        *RegistrationService
	login      *LoginService
	limiter    *countingLimiter
	tokenKey   []byte
}

func newFixture(t *testing.T, repo users.Repository) *fixture {
	t.Helper()

	mem := users.NewMemoryRepository()
	if repo == nil {
		repo = mem
	}
	c := &fakeCapability{}
	lim := &countingLimiter{}
	log := logging.Nop{}
	key := []byte("token secret")

	regSessions := NewRegistrationSessions(time.Minute, 0, log)
	loginSessions := NewLoginSessions(time.Minute, 0, log)

	return &fixture{
		capability: c,
		repo:       mem,
		regStore:   regSessions,
		loginStore: loginSessions,
		reg:        NewRegistrationService(c, repo, regSessions, lim, log),
		login:      NewLoginService(c, repo, loginSessions, lim, TokenConfig{Secret: key, Validity: time.Minute}, log),
		limiter:    lim,
		tokenKey:   key,
	}
}

var errBoom = errors.New("boom")

func nopLog() logging.Logger { return logging.Nop{} }
