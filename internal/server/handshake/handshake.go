// Package handshake wraps the OPAQUE libraries behind a two-step capability.
//
// Each flow calls Start* with the client's first message and gets back a
// handle plus the server's reply. The handle is finished with the client's
// second message. Handles are single use.
package handshake

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrProtocol marks input the handshake rejects: malformed bytes,
	// mismatched identities or failed key confirmation.
	ErrProtocol = errors.New("handshake protocol error")

	// ErrHandleConsumed is returned, wrapped in ErrProtocol, when Finish is
	// called on a handle that already ran.
	ErrHandleConsumed = fmt.Errorf("%w: handle already finished", ErrProtocol)

	// ErrBadCredential means a stored credential could not be decoded. It is
	// a server-side data problem, not a client error.
	ErrBadCredential = errors.New("stored credential is malformed")
)

// RegistrationHandle finishes a registration and returns the credential to persist.
type RegistrationHandle interface {
	Finish(followUp []byte) ([]byte, error)
}

// LoginHandle finishes a login and returns the session secret both sides share.
type LoginHandle interface {
	Finish(followUp []byte) ([]byte, error)
}

// Capability is implemented by every supported OPAQUE suite.
type Capability interface {
	Suite() string
	StartRegistration(username string, msg []byte) (RegistrationHandle, []byte, error)
	StartLogin(username string, msg, credential []byte) (LoginHandle, []byte, error)
}

const (
	SuiteSigma = "sigma"
	SuiteRFC   = "rfc"
)

// Config selects and keys a suite.
type Config struct {
	Suite string

	// ServerKey seeds the sigma suite's long-term private key.
	ServerKey string

	// RFC suite key material, hex encoded. Empty values are generated.
	ServerID      string
	RFCPrivateKey string
	RFCPublicKey  string
	RFCOPRFSeed   string
}

// New builds the capability named by cfg.Suite. The second return value
// reports whether ephemeral key material had to be generated; callers
// should warn about it because registrations will not survive a restart.
func New(cfg Config) (Capability, bool, error) {
	switch cfg.Suite {
	case "", SuiteSigma:
		c, err := NewSigma([]byte(cfg.ServerKey))
		return c, cfg.ServerKey == "", err
	case SuiteRFC:
		return NewRFC(cfg)
	default:
		return nil, false, fmt.Errorf("unknown handshake suite %q", cfg.Suite)
	}
}

func protocolErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrProtocol, fmt.Sprintf(format, args...))
}

// guard runs fn and turns a library panic into ErrProtocol. Both OPAQUE
// libraries panic on some hostile inputs.
func guard(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = protocolErr("rejected input: %v", p)
		}
	}()
	return fn()
}

// once guards a handle against a second Finish.
type once struct {
	mu   sync.Mutex
	used bool
}

func (o *once) claim() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.used {
		return ErrHandleConsumed
	}
	o.used = true
	return nil
}
