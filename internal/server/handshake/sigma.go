package handshake

import (
	"bytes"
	"fmt"

	"github.com/cretz/gopaque/gopaque"
	"go.dedis.ch/kyber/v3"

	"github.com/dmitrijs2005/pakegate/internal/cryptox"
)

const sigmaKeyInfo = "pakegate sigma server key v1"

// Sigma is the gopaque suite: OPAQUE over Ed25519 with the SIGMA-I key
// exchange embedded in the login messages.
type Sigma struct {
	crypto     gopaque.Crypto
	privateKey kyber.Scalar
}

// NewSigma derives the server's long-term key from secret. With an empty
// secret a random key is used, which only suits tests and development.
func NewSigma(secret []byte) (*Sigma, error) {
	crypto := gopaque.CryptoDefault
	if len(secret) == 0 {
		return &Sigma{crypto: crypto, privateKey: crypto.NewKey(nil)}, nil
	}
	r, err := cryptox.KeyReader(secret, sigmaKeyInfo)
	if err != nil {
		return nil, err
	}
	return &Sigma{crypto: crypto, privateKey: crypto.NewKeyFromReader(r)}, nil
}

func (s *Sigma) Suite() string { return SuiteSigma }

// PublicKey returns the encoded server public key. Clients may pin it.
func (s *Sigma) PublicKey() ([]byte, error) {
	return s.crypto.Point().Mul(s.privateKey, nil).MarshalBinary()
}

func (s *Sigma) StartRegistration(username string, msg []byte) (RegistrationHandle, []byte, error) {
	var (
		h   *sigmaRegistration
		out []byte
	)
	err := guard(func() error {
		var init gopaque.UserRegisterInit
		if err := init.FromBytes(s.crypto, msg); err != nil {
			return protocolErr("decode register init: %v", err)
		}
		if !bytes.Equal(init.UserID, []byte(username)) {
			return protocolErr("user id in message does not match username")
		}

		reg := gopaque.NewServerRegister(s.crypto, s.privateKey)
		reply, err := reg.Init(&init).ToBytes()
		if err != nil {
			return fmt.Errorf("encode register init reply: %w", err)
		}

		h = &sigmaRegistration{crypto: s.crypto, reg: reg}
		out = reply
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return h, out, nil
}

func (s *Sigma) StartLogin(username string, msg, credential []byte) (LoginHandle, []byte, error) {
	rec, err := decodeSigmaRecord(s.crypto, credential)
	if err != nil {
		return nil, nil, err
	}
	rec.ServerPrivateKey = s.privateKey

	var (
		h   *sigmaLogin
		out []byte
	)
	err = guard(func() error {
		var init gopaque.UserAuthInit
		if err := init.FromBytes(s.crypto, msg); err != nil {
			return protocolErr("decode auth init: %v", err)
		}
		if !bytes.Equal(init.UserID, []byte(username)) || !bytes.Equal(init.UserID, rec.UserID) {
			return protocolErr("user id in message does not match username")
		}

		kex := gopaque.NewKeyExchangeSigma(s.crypto)
		auth := gopaque.NewServerAuth(s.crypto, kex)
		reply, err := auth.Complete(&init, rec)
		if err != nil {
			return protocolErr("auth complete: %v", err)
		}
		b, err := reply.ToBytes()
		if err != nil {
			return fmt.Errorf("encode auth reply: %w", err)
		}

		h = &sigmaLogin{crypto: s.crypto, auth: auth, kex: kex}
		out = b
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return h, out, nil
}

type sigmaRegistration struct {
	once
	crypto gopaque.Crypto
	reg    *gopaque.ServerRegister
}

func (h *sigmaRegistration) Finish(followUp []byte) ([]byte, error) {
	if err := h.claim(); err != nil {
		return nil, err
	}

	var credential []byte
	err := guard(func() error {
		var done gopaque.UserRegisterComplete
		if err := done.FromBytes(h.crypto, followUp); err != nil {
			return protocolErr("decode register complete: %v", err)
		}
		if len(done.EnvU) == 0 {
			return protocolErr("empty envelope")
		}

		enc, err := encodeSigmaRecord(h.reg.Complete(&done))
		if err != nil {
			return err
		}
		credential = enc
		return nil
	})
	return credential, err
}

type sigmaLogin struct {
	once
	crypto gopaque.Crypto
	auth   *gopaque.ServerAuth
	kex    *gopaque.KeyExchangeSigma
}

func (h *sigmaLogin) Finish(followUp []byte) ([]byte, error) {
	if err := h.claim(); err != nil {
		return nil, err
	}

	var secret []byte
	err := guard(func() error {
		var done gopaque.UserAuthComplete
		if err := done.FromBytes(h.crypto, followUp); err != nil {
			return protocolErr("decode auth complete: %v", err)
		}
		if err := h.auth.Finish(&done); err != nil {
			return protocolErr("key confirmation: %v", err)
		}

		b, err := h.kex.SharedSecret.MarshalBinary()
		if err != nil {
			return fmt.Errorf("encode shared secret: %w", err)
		}
		secret = b
		return nil
	})
	return secret, err
}
