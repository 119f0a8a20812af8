package handshake

import (
	"encoding/hex"
	"fmt"

	"github.com/bytemare/opaque"
)

const (
	rfcRecordVersion  byte = 1
	rfcCredentialIDLen     = 64
	defaultServerID        = "pakegate"
)

// RFC is the bytemare/opaque suite: RFC OPAQUE-3DH with the library's
// default configuration.
type RFC struct {
	conf       *opaque.Configuration
	serverID   []byte
	privateKey []byte
	publicKey  []byte
	oprfSeed   []byte
}

// NewRFC decodes the hex key material in cfg. Missing pieces are generated;
// the boolean result reports that.
func NewRFC(cfg Config) (*RFC, bool, error) {
	r := &RFC{conf: opaque.DefaultConfiguration(), serverID: []byte(cfg.ServerID)}
	if len(r.serverID) == 0 {
		r.serverID = []byte(defaultServerID)
	}

	generated := false
	if cfg.RFCPrivateKey == "" || cfg.RFCPublicKey == "" {
		r.privateKey, r.publicKey = r.conf.KeyGen()
		generated = true
	} else {
		var err error
		if r.privateKey, err = hex.DecodeString(cfg.RFCPrivateKey); err != nil {
			return nil, false, fmt.Errorf("rfc private key: %w", err)
		}
		if r.publicKey, err = hex.DecodeString(cfg.RFCPublicKey); err != nil {
			return nil, false, fmt.Errorf("rfc public key: %w", err)
		}
	}

	if cfg.RFCOPRFSeed == "" {
		r.oprfSeed = r.conf.GenerateOPRFSeed()
		generated = true
	} else {
		var err error
		if r.oprfSeed, err = hex.DecodeString(cfg.RFCOPRFSeed); err != nil {
			return nil, false, fmt.Errorf("rfc oprf seed: %w", err)
		}
	}

	// Fail at startup rather than on the first registration.
	srv, err := r.conf.Server()
	if err != nil {
		return nil, false, fmt.Errorf("rfc server: %w", err)
	}
	if _, err := srv.Deserialize.DecodeAkePublicKey(r.publicKey); err != nil {
		return nil, false, fmt.Errorf("rfc public key: %w", err)
	}

	return r, generated, nil
}

func (r *RFC) Suite() string { return SuiteRFC }

// ServerID is the identity clients must use when finalising.
func (r *RFC) ServerID() []byte { return r.serverID }

// PublicKey is the server's AKE public key.
func (r *RFC) PublicKey() []byte { return r.publicKey }

func (r *RFC) StartRegistration(username string, msg []byte) (RegistrationHandle, []byte, error) {
	var (
		h   *rfcRegistration
		out []byte
	)
	err := guard(func() error {
		srv, err := r.conf.Server()
		if err != nil {
			return fmt.Errorf("rfc server: %w", err)
		}
		req, err := srv.Deserialize.RegistrationRequest(msg)
		if err != nil {
			return protocolErr("decode registration request: %v", err)
		}
		pks, err := srv.Deserialize.DecodeAkePublicKey(r.publicKey)
		if err != nil {
			return fmt.Errorf("rfc public key: %w", err)
		}

		credID := opaque.RandomBytes(rfcCredentialIDLen)
		out = srv.RegistrationResponse(req, pks, credID, r.oprfSeed).Serialize()
		h = &rfcRegistration{suite: r, username: username, credentialID: credID}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return h, out, nil
}

func (r *RFC) StartLogin(username string, msg, credential []byte) (LoginHandle, []byte, error) {
	srv, err := r.conf.Server()
	if err != nil {
		return nil, nil, fmt.Errorf("rfc server: %w", err)
	}

	var (
		h   *rfcLogin
		out []byte
	)
	err = guard(func() error {
		rec, err := decodeRFCRecord(srv, credential)
		if err != nil {
			return err
		}
		if string(rec.ClientIdentity) != username {
			return fmt.Errorf("%w: identity does not match username", ErrBadCredential)
		}

		ke1, err := srv.Deserialize.KE1(msg)
		if err != nil {
			return protocolErr("decode ke1: %v", err)
		}
		if err := srv.SetKeyMaterial(r.serverID, r.privateKey, r.publicKey, r.oprfSeed); err != nil {
			return fmt.Errorf("rfc key material: %w", err)
		}
		ke2, err := srv.LoginInit(ke1, rec)
		if err != nil {
			return protocolErr("login init: %v", err)
		}

		out = ke2.Serialize()
		h = &rfcLogin{srv: srv}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return h, out, nil
}

type rfcRegistration struct {
	once
	suite        *RFC
	username     string
	credentialID []byte
}

func (h *rfcRegistration) Finish(followUp []byte) ([]byte, error) {
	if err := h.claim(); err != nil {
		return nil, err
	}

	var credential []byte
	err := guard(func() error {
		srv, err := h.suite.conf.Server()
		if err != nil {
			return fmt.Errorf("rfc server: %w", err)
		}
		rec, err := srv.Deserialize.RegistrationRecord(followUp)
		if err != nil {
			return protocolErr("decode registration record: %v", err)
		}
		credential = encodeRFCRecord(h.credentialID, []byte(h.username), rec.Serialize())
		return nil
	})
	return credential, err
}

type rfcLogin struct {
	once
	srv *opaque.Server
}

func (h *rfcLogin) Finish(followUp []byte) ([]byte, error) {
	if err := h.claim(); err != nil {
		return nil, err
	}

	var secret []byte
	err := guard(func() error {
		ke3, err := h.srv.Deserialize.KE3(followUp)
		if err != nil {
			return protocolErr("decode ke3: %v", err)
		}
		if err := h.srv.LoginFinish(ke3); err != nil {
			return protocolErr("key confirmation: %v", err)
		}
		secret = h.srv.SessionKey()
		return nil
	})
	return secret, err
}

// Fields: credential identifier, client identity, serialized registration record.
func encodeRFCRecord(credID, clientID, record []byte) []byte {
	return appendFields(rfcRecordVersion, credID, clientID, record)
}

func decodeRFCRecord(srv *opaque.Server, data []byte) (*opaque.ClientRecord, error) {
	fields, err := splitFields(rfcRecordVersion, data, 3)
	if err != nil {
		return nil, err
	}

	reg, err := srv.Deserialize.RegistrationRecord(fields[2])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCredential, err)
	}
	return &opaque.ClientRecord{
		CredentialIdentifier: fields[0],
		ClientIdentity:       fields[1],
		RegistrationRecord:   reg,
	}, nil
}
