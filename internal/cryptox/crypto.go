// Package cryptox holds the small cryptographic helpers pakegate needs around
// the handshake libraries: session correlation keys and deterministic key
// material derivation.
package cryptox

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/hkdf"
)

// CorrelationKeySize is the length of a correlation key in hex characters.
const CorrelationKeySize = blake2b.Size256 * 2

// CorrelationKey derives the session lookup key from the server's first
// handshake message: lowercase hex of BLAKE2b-256(msg). The output always
// has CorrelationKeySize characters.
func CorrelationKey(msg []byte) string {
	sum := blake2b.Sum256(msg)
	return hex.EncodeToString(sum[:])
}

// ValidCorrelationKey reports whether k has the shape produced by
// CorrelationKey. Transports use it to reject garbage before a lookup.
func ValidCorrelationKey(k string) bool {
	if len(k) != CorrelationKeySize {
		return false
	}
	for i := 0; i < len(k); i++ {
		c := k[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// ShortKey trims a correlation key for log output.
func ShortKey(k string) string {
	if len(k) <= 8 {
		return k
	}
	return k[:8]
}

// KeyReader returns an HKDF-SHA256 stream keyed by secret and bound to info.
// The same inputs always yield the same stream, which lets a configured
// secret stand in for a persisted private key.
func KeyReader(secret []byte, info string) (io.Reader, error) {
	if len(secret) == 0 {
		return nil, errors.New("empty key secret")
	}
	return hkdf.New(sha256.New, secret, nil, []byte(info)), nil
}
