package handshake

import (
	"fmt"

	"github.com/cretz/gopaque/gopaque"
)

const sigmaRecordVersion byte = 1

// encodeSigmaRecord serialises what the server keeps after registration.
// The server private key is left out; it is supplied again at login time.
//
// Fields: user id, user public key, envelope, OPRF key.
func encodeSigmaRecord(rec *gopaque.ServerRegisterComplete) ([]byte, error) {
	pub, err := rec.UserPublicKey.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode user public key: %w", err)
	}
	ku, err := rec.KU.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode oprf key: %w", err)
	}

	return appendFields(sigmaRecordVersion, rec.UserID, pub, rec.EnvU, ku), nil
}

func decodeSigmaRecord(crypto gopaque.Crypto, data []byte) (*gopaque.ServerRegisterComplete, error) {
	fields, err := splitFields(sigmaRecordVersion, data, 4)
	if err != nil {
		return nil, err
	}

	rec := &gopaque.ServerRegisterComplete{
		UserID:        fields[0],
		UserPublicKey: crypto.Point(),
		EnvU:          fields[2],
		KU:            crypto.Scalar(),
	}
	if err := rec.UserPublicKey.UnmarshalBinary(fields[1]); err != nil {
		return nil, fmt.Errorf("%w: user public key: %v", ErrBadCredential, err)
	}
	if err := rec.KU.UnmarshalBinary(fields[3]); err != nil {
		return nil, fmt.Errorf("%w: oprf key: %v", ErrBadCredential, err)
	}
	return rec, nil
}
