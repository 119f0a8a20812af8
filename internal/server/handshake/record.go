package handshake

import (
	"encoding/binary"
	"fmt"
)

// appendFields writes version followed by each field prefixed with its
// uvarint length.
func appendFields(version byte, fields ...[]byte) []byte {
	size := 1
	for _, f := range fields {
		size += binary.MaxVarintLen32 + len(f)
	}
	buf := make([]byte, 0, size)
	buf = append(buf, version)
	for _, f := range fields {
		buf = binary.AppendUvarint(buf, uint64(len(f)))
		buf = append(buf, f...)
	}
	return buf
}

// splitFields is the inverse of appendFields. It fails with
// ErrBadCredential on a version mismatch, truncation or trailing bytes.
func splitFields(version byte, data []byte, n int) ([][]byte, error) {
	if len(data) == 0 || data[0] != version {
		return nil, fmt.Errorf("%w: unknown version", ErrBadCredential)
	}
	rest := data[1:]

	fields := make([][]byte, n)
	for i := range fields {
		size, read := binary.Uvarint(rest)
		if read <= 0 || size > uint64(len(rest)-read) {
			return nil, fmt.Errorf("%w: truncated field %d", ErrBadCredential, i)
		}
		rest = rest[read:]
		fields[i] = rest[:size:size]
		rest = rest[size:]
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: trailing bytes", ErrBadCredential)
	}
	return fields, nil
}
