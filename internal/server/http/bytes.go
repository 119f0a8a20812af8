package http

import (
	"encoding/json"
	"errors"
	"strconv"
)

var errNotByteArray = errors.New("expected an array of integers between 0 and 255")

// ByteArray is a byte payload encoded in JSON as an array of integers,
// e.g. [1,2,3]. Strings, fractions and values outside 0..255 are rejected.
// A JSON null decodes to nil.
type ByteArray []byte

func (b ByteArray) MarshalJSON() ([]byte, error) {
	out := make([]byte, 0, 2+len(b)*4)
	out = append(out, '[')
	for i, v := range b {
		if i > 0 {
			out = append(out, ',')
		}
		out = strconv.AppendUint(out, uint64(v), 10)
	}
	return append(out, ']'), nil
}

func (b *ByteArray) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = nil
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errNotByteArray
	}

	out := make([]byte, len(raw))
	for i, r := range raw {
		v, err := strconv.ParseUint(string(r), 10, 8)
		if err != nil {
			return errNotByteArray
		}
		out[i] = byte(v)
	}
	*b = out
	return nil
}
