package common

// WipeByteArray overwrites b with zeros. Used for passwords once the
// handshake no longer needs them. Nil is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
