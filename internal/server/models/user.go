package models

import "time"

// UserRecord is the persisted account. It is written once, when a
// registration finishes, and never updated.
type UserRecord struct {
	ID         string
	Username   string
	Suite      string
	Credential []byte
	Wallet     string
	Salt       string
	CreatedAt  time.Time
}
