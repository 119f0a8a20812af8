// Package users persists accounts created by finished registrations.
package users

import (
	"context"

	"github.com/dmitrijs2005/pakegate/internal/server/models"
)

// Repository is implemented by every storage backend.
//
// FindByUsername returns common.ErrNotFound when no account exists.
// Save returns common.ErrAlreadyExists when the username is taken; records
// are never overwritten.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*models.UserRecord, error)
	Save(ctx context.Context, rec *models.UserRecord) error
}
