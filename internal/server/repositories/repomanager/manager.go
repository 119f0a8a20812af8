// Package repomanager selects the user storage backend from config and owns
// its lifecycle: connections, schema migrations and shutdown.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/pakegate/internal/server/config"
	"github.com/dmitrijs2005/pakegate/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	Close() error
}

// New builds the manager for cfg.Storage. Call RunMigrations before use.
func New(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		return NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
	case config.StorageS3:
		return NewS3RepositoryManager(ctx, cfg)
	case config.StorageMemory:
		return NewMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}

// MemoryRepositoryManager keeps accounts in memory; nothing to migrate or close.
type MemoryRepositoryManager struct {
	users *users.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{users: users.NewMemoryRepository()}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }
func (m *MemoryRepositoryManager) Users() users.Repository            { return m.users }
func (m *MemoryRepositoryManager) Close() error                       { return nil }
