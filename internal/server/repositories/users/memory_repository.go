package users

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/pakegate/internal/common"
	"github.com/dmitrijs2005/pakegate/internal/server/models"
)

// MemoryRepository keeps accounts in process memory. Development only.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]models.UserRecord
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]models.UserRecord)}
}

func (r *MemoryRepository) FindByUsername(_ context.Context, username string) (*models.UserRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.users[username]
	if !ok {
		return nil, common.ErrNotFound
	}
	rec.Credential = append([]byte(nil), rec.Credential...)
	return &rec, nil
}

func (r *MemoryRepository) Save(_ context.Context, rec *models.UserRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[rec.Username]; ok {
		return common.ErrAlreadyExists
	}
	stored := *rec
	stored.Credential = append([]byte(nil), rec.Credential...)
	r.users[rec.Username] = stored
	return nil
}

// Len reports the number of stored accounts.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
