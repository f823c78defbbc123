package identity

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewMemoryRepository builds an in-memory user store.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[string]User)}
}

func (r *memoryRepository) Ensure(_ context.Context, user User) (User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, exists := r.users[user.Phone]; exists {
		return existing, false, nil
	}
	r.users[user.Phone] = user
	return user, true, nil
}

func (r *memoryRepository) FindByPhone(_ context.Context, phone string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[phone]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}
