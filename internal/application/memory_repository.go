package application

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Application
}

// NewMemoryRepository constructs an in-memory repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Application)}
}

func (r *memoryRepository) FindByPhone(_ context.Context, phone string) (Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, ok := r.storage[phone]
	if !ok {
		return Application{}, ErrNotFound
	}
	return app, nil
}

func (r *memoryRepository) CreateUnlessActive(_ context.Context, app Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.storage[app.Phone]; ok && existing.Status.Active() {
		return ErrApplicationExists
	}
	r.storage[app.Phone] = app
	return nil
}
