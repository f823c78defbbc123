package otp

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu         sync.RWMutex
	challenges map[string]Challenge
}

// NewMemoryStore builds an in-process challenge store.
func NewMemoryStore() Store {
	return &memoryStore{challenges: make(map[string]Challenge)}
}

func (s *memoryStore) Put(_ context.Context, challenge Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[challenge.Phone] = challenge
	return nil
}

func (s *memoryStore) Get(_ context.Context, phone string) (Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ch, ok := s.challenges[phone]
	if !ok {
		return Challenge{}, ErrNotFound
	}
	return ch, nil
}

func (s *memoryStore) Delete(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.challenges, phone)
	return nil
}
