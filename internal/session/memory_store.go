package session

import (
	"context"
	"errors"
	"sync"
)

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore builds an in-process session store.
func NewMemoryStore() Store {
	return &memoryStore{sessions: make(map[string]Session)}
}

func (s *memoryStore) Create(_ context.Context, session Session) error {
	if session.Token == "" {
		return errors.New("session token is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.Token]; exists {
		return errors.New("session token already issued")
	}
	s.sessions[session.Token] = session
	return nil
}

func (s *memoryStore) Lookup(_ context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	return sess, nil
}
