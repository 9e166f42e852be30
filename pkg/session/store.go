package session

import (
	"context"
	"sync"
)

// Store persists sessions keyed by token.
type Store interface {
	// Get returns the session for a token.
	// Returns ErrSessionNotFound if no session exists.
	Get(ctx context.Context, token string) (*Session, error)

	// Save creates or updates a session.
	Save(ctx context.Context, sess *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, token string) error
}

// memoryStore is the default in-memory store. Suitable for tests and
// single-instance deployments.
type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore returns an in-memory session store.
func NewMemoryStore() Store {
	return &memoryStore{sessions: make(map[string]Session)}
}

func (s *memoryStore) Get(ctx context.Context, token string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := sess
	return &cp, nil
}

func (s *memoryStore) Save(ctx context.Context, sess *Session) error {
	if sess == nil || sess.Token == "" {
		return ErrInvalidSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = *sess
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[token]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, token)
	return nil
}
