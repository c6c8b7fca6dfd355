package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vovakirdan/linechat/internal/store"
)

// Store keeps credentials in a map for the lifetime of the process.
type Store struct {
	mu    sync.RWMutex
	creds map[string]store.Credential
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{creds: make(map[string]store.Credential)}
}

// CreateCredential registers username.
func (s *Store) CreateCredential(_ context.Context, username, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.creds[username]; exists {
		return store.ErrExists
	}
	s.creds[username] = store.Credential{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	return nil
}

// GetCredential retrieves a credential by username.
func (s *Store) GetCredential(_ context.Context, username string) (*store.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.creds[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

// CountCredentials returns the number of registered usernames.
func (s *Store) CountCredentials(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.creds), nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
