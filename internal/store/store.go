package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no credential exists for a username.
	ErrNotFound = errors.New("credential not found")
	// ErrExists is returned when a username is already registered.
	ErrExists = errors.New("credential already exists")
)

// Credential is a registered username and its password hash.
type Credential struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// CredentialStore handles credential persistence. Usernames are unique and a
// stored hash is never changed.
type CredentialStore interface {
	// CreateCredential registers username. Returns ErrExists if it is taken.
	CreateCredential(ctx context.Context, username, passwordHash string) error

	// GetCredential retrieves a credential. Returns ErrNotFound if unknown.
	GetCredential(ctx context.Context, username string) (*Credential, error)

	// CountCredentials returns how many usernames are registered.
	CountCredentials(ctx context.Context) (int, error)

	// Close releases the underlying resources.
	Close() error
}
