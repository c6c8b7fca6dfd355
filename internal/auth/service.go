package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/vovakirdan/linechat/internal/store"
)

// ErrInvalidUsername is returned when the username is blank.
var ErrInvalidUsername = errors.New("invalid username")

// Outcome is the result of an authentication attempt.
type Outcome int

const (
	// OutcomeLoggedIn means the username was known and the password matched.
	OutcomeLoggedIn Outcome = iota
	// OutcomeRegistered means the username was unknown and has been stored.
	OutcomeRegistered
	// OutcomeWrongPassword means the username was known and the password did not match.
	OutcomeWrongPassword
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoggedIn:
		return "logged_in"
	case OutcomeRegistered:
		return "registered"
	case OutcomeWrongPassword:
		return "wrong_password"
	default:
		return "unknown"
	}
}

// Service authenticates users, registering unknown usernames on first sight.
type Service struct {
	store store.CredentialStore
	cost  int

	// locks holds one *sync.Mutex per username so the lookup and the
	// registering insert happen as one step.
	locks sync.Map
}

// NewService creates a new authentication service.
func NewService(credStore store.CredentialStore, bcryptCost int) *Service {
	return &Service{
		store: credStore,
		cost:  bcryptCost,
	}
}

// Authenticate checks password against the stored hash for username, or
// stores it when username has never been seen.
func (s *Service) Authenticate(ctx context.Context, username, password string) (Outcome, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return OutcomeWrongPassword, ErrInvalidUsername
	}

	mu := s.lockFor(username)
	mu.Lock()
	defer mu.Unlock()

	cred, err := s.store.GetCredential(ctx, username)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return s.register(ctx, username, password)
	case err != nil:
		return OutcomeWrongPassword, fmt.Errorf("get credential: %w", err)
	}

	if errPwd := ComparePassword(cred.PasswordHash, password); errPwd != nil {
		if errors.Is(errPwd, bcrypt.ErrMismatchedHashAndPassword) {
			return OutcomeWrongPassword, nil
		}
		return OutcomeWrongPassword, fmt.Errorf("compare password: %w", errPwd)
	}
	return OutcomeLoggedIn, nil
}

// Registered returns the number of known usernames.
func (s *Service) Registered(ctx context.Context) (int, error) {
	return s.store.CountCredentials(ctx)
}

func (s *Service) register(ctx context.Context, username, password string) (Outcome, error) {
	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return OutcomeWrongPassword, err
	}
	if err := s.store.CreateCredential(ctx, username, hash); err != nil {
		return OutcomeWrongPassword, fmt.Errorf("create credential: %w", err)
	}
	return OutcomeRegistered, nil
}

func (s *Service) lockFor(username string) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(username, &sync.Mutex{})
	return v.(*sync.Mutex)
}
