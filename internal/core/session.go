package core

import "sync"

// ConnID identifies one live connection. It is never reused.
type ConnID string

// Session is the per-connection authentication and channel state.
// Channel is only set when Username is set.
type Session struct {
	ID       ConnID
	Username string
	Channel  string
}

// Authenticated reports whether a username is bound to the session.
func (s Session) Authenticated() bool {
	return s.Username != ""
}

// InChannel reports whether the session currently belongs to a channel.
func (s Session) InChannel() bool {
	return s.Channel != ""
}

// SessionTable owns every Session, keyed by connection id.
// Callers only ever see copies.
type SessionTable struct {
	mu       sync.RWMutex
	sessions map[ConnID]*Session
}

// NewSessionTable constructs an empty table.
func NewSessionTable() *SessionTable {
	return &SessionTable{sessions: make(map[ConnID]*Session)}
}

// OnConnect creates an anonymous session for id.
func (t *SessionTable) OnConnect(id ConnID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.sessions[id]; exists {
		return ErrSessionExists
	}
	t.sessions[id] = &Session{ID: id}
	return nil
}

// OnDisconnect removes the session and returns its last state. The second
// call for the same id returns ErrSessionNotFound.
func (t *SessionTable) OnDisconnect(id ConnID) (Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	delete(t.sessions, id)
	return *s, nil
}

// SetUser binds a username and clears any channel membership.
func (t *SessionTable) SetUser(id ConnID, username string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.Username = username
	s.Channel = ""
	return nil
}

// SetChannel changes the current channel; an empty name clears it.
func (t *SessionTable) SetChannel(id ConnID, channel string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if channel != "" && s.Username == "" {
		return ErrNotAuthenticated
	}
	s.Channel = channel
	return nil
}

// Get returns a copy of the session for id.
func (t *SessionTable) Get(id ConnID) (Session, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, ok := t.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return *s, nil
}

// Len returns the number of live sessions.
func (t *SessionTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}

// each calls fn for a snapshot of every session under the read lock.
func (t *SessionTable) each(fn func(Session)) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, s := range t.sessions {
		fn(*s)
	}
}
