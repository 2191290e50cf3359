package session

import (
	"encoding/json"
	"errors"
	"sync"
)

// User identifies the authenticated account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// State is the persisted session pair. User and Token are always set and
// cleared together.
type State struct {
	User  *User  `json:"user,omitempty"`
	Token string `json:"token,omitempty"`
}

// Store manages the current session and writes every mutation through to
// the underlying BlobStore.
type Store struct {
	blob BlobStore

	mu    sync.RWMutex
	state State
}

// NewStore builds a Store backed by the provided persistence layer.
func NewStore(blob BlobStore) *Store {
	return &Store{blob: blob}
}

// Restore loads the persisted session at startup. A missing or malformed
// slot initializes the empty session; Restore never fails.
func (s *Store) Restore() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{}
	data, err := s.blob.Load()
	if err != nil || len(data) == 0 {
		return
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return
	}
	if state.User == nil || state.Token == "" {
		// Half a session is no session.
		return
	}
	s.state = state
}

// Set replaces both session fields atomically and persists the new pair.
func (s *Store) Set(user User, token string) error {
	if token == "" {
		return errors.New("session token must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{User: &user, Token: token}
	return s.persistLocked()
}

// Clear resets both fields and persists the cleared pair. Clearing an
// already-empty session is a no-op.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Token == "" && s.state.User == nil {
		return nil
	}
	s.state = State{}
	return s.persistLocked()
}

// Token returns the current bearer credential, or "" when signed out. It
// reflects the most recent Set/Clear with no staleness window.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// CurrentUser returns a copy of the signed-in identity, or nil.
func (s *Store) CurrentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.User == nil {
		return nil
	}
	user := *s.state.User
	return &user
}

// SignedIn reports whether a session is present.
func (s *Store) SignedIn() bool {
	return s.Token() != ""
}

func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return err
	}
	return s.blob.Save(data)
}
