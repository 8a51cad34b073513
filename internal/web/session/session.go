// Package session keeps login sessions in a key/value storage backend.
// A Session is created at login, handed to request handlers through fiber locals
// and destroyed at logout; there is no process wide session state.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var (
	// ErrStorageNil is returned when the manager is built without a storage backend.
	ErrStorageNil = errors.New("session storage is nil")
	// ErrNotFound is returned for unknown or expired sessions.
	ErrNotFound = errors.New("session not found")
)

// Session is the state of one logged in user.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Manager creates, reads and destroys sessions.
type Manager struct {
	storage fiber.Storage
	ttl     time.Duration
	now     func() time.Time
}

// NewManager creates a session manager storing sessions for ttl.
func NewManager(storage fiber.Storage, ttl time.Duration) (*Manager, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}

	return &Manager{
		storage: storage,
		ttl:     ttl,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// TTL returns the session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Create starts a session for the given user.
func (m *Manager) Create(userID, username string) (*Session, error) {
	now := m.now()

	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	out, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}

	if err := m.storage.Set(s.ID, out, m.ttl); err != nil {
		return nil, fmt.Errorf("failed to write session: %w", err)
	}

	return s, nil
}

// Get loads a session. Unknown and expired sessions return ErrNotFound.
func (m *Manager) Get(id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}

	raw, err := m.storage.Get(id)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	if len(raw) == 0 {
		return nil, ErrNotFound
	}

	s := new(Session)
	if err := json.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	// storages without native expiry keep the row until the next garbage collection
	if s.Expired(m.now()) {
		_ = m.storage.Delete(id)
		return nil, ErrNotFound
	}

	return s, nil
}

// Destroy ends a session. Destroying an unknown session is not an error.
func (m *Manager) Destroy(id string) error {
	if id == "" {
		return nil
	}

	return m.storage.Delete(id)
}
