// Package session manages bearer-token sessions. Token storage sits behind
// a small Store port so the HTTP layer can be tested against an in-memory
// implementation while the server uses the SQLite-backed one.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long a session stays valid after login.
const DefaultTTL = 24 * time.Hour

// Session is one issued bearer token.
type Session struct {
	Token     string
	Username  string
	CreatedAt time.Time
}

// Store is the persistence port for sessions.
type Store interface {
	PutSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, token string) (*Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// Manager issues and validates sessions against a fixed TTL.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// NewManager creates a Manager. A non-positive ttl falls back to DefaultTTL.
func NewManager(store Store, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{store: store, ttl: ttl, now: time.Now}
}

// Issue mints a new session token for username.
func (m *Manager) Issue(ctx context.Context, username string) (*Session, error) {
	s := &Session{
		Token:     uuid.NewString(),
		Username:  username,
		CreatedAt: m.now().UTC(),
	}
	if err := m.store.PutSession(ctx, s); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return s, nil
}

// Validate returns the session for a bearer token, or nil when the token is
// unknown or past its TTL. Expired sessions are removed as a side effect.
func (m *Manager) Validate(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}
	s, err := m.store.GetSession(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	if s == nil {
		return nil, nil
	}
	if m.now().Sub(s.CreatedAt) >= m.ttl {
		_ = m.store.DeleteSession(ctx, token)
		return nil, nil
	}
	return s, nil
}

// Revoke removes a session token.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	return m.store.DeleteSession(ctx, token)
}

// FromAuthHeader extracts the bearer token from an Authorization header
// value, or "" when the header is absent or not a bearer scheme.
func FromAuthHeader(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

func (s *MemoryStore) PutSession(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = *sess
	return nil
}

func (s *MemoryStore) GetSession(_ context.Context, token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

func (s *MemoryStore) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
