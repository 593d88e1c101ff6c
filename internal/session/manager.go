// Package session maps opaque tokens to authenticated user identities.
// Login creates an entry, logout or expiry removes it; nothing else ever
// grants access to a user id.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

type entry struct {
	userID    int64
	expiresAt time.Time
}

// Manager holds the token-to-identity mapping in process, guarded by a
// mutex. Expired entries are dropped lazily on lookup and swept by a
// periodic cleanup.
type Manager struct {
	mu           sync.Mutex
	sessions     map[string]entry
	ttl          time.Duration
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

func NewManager(ttl time.Duration) *Manager {
	m := &Manager{
		sessions:    make(map[string]entry),
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
	}
	go m.startCleanup()
	return m
}

// Create establishes a session for the user and returns its opaque token.
func (m *Manager) Create(userID int64) string {
	token := uuid.NewString()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = entry{
		userID:    userID,
		expiresAt: time.Now().Add(m.ttl),
	}
	return token
}

// Resolve returns the user id behind a token, or core.ErrUnauthenticated
// for unknown and expired tokens.
func (m *Manager) Resolve(token string) (int64, error) {
	if token == "" {
		return 0, core.ErrUnauthenticated
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[token]
	if !ok {
		return 0, core.ErrUnauthenticated
	}
	if time.Now().After(e.expiresAt) {
		delete(m.sessions, token)
		return 0, core.ErrUnauthenticated
	}
	return e.userID, nil
}

// Destroy clears a session. Destroying an unknown token is a no-op.
func (m *Manager) Destroy(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

// Len reports the number of live sessions, expired entries included until
// the next sweep.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close stops the cleanup goroutine.
func (m *Manager) Close() {
	m.shutdownOnce.Do(func() {
		close(m.stopCleanup)
	})
}

func (m *Manager) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanupExpired()
		case <-m.stopCleanup:
			return
		}
	}
}

func (m *Manager) cleanupExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for token, e := range m.sessions {
		if now.After(e.expiresAt) {
			delete(m.sessions, token)
		}
	}
}
