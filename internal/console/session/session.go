// Package session manages console session lifecycle.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matthewbaird/opsconsole/internal/notify"
	"github.com/matthewbaird/opsconsole/internal/permission"
	"github.com/matthewbaird/opsconsole/internal/screen"
)

// Session holds the screens of one console connection.
type Session struct {
	ID        string           `json:"id"`
	Actor     permission.Actor `json:"actor"`
	CreatedAt time.Time        `json:"created_at"`

	screens   []screen.Handle
	confirmer *notify.PromptConfirmer

	mu           sync.Mutex
	current      string
	lastActiveAt time.Time
}

// NewSession creates a session over the given screens.
func NewSession(actor permission.Actor, screens []screen.Handle, confirmer *notify.PromptConfirmer) *Session {
	now := time.Now()
	return &Session{
		ID:           uuid.New().String(),
		Actor:        actor,
		CreatedAt:    now,
		screens:      screens,
		confirmer:    confirmer,
		lastActiveAt: now,
	}
}

// Screens returns the session's screens in navigation order.
func (s *Session) Screens() []screen.Handle { return s.screens }

// Screen returns the screen named name.
func (s *Session) Screen(name string) (screen.Handle, bool) {
	for _, h := range s.screens {
		if h.Name() == name {
			return h, true
		}
	}
	return nil, false
}

// Confirmer answers the delete prompts of this session.
func (s *Session) Confirmer() *notify.PromptConfirmer { return s.confirmer }

// SetCurrent records the screen staff is looking at.
func (s *Session) SetCurrent(name string) {
	s.mu.Lock()
	s.current = name
	s.mu.Unlock()
}

// Current returns the screen staff is looking at.
func (s *Session) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Touch updates the last activity timestamp.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActiveAt = time.Now()
	s.mu.Unlock()
}

// LastActiveAt returns the last activity timestamp.
func (s *Session) LastActiveAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActiveAt
}

// IsExpired returns true if the session has exceeded the given max age.
func (s *Session) IsExpired(maxAge time.Duration) bool {
	return time.Since(s.CreatedAt) > maxAge
}

// IsIdle returns true if the session has been idle longer than the timeout.
func (s *Session) IsIdle(timeout time.Duration) bool {
	return time.Since(s.LastActiveAt()) > timeout
}

// Manager handles session creation, lookup, and cleanup.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	maxAge      time.Duration
	idleTimeout time.Duration
}

// NewManager creates a session manager with the given timeouts.
func NewManager(maxAge, idleTimeout time.Duration) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		maxAge:      maxAge,
		idleTimeout: idleTimeout,
	}
}

// Add registers s.
func (m *Manager) Add(s *Session) {
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
}

// Get retrieves a session by ID. Returns nil if not found or expired.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	if m.stale(s) {
		m.Remove(id)
		return nil
	}
	return s
}

// Remove deletes a session.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len returns the number of registered sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Cleanup removes all expired and idle sessions.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if m.stale(s) {
			delete(m.sessions, id)
		}
	}
}

// Run calls Cleanup every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Cleanup()
		}
	}
}

func (m *Manager) stale(s *Session) bool {
	return s.IsExpired(m.maxAge) || s.IsIdle(m.idleTimeout)
}
