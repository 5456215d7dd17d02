package live

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session holds per-connection state.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu           sync.Mutex
	lastActiveAt time.Time
}

// Manager handles session creation, lookup, and cleanup.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	maxAge      time.Duration
	idleTimeout time.Duration
	now         func() time.Time
}

// NewManager creates a session manager with the given timeouts.
func NewManager(maxAge, idleTimeout time.Duration) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		maxAge:      maxAge,
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// Create creates a new session and returns it.
func (m *Manager) Create() *Session {
	now := m.now()
	s := &Session{ID: uuid.New().String(), CreatedAt: now, lastActiveAt: now}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Touch updates the last activity timestamp.
func (m *Manager) Touch(s *Session) {
	s.mu.Lock()
	s.lastActiveAt = m.now()
	s.mu.Unlock()
}

// Deadline is when s expires unless touched again: the earlier of the idle
// timeout and the maximum age.
func (m *Manager) Deadline(s *Session) time.Time {
	s.mu.Lock()
	idle := s.lastActiveAt.Add(m.idleTimeout)
	s.mu.Unlock()
	if hard := s.CreatedAt.Add(m.maxAge); hard.Before(idle) {
		return hard
	}
	return idle
}

func (m *Manager) expired(s *Session) bool {
	return !m.now().Before(m.Deadline(s))
}

// Get retrieves a session by ID. Returns nil if not found or expired.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	if m.expired(s) {
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

// Len counts tracked sessions, expired ones included until Cleanup runs.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Cleanup removes all expired and idle sessions and returns how many.
func (m *Manager) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if m.expired(s) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
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
