package session

import "sync"

// Factory builds a session for a chat, wiring in that chat's notifier and
// admin directory.
type Factory func(chatID int64) *Session

// Manager owns the session of each group chat. Sessions are independent;
// the manager only guards the map itself.
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	factory  Factory
}

// NewManager creates a manager using the given factory.
func NewManager(factory Factory) *Manager {
	return &Manager{
		sessions: make(map[int64]*Session),
		factory:  factory,
	}
}

// Get returns the session for a chat, if one exists.
func (m *Manager) Get(chatID int64) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[chatID]
	return s, ok
}

// GetOrCreate returns the chat's session, creating it on first use.
func (m *Manager) GetOrCreate(chatID int64) *Session {
	m.mu.RLock()
	s, ok := m.sessions[chatID]
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[chatID]; ok {
		return s
	}
	s = m.factory(chatID)
	m.sessions[chatID] = s
	return s
}

// Reset drops the chat's session so the next command starts a fresh game.
func (m *Manager) Reset(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
