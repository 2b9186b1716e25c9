package state

import (
	"sync"

	"github.com/google/uuid"
)

// Manager registers live sessions so mutation requests can reach the session
// their realtime stream created.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Add registers a started session and returns its handle id.
func (m *Manager) Add(s *Session) string {
	id := uuid.NewString()
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return id
}

func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// ForAgency resolves a session handle and checks it belongs to the given
// tenant. Mutation handlers use it to route writes through the caller's live
// session; a nil result means the write goes straight to the store.
func (m *Manager) ForAgency(id string, agencyID uint) *Session {
	if id == "" {
		return nil
	}
	s := m.Get(id)
	if s == nil || s.AgencyID() != agencyID {
		return nil
	}
	return s
}

// Remove unregisters and closes the session.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	s := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if s != nil {
		s.Close()
	}
}
