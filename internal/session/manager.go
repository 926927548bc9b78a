package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/planweave/planweave/internal/domain"
)

// Session is one conversation's state. All access goes through its methods;
// the embedded mutex also serialises the agent's handling of concurrent
// requests for the same session.
type Session struct {
	ID     uuid.UUID
	UserID uuid.UUID

	mu          sync.Mutex
	messages    []Message
	memory      map[string]string
	memoryOrder []string
	pendingPlan *PlanPreview
	lastActive  time.Time
}

// Lock acquires the session's request lock. The agent holds it for the full
// handling of a chat or confirm request so two requests for the same session
// never interleave.
func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// The methods below assume the caller holds the session lock.

// AppendMessage records one turn, evicting the oldest turns beyond the cap.
func (s *Session) AppendMessage(maxMessages int, m Message) {
	s.messages = append(s.messages, m)
	if len(s.messages) > maxMessages {
		s.messages = s.messages[len(s.messages)-maxMessages:]
	}
}

// History returns a copy of the message log, oldest first.
func (s *Session) History() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// SetMemory stores a scratch key, evicting the least recently written key
// beyond the cap.
func (s *Session) SetMemory(maxKeys int, key, value string) {
	if _, ok := s.memory[key]; !ok {
		s.memoryOrder = append(s.memoryOrder, key)
		if len(s.memoryOrder) > maxKeys {
			oldest := s.memoryOrder[0]
			s.memoryOrder = s.memoryOrder[1:]
			delete(s.memory, oldest)
		}
	}
	s.memory[key] = value
}

// Memory returns the scratch value for key, if set.
func (s *Session) Memory(key string) (string, bool) {
	v, ok := s.memory[key]
	return v, ok
}

// SetPendingPlan stores a preview, replacing any earlier unconfirmed one.
func (s *Session) SetPendingPlan(p *PlanPreview) {
	s.pendingPlan = p
}

// PendingPlan returns the stored preview without consuming it.
func (s *Session) PendingPlan() *PlanPreview {
	return s.pendingPlan
}

// TakePendingPlan removes and returns the preview. A preview can be taken
// exactly once; a second take yields ErrConflict.
func (s *Session) TakePendingPlan() (*PlanPreview, error) {
	if s.pendingPlan == nil {
		return nil, fmt.Errorf("session: no pending plan: %w", domain.ErrConflict)
	}
	p := s.pendingPlan
	s.pendingPlan = nil
	return p, nil
}

// Manager owns the session map. Expiry is lazy: an expired session is
// dropped when next touched, or by the background sweep.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[uuid.UUID]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// GetOrCreate resolves a session for the user. A nil id creates a fresh
// session; an unknown, expired, or foreign id yields ErrNotFound so callers
// never silently resume someone else's conversation.
func (m *Manager) GetOrCreate(userID uuid.UUID, id *uuid.UUID) (*Session, error) {
	if id == nil {
		return m.create(userID), nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[*id]
	if !ok {
		return nil, fmt.Errorf("session.Manager.GetOrCreate: %w", domain.ErrNotFound)
	}
	if m.expired(s) {
		delete(m.sessions, *id)
		return nil, fmt.Errorf("session.Manager.GetOrCreate: expired: %w", domain.ErrNotFound)
	}
	if s.UserID != userID {
		return nil, fmt.Errorf("session.Manager.GetOrCreate: %w", domain.ErrNotFound)
	}

	s.lastActive = m.now()
	return s, nil
}

// Get resolves an existing live session without creating one.
func (m *Manager) Get(userID uuid.UUID, id uuid.UUID) (*Session, error) {
	return m.GetOrCreate(userID, &id)
}

func (m *Manager) create(userID uuid.UUID) *Session {
	s := &Session{
		ID:         uuid.New(),
		UserID:     userID,
		memory:     make(map[string]string),
		lastActive: m.now(),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	return s
}

// Delete drops a session. Deleting an unknown id is not an error.
func (m *Manager) Delete(userID uuid.UUID, id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if ok && s.UserID == userID {
		delete(m.sessions, id)
	}
}

// Len reports the number of live sessions, expired included until swept.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops all expired sessions and returns how many were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if m.expired(s) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

func (m *Manager) expired(s *Session) bool {
	return m.now().Sub(s.lastActive) > m.ttl
}
