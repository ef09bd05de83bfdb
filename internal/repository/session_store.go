package repository

import (
	"sync"

	"github.com/hirolabs/hirehub-api/internal/models"
)

// SessionStore keeps live coding-test sessions. Sessions are ephemeral per
// attempt and intentionally never persisted; the store is a guarded map.
type SessionStore interface {
	Put(session *models.TestSession)
	Get(id string) (*models.TestSession, bool)
	Delete(id string)
	ActiveForUser(userID string) (*models.TestSession, bool)
}

// NewSessionStore constructs an in-memory session store.
func NewSessionStore() SessionStore {
	return &sessionStore{sessions: make(map[string]*models.TestSession)}
}

type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.TestSession
}

func (s *sessionStore) Put(session *models.TestSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = session
}

func (s *sessionStore) Get(id string) (*models.TestSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	return session, ok
}

func (s *sessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
}

func (s *sessionStore) ActiveForUser(userID string) (*models.TestSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, session := range s.sessions {
		if session.UserID == userID && session.Active() {
			return session, true
		}
	}
	return nil, false
}
