package store

import (
	"context"
	"sync"
	"time"

	"vowline/internal/identity/models"
	"vowline/pkg/domain"
	"vowline/pkg/platform/sentinel"
)

// SessionMemory keeps sessions in a map. Expiry is enforced on read.
type SessionMemory struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]models.Session
}

func NewSessionMemory() *SessionMemory {
	return &SessionMemory{sessions: make(map[domain.SessionID]models.Session)}
}

func (s *SessionMemory) Save(ctx context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

func (s *SessionMemory) Find(ctx context.Context, id domain.SessionID) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if session.Expired(time.Now()) {
		return nil, sentinel.ErrExpired
	}
	return &session, nil
}

func (s *SessionMemory) Delete(ctx context.Context, id domain.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}
