// Package store provides notification and preference persistence.
package store

import (
	"context"
	"sort"
	"sync"

	"vowline/internal/notification/models"
	"vowline/pkg/domain"
	"vowline/pkg/platform/sentinel"
)

type InMemory struct {
	mu            sync.RWMutex
	notifications map[domain.NotificationID]models.Notification
	preferences   map[domain.UserID]models.Preferences
}

func NewInMemory() *InMemory {
	return &InMemory{
		notifications: make(map[domain.NotificationID]models.Notification),
		preferences:   make(map[domain.UserID]models.Preferences),
	}
}

func (s *InMemory) Create(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[n.ID] = *n
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, id domain.NotificationID) (*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notifications[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &n, nil
}

func (s *InMemory) ListByUser(ctx context.Context, userID domain.UserID) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Notification, 0)
	for _, n := range s.notifications {
		if n.UserID == userID {
			entry := n
			out = append(out, &entry)
		}
	}
	// Newest first, the inbox order.
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) CountUnread(ctx context.Context, userID domain.UserID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) MarkRead(ctx context.Context, id domain.NotificationID, read bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	n.Read = read
	s.notifications[id] = n
	return nil
}

// MarkAllRead flips every unread entry of one user and returns how many
// changed. Other users' entries are untouched.
func (s *InMemory) MarkAllRead(ctx context.Context, userID domain.UserID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for id, n := range s.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			s.notifications[id] = n
			count++
		}
	}
	return count, nil
}

func (s *InMemory) Delete(ctx context.Context, id domain.NotificationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notifications[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.notifications, id)
	return nil
}

func (s *InMemory) FindPreferences(ctx context.Context, userID domain.UserID) (*models.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prefs, ok := s.preferences[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &prefs, nil
}

func (s *InMemory) SavePreferences(ctx context.Context, prefs *models.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preferences[prefs.UserID] = *prefs
	return nil
}
