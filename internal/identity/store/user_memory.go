// Package store provides user and session persistence.
package store

import (
	"context"
	"strings"
	"sync"

	"vowline/internal/identity/models"
	"vowline/pkg/domain"
	"vowline/pkg/platform/sentinel"
)

// UserMemory is a mutex-guarded map store mirroring the postgres semantics,
// including case-insensitive email uniqueness.
type UserMemory struct {
	mu    sync.RWMutex
	users map[domain.UserID]models.User
}

func NewUserMemory() *UserMemory {
	return &UserMemory{users: make(map[domain.UserID]models.User)}
}

func (s *UserMemory) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return sentinel.ErrConflict
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s *UserMemory) Update(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.users[user.ID] = *user
	return nil
}

func (s *UserMemory) FindByID(ctx context.Context, id domain.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &user, nil
}

func (s *UserMemory) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// RecipientsFor returns the active accounts that should hear about activity
// on a couple: the owning tenant's planners and the couple's client users.
func (s *UserMemory) RecipientsFor(ctx context.Context, tenantID domain.TenantID, profileID domain.ClientProfileID) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0)
	for _, user := range s.users {
		if user.Status != models.UserStatusActive {
			continue
		}
		if (user.TenantID == tenantID && user.ClientProfileID.IsNil()) || user.ClientProfileID == profileID {
			out = append(out, user)
		}
	}
	return out, nil
}

func (s *UserMemory) FindByResetTokenHash(ctx context.Context, tokenHash string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.ResetTokenHash != "" && user.ResetTokenHash == tokenHash {
			u := user
			return &u, nil
		}
	}
	return nil, sentinel.ErrNotFound
}
