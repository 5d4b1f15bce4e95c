// Package service implements the per-user notification inbox.
package service

import (
	"context"
	"errors"
	"log/slog"

	"vowline/internal/access"
	"vowline/internal/notification/models"
	"vowline/pkg/domain"
	dErrors "vowline/pkg/domain-errors"
	"vowline/pkg/platform/sentinel"
	"vowline/pkg/requestcontext"
)

// Store persists notifications and preferences.
type Store interface {
	Create(ctx context.Context, notification *models.Notification) error
	FindByID(ctx context.Context, id domain.NotificationID) (*models.Notification, error)
	ListByUser(ctx context.Context, userID domain.UserID) ([]*models.Notification, error)
	CountUnread(ctx context.Context, userID domain.UserID) (int, error)
	MarkRead(ctx context.Context, id domain.NotificationID, read bool) error
	MarkAllRead(ctx context.Context, userID domain.UserID) (int, error)
	Delete(ctx context.Context, id domain.NotificationID) error
	FindPreferences(ctx context.Context, userID domain.UserID) (*models.Preferences, error)
	SavePreferences(ctx context.Context, prefs *models.Preferences) error
}

// Service reads and mutates a user's own inbox. Every operation is scoped to
// the principal's user id; there is no cross-user access, not even for
// SUPERADMIN.
type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context, p access.Principal) ([]*models.Notification, error) {
	if err := requireActive(p); err != nil {
		return nil, err
	}
	notifications, err := s.store.ListByUser(ctx, p.UserID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notifications")
	}
	return notifications, nil
}

func (s *Service) UnreadCount(ctx context.Context, p access.Principal) (int, error) {
	if err := requireActive(p); err != nil {
		return 0, err
	}
	count, err := s.store.CountUnread(ctx, p.UserID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count notifications")
	}
	return count, nil
}

// SetRead flips one entry's read flag. Only the owner may touch it.
func (s *Service) SetRead(ctx context.Context, p access.Principal, id domain.NotificationID, read bool) error {
	if err := s.requireOwned(ctx, p, id); err != nil {
		return err
	}
	if err := s.store.MarkRead(ctx, id, read); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "notification not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update notification")
	}
	return nil
}

// MarkAllRead marks every unread entry of the caller. Other users' inboxes
// are untouched by construction: the store filters on the user id.
func (s *Service) MarkAllRead(ctx context.Context, p access.Principal) (int, error) {
	if err := requireActive(p); err != nil {
		return 0, err
	}
	count, err := s.store.MarkAllRead(ctx, p.UserID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark notifications read")
	}
	s.logger.InfoContext(ctx, "notifications marked read",
		"user_id", p.UserID,
		"count", count,
		"request_id", requestcontext.RequestID(ctx),
	)
	return count, nil
}

func (s *Service) Delete(ctx context.Context, p access.Principal, id domain.NotificationID) error {
	if err := s.requireOwned(ctx, p, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "notification not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete notification")
	}
	return nil
}

// Preferences returns the caller's email opt-ins, defaulting when never set.
func (s *Service) Preferences(ctx context.Context, p access.Principal) (*models.Preferences, error) {
	if err := requireActive(p); err != nil {
		return nil, err
	}
	prefs, err := s.store.FindPreferences(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			defaults := models.DefaultPreferences(p.UserID)
			return &defaults, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load preferences")
	}
	return prefs, nil
}

func (s *Service) UpdatePreferences(ctx context.Context, p access.Principal, prefs models.Preferences) (*models.Preferences, error) {
	if err := requireActive(p); err != nil {
		return nil, err
	}
	prefs.UserID = p.UserID
	prefs.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.SavePreferences(ctx, &prefs); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save preferences")
	}
	return &prefs, nil
}

func (s *Service) requireOwned(ctx context.Context, p access.Principal, id domain.NotificationID) error {
	if err := requireActive(p); err != nil {
		return err
	}
	n, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "notification not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load notification")
	}
	if n.UserID != p.UserID {
		// Indistinguishable from missing so inbox ids cannot be enumerated.
		return dErrors.New(dErrors.CodeNotFound, "notification not found")
	}
	return nil
}

func requireActive(p access.Principal) error {
	if !p.Active {
		return dErrors.New(dErrors.CodeForbidden, string(access.DenyInactiveAccount))
	}
	if p.TenantSuspended {
		return dErrors.New(dErrors.CodeForbidden, string(access.DenySuspendedTenant))
	}
	return nil
}
