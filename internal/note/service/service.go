// Package service orchestrates meeting notes.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"vowline/internal/access"
	clientmodels "vowline/internal/client/models"
	"vowline/internal/note/models"
	notifmodels "vowline/internal/notification/models"
	"vowline/pkg/domain"
	dErrors "vowline/pkg/domain-errors"
	"vowline/pkg/platform/sentinel"
	"vowline/pkg/requestcontext"
)

type NoteStore interface {
	Create(ctx context.Context, note *models.Note) error
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, id domain.NoteID) error
	FindByID(ctx context.Context, id domain.NoteID) (*models.Note, error)
	ListByProfiles(ctx context.Context, profileIDs []domain.ClientProfileID) ([]*models.Note, error)
}

// ProfileReader mirrors the task service's view of the client store.
type ProfileReader interface {
	FindProfileByID(ctx context.Context, id domain.ClientProfileID) (*clientmodels.ClientProfile, error)
	ListProfiles(ctx context.Context, scope access.Scope) ([]*clientmodels.ClientProfile, error)
	GrantedTenantIDs(ctx context.Context, profileID domain.ClientProfileID) ([]domain.TenantID, error)
}

type Events interface {
	Enqueue(ctx context.Context, event notifmodels.Event)
}

type Service struct {
	store    NoteStore
	profiles ProfileReader
	events   Events
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithEvents(e Events) Option {
	return func(s *Service) { s.events = e }
}

func New(store NoteStore, profiles ProfileReader, opts ...Option) *Service {
	s := &Service{store: store, profiles: profiles, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type NoteInput struct {
	ClientProfileID domain.ClientProfileID
	Title           string
	Body            string
	MeetingDate     *time.Time
}

func (s *Service) Create(ctx context.Context, p access.Principal, input NoteInput) (*models.Note, error) {
	profile, err := s.authorizeProfile(ctx, p, input.ClientProfileID, access.ActionWrite)
	if err != nil {
		return nil, err
	}

	note, err := models.NewNote(
		domain.NoteID(uuid.New()),
		profile.TenantID,
		profile.ID,
		strings.TrimSpace(input.Title),
		input.Body,
		p.UserID,
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, dErrors.MessageOf(err))
	}
	note.MeetingDate = input.MeetingDate

	if err := s.store.Create(ctx, note); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create note")
	}

	if s.events != nil {
		s.events.Enqueue(ctx, notifmodels.Event{
			Kind:            notifmodels.KindNoteCreated,
			ActorID:         p.UserID,
			TenantID:        profile.TenantID,
			ClientProfileID: profile.ID,
			Title:           "New meeting note: " + note.Title,
			Body:            note.Body,
			OccurredAt:      requestcontext.Now(ctx),
		})
	}
	return note, nil
}

func (s *Service) List(ctx context.Context, p access.Principal) ([]*models.Note, error) {
	if !p.Active {
		return nil, dErrors.New(dErrors.CodeForbidden, string(access.DenyInactiveAccount))
	}
	if p.TenantSuspended {
		return nil, dErrors.New(dErrors.CodeForbidden, string(access.DenySuspendedTenant))
	}
	scope := access.ScopeFor(p)
	if scope.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeForbidden, "no visibility scope")
	}

	profiles, err := s.profiles.ListProfiles(ctx, scope)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve visible profiles")
	}
	ids := make([]domain.ClientProfileID, 0, len(profiles))
	for _, profile := range profiles {
		ids = append(ids, profile.ID)
	}

	notes, err := s.store.ListByProfiles(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notes")
	}
	return notes, nil
}

func (s *Service) Get(ctx context.Context, p access.Principal, id domain.NoteID) (*models.Note, error) {
	note, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizeProfile(ctx, p, note.ClientProfileID, access.ActionRead); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *Service) Update(ctx context.Context, p access.Principal, id domain.NoteID, input NoteInput) (*models.Note, error) {
	note, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizeProfile(ctx, p, note.ClientProfileID, access.ActionWrite); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "note title is required")
	}
	note.Title = title
	note.Body = input.Body
	note.MeetingDate = input.MeetingDate
	note.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Update(ctx, note); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update note")
	}
	return note, nil
}

func (s *Service) Delete(ctx context.Context, p access.Principal, id domain.NoteID) error {
	note, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.authorizeProfile(ctx, p, note.ClientProfileID, access.ActionWrite); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "note not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete note")
	}
	return nil
}

func (s *Service) authorizeProfile(ctx context.Context, p access.Principal, profileID domain.ClientProfileID, action access.Action) (*clientmodels.ClientProfile, error) {
	profile, err := s.profiles.FindProfileByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "client profile not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load client profile")
	}
	shared, err := s.profiles.GrantedTenantIDs(ctx, profile.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load access grants")
	}
	d := access.Authorize(p, access.Resource{
		TenantID:        profile.TenantID,
		ClientProfileID: profile.ID,
		OwnerTenantID:   profile.TenantID,
		SharedWith:      shared,
	}, action)
	if !d.Allowed {
		return nil, dErrors.New(dErrors.CodeForbidden, string(d.Reason))
	}
	return profile, nil
}

func (s *Service) load(ctx context.Context, id domain.NoteID) (*models.Note, error) {
	note, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "note not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load note")
	}
	return note, nil
}
