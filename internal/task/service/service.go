// Package service orchestrates tasks and their comment threads.
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
	notifmodels "vowline/internal/notification/models"
	"vowline/internal/task/models"
	"vowline/pkg/domain"
	dErrors "vowline/pkg/domain-errors"
	"vowline/pkg/platform/sentinel"
	"vowline/pkg/requestcontext"
)

// TaskStore persists tasks and comments.
type TaskStore interface {
	CreateTask(ctx context.Context, task *models.Task) error
	UpdateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, id domain.TaskID) error
	FindTaskByID(ctx context.Context, id domain.TaskID) (*models.Task, error)
	ListTasksByProfiles(ctx context.Context, profileIDs []domain.ClientProfileID) ([]*models.Task, error)
	CreateComment(ctx context.Context, comment *models.Comment) error
	UpdateComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, id domain.CommentID) error
	FindCommentByID(ctx context.Context, id domain.CommentID) (*models.Comment, error)
	ListCommentsByTask(ctx context.Context, taskID domain.TaskID) ([]*models.Comment, error)
}

// ProfileReader exposes the client store operations the guard needs: the
// owning tenant, the grant set, and scope-filtered profile listing.
type ProfileReader interface {
	FindProfileByID(ctx context.Context, id domain.ClientProfileID) (*clientmodels.ClientProfile, error)
	ListProfiles(ctx context.Context, scope access.Scope) ([]*clientmodels.ClientProfile, error)
	GrantedTenantIDs(ctx context.Context, profileID domain.ClientProfileID) ([]domain.TenantID, error)
}

// Events receives fan-out units for the notification worker. Enqueue never
// blocks request handling.
type Events interface {
	Enqueue(ctx context.Context, event notifmodels.Event)
}

type Service struct {
	store    TaskStore
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

func New(store TaskStore, profiles ProfileReader, opts ...Option) *Service {
	s := &Service{store: store, profiles: profiles, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTaskInput carries the writable task fields.
type CreateTaskInput struct {
	ClientProfileID domain.ClientProfileID
	Title           string
	Description     string
	DueDate         *time.Time
}

// CreateTask files a task under a couple. The tenant column is always the
// profile's owning tenant.
func (s *Service) CreateTask(ctx context.Context, p access.Principal, input CreateTaskInput) (*models.Task, error) {
	profile, err := s.authorizeProfile(ctx, p, input.ClientProfileID, access.ActionWrite)
	if err != nil {
		return nil, err
	}

	task, err := models.NewTask(
		domain.TaskID(uuid.New()),
		profile.TenantID,
		profile.ID,
		strings.TrimSpace(input.Title),
		p.UserID,
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, dErrors.MessageOf(err))
	}
	task.Description = strings.TrimSpace(input.Description)
	task.DueDate = input.DueDate

	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create task")
	}

	s.publish(ctx, p, profile, notifmodels.KindTaskCreated, "New task: "+task.Title, task.Description)
	return task, nil
}

// ListTasks returns the tasks of every profile visible to the principal,
// including profiles shared through TenantAccess.
func (s *Service) ListTasks(ctx context.Context, p access.Principal) ([]*models.Task, error) {
	scope := access.ScopeFor(p)
	if scope.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeForbidden, "no visibility scope")
	}
	if !p.Active {
		return nil, dErrors.New(dErrors.CodeForbidden, string(access.DenyInactiveAccount))
	}
	if p.TenantSuspended {
		return nil, dErrors.New(dErrors.CodeForbidden, string(access.DenySuspendedTenant))
	}

	profiles, err := s.profiles.ListProfiles(ctx, scope)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve visible profiles")
	}
	ids := make([]domain.ClientProfileID, 0, len(profiles))
	for _, profile := range profiles {
		ids = append(ids, profile.ID)
	}

	tasks, err := s.store.ListTasksByProfiles(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tasks")
	}
	return tasks, nil
}

// GetTask loads one task with the full guard check.
func (s *Service) GetTask(ctx context.Context, p access.Principal, id domain.TaskID) (*models.Task, error) {
	task, _, err := s.authorizeTask(ctx, p, id, access.ActionRead)
	return task, err
}

// UpdateTaskInput carries the editable task fields.
type UpdateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	DueDate     *time.Time
}

func (s *Service) UpdateTask(ctx context.Context, p access.Principal, id domain.TaskID, input UpdateTaskInput) (*models.Task, error) {
	task, profile, err := s.authorizeTask(ctx, p, id, access.ActionWrite)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "task title is required")
	}
	if !input.Status.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown task status")
	}
	task.Title = title
	task.Description = strings.TrimSpace(input.Description)
	task.Status = input.Status
	task.DueDate = input.DueDate
	task.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.UpdateTask(ctx, task); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update task")
	}

	s.publish(ctx, p, profile, notifmodels.KindTaskUpdated, "Task updated: "+task.Title, string(task.Status))
	return task, nil
}

func (s *Service) DeleteTask(ctx context.Context, p access.Principal, id domain.TaskID) error {
	_, _, err := s.authorizeTask(ctx, p, id, access.ActionWrite)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTask(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "task not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete task")
	}
	return nil
}

// ListComments returns a task's thread after a read check on the task.
func (s *Service) ListComments(ctx context.Context, p access.Principal, taskID domain.TaskID) ([]*models.Comment, error) {
	if _, _, err := s.authorizeTask(ctx, p, taskID, access.ActionRead); err != nil {
		return nil, err
	}
	comments, err := s.store.ListCommentsByTask(ctx, taskID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list comments")
	}
	return comments, nil
}

// CreateComment appends to a task's thread. Requires write access on the
// task, so read-only shared tenants cannot comment.
func (s *Service) CreateComment(ctx context.Context, p access.Principal, taskID domain.TaskID, body string) (*models.Comment, error) {
	task, profile, err := s.authorizeTask(ctx, p, taskID, access.ActionWrite)
	if err != nil {
		return nil, err
	}

	comment, err := models.NewComment(
		domain.CommentID(uuid.New()),
		task,
		p.UserID,
		strings.TrimSpace(body),
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, dErrors.MessageOf(err))
	}

	if err := s.store.CreateComment(ctx, comment); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "task not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create comment")
	}

	s.publish(ctx, p, profile, notifmodels.KindCommentCreated, "New comment on: "+task.Title, comment.Body)
	return comment, nil
}

// UpdateComment edits a comment. Allowed for the author, or for a planner of
// the task's owning tenant.
func (s *Service) UpdateComment(ctx context.Context, p access.Principal, id domain.CommentID, body string) (*models.Comment, error) {
	comment, err := s.authorizeComment(ctx, p, id)
	if err != nil {
		return nil, err
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "comment body is required")
	}
	comment.Body = body
	comment.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.UpdateComment(ctx, comment); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update comment")
	}
	return comment, nil
}

func (s *Service) DeleteComment(ctx context.Context, p access.Principal, id domain.CommentID) error {
	if _, err := s.authorizeComment(ctx, p, id); err != nil {
		return err
	}
	if err := s.store.DeleteComment(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "comment not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete comment")
	}
	return nil
}

// authorizeTask loads the task, re-derives ownership from the stored profile,
// and runs the guard.
func (s *Service) authorizeTask(ctx context.Context, p access.Principal, id domain.TaskID, action access.Action) (*models.Task, *clientmodels.ClientProfile, error) {
	task, err := s.store.FindTaskByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "task not found")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load task")
	}
	profile, err := s.authorizeProfile(ctx, p, task.ClientProfileID, action)
	if err != nil {
		return nil, nil, err
	}
	return task, profile, nil
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

// authorizeComment applies the comment edit rule: author, or a planner of the
// owning tenant. Both still need at least read access to the task.
func (s *Service) authorizeComment(ctx context.Context, p access.Principal, id domain.CommentID) (*models.Comment, error) {
	comment, err := s.store.FindCommentByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "comment not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load comment")
	}

	_, profile, err := s.authorizeTask(ctx, p, comment.TaskID, access.ActionRead)
	if err != nil {
		return nil, err
	}

	if comment.AuthorID == p.UserID {
		return comment, nil
	}
	if p.Role == access.RoleSuperadmin {
		return comment, nil
	}
	if p.Role == access.RoleTenant && p.TenantID == profile.TenantID {
		return comment, nil
	}
	return nil, dErrors.New(dErrors.CodeForbidden, "only the author or a planner of the owning tenant may edit a comment")
}

func (s *Service) publish(ctx context.Context, p access.Principal, profile *clientmodels.ClientProfile, kind notifmodels.Kind, title, body string) {
	if s.events == nil {
		return
	}
	s.events.Enqueue(ctx, notifmodels.Event{
		Kind:            kind,
		ActorID:         p.UserID,
		TenantID:        profile.TenantID,
		ClientProfileID: profile.ID,
		Title:           title,
		Body:            body,
		OccurredAt:      requestcontext.Now(ctx),
	})
}
