package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vowline/internal/access"
	clientmodels "vowline/internal/client/models"
	clientstore "vowline/internal/client/store"
	notifmodels "vowline/internal/notification/models"
	"vowline/internal/task/models"
	"vowline/internal/task/store"
	"vowline/pkg/domain"
	dErrors "vowline/pkg/domain-errors"
)

type capturedEvents struct {
	events []notifmodels.Event
}

func (c *capturedEvents) Enqueue(_ context.Context, event notifmodels.Event) {
	c.events = append(c.events, event)
}

type fixture struct {
	svc     *Service
	tasks   *store.InMemory
	clients *clientstore.InMemory
	events  *capturedEvents
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		tasks:   store.NewInMemory(),
		clients: clientstore.NewInMemory(),
		events:  &capturedEvents{},
	}
	f.svc = New(f.tasks, f.clients, WithEvents(f.events))
	return f
}

func (f *fixture) seedProfile(t *testing.T, tenantID domain.TenantID) *clientmodels.ClientProfile {
	t.Helper()
	profile, err := clientmodels.NewClientProfile(
		domain.ClientProfileID(uuid.New()), tenantID, "Avery", "Morgan", time.Now())
	require.NoError(t, err)
	require.NoError(t, f.clients.CreateProfile(context.Background(), profile))
	return profile
}

func (f *fixture) share(t *testing.T, profile *clientmodels.ClientProfile, tenantID domain.TenantID) {
	t.Helper()
	err := f.clients.CreateAccess(context.Background(), &clientmodels.TenantAccess{
		ID:              uuid.New(),
		ClientProfileID: profile.ID,
		TenantID:        tenantID,
		CreatedBy:       domain.UserID(uuid.New()),
		CreatedAt:       time.Now(),
	})
	require.NoError(t, err)
}

func planner(tenantID domain.TenantID) access.Principal {
	return access.Principal{UserID: domain.UserID(uuid.New()), Role: access.RoleTenant, TenantID: tenantID, Active: true}
}

func couple(profile *clientmodels.ClientProfile, grants ...domain.TenantID) access.Principal {
	return access.Principal{
		UserID:          domain.UserID(uuid.New()),
		Role:            access.RoleClient,
		TenantID:        profile.TenantID,
		ClientProfileID: profile.ID,
		Active:          true,
		Grants:          grants,
	}
}

func TestCreateTask(t *testing.T) {
	owner := domain.TenantID(uuid.New())

	t.Run("tenant column is always the owning tenant", func(t *testing.T) {
		f := newFixture(t)
		profile := f.seedProfile(t, owner)

		task, err := f.svc.CreateTask(context.Background(), planner(owner), CreateTaskInput{
			ClientProfileID: profile.ID,
			Title:           "Book the venue",
		})
		require.NoError(t, err)
		assert.Equal(t, owner, task.TenantID)
		assert.Equal(t, models.TaskStatusTodo, task.Status)

		require.Len(t, f.events.events, 1)
		assert.Equal(t, notifmodels.KindTaskCreated, f.events.events[0].Kind)
	})

	t.Run("shared tenant cannot create", func(t *testing.T) {
		f := newFixture(t)
		profile := f.seedProfile(t, owner)
		shared := domain.TenantID(uuid.New())
		f.share(t, profile, shared)

		_, err := f.svc.CreateTask(context.Background(), planner(shared), CreateTaskInput{
			ClientProfileID: profile.ID,
			Title:           "Sneaky task",
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("couple files tasks on their own profile", func(t *testing.T) {
		f := newFixture(t)
		profile := f.seedProfile(t, owner)

		_, err := f.svc.CreateTask(context.Background(), couple(profile), CreateTaskInput{
			ClientProfileID: profile.ID,
			Title:           "Pick the florist",
		})
		assert.NoError(t, err)
	})

	t.Run("title required", func(t *testing.T) {
		f := newFixture(t)
		profile := f.seedProfile(t, owner)
		_, err := f.svc.CreateTask(context.Background(), planner(owner), CreateTaskInput{ClientProfileID: profile.ID})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestListTasksVisibility(t *testing.T) {
	owner := domain.TenantID(uuid.New())
	shared := domain.TenantID(uuid.New())
	stranger := domain.TenantID(uuid.New())

	f := newFixture(t)
	profile := f.seedProfile(t, owner)
	f.share(t, profile, shared)

	otherProfile := f.seedProfile(t, stranger)

	_, err := f.svc.CreateTask(context.Background(), planner(owner), CreateTaskInput{
		ClientProfileID: profile.ID, Title: "Book the venue"})
	require.NoError(t, err)
	_, err = f.svc.CreateTask(context.Background(), planner(stranger), CreateTaskInput{
		ClientProfileID: otherProfile.ID, Title: "Unrelated work"})
	require.NoError(t, err)

	t.Run("owning tenant sees its tasks", func(t *testing.T) {
		tasks, err := f.svc.ListTasks(context.Background(), planner(owner))
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "Book the venue", tasks[0].Title)
	})

	t.Run("shared tenant sees shared profile tasks", func(t *testing.T) {
		tasks, err := f.svc.ListTasks(context.Background(), planner(shared))
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "Book the venue", tasks[0].Title)
	})

	t.Run("unrelated tenant sees nothing of it", func(t *testing.T) {
		tasks, err := f.svc.ListTasks(context.Background(), planner(domain.TenantID(uuid.New())))
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("couple sees only their own profile's tasks", func(t *testing.T) {
		tasks, err := f.svc.ListTasks(context.Background(), couple(profile, shared))
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, profile.ID, tasks[0].ClientProfileID)
	})

	t.Run("suspended tenant principal denied", func(t *testing.T) {
		p := planner(owner)
		p.TenantSuspended = true
		_, err := f.svc.ListTasks(context.Background(), p)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func TestUpdateTask(t *testing.T) {
	owner := domain.TenantID(uuid.New())
	f := newFixture(t)
	profile := f.seedProfile(t, owner)
	task, err := f.svc.CreateTask(context.Background(), planner(owner), CreateTaskInput{
		ClientProfileID: profile.ID, Title: "Book the venue"})
	require.NoError(t, err)

	t.Run("status transitions persist and notify", func(t *testing.T) {
		before := len(f.events.events)
		updated, err := f.svc.UpdateTask(context.Background(), planner(owner), task.ID, UpdateTaskInput{
			Title:  "Book the venue",
			Status: models.TaskStatusDone,
		})
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusDone, updated.Status)
		assert.Len(t, f.events.events, before+1)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		_, err := f.svc.UpdateTask(context.Background(), planner(owner), task.ID, UpdateTaskInput{
			Title:  "Book the venue",
			Status: models.TaskStatus("paused"),
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("shared tenant cannot update", func(t *testing.T) {
		shared := domain.TenantID(uuid.New())
		f.share(t, profile, shared)
		_, err := f.svc.UpdateTask(context.Background(), planner(shared), task.ID, UpdateTaskInput{
			Title:  "Hijack",
			Status: models.TaskStatusTodo,
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func TestComments(t *testing.T) {
	owner := domain.TenantID(uuid.New())
	shared := domain.TenantID(uuid.New())

	seed := func(t *testing.T) (*fixture, *clientmodels.ClientProfile, *models.Task) {
		f := newFixture(t)
		profile := f.seedProfile(t, owner)
		f.share(t, profile, shared)
		task, err := f.svc.CreateTask(context.Background(), planner(owner), CreateTaskInput{
			ClientProfileID: profile.ID, Title: "Book the venue"})
		require.NoError(t, err)
		return f, profile, task
	}

	t.Run("author edits their own comment", func(t *testing.T) {
		f, profile, task := seed(t)
		author := couple(profile)
		comment, err := f.svc.CreateComment(context.Background(), author, task.ID, "Looks good")
		require.NoError(t, err)
		assert.Equal(t, owner, comment.TenantID)
		assert.Equal(t, profile.ID, comment.ClientProfileID)

		updated, err := f.svc.UpdateComment(context.Background(), author, comment.ID, "Looks great")
		require.NoError(t, err)
		assert.Equal(t, "Looks great", updated.Body)
	})

	t.Run("owning tenant planner moderates any comment", func(t *testing.T) {
		f, profile, task := seed(t)
		comment, err := f.svc.CreateComment(context.Background(), couple(profile), task.ID, "Looks good")
		require.NoError(t, err)

		require.NoError(t, f.svc.DeleteComment(context.Background(), planner(owner), comment.ID))
		_, err = f.svc.UpdateComment(context.Background(), planner(owner), comment.ID, "gone")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("another couple user cannot edit", func(t *testing.T) {
		f, profile, task := seed(t)
		comment, err := f.svc.CreateComment(context.Background(), couple(profile), task.ID, "Looks good")
		require.NoError(t, err)

		_, err = f.svc.UpdateComment(context.Background(), couple(profile), comment.ID, "Tampered")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("read-only shared tenant cannot comment", func(t *testing.T) {
		f, _, task := seed(t)
		_, err := f.svc.CreateComment(context.Background(), planner(shared), task.ID, "Drive-by")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))

		// But it can read the thread.
		_, err = f.svc.ListComments(context.Background(), planner(shared), task.ID)
		assert.NoError(t, err)
	})

	t.Run("deleting a task removes its thread", func(t *testing.T) {
		f, profile, task := seed(t)
		_, err := f.svc.CreateComment(context.Background(), couple(profile), task.ID, "Looks good")
		require.NoError(t, err)

		require.NoError(t, f.svc.DeleteTask(context.Background(), planner(owner), task.ID))
		_, err = f.svc.ListComments(context.Background(), planner(owner), task.ID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
