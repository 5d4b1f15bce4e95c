//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"vowline/internal/access"
	clientmodels "vowline/internal/client/models"
	clientstore "vowline/internal/client/store"
	identitymodels "vowline/internal/identity/models"
	identitystore "vowline/internal/identity/store"
	"vowline/internal/task/models"
	"vowline/internal/task/store"
	tenantmodels "vowline/internal/tenant/models"
	tenantstore "vowline/internal/tenant/store"
	"vowline/pkg/domain"
	"vowline/pkg/platform/sentinel"
	"vowline/pkg/testutil/containers"
)

type TaskPostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
	tenants  *tenantstore.Postgres
	clients  *clientstore.Postgres
	users    *identitystore.UserPostgres

	tenantID  domain.TenantID
	profileID domain.ClientProfileID
	authorID  domain.UserID
}

func TestTaskPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(TaskPostgresSuite))
}

func (s *TaskPostgresSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.tenants = tenantstore.NewPostgres(s.postgres.DB)
	s.clients = clientstore.NewPostgres(s.postgres.DB)
	s.users = identitystore.NewUserPostgres(s.postgres.DB)
}

func (s *TaskPostgresSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "tenants", "client_profiles", "users", "tasks", "task_comments")
	s.Require().NoError(err)

	tenant, err := tenantmodels.NewTenant(domain.TenantID(uuid.New()), "Evergreen Events", time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.tenants.CreateIfNameAvailable(ctx, tenant))
	s.tenantID = tenant.ID

	profile, err := clientmodels.NewClientProfile(domain.ClientProfileID(uuid.New()), tenant.ID, "Avery", "Morgan", time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.clients.CreateProfile(ctx, profile))
	s.profileID = profile.ID

	author, err := identitymodels.NewUser(
		domain.UserID(uuid.New()),
		uuid.NewString()+"@example.com",
		access.RoleClient,
		"hash",
		tenant.ID,
		profile.ID,
		time.Now(),
	)
	s.Require().NoError(err)
	s.Require().NoError(s.users.Create(ctx, author))
	s.authorID = author.ID
}

func (s *TaskPostgresSuite) newTask(title string) *models.Task {
	task, err := models.NewTask(domain.TaskID(uuid.New()), s.tenantID, s.profileID, title, s.authorID, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateTask(context.Background(), task))
	return task
}

func (s *TaskPostgresSuite) newComment(task *models.Task, body string) *models.Comment {
	comment, err := models.NewComment(domain.CommentID(uuid.New()), task, s.authorID, body, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateComment(context.Background(), comment))
	return comment
}

func (s *TaskPostgresSuite) TestTaskRoundTrip() {
	ctx := context.Background()
	task := s.newTask("Book the venue")

	found, err := s.store.FindTaskByID(ctx, task.ID)
	s.Require().NoError(err)
	s.Equal("Book the venue", found.Title)
	s.Equal(s.tenantID, found.TenantID)
	s.Equal(s.profileID, found.ClientProfileID)
	s.Equal(models.TaskStatusTodo, found.Status)

	found.Status = models.TaskStatusDone
	found.UpdatedAt = time.Now()
	s.Require().NoError(s.store.UpdateTask(ctx, found))

	again, err := s.store.FindTaskByID(ctx, task.ID)
	s.Require().NoError(err)
	s.Equal(models.TaskStatusDone, again.Status)
}

func (s *TaskPostgresSuite) TestListTasksByProfiles() {
	ctx := context.Background()
	s.newTask("Book the venue")
	s.newTask("Pick the florist")

	tasks, err := s.store.ListTasksByProfiles(ctx, []domain.ClientProfileID{s.profileID})
	s.Require().NoError(err)
	s.Len(tasks, 2)

	none, err := s.store.ListTasksByProfiles(ctx, []domain.ClientProfileID{domain.ClientProfileID(uuid.New())})
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *TaskPostgresSuite) TestCommentRoundTrip() {
	ctx := context.Background()
	task := s.newTask("Book the venue")
	comment := s.newComment(task, "Looks good")

	found, err := s.store.FindCommentByID(ctx, comment.ID)
	s.Require().NoError(err)
	s.Equal("Looks good", found.Body)
	s.Equal(task.ID, found.TaskID)
	s.Equal(s.tenantID, found.TenantID)
	s.Equal(s.profileID, found.ClientProfileID)
	s.Equal(s.authorID, found.AuthorID)

	found.Body = "Looks great"
	found.UpdatedAt = time.Now()
	s.Require().NoError(s.store.UpdateComment(ctx, found))

	comments, err := s.store.ListCommentsByTask(ctx, task.ID)
	s.Require().NoError(err)
	s.Require().Len(comments, 1)
	s.Equal("Looks great", comments[0].Body)
}

func (s *TaskPostgresSuite) TestDeleteTaskCascadesComments() {
	ctx := context.Background()
	task := s.newTask("Book the venue")
	comment := s.newComment(task, "Looks good")

	s.Require().NoError(s.store.DeleteTask(ctx, task.ID))

	_, err := s.store.FindTaskByID(ctx, task.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FindCommentByID(ctx, comment.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *TaskPostgresSuite) TestMissingRows() {
	ctx := context.Background()
	_, err := s.store.FindTaskByID(ctx, domain.TaskID(uuid.New()))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
	s.Require().ErrorIs(s.store.DeleteComment(ctx, domain.CommentID(uuid.New())), sentinel.ErrNotFound)
}
