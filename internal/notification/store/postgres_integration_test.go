//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"vowline/internal/access"
	identitymodels "vowline/internal/identity/models"
	identitystore "vowline/internal/identity/store"
	"vowline/internal/notification/models"
	"vowline/internal/notification/store"
	tenantmodels "vowline/internal/tenant/models"
	tenantstore "vowline/internal/tenant/store"
	"vowline/pkg/domain"
	"vowline/pkg/platform/sentinel"
	"vowline/pkg/testutil/containers"
)

type NotificationPostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
	tenants  *tenantstore.Postgres
	users    *identitystore.UserPostgres

	tenantID domain.TenantID
	aliceID  domain.UserID
	bobID    domain.UserID
}

func TestNotificationPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(NotificationPostgresSuite))
}

func (s *NotificationPostgresSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.tenants = tenantstore.NewPostgres(s.postgres.DB)
	s.users = identitystore.NewUserPostgres(s.postgres.DB)
}

func (s *NotificationPostgresSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "tenants", "users", "notifications", "notification_preferences")
	s.Require().NoError(err)

	tenant, err := tenantmodels.NewTenant(domain.TenantID(uuid.New()), "Evergreen Events", time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.tenants.CreateIfNameAvailable(ctx, tenant))
	s.tenantID = tenant.ID

	s.aliceID = s.newPlanner()
	s.bobID = s.newPlanner()
}

func (s *NotificationPostgresSuite) newPlanner() domain.UserID {
	user, err := identitymodels.NewUser(
		domain.UserID(uuid.New()),
		uuid.NewString()+"@example.com",
		access.RoleTenant,
		"hash",
		s.tenantID,
		domain.ClientProfileID{},
		time.Now(),
	)
	s.Require().NoError(err)
	s.Require().NoError(s.users.Create(context.Background(), user))
	return user.ID
}

func (s *NotificationPostgresSuite) notify(userID, actorID domain.UserID, title string) *models.Notification {
	n := &models.Notification{
		ID:        domain.NotificationID(uuid.New()),
		UserID:    userID,
		TenantID:  s.tenantID,
		ActorID:   actorID,
		Kind:      models.KindTaskCreated,
		Title:     title,
		CreatedAt: time.Now(),
	}
	s.Require().NoError(s.store.Create(context.Background(), n))
	return n
}

func (s *NotificationPostgresSuite) TestRoundTrip() {
	ctx := context.Background()
	n := s.notify(s.aliceID, s.bobID, "New task: Book the venue")

	found, err := s.store.FindByID(ctx, n.ID)
	s.Require().NoError(err)
	s.Equal(s.aliceID, found.UserID)
	s.Equal(s.bobID, found.ActorID)
	s.Equal(models.KindTaskCreated, found.Kind)
	s.Equal("New task: Book the venue", found.Title)
	s.False(found.Read)
}

func (s *NotificationPostgresSuite) TestInboxScopedToUser() {
	ctx := context.Background()
	s.notify(s.aliceID, s.bobID, "first")
	s.notify(s.aliceID, s.bobID, "second")
	s.notify(s.bobID, s.aliceID, "other inbox")

	list, err := s.store.ListByUser(ctx, s.aliceID)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	for _, n := range list {
		s.Equal(s.aliceID, n.UserID)
	}
}

func (s *NotificationPostgresSuite) TestReadTracking() {
	ctx := context.Background()
	first := s.notify(s.aliceID, s.bobID, "first")
	s.notify(s.aliceID, s.bobID, "second")
	s.notify(s.bobID, s.aliceID, "other inbox")

	count, err := s.store.CountUnread(ctx, s.aliceID)
	s.Require().NoError(err)
	s.Equal(2, count)

	s.Require().NoError(s.store.MarkRead(ctx, first.ID, true))
	count, err = s.store.CountUnread(ctx, s.aliceID)
	s.Require().NoError(err)
	s.Equal(1, count)

	marked, err := s.store.MarkAllRead(ctx, s.aliceID)
	s.Require().NoError(err)
	s.Equal(1, marked)

	bobCount, err := s.store.CountUnread(ctx, s.bobID)
	s.Require().NoError(err)
	s.Equal(1, bobCount)
}

func (s *NotificationPostgresSuite) TestDelete() {
	ctx := context.Background()
	n := s.notify(s.aliceID, s.bobID, "first")

	s.Require().NoError(s.store.Delete(ctx, n.ID))
	_, err := s.store.FindByID(ctx, n.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
	s.Require().ErrorIs(s.store.Delete(ctx, n.ID), sentinel.ErrNotFound)
	s.Require().ErrorIs(s.store.MarkRead(ctx, n.ID, true), sentinel.ErrNotFound)
}

func (s *NotificationPostgresSuite) TestPreferencesUpsert() {
	ctx := context.Background()

	_, err := s.store.FindPreferences(ctx, s.aliceID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	prefs := models.DefaultPreferences(s.aliceID)
	prefs.EmailOnComment = false
	prefs.UpdatedAt = time.Now()
	s.Require().NoError(s.store.SavePreferences(ctx, &prefs))

	found, err := s.store.FindPreferences(ctx, s.aliceID)
	s.Require().NoError(err)
	s.True(found.EmailOnTask)
	s.False(found.EmailOnComment)
	s.False(found.UpdatedAt.IsZero())

	prefs.EmailOnTask = false
	prefs.UpdatedAt = time.Now()
	s.Require().NoError(s.store.SavePreferences(ctx, &prefs))

	again, err := s.store.FindPreferences(ctx, s.aliceID)
	s.Require().NoError(err)
	s.False(again.EmailOnTask)
	s.False(again.EmailOnComment)
	s.True(again.EmailOnNote)
	s.True(again.UpdatedAt.After(found.UpdatedAt) || again.UpdatedAt.Equal(found.UpdatedAt))
}
