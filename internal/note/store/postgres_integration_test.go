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
	"vowline/internal/note/models"
	"vowline/internal/note/store"
	tenantmodels "vowline/internal/tenant/models"
	tenantstore "vowline/internal/tenant/store"
	"vowline/pkg/domain"
	"vowline/pkg/platform/sentinel"
	"vowline/pkg/testutil/containers"
)

type NotePostgresSuite struct {
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

func TestNotePostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(NotePostgresSuite))
}

func (s *NotePostgresSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.tenants = tenantstore.NewPostgres(s.postgres.DB)
	s.clients = clientstore.NewPostgres(s.postgres.DB)
	s.users = identitystore.NewUserPostgres(s.postgres.DB)
}

func (s *NotePostgresSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "tenants", "client_profiles", "users", "meeting_notes")
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
		access.RoleTenant,
		"hash",
		tenant.ID,
		domain.ClientProfileID{},
		time.Now(),
	)
	s.Require().NoError(err)
	s.Require().NoError(s.users.Create(ctx, author))
	s.authorID = author.ID
}

func (s *NotePostgresSuite) newNote(title string) *models.Note {
	note, err := models.NewNote(domain.NoteID(uuid.New()), s.tenantID, s.profileID, title, "body", s.authorID, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(context.Background(), note))
	return note
}

func (s *NotePostgresSuite) TestRoundTrip() {
	ctx := context.Background()
	meeting := time.Date(2026, time.June, 12, 0, 0, 0, 0, time.UTC)
	note := s.newNote("Tasting debrief")
	note.MeetingDate = &meeting
	s.Require().NoError(s.store.Update(ctx, note))

	found, err := s.store.FindByID(ctx, note.ID)
	s.Require().NoError(err)
	s.Equal("Tasting debrief", found.Title)
	s.Equal(s.tenantID, found.TenantID)
	s.Equal(s.profileID, found.ClientProfileID)
	s.Equal(s.authorID, found.CreatedBy)
	s.Require().NotNil(found.MeetingDate)
	s.True(found.MeetingDate.Equal(meeting))
}

func (s *NotePostgresSuite) TestUpdate() {
	ctx := context.Background()
	note := s.newNote("Tasting debrief")

	note.Title = "Tasting debrief (revised)"
	note.Body = "Go with the almond cake"
	note.UpdatedAt = time.Now()
	s.Require().NoError(s.store.Update(ctx, note))

	found, err := s.store.FindByID(ctx, note.ID)
	s.Require().NoError(err)
	s.Equal("Tasting debrief (revised)", found.Title)
	s.Equal("Go with the almond cake", found.Body)
	s.Nil(found.MeetingDate)
}

func (s *NotePostgresSuite) TestListByProfiles() {
	ctx := context.Background()
	s.newNote("Tasting debrief")
	s.newNote("Venue walkthrough")

	notes, err := s.store.ListByProfiles(ctx, []domain.ClientProfileID{s.profileID})
	s.Require().NoError(err)
	s.Len(notes, 2)

	none, err := s.store.ListByProfiles(ctx, []domain.ClientProfileID{domain.ClientProfileID(uuid.New())})
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *NotePostgresSuite) TestDelete() {
	ctx := context.Background()
	note := s.newNote("Tasting debrief")

	s.Require().NoError(s.store.Delete(ctx, note.ID))
	_, err := s.store.FindByID(ctx, note.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
	s.Require().ErrorIs(s.store.Delete(ctx, note.ID), sentinel.ErrNotFound)
}
