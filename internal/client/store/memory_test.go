package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"vowline/internal/access"
	"vowline/internal/client/models"
	"vowline/pkg/domain"
	"vowline/pkg/platform/sentinel"
)

type ClientStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestClientStoreSuite(t *testing.T) {
	suite.Run(t, new(ClientStoreSuite))
}

func (s *ClientStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *ClientStoreSuite) newProfile(tenantID domain.TenantID) *models.ClientProfile {
	profile, err := models.NewClientProfile(domain.ClientProfileID(uuid.New()), tenantID, "Avery", "Morgan", time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateProfile(s.ctx, profile))
	return profile
}

func (s *ClientStoreSuite) grant(profileID domain.ClientProfileID, tenantID domain.TenantID) {
	err := s.store.CreateAccess(s.ctx, &models.TenantAccess{
		ID:              uuid.New(),
		ClientProfileID: profileID,
		TenantID:        tenantID,
		CreatedBy:       domain.UserID(uuid.New()),
		CreatedAt:       time.Now(),
	})
	s.Require().NoError(err)
}

func (s *ClientStoreSuite) TestProfileCRUD() {
	tenantID := domain.TenantID(uuid.New())

	s.Run("creates and finds profile", func() {
		profile := s.newProfile(tenantID)
		found, err := s.store.FindProfileByID(s.ctx, profile.ID)
		s.Require().NoError(err)
		s.Equal("Avery", found.PartnerOne)
		s.Equal(tenantID, found.TenantID)
	})

	s.Run("update of unknown profile returns not found", func() {
		profile, err := models.NewClientProfile(domain.ClientProfileID(uuid.New()), tenantID, "Nobody", "", time.Now())
		s.Require().NoError(err)
		s.Require().ErrorIs(s.store.UpdateProfile(s.ctx, profile), sentinel.ErrNotFound)
	})
}

func (s *ClientStoreSuite) TestListProfiles() {
	owner := domain.TenantID(uuid.New())
	other := domain.TenantID(uuid.New())
	owned := s.newProfile(owner)
	foreign := s.newProfile(other)

	s.Run("tenant scope sees owned profiles only", func() {
		profiles, err := s.store.ListProfiles(s.ctx, access.Scope{TenantIDs: []domain.TenantID{owner}})
		s.Require().NoError(err)
		s.Require().Len(profiles, 1)
		s.Equal(owned.ID, profiles[0].ID)
	})

	s.Run("shared profile becomes visible to the granted tenant", func() {
		s.grant(foreign.ID, owner)
		profiles, err := s.store.ListProfiles(s.ctx, access.Scope{TenantIDs: []domain.TenantID{owner}})
		s.Require().NoError(err)
		s.Len(profiles, 2)
	})

	s.Run("client scope pins to one profile", func() {
		profiles, err := s.store.ListProfiles(s.ctx, access.Scope{
			TenantIDs:       []domain.TenantID{other},
			ClientProfileID: foreign.ID,
		})
		s.Require().NoError(err)
		s.Require().Len(profiles, 1)
		s.Equal(foreign.ID, profiles[0].ID)
	})

	s.Run("empty scope matches nothing", func() {
		profiles, err := s.store.ListProfiles(s.ctx, access.Scope{})
		s.Require().NoError(err)
		s.Empty(profiles)
	})
}

func (s *ClientStoreSuite) TestAccessGrants() {
	owner := domain.TenantID(uuid.New())
	shared := domain.TenantID(uuid.New())
	profile := s.newProfile(owner)

	s.Run("duplicate grant conflicts", func() {
		s.grant(profile.ID, shared)
		err := s.store.CreateAccess(s.ctx, &models.TenantAccess{
			ID:              uuid.New(),
			ClientProfileID: profile.ID,
			TenantID:        shared,
		})
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("revoke removes exactly the matching row", func() {
		keep := domain.TenantID(uuid.New())
		s.grant(profile.ID, keep)

		s.Require().NoError(s.store.DeleteAccess(s.ctx, profile.ID, shared))

		ids, err := s.store.GrantedTenantIDs(s.ctx, profile.ID)
		s.Require().NoError(err)
		s.Equal([]domain.TenantID{keep}, ids)
	})

	s.Run("revoking a missing grant returns not found", func() {
		s.Require().ErrorIs(s.store.DeleteAccess(s.ctx, profile.ID, shared), sentinel.ErrNotFound)
	})
}

func (s *ClientStoreSuite) TestProfileOwner() {
	owner := domain.TenantID(uuid.New())
	profile := s.newProfile(owner)

	got, err := s.store.ProfileOwner(s.ctx, profile.ID)
	s.Require().NoError(err)
	s.Equal(owner, got)

	_, err = s.store.ProfileOwner(s.ctx, domain.ClientProfileID(uuid.New()))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
