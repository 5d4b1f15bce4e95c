//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"vowline/internal/tenant/models"
	"vowline/internal/tenant/store"
	"vowline/pkg/domain"
	"vowline/pkg/platform/sentinel"
	"vowline/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "tenants")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newTenant(name string) *models.Tenant {
	tenant, err := models.NewTenant(domain.TenantID(uuid.New()), name, time.Now())
	s.Require().NoError(err)
	return tenant
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	tenant := s.newTenant("Evergreen Events")
	s.Require().NoError(tenant.ApplyBranding(models.Branding{
		PrimaryColor: "#aabbcc",
		Tagline:      "Forever starts here",
	}, time.Now()))
	s.Require().NoError(s.store.CreateIfNameAvailable(ctx, tenant))

	found, err := s.store.FindByID(ctx, tenant.ID)
	s.Require().NoError(err)
	s.Equal(tenant.Name, found.Name)
	s.Equal("#aabbcc", found.Branding.PrimaryColor)
	s.Equal("Forever starts here", found.Branding.Tagline)
}

func (s *PostgresStoreSuite) TestNameUniquenessIsCaseInsensitive() {
	ctx := context.Background()
	s.Require().NoError(s.store.CreateIfNameAvailable(ctx, s.newTenant("Evergreen Events")))

	err := s.store.CreateIfNameAvailable(ctx, s.newTenant("EVERGREEN EVENTS"))
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestUpdatePersistsStatus() {
	ctx := context.Background()
	tenant := s.newTenant("Evergreen Events")
	s.Require().NoError(s.store.CreateIfNameAvailable(ctx, tenant))

	s.Require().NoError(tenant.Suspend(time.Now()))
	s.Require().NoError(s.store.Update(ctx, tenant))

	suspended, err := s.store.TenantSuspended(ctx, tenant.ID)
	s.Require().NoError(err)
	s.True(suspended)

	exists, err := s.store.TenantExists(ctx, tenant.ID)
	s.Require().NoError(err)
	s.True(exists)

	s.Require().NoError(tenant.Deactivate(time.Now()))
	s.Require().NoError(s.store.Update(ctx, tenant))

	exists, err = s.store.TenantExists(ctx, tenant.ID)
	s.Require().NoError(err)
	s.False(exists)
}

func (s *PostgresStoreSuite) TestUnknownTenant() {
	ctx := context.Background()

	_, err := s.store.FindByID(ctx, domain.TenantID(uuid.New()))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	suspended, err := s.store.TenantSuspended(ctx, domain.TenantID(uuid.New()))
	s.Require().NoError(err)
	s.True(suspended)
}
