package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"vowline/pkg/domain"
)

func newTenantPrincipal(tenantID domain.TenantID) Principal {
	return Principal{
		UserID:   domain.UserID(uuid.New()),
		Role:     RoleTenant,
		TenantID: tenantID,
		Active:   true,
	}
}

func newClientPrincipal(tenantID domain.TenantID, profileID domain.ClientProfileID, grants ...domain.TenantID) Principal {
	return Principal{
		UserID:          domain.UserID(uuid.New()),
		Role:            RoleClient,
		TenantID:        tenantID,
		ClientProfileID: profileID,
		Active:          true,
		Grants:          grants,
	}
}

func TestAuthorize_AccountState(t *testing.T) {
	tenantID := domain.TenantID(uuid.New())
	res := Resource{TenantID: tenantID, OwnerTenantID: tenantID}

	t.Run("inactive account denied", func(t *testing.T) {
		p := newTenantPrincipal(tenantID)
		p.Active = false
		d := Authorize(p, res, ActionRead)
		assert.False(t, d.Allowed)
		assert.Equal(t, DenyInactiveAccount, d.Reason)
	})

	t.Run("suspended tenant denied even for superadmin-owned records", func(t *testing.T) {
		p := newTenantPrincipal(tenantID)
		p.TenantSuspended = true
		d := Authorize(p, res, ActionRead)
		assert.False(t, d.Allowed)
		assert.Equal(t, DenySuspendedTenant, d.Reason)
	})
}

func TestAuthorize_Superadmin(t *testing.T) {
	p := Principal{UserID: domain.UserID(uuid.New()), Role: RoleSuperadmin, Active: true}
	res := Resource{
		TenantID:        domain.TenantID(uuid.New()),
		ClientProfileID: domain.ClientProfileID(uuid.New()),
		OwnerTenantID:   domain.TenantID(uuid.New()),
	}
	assert.True(t, Authorize(p, res, ActionWrite).Allowed)
}

func TestAuthorize_TenantRole(t *testing.T) {
	own := domain.TenantID(uuid.New())
	other := domain.TenantID(uuid.New())
	profile := domain.ClientProfileID(uuid.New())

	t.Run("denies records of another tenant", func(t *testing.T) {
		p := newTenantPrincipal(own)
		res := Resource{TenantID: other, ClientProfileID: profile, OwnerTenantID: other}
		d := Authorize(p, res, ActionRead)
		assert.False(t, d.Allowed)
		assert.Equal(t, DenyWrongTenant, d.Reason)
	})

	t.Run("denies when record tenant matches but profile belongs elsewhere", func(t *testing.T) {
		// Forged or stale tenant column on the record: ownership is
		// re-derived from the profile and must win.
		p := newTenantPrincipal(own)
		res := Resource{TenantID: own, ClientProfileID: profile, OwnerTenantID: other}
		d := Authorize(p, res, ActionWrite)
		assert.False(t, d.Allowed)
		assert.Equal(t, DenyWrongTenant, d.Reason)
	})

	t.Run("allows own tenant records", func(t *testing.T) {
		p := newTenantPrincipal(own)
		res := Resource{TenantID: own, ClientProfileID: profile, OwnerTenantID: own}
		assert.True(t, Authorize(p, res, ActionWrite).Allowed)
	})

	t.Run("shared profile grants read but not write", func(t *testing.T) {
		p := newTenantPrincipal(own)
		res := Resource{
			TenantID:        other,
			ClientProfileID: profile,
			OwnerTenantID:   other,
			SharedWith:      []domain.TenantID{own},
		}
		assert.True(t, Authorize(p, res, ActionRead).Allowed)

		d := Authorize(p, res, ActionWrite)
		assert.False(t, d.Allowed)
		assert.Equal(t, DenyReadOnlyGrant, d.Reason)
	})

	t.Run("tenant-level resource restricted to own tenant", func(t *testing.T) {
		p := newTenantPrincipal(own)
		assert.True(t, Authorize(p, Resource{TenantID: own, OwnerTenantID: own}, ActionWrite).Allowed)
		assert.False(t, Authorize(p, Resource{TenantID: other, OwnerTenantID: other}, ActionRead).Allowed)
	})
}

func TestAuthorize_ClientRole(t *testing.T) {
	owning := domain.TenantID(uuid.New())
	granted := domain.TenantID(uuid.New())
	stranger := domain.TenantID(uuid.New())
	profile := domain.ClientProfileID(uuid.New())

	t.Run("denies records of another couple", func(t *testing.T) {
		p := newClientPrincipal(owning, profile)
		res := Resource{
			TenantID:        owning,
			ClientProfileID: domain.ClientProfileID(uuid.New()),
			OwnerTenantID:   owning,
		}
		d := Authorize(p, res, ActionRead)
		assert.False(t, d.Allowed)
		assert.Equal(t, DenyWrongClient, d.Reason)
	})

	t.Run("denies tenants outside own plus grant set", func(t *testing.T) {
		p := newClientPrincipal(owning, profile, granted)
		res := Resource{TenantID: stranger, ClientProfileID: profile, OwnerTenantID: owning}
		d := Authorize(p, res, ActionRead)
		assert.False(t, d.Allowed)
		assert.Equal(t, DenyWrongTenant, d.Reason)
	})

	t.Run("allows owning tenant and granted tenants", func(t *testing.T) {
		p := newClientPrincipal(owning, profile, granted)
		own := Resource{TenantID: owning, ClientProfileID: profile, OwnerTenantID: owning}
		shared := Resource{TenantID: granted, ClientProfileID: profile, OwnerTenantID: owning}
		assert.True(t, Authorize(p, own, ActionWrite).Allowed)
		assert.True(t, Authorize(p, shared, ActionRead).Allowed)
	})

	t.Run("denies tenant-level resources", func(t *testing.T) {
		p := newClientPrincipal(owning, profile)
		d := Authorize(p, Resource{TenantID: owning, OwnerTenantID: owning}, ActionRead)
		assert.False(t, d.Allowed)
		assert.Equal(t, DenyWrongClient, d.Reason)
	})
}

func TestScopeFor(t *testing.T) {
	owning := domain.TenantID(uuid.New())
	granted := domain.TenantID(uuid.New())
	profile := domain.ClientProfileID(uuid.New())

	t.Run("superadmin sees everything", func(t *testing.T) {
		s := ScopeFor(Principal{Role: RoleSuperadmin, Active: true})
		assert.True(t, s.All)
		assert.True(t, s.PermitsTenant(domain.TenantID(uuid.New())))
	})

	t.Run("tenant scope is a single tenant", func(t *testing.T) {
		s := ScopeFor(newTenantPrincipal(owning))
		assert.True(t, s.PermitsTenant(owning))
		assert.False(t, s.PermitsTenant(granted))
	})

	t.Run("client scope is own tenant plus grants and own profile", func(t *testing.T) {
		s := ScopeFor(newClientPrincipal(owning, profile, granted))
		assert.True(t, s.PermitsTenant(owning))
		assert.True(t, s.PermitsTenant(granted))
		assert.False(t, s.PermitsTenant(domain.TenantID(uuid.New())))
		assert.True(t, s.PermitsClient(profile))
		assert.False(t, s.PermitsClient(domain.ClientProfileID(uuid.New())))
	})

	t.Run("tenant user without tenant id matches nothing", func(t *testing.T) {
		p := newTenantPrincipal(domain.TenantID(uuid.Nil))
		p.TenantID = domain.TenantID(uuid.Nil)
		assert.True(t, ScopeFor(p).IsEmpty())
	})
}
