package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vowline/internal/access"
	"vowline/pkg/domain"
)

func newPlanner(t *testing.T) *User {
	t.Helper()
	user, err := NewUser(
		domain.UserID(uuid.New()),
		"planner@example.com",
		access.RoleTenant,
		"hash",
		domain.TenantID(uuid.New()),
		domain.ClientProfileID(uuid.Nil),
		time.Now(),
	)
	require.NoError(t, err)
	return user
}

func TestNewUserRoleInvariants(t *testing.T) {
	tenantID := domain.TenantID(uuid.New())
	profileID := domain.ClientProfileID(uuid.New())
	now := time.Now()

	t.Run("superadmin carries no scoping", func(t *testing.T) {
		_, err := NewUser(domain.UserID(uuid.New()), "admin@example.com", access.RoleSuperadmin, "hash",
			tenantID, domain.ClientProfileID(uuid.Nil), now)
		assert.Error(t, err)
	})

	t.Run("tenant requires a tenant", func(t *testing.T) {
		_, err := NewUser(domain.UserID(uuid.New()), "planner@example.com", access.RoleTenant, "hash",
			domain.TenantID(uuid.Nil), domain.ClientProfileID(uuid.Nil), now)
		assert.Error(t, err)
	})

	t.Run("client requires tenant and profile", func(t *testing.T) {
		_, err := NewUser(domain.UserID(uuid.New()), "couple@example.com", access.RoleClient, "hash",
			tenantID, domain.ClientProfileID(uuid.Nil), now)
		assert.Error(t, err)

		user, err := NewUser(domain.UserID(uuid.New()), "couple@example.com", access.RoleClient, "hash",
			tenantID, profileID, now)
		require.NoError(t, err)
		assert.Equal(t, profileID, user.ClientProfileID)
	})

	t.Run("email is lowercased", func(t *testing.T) {
		user, err := NewUser(domain.UserID(uuid.New()), "  Planner@Example.COM ", access.RoleTenant, "hash",
			tenantID, domain.ClientProfileID(uuid.Nil), now)
		require.NoError(t, err)
		assert.Equal(t, "planner@example.com", user.Email)
	})
}

func TestLockout(t *testing.T) {
	const maxFailures = 3
	lockout := 15 * time.Minute
	now := time.Now()

	t.Run("locks after max consecutive failures", func(t *testing.T) {
		user := newPlanner(t)
		for i := 0; i < maxFailures-1; i++ {
			user.RecordLoginFailure(maxFailures, lockout, now)
			assert.False(t, user.IsLockedOut(now))
		}
		user.RecordLoginFailure(maxFailures, lockout, now)
		assert.True(t, user.IsLockedOut(now))
		assert.False(t, user.IsLockedOut(now.Add(lockout+time.Second)))
	})

	t.Run("success clears the counter", func(t *testing.T) {
		user := newPlanner(t)
		user.RecordLoginFailure(maxFailures, lockout, now)
		user.RecordLoginFailure(maxFailures, lockout, now)
		user.RecordLoginSuccess(now)
		assert.Zero(t, user.FailedLoginAttempts)
		assert.Nil(t, user.LockedUntil)
	})
}

func TestResetToken(t *testing.T) {
	now := time.Now()

	t.Run("valid until expiry", func(t *testing.T) {
		user := newPlanner(t)
		user.SetResetToken("tokenhash", now.Add(time.Hour), now)
		assert.True(t, user.ResetTokenValid("tokenhash", now))
		assert.False(t, user.ResetTokenValid("tokenhash", now.Add(2*time.Hour)))
		assert.False(t, user.ResetTokenValid("otherhash", now))
	})

	t.Run("complete reset clears token and lockout in one mutation", func(t *testing.T) {
		user := newPlanner(t)
		user.RecordLoginFailure(1, time.Hour, now)
		require.True(t, user.IsLockedOut(now))
		user.SetResetToken("tokenhash", now.Add(time.Hour), now)

		user.CompleteReset("newhash", now)

		assert.Equal(t, "newhash", user.PasswordHash)
		assert.Empty(t, user.ResetTokenHash)
		assert.Nil(t, user.ResetTokenExpiresAt)
		assert.Zero(t, user.FailedLoginAttempts)
		assert.Nil(t, user.LockedUntil)
	})
}
