package models

import (
	"strings"
	"time"

	"vowline/internal/access"
	"vowline/pkg/domain"
	dErrors "vowline/pkg/domain-errors"
)

// UserStatus is the account lifecycle state.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// User is an account on the platform.
//
// Invariants:
//   - Role CLIENT implies non-nil TenantID and ClientProfileID
//   - Role TENANT implies non-nil TenantID
//   - Role SUPERADMIN carries neither
//   - Email is stored lowercased and unique case-insensitively
type User struct {
	ID                  domain.UserID          `json:"id"`
	TenantID            domain.TenantID        `json:"tenant_id,omitempty"`
	ClientProfileID     domain.ClientProfileID `json:"client_profile_id,omitempty"`
	Email               string                 `json:"email"`
	Role                access.Role            `json:"role"`
	PasswordHash        string                 `json:"-"`
	Status              UserStatus             `json:"status"`
	FailedLoginAttempts int                    `json:"-"`
	LockedUntil         *time.Time             `json:"-"`
	ResetTokenHash      string                 `json:"-"`
	ResetTokenExpiresAt *time.Time             `json:"-"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

func NewUser(id domain.UserID, email string, role access.Role, passwordHash string, tenantID domain.TenantID, clientProfileID domain.ClientProfileID, now time.Time) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "a valid email is required")
	}
	u := &User{
		ID:              id,
		TenantID:        tenantID,
		ClientProfileID: clientProfileID,
		Email:           email,
		Role:            role,
		PasswordHash:    passwordHash,
		Status:          UserStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := u.validateRole(); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) validateRole() error {
	switch u.Role {
	case access.RoleSuperadmin:
		if !u.TenantID.IsNil() || !u.ClientProfileID.IsNil() {
			return dErrors.New(dErrors.CodeInvariantViolation, "superadmin accounts are not tenant-scoped")
		}
	case access.RoleTenant:
		if u.TenantID.IsNil() {
			return dErrors.New(dErrors.CodeInvariantViolation, "tenant accounts require a tenant")
		}
		if !u.ClientProfileID.IsNil() {
			return dErrors.New(dErrors.CodeInvariantViolation, "tenant accounts are not client-scoped")
		}
	case access.RoleClient:
		if u.TenantID.IsNil() || u.ClientProfileID.IsNil() {
			return dErrors.New(dErrors.CodeInvariantViolation, "client accounts require a tenant and client profile")
		}
	default:
		return dErrors.New(dErrors.CodeInvariantViolation, "unknown role")
	}
	return nil
}

// IsLockedOut reports whether failed logins have locked the account.
func (u *User) IsLockedOut(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// RecordLoginFailure bumps the failure counter and locks the account once the
// threshold is reached.
func (u *User) RecordLoginFailure(maxFailures int, lockout time.Duration, now time.Time) {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= maxFailures {
		until := now.Add(lockout)
		u.LockedUntil = &until
	}
	u.UpdatedAt = now
}

// RecordLoginSuccess clears the failure counter and any lock.
func (u *User) RecordLoginSuccess(now time.Time) {
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.UpdatedAt = now
}

// SetResetToken stores the hashed reset token with its expiry.
func (u *User) SetResetToken(tokenHash string, expiresAt time.Time, now time.Time) {
	u.ResetTokenHash = tokenHash
	u.ResetTokenExpiresAt = &expiresAt
	u.UpdatedAt = now
}

// CompleteReset installs the new password hash and clears the reset token
// together with all lockout state in one mutation.
func (u *User) CompleteReset(passwordHash string, now time.Time) {
	u.PasswordHash = passwordHash
	u.ResetTokenHash = ""
	u.ResetTokenExpiresAt = nil
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.UpdatedAt = now
}

// ResetTokenValid reports whether the stored token matches and has not
// expired.
func (u *User) ResetTokenValid(tokenHash string, now time.Time) bool {
	if u.ResetTokenHash == "" || u.ResetTokenExpiresAt == nil {
		return false
	}
	if now.After(*u.ResetTokenExpiresAt) {
		return false
	}
	return u.ResetTokenHash == tokenHash
}
