package models

import (
	"regexp"
	"time"

	"vowline/pkg/domain"
	dErrors "vowline/pkg/domain-errors"
)

// TenantStatus is the lifecycle state of a wedding-planning business.
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
	TenantStatusInactive  TenantStatus = "inactive"
)

// CanTransitionTo restricts status changes to the supported edges:
// active ↔ suspended, and either → inactive. Inactive is terminal.
func (s TenantStatus) CanTransitionTo(next TenantStatus) bool {
	if s == next {
		return false
	}
	switch s {
	case TenantStatusActive:
		return next == TenantStatusSuspended || next == TenantStatusInactive
	case TenantStatusSuspended:
		return next == TenantStatusActive || next == TenantStatusInactive
	}
	return false
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Branding holds the tenant's white-label presentation fields.
type Branding struct {
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
	AccentColor    string `json:"accent_color"`
	LogoURL        string `json:"logo_url"`
	Tagline        string `json:"tagline"`
}

// Validate checks color formats and field lengths.
func (b Branding) Validate() error {
	for _, c := range []string{b.PrimaryColor, b.SecondaryColor, b.AccentColor} {
		if c != "" && !hexColor.MatchString(c) {
			return dErrors.New(dErrors.CodeInvariantViolation, "branding colors must be hex values")
		}
	}
	if len(b.Tagline) > 256 {
		return dErrors.New(dErrors.CodeInvariantViolation, "tagline must be 256 characters or less")
	}
	return nil
}

// Tenant is the aggregate root for a wedding-planning business.
//
// Invariants:
//   - Name is non-empty and at most 128 characters
//   - Status transitions follow TenantStatus.CanTransitionTo
//   - CreatedAt is immutable after construction
//
// # Suspension Invariant
//
// When a tenant is suspended or deactivated, every operation by its users
// MUST be denied, even though the user accounts themselves stay active. This
// is enforced at a single point — the access guard's Principal carries
// TenantSuspended — rather than by cascading status writes to users and
// client profiles. Reactivation therefore touches one row.
type Tenant struct {
	ID        domain.TenantID `json:"id"`
	Name      string          `json:"name"`
	Status    TenantStatus    `json:"status"`
	Branding  Branding        `json:"branding"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func NewTenant(tenantID domain.TenantID, name string, now time.Time) (*Tenant, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "tenant name cannot be empty")
	}
	if len(name) > 128 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "tenant name must be 128 characters or less")
	}
	return &Tenant{
		ID:        tenantID,
		Name:      name,
		Status:    TenantStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

func (t *Tenant) IsSuspended() bool {
	return t.Status != TenantStatusActive
}

// Suspend transitions the tenant to suspended.
func (t *Tenant) Suspend(now time.Time) error {
	if !t.Status.CanTransitionTo(TenantStatusSuspended) {
		return dErrors.New(dErrors.CodeInvariantViolation, "tenant cannot be suspended in its current state")
	}
	t.Status = TenantStatusSuspended
	t.UpdatedAt = now
	return nil
}

// Reactivate transitions a suspended tenant back to active.
func (t *Tenant) Reactivate(now time.Time) error {
	if !t.Status.CanTransitionTo(TenantStatusActive) {
		return dErrors.New(dErrors.CodeInvariantViolation, "tenant cannot be reactivated in its current state")
	}
	t.Status = TenantStatusActive
	t.UpdatedAt = now
	return nil
}

// Deactivate is the soft delete used by the admin API. Rows are never
// physically removed in normal flows.
func (t *Tenant) Deactivate(now time.Time) error {
	if !t.Status.CanTransitionTo(TenantStatusInactive) {
		return dErrors.New(dErrors.CodeInvariantViolation, "tenant is already inactive")
	}
	t.Status = TenantStatusInactive
	t.UpdatedAt = now
	return nil
}

// ApplyBranding validates and replaces the branding block.
func (t *Tenant) ApplyBranding(b Branding, now time.Time) error {
	if err := b.Validate(); err != nil {
		return err
	}
	t.Branding = b
	t.UpdatedAt = now
	return nil
}
