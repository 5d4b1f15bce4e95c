package models

import (
	"encoding/json"
	"time"

	"vowline/pkg/domain"
	dErrors "vowline/pkg/domain-errors"
)

// ProfileStatus is the lifecycle state of a couple's engagement with a tenant.
type ProfileStatus string

const (
	ProfileStatusActive   ProfileStatus = "active"
	ProfileStatusArchived ProfileStatus = "archived"
)

// ClientProfile is the aggregate root for a couple served by a tenant.
//
// Invariants:
//   - PartnerOne is non-empty
//   - TenantID is immutable after construction; sharing with other tenants
//     happens exclusively through TenantAccess grants, never by reassignment
//   - WebsiteSettings is a JSON object (possibly empty)
type ClientProfile struct {
	ID              domain.ClientProfileID `json:"id"`
	TenantID        domain.TenantID        `json:"tenant_id"`
	PartnerOne      string                 `json:"partner_one"`
	PartnerTwo      string                 `json:"partner_two"`
	WeddingDate     *time.Time             `json:"wedding_date,omitempty"`
	Venue           string                 `json:"venue"`
	Status          ProfileStatus          `json:"status"`
	WebsiteSettings json.RawMessage        `json:"website_settings"`
	WebsiteEnabled  bool                   `json:"website_enabled"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

func NewClientProfile(id domain.ClientProfileID, tenantID domain.TenantID, partnerOne, partnerTwo string, now time.Time) (*ClientProfile, error) {
	if partnerOne == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "at least one partner name is required")
	}
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "client profile requires a tenant")
	}
	return &ClientProfile{
		ID:              id,
		TenantID:        tenantID,
		PartnerOne:      partnerOne,
		PartnerTwo:      partnerTwo,
		Status:          ProfileStatusActive,
		WebsiteSettings: json.RawMessage(`{}`),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// ApplyWebsiteSettings replaces the website-builder settings blob.
func (c *ClientProfile) ApplyWebsiteSettings(settings json.RawMessage, now time.Time) error {
	if !json.Valid(settings) {
		return dErrors.New(dErrors.CodeInvariantViolation, "website settings must be valid JSON")
	}
	c.WebsiteSettings = settings
	c.UpdatedAt = now
	return nil
}

// SetWebsiteEnabled flips the public website toggle.
func (c *ClientProfile) SetWebsiteEnabled(enabled bool, now time.Time) {
	c.WebsiteEnabled = enabled
	c.UpdatedAt = now
}
