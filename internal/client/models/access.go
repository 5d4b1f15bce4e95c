package models

import (
	"time"

	"github.com/google/uuid"

	"vowline/pkg/domain"
)

// TenantAccess grants a second tenant visibility into a client profile's
// data, independent of the owning tenant. Created and revoked only by the
// client user; rows are unique per (ClientProfileID, TenantID).
type TenantAccess struct {
	ID              uuid.UUID              `json:"id"`
	ClientProfileID domain.ClientProfileID `json:"client_profile_id"`
	TenantID        domain.TenantID        `json:"tenant_id"`
	CreatedBy       domain.UserID          `json:"created_by"`
	CreatedAt       time.Time              `json:"created_at"`
}
