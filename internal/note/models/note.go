package models

import (
	"time"

	"vowline/pkg/domain"
	dErrors "vowline/pkg/domain-errors"
)

// Note records what was discussed in a planning meeting with a couple. Same
// scoping rules as tasks: the tenant column is the profile's owning tenant.
type Note struct {
	ID              domain.NoteID          `json:"id"`
	TenantID        domain.TenantID        `json:"tenant_id"`
	ClientProfileID domain.ClientProfileID `json:"client_profile_id"`
	Title           string                 `json:"title"`
	Body            string                 `json:"body"`
	MeetingDate     *time.Time             `json:"meeting_date,omitempty"`
	CreatedBy       domain.UserID          `json:"created_by"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

func NewNote(id domain.NoteID, tenantID domain.TenantID, clientProfileID domain.ClientProfileID, title, body string, createdBy domain.UserID, now time.Time) (*Note, error) {
	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "note title is required")
	}
	return &Note{
		ID:              id,
		TenantID:        tenantID,
		ClientProfileID: clientProfileID,
		Title:           title,
		Body:            body,
		CreatedBy:       createdBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}
