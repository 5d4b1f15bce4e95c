package models

import (
	"time"

	"vowline/pkg/domain"
)

// Kind classifies what triggered a notification.
type Kind string

const (
	KindTaskCreated    Kind = "task_created"
	KindTaskUpdated    Kind = "task_updated"
	KindCommentCreated Kind = "comment_created"
	KindNoteCreated    Kind = "note_created"
)

// Notification is one inbox entry for one user.
type Notification struct {
	ID        domain.NotificationID `json:"id"`
	UserID    domain.UserID         `json:"user_id"`
	TenantID  domain.TenantID       `json:"tenant_id"`
	ActorID   domain.UserID         `json:"actor_id"`
	Kind      Kind                  `json:"kind"`
	Title     string                `json:"title"`
	Body      string                `json:"body"`
	Read      bool                  `json:"read"`
	CreatedAt time.Time             `json:"created_at"`
}

// Preferences are the per-user email opt-ins, one flag per event family.
// In-app notifications are always delivered; the flags only gate email.
type Preferences struct {
	UserID         domain.UserID `json:"user_id"`
	EmailOnTask    bool          `json:"email_on_task"`
	EmailOnComment bool          `json:"email_on_comment"`
	EmailOnNote    bool          `json:"email_on_note"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// DefaultPreferences opts every email flag in.
func DefaultPreferences(userID domain.UserID) Preferences {
	return Preferences{UserID: userID, EmailOnTask: true, EmailOnComment: true, EmailOnNote: true}
}

// EmailEnabled reports whether the kind's email flag is set.
func (p Preferences) EmailEnabled(kind Kind) bool {
	switch kind {
	case KindTaskCreated, KindTaskUpdated:
		return p.EmailOnTask
	case KindCommentCreated:
		return p.EmailOnComment
	case KindNoteCreated:
		return p.EmailOnNote
	}
	return false
}

// Event is the unit handed to the fan-out worker when something notable
// happens. The worker expands it into per-user notifications and emails.
type Event struct {
	Kind            Kind                   `json:"kind"`
	ActorID         domain.UserID          `json:"actor_id"`
	TenantID        domain.TenantID        `json:"tenant_id"`
	ClientProfileID domain.ClientProfileID `json:"client_profile_id"`
	Title           string                 `json:"title"`
	Body            string                 `json:"body"`
	OccurredAt      time.Time              `json:"occurred_at"`
}
