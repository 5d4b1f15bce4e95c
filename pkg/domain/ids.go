// Package domain defines typed identifiers shared by every feature package.
// Distinct UUID wrapper types keep tenant, client, and user identifiers from
// being swapped at call sites; the compiler enforces what the scoping guard
// assumes.
package domain

import (
	"github.com/google/uuid"

	dErrors "vowline/pkg/domain-errors"
)

type (
	// TenantID identifies a wedding-planning business.
	TenantID uuid.UUID
	// UserID identifies an account regardless of role.
	UserID uuid.UUID
	// ClientProfileID identifies a couple managed by a tenant.
	ClientProfileID uuid.UUID
	// SessionID identifies an authenticated session.
	SessionID uuid.UUID
	// TaskID identifies a planning task.
	TaskID uuid.UUID
	// CommentID identifies a task comment.
	CommentID uuid.UUID
	// NoteID identifies a meeting note.
	NoteID uuid.UUID
	// NotificationID identifies an inbox notification.
	NotificationID uuid.UUID
)

func (id TenantID) String() string        { return uuid.UUID(id).String() }
func (id UserID) String() string          { return uuid.UUID(id).String() }
func (id ClientProfileID) String() string { return uuid.UUID(id).String() }
func (id SessionID) String() string       { return uuid.UUID(id).String() }
func (id TaskID) String() string          { return uuid.UUID(id).String() }
func (id CommentID) String() string       { return uuid.UUID(id).String() }
func (id NoteID) String() string          { return uuid.UUID(id).String() }
func (id NotificationID) String() string  { return uuid.UUID(id).String() }

func (id TenantID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }
func (id ClientProfileID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id TaskID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }
func (id CommentID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id NoteID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }
func (id NotificationID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

func (id TenantID) MarshalText() ([]byte, error)        { return text(uuid.UUID(id)) }
func (id UserID) MarshalText() ([]byte, error)          { return text(uuid.UUID(id)) }
func (id ClientProfileID) MarshalText() ([]byte, error) { return text(uuid.UUID(id)) }
func (id SessionID) MarshalText() ([]byte, error)       { return text(uuid.UUID(id)) }
func (id TaskID) MarshalText() ([]byte, error)          { return text(uuid.UUID(id)) }
func (id CommentID) MarshalText() ([]byte, error)       { return text(uuid.UUID(id)) }
func (id NoteID) MarshalText() ([]byte, error)          { return text(uuid.UUID(id)) }
func (id NotificationID) MarshalText() ([]byte, error)  { return text(uuid.UUID(id)) }

func (id *TenantID) UnmarshalText(b []byte) error        { return fromText((*uuid.UUID)(id), b) }
func (id *UserID) UnmarshalText(b []byte) error          { return fromText((*uuid.UUID)(id), b) }
func (id *ClientProfileID) UnmarshalText(b []byte) error { return fromText((*uuid.UUID)(id), b) }
func (id *SessionID) UnmarshalText(b []byte) error       { return fromText((*uuid.UUID)(id), b) }
func (id *TaskID) UnmarshalText(b []byte) error          { return fromText((*uuid.UUID)(id), b) }
func (id *CommentID) UnmarshalText(b []byte) error       { return fromText((*uuid.UUID)(id), b) }
func (id *NoteID) UnmarshalText(b []byte) error          { return fromText((*uuid.UUID)(id), b) }
func (id *NotificationID) UnmarshalText(b []byte) error  { return fromText((*uuid.UUID)(id), b) }

func text(u uuid.UUID) ([]byte, error) {
	return []byte(u.String()), nil
}

func fromText(dst *uuid.UUID, b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid id")
	}
	*dst = u
	return nil
}

// ParseTenantID parses a tenant ID from its string form. IDs must be valid,
// non-nil UUIDs; anything else is an input error at the trust boundary.
func ParseTenantID(s string) (TenantID, error) {
	u, err := parseUUID(s)
	return TenantID(u), err
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s)
	return UserID(u), err
}

func ParseClientProfileID(s string) (ClientProfileID, error) {
	u, err := parseUUID(s)
	return ClientProfileID(u), err
}

func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s)
	return SessionID(u), err
}

func ParseTaskID(s string) (TaskID, error) {
	u, err := parseUUID(s)
	return TaskID(u), err
}

func ParseCommentID(s string) (CommentID, error) {
	u, err := parseUUID(s)
	return CommentID(u), err
}

func ParseNoteID(s string) (NoteID, error) {
	u, err := parseUUID(s)
	return NoteID(u), err
}

func ParseNotificationID(s string) (NotificationID, error) {
	u, err := parseUUID(s)
	return NotificationID(u), err
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}
