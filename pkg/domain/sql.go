package domain

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
)

// The IDs bind to database/sql as their canonical string form and scan back
// from either string or byte representations.

func (id TenantID) Value() (driver.Value, error)        { return uuid.UUID(id).String(), nil }
func (id UserID) Value() (driver.Value, error)          { return uuid.UUID(id).String(), nil }
func (id ClientProfileID) Value() (driver.Value, error) { return uuid.UUID(id).String(), nil }
func (id SessionID) Value() (driver.Value, error)       { return uuid.UUID(id).String(), nil }
func (id TaskID) Value() (driver.Value, error)          { return uuid.UUID(id).String(), nil }
func (id CommentID) Value() (driver.Value, error)       { return uuid.UUID(id).String(), nil }
func (id NoteID) Value() (driver.Value, error)          { return uuid.UUID(id).String(), nil }
func (id NotificationID) Value() (driver.Value, error)  { return uuid.UUID(id).String(), nil }

func (id *TenantID) Scan(src any) error        { return scanUUID((*uuid.UUID)(id), src) }
func (id *UserID) Scan(src any) error          { return scanUUID((*uuid.UUID)(id), src) }
func (id *ClientProfileID) Scan(src any) error { return scanUUID((*uuid.UUID)(id), src) }
func (id *SessionID) Scan(src any) error       { return scanUUID((*uuid.UUID)(id), src) }
func (id *TaskID) Scan(src any) error          { return scanUUID((*uuid.UUID)(id), src) }
func (id *CommentID) Scan(src any) error       { return scanUUID((*uuid.UUID)(id), src) }
func (id *NoteID) Scan(src any) error          { return scanUUID((*uuid.UUID)(id), src) }
func (id *NotificationID) Scan(src any) error  { return scanUUID((*uuid.UUID)(id), src) }

func scanUUID(dst *uuid.UUID, src any) error {
	switch v := src.(type) {
	case string:
		u, err := uuid.Parse(v)
		if err != nil {
			return fmt.Errorf("scan uuid: %w", err)
		}
		*dst = u
		return nil
	case []byte:
		u, err := uuid.ParseBytes(v)
		if err != nil {
			return fmt.Errorf("scan uuid: %w", err)
		}
		*dst = u
		return nil
	}
	return fmt.Errorf("scan uuid: unsupported source %T", src)
}
