package models

import (
	"time"

	"vowline/pkg/domain"
)

// Session is a server-side login session. The bearer token presented by the
// browser is a signed JWT carrying the session id; revocation happens by
// deleting the session record.
type Session struct {
	ID         domain.SessionID `json:"id"`
	UserID     domain.UserID    `json:"user_id"`
	DeviceName string           `json:"device_name"`
	IP         string           `json:"ip"`
	UserAgent  string           `json:"user_agent"`
	CreatedAt  time.Time        `json:"created_at"`
	ExpiresAt  time.Time        `json:"expires_at"`
}

// Expired reports whether the session has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
