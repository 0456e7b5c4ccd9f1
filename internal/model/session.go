package model

import "time"

// Session is a signed-in dashboard user together with the backend access
// token issued for them.
type Session struct {
	ID          string
	Email       string
	Role        string
	AccessToken string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Expired reports whether the session has expired at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
