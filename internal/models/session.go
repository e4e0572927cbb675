package models

import "time"

// Session represents a server-held login session
type Session struct {
	Token     string    `json:"-"`
	UserID    int       `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionInfo is the per-request view of the caller's identity, derived
// from the session cookie and passed to every rendered page. All fields
// are zero for anonymous requests.
type SessionInfo struct {
	Email   string
	Name    string
	IsAdmin bool
}

// LoggedIn reports whether the request carries a valid session
func (s SessionInfo) LoggedIn() bool {
	return s.Email != ""
}
