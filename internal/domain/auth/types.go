// Package auth contains domain-level types for authentication, sessions,
// and permissions. It is pure and free of framework/adapter concerns.
package auth

import "time"

// Identity represents the authenticated principal returned by an IdP.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	UserID    string // stable user identifier (e.g., samAccountName or sub)
	FirstName string
	LastName  string
	Email     string
	Groups    []string
	ExpiresAt time.Time // absolute expiry from IdP token
}

// Session is the authenticated identity carried across requests inside the
// encrypted cookie envelope. There is no server-side copy; the envelope is
// the single source of truth and is replaced wholesale on login/refresh.
type Session struct {
	UserID       string   `json:"userId"`
	Email        string   `json:"email,omitempty"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken,omitempty"`
	ExpiresAt    int64    `json:"expiresAt"` // epoch milliseconds
	Permissions  []string `json:"permissions"`
}

// Validate reports whether the session satisfies the schema: a user id, an
// access token, and a future business-level expiry. The cryptographic expiry
// of the envelope is enforced separately by the envelope itself.
func (s *Session) Validate(now time.Time) bool {
	if s == nil {
		return false
	}
	if s.UserID == "" || s.AccessToken == "" {
		return false
	}
	if s.ExpiresAt != 0 && s.ExpiresAt <= now.UnixMilli() {
		return false
	}
	return true
}

// Expiry returns the business-level expiry as a time.Time.
// The zero time is returned when ExpiresAt is unset.
func (s *Session) Expiry() time.Time {
	if s == nil || s.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.UnixMilli(s.ExpiresAt)
}
