package httpx

import (
	"context"

	domainauth "github.com/parlo-app/parlo-ui-api/internal/domain/auth"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers and middleware use the same key.
type sessionKey struct{}

// SetSessionInContext returns a child context that carries the given session.
// If session is nil, the original ctx is returned unchanged.
func SetSessionInContext(ctx context.Context, sess *domainauth.Session) context.Context {
	if sess == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, sess)
}

// GetUserSessionFromContext returns the session from context and a boolean indicating presence.
func GetUserSessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	if sess, ok := ctx.Value(sessionKey{}).(*domainauth.Session); ok && sess != nil {
		return sess, true
	}
	return nil, false
}

// GetSessionFromContext retrieves the session from the request context.
// Prefer GetUserSessionFromContext when you need presence info.
func GetSessionFromContext(ctx context.Context) *domainauth.Session {
	if s, ok := GetUserSessionFromContext(ctx); ok {
		return s
	}
	return nil
}
