// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"

	domainauth "github.com/parlo-app/parlo-ui-api/internal/domain/auth"
)

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// AuthProvider initiates and completes an authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// PermissionMapper maps provider groups to application permission strings.
type PermissionMapper interface {
	Map(groups []string) []string
}

// LoginLimiter throttles login completions per subject to slow credential abuse.
type LoginLimiter interface {
	// Allow reports whether another attempt is permitted for the subject
	// and records the attempt.
	Allow(ctx context.Context, subject string) (bool, error)

	// Reset clears recorded attempts after a successful login.
	Reset(ctx context.Context, subject string) error
}
