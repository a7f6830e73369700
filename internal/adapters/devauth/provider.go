// Package devauth provides a config-driven AuthProvider for local development.
// It skips the IdP round-trip entirely: Begin points the browser straight at
// our own callback, and Exchange hands back the configured identity.
package devauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	domainauth "github.com/parlo-app/parlo-ui-api/internal/domain/auth"
	"github.com/parlo-app/parlo-ui-api/internal/ports"
)

const defaultSessionDuration = 8 * time.Hour

// Config describes the single local identity the provider vends.
type Config struct {
	UserID          string
	Email           string
	Groups          []string
	SessionDuration time.Duration // default 8h when zero
}

// Provider implements ports.AuthProvider for local development.
type Provider struct {
	cfg Config
	now func() time.Time
}

// NewProvider validates cfg and constructs the provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("devauth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("devauth: Email is required")
	}
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = defaultSessionDuration
	}
	return &Provider{cfg: cfg, now: time.Now}, nil
}

// Begin returns a local callback URL plus fresh state and nonce values.
// The callback handler still checks state against its cookie, so the dev
// flow exercises the same CSRF path as the real one.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, err := randomToken()
	if err != nil {
		return "", "", "", err
	}
	nonce, err := randomToken()
	if err != nil {
		return "", "", "", err
	}
	return "/auth/callback?code=dev&state=" + state, state, nonce, nil
}

// Exchange ignores the code and returns the configured identity with a
// fresh expiry.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
	return domainauth.Identity{
		UserID:    p.cfg.UserID,
		Email:     p.cfg.Email,
		Groups:    append([]string(nil), p.cfg.Groups...),
		ExpiresAt: p.now().Add(p.cfg.SessionDuration),
	}, nil
}

func randomToken() (string, error) {
	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
