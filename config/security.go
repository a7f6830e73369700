package config

import "errors"

// SecurityConfig holds the two independent cryptographic keys. The session
// key seals the cookie envelope; the token key signs the internal access
// token. Compromise of one must not compromise the other, so they are
// configured, derived, and rotated separately.
type SecurityConfig struct {
	// SessionKey protects the session cookie envelope.
	// 64 hex characters, or any string that will be hashed to 32 bytes.
	SessionKey string `env:"SESSION_ENCRYPTION_KEY"`

	// TokenKey signs internal access tokens.
	TokenKey string `env:"TOKEN_SIGNING_KEY"`

	// TokenIssuer is the issuer claim stamped on internal tokens.
	TokenIssuer string `env:"TOKEN_ISSUER" envDefault:"parlo-ui-api"`
}

func (c *SecurityConfig) validate(isDev bool) error {
	if isDev {
		return nil
	}
	if c.SessionKey == "" {
		return errors.New("SESSION_ENCRYPTION_KEY is required outside development")
	}
	if c.TokenKey == "" {
		return errors.New("TOKEN_SIGNING_KEY is required outside development")
	}
	if c.SessionKey == c.TokenKey {
		return errors.New("SESSION_ENCRYPTION_KEY and TOKEN_SIGNING_KEY must differ")
	}
	return nil
}
