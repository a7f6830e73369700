// Package token manages issuance and verification of the internal bearer
// token carried inside the session as AccessToken. It is keyed
// independently from the session envelope so compromise of one key does
// not compromise the other. The token payload (user id, permissions) does
// not need confidentiality, so a signed JWT is sufficient here where the
// session envelope uses authenticated encryption.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the token lifetime applied when Sign is given a
// non-positive ttl.
const DefaultTTL = time.Hour

// defaultLeeway absorbs small clock skew between issuer and verifier.
const defaultLeeway = 30 * time.Second

// ErrInvalidToken is returned for every verification failure: bad
// signature, wrong algorithm, malformed token, or elapsed expiry. The
// caller learns nothing about which check failed.
var ErrInvalidToken = errors.New("token: verification failed")

// Claims is the payload carried by an internal token.
type Claims struct {
	UserID      string   `json:"uid"`
	Email       string   `json:"email,omitempty"`
	Permissions []string `json:"perms,omitempty"`
	jwt.RegisteredClaims
}

// Config controls Signer construction.
type Config struct {
	// Key is the HS256 signing key; 32 bytes or longer.
	Key []byte
	// Issuer is stamped into and required from every token.
	Issuer string
	// TTL is the default token lifetime (DefaultTTL when zero).
	TTL time.Duration
	// Leeway tolerated on time-based claims (30s when zero).
	Leeway time.Duration
}

// Signer issues and verifies internal tokens. Immutable after
// construction; safe for concurrent use.
type Signer struct {
	key    []byte
	issuer string
	ttl    time.Duration
	leeway time.Duration

	// now is overridable in tests; defaults to time.Now.
	now func() time.Time
}

// NewSigner constructs a Signer from Config.
func NewSigner(cfg Config) (*Signer, error) {
	if len(cfg.Key) < 32 {
		return nil, fmt.Errorf("token key must be at least 32 bytes, got %d", len(cfg.Key))
	}
	if cfg.Issuer == "" {
		return nil, errors.New("token issuer is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	leeway := cfg.Leeway
	if leeway <= 0 {
		leeway = defaultLeeway
	}
	if leeway > 2*time.Minute {
		return nil, errors.New("token leeway must not exceed two minutes")
	}
	return &Signer{
		key:    append([]byte(nil), cfg.Key...),
		issuer: cfg.Issuer,
		ttl:    ttl,
		leeway: leeway,
		now:    time.Now,
	}, nil
}

// Sign issues a token for the given claims with the given ttl
// (the signer default when non-positive). Registered time claims are
// always stamped by the signer, never taken from the caller.
func (s *Signer) Sign(cl Claims, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.ttl
	}
	now := s.now()
	cl.Issuer = s.issuer
	cl.IssuedAt = jwt.NewNumericDate(now)
	cl.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	cl.NotBefore = jwt.NewNumericDate(now)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, cl)
	signed, err := tok.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims. Every
// failure mode collapses into ErrInvalidToken.
func (s *Signer) Verify(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}

	var cl Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(s.leeway),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)

	tok, err := parser.ParseWithClaims(raw, &cl, func(t *jwt.Token) (any, error) {
		return s.key, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if cl.UserID == "" {
		return nil, ErrInvalidToken
	}
	return &cl, nil
}
