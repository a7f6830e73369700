package bootstrap

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/parlo-app/parlo-ui-api/config"
	"github.com/parlo-app/parlo-ui-api/internal/envelope"
	"github.com/parlo-app/parlo-ui-api/internal/session"
	"github.com/parlo-app/parlo-ui-api/internal/token"
)

// Distinct per-purpose seeds keep the derived dev keys separated even when
// no key material is configured.
const (
	devSessionKeySeed = "parlo-dev-session-key"
	devTokenKeySeed   = "parlo-dev-token-key"
)

// DeriveKey turns configured key material into a 32-byte key. A 64-char hex
// string decodes directly; anything else is hashed.
func DeriveKey(material string) []byte {
	if decoded, err := hex.DecodeString(material); err == nil && len(decoded) == 32 {
		return decoded
	}
	hash := sha256.Sum256([]byte(material))
	return hash[:]
}

// BuildSessionCodec creates the envelope codec that seals session cookies.
// In development an empty key falls back to a fixed seed so local setups
// need no configuration; config.Validate rejects that in production.
func BuildSessionCodec(cfg config.SecurityConfig) (*envelope.Codec, error) {
	material := cfg.SessionKey
	if material == "" {
		material = devSessionKeySeed
	}
	codec, err := envelope.NewCodec(DeriveKey(material), session.MaxAge)
	if err != nil {
		return nil, fmt.Errorf("session codec: %w", err)
	}
	return codec, nil
}

// BuildTokenSigner creates the signer for internal access tokens, keyed
// independently from the session codec.
func BuildTokenSigner(cfg config.SecurityConfig) (*token.Signer, error) {
	material := cfg.TokenKey
	if material == "" {
		material = devTokenKeySeed
	}
	signer, err := token.NewSigner(token.Config{
		Key:    DeriveKey(material),
		Issuer: cfg.TokenIssuer,
	})
	if err != nil {
		return nil, fmt.Errorf("token signer: %w", err)
	}
	return signer, nil
}
