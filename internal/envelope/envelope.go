// Package envelope provides authenticated encryption of JSON payloads with
// built-in issued-at/expiry claims. The wire format is an opaque string:
// a versioned prefix plus base64(nonce||ciphertext) under AES-256-GCM.
// Expiry is enforced by the primitive itself, not by caller-side clock
// comparison, so a caller cannot forget to check it.
package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Versioned prefix to allow future key/algorithm rotations without
// invalidating every outstanding envelope at once.
const cipherPrefixV1 = "v1:"

// DefaultTTL is the expiry horizon applied when a non-positive ttl is
// given. Matches the 7-day session cookie lifetime.
const DefaultTTL = 7 * 24 * time.Hour

var (
	// ErrEncrypt indicates the payload could not be sealed. The key is
	// absent or malformed, or the payload is not JSON-serializable.
	ErrEncrypt = errors.New("envelope: encrypt failed")

	// ErrDecrypt indicates the envelope could not be opened. Tampering,
	// a wrong key, truncation, and an elapsed expiry claim all surface as
	// this one error; the caller learns nothing about which check failed.
	ErrDecrypt = errors.New("envelope: decrypt failed")
)

// claims wraps the caller payload with the injected iat/exp claims.
type claims struct {
	Iat  int64           `json:"iat"` // unix seconds
	Exp  int64           `json:"exp"` // unix seconds
	Data json.RawMessage `json:"data"`
}

// Codec seals and opens envelopes under a fixed 32-byte key.
// It is immutable after construction and safe for concurrent use.
type Codec struct {
	key []byte
	ttl time.Duration

	// now is overridable in tests; defaults to time.Now.
	now func() time.Time
}

// NewCodec constructs a Codec. Key must be 32 bytes (AES-256); ttl is the
// default expiry horizon applied by Seal.
func NewCodec(key []byte, ttl time.Duration) (*Codec, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("envelope key must be 32 bytes, got %d", len(key))
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Codec{
		key: append([]byte(nil), key...),
		ttl: ttl,
		now: time.Now,
	}, nil
}

// Seal authenticated-encrypts payload with the codec's default TTL.
func (c *Codec) Seal(payload any) (string, error) {
	return c.SealTTL(payload, c.ttl)
}

// SealTTL authenticated-encrypts payload, injecting iat and an exp claim
// ttl from now, and returns the opaque envelope string.
func (c *Codec) SealTTL(payload any, ttl time.Duration) (string, error) {
	if c == nil || len(c.key) != 32 {
		return "", ErrEncrypt
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", ErrEncrypt
	}

	now := c.now()
	plaintext, err := json.Marshal(claims{
		Iat:  now.Unix(),
		Exp:  now.Add(ttl).Unix(),
		Data: data,
	})
	if err != nil {
		return "", ErrEncrypt
	}

	gcm, err := c.aead()
	if err != nil {
		return "", ErrEncrypt
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", ErrEncrypt
	}

	ct := gcm.Seal(nil, nonce, plaintext, nil)
	buf := make([]byte, 0, len(nonce)+len(ct))
	buf = append(buf, nonce...)
	buf = append(buf, ct...)
	return cipherPrefixV1 + base64.StdEncoding.EncodeToString(buf), nil
}

// Open verifies authenticity and expiry, then unmarshals the original
// payload into dst. Any failure returns ErrDecrypt.
func (c *Codec) Open(env string, dst any) error {
	cl, err := c.openClaims(env)
	if err != nil {
		return err
	}
	if dst == nil {
		return nil
	}
	if err := json.Unmarshal(cl.Data, dst); err != nil {
		return ErrDecrypt
	}
	return nil
}

// IssuedAt returns the iat claim of a still-valid envelope. It exists for
// diagnostics and observes the same fail-closed contract as Open.
func (c *Codec) IssuedAt(env string) (time.Time, error) {
	cl, err := c.openClaims(env)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(cl.Iat, 0), nil
}

// openClaims decrypts, authenticates, and expiry-checks an envelope.
func (c *Codec) openClaims(env string) (claims, error) {
	var cl claims
	if c == nil || len(c.key) != 32 {
		return cl, ErrDecrypt
	}
	if !strings.HasPrefix(env, cipherPrefixV1) {
		return cl, ErrDecrypt
	}

	data, err := base64.StdEncoding.DecodeString(env[len(cipherPrefixV1):])
	if err != nil {
		return cl, ErrDecrypt
	}

	gcm, err := c.aead()
	if err != nil {
		return cl, ErrDecrypt
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return cl, ErrDecrypt
	}

	plaintext, err := gcm.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return cl, ErrDecrypt
	}

	if err := json.Unmarshal(plaintext, &cl); err != nil {
		return cl, ErrDecrypt
	}
	if cl.Exp <= c.now().Unix() {
		return cl, ErrDecrypt
	}
	return cl, nil
}

func (c *Codec) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
