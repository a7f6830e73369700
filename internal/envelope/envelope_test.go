package envelope

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

type testPayload struct {
	UserID string   `json:"userId"`
	Perms  []string `json:"perms"`
	N      int      `json:"n"`
}

func TestCodec_RoundTrip(t *testing.T) {
	t.Parallel()
	codec, err := NewCodec(testKey(), time.Hour)
	require.NoError(t, err)

	in := testPayload{UserID: "user-1", Perms: []string{"recordings:read"}, N: 42}
	env, err := codec.Seal(in)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(env, "v1:"))

	var out testPayload
	require.NoError(t, codec.Open(env, &out))
	assert.Equal(t, in, out)
}

func TestCodec_TamperDetection(t *testing.T) {
	t.Parallel()
	codec, err := NewCodec(testKey(), time.Hour)
	require.NoError(t, err)

	env, err := codec.Seal(testPayload{UserID: "user-1"})
	require.NoError(t, err)

	// Flip one byte of the decoded body at several positions: nonce, body,
	// and tag must all trip authentication.
	raw, err := base64.StdEncoding.DecodeString(env[len("v1:"):])
	require.NoError(t, err)

	for _, pos := range []int{0, len(raw) / 2, len(raw) - 1} {
		mutated := append([]byte(nil), raw...)
		mutated[pos] ^= 0x01
		bad := "v1:" + base64.StdEncoding.EncodeToString(mutated)

		var out testPayload
		err := codec.Open(bad, &out)
		assert.ErrorIs(t, err, ErrDecrypt, "flipped byte at %d", pos)
	}
}

func TestCodec_WrongKey(t *testing.T) {
	t.Parallel()
	codec, err := NewCodec(testKey(), time.Hour)
	require.NoError(t, err)

	other := testKey()
	other[0] ^= 0xFF
	otherCodec, err := NewCodec(other, time.Hour)
	require.NoError(t, err)

	env, err := codec.Seal(testPayload{UserID: "user-1"})
	require.NoError(t, err)

	var out testPayload
	assert.ErrorIs(t, otherCodec.Open(env, &out), ErrDecrypt)
}

func TestCodec_ExpiryEnforced(t *testing.T) {
	t.Parallel()
	codec, err := NewCodec(testKey(), time.Hour)
	require.NoError(t, err)

	now := time.Now()
	codec.now = func() time.Time { return now }

	env, err := codec.SealTTL(testPayload{UserID: "user-1"}, time.Minute)
	require.NoError(t, err)

	// Before the TTL elapses the envelope opens.
	codec.now = func() time.Time { return now.Add(30 * time.Second) }
	var out testPayload
	require.NoError(t, codec.Open(env, &out))

	// After the TTL has elapsed it does not, and the error carries no
	// detail distinguishing expiry from tampering.
	codec.now = func() time.Time { return now.Add(2 * time.Minute) }
	err = codec.Open(env, &out)
	assert.ErrorIs(t, err, ErrDecrypt)
	assert.Equal(t, ErrDecrypt.Error(), err.Error())
}

func TestCodec_IssuedAt(t *testing.T) {
	t.Parallel()
	codec, err := NewCodec(testKey(), time.Hour)
	require.NoError(t, err)

	now := time.Now()
	codec.now = func() time.Time { return now }

	env, err := codec.Seal(testPayload{UserID: "user-1"})
	require.NoError(t, err)

	iat, err := codec.IssuedAt(env)
	require.NoError(t, err)
	assert.Equal(t, now.Unix(), iat.Unix())
}

func TestCodec_MalformedInput(t *testing.T) {
	t.Parallel()
	codec, err := NewCodec(testKey(), time.Hour)
	require.NoError(t, err)

	var out testPayload
	for _, env := range []string{
		"",
		"not-an-envelope",
		"v2:" + base64.StdEncoding.EncodeToString([]byte("future version")),
		"v1:!!!not-base64!!!",
		"v1:" + base64.StdEncoding.EncodeToString([]byte("x")), // shorter than a nonce
	} {
		assert.ErrorIs(t, codec.Open(env, &out), ErrDecrypt, "input %q", env)
	}
}

func TestNewCodec_KeyLength(t *testing.T) {
	t.Parallel()

	_, err := NewCodec([]byte("short"), time.Hour)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be 32 bytes")

	_, err = NewCodec(make([]byte, 64), time.Hour)
	require.Error(t, err)
}
