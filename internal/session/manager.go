// Package session owns the session cookie lifecycle: an encrypted
// envelope is the only representation of an authenticated session, and
// this package is the only code allowed to read or write that cookie.
package session

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/parlo-app/parlo-ui-api/internal/domain/auth"
	"github.com/parlo-app/parlo-ui-api/internal/envelope"
	apperrors "github.com/parlo-app/parlo-ui-api/internal/errors"
)

const (
	// CookieName is the session cookie in non-production environments.
	CookieName = "session"
	// SecureCookieName carries the __Secure- prefix required in
	// production: browsers force the Secure attribute for it.
	SecureCookieName = "__Secure-session"

	// MaxAge is the session cookie lifetime.
	MaxAge = 7 * 24 * time.Hour
)

var errNoResponseWriter = errors.New("session: cookie store has no response writer")

// Config groups Manager dependencies.
type Config struct {
	Codec *envelope.Codec
	// Production selects the __Secure- cookie name and forces the Secure
	// attribute.
	Production bool
	Logger     *slog.Logger
}

// Manager encrypts sessions into the cookie and decrypts them back out.
// Stateless between requests; safe for concurrent use.
type Manager struct {
	codec      *envelope.Codec
	production bool
	logger     *slog.Logger

	// now is overridable in tests; defaults to time.Now.
	now func() time.Time
}

// NewManager constructs a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Codec == nil {
		return nil, errors.New("session: envelope codec is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		codec:      cfg.Codec,
		production: cfg.Production,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// CookieName returns the active session cookie name.
func (m *Manager) CookieName() string {
	if m.production {
		return SecureCookieName
	}
	return CookieName
}

// Set encrypts sess and writes it as an http-only, same-site-strict,
// path-scoped cookie with a 7-day max age. Exactly one cookie write.
func (m *Manager) Set(store CookieStore, sess *auth.Session) error {
	if sess == nil {
		return apperrors.Validation("session is required")
	}

	env, err := m.codec.SealTTL(sess, MaxAge)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "seal session")
	}

	cookie := &http.Cookie{
		Name:     m.CookieName(),
		Value:    env,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.production,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(MaxAge.Seconds()),
	}
	if err := store.Set(cookie); err != nil {
		return apperrors.SessionPersist(err)
	}
	return nil
}

// Get reads and validates the session from the cookie. A missing cookie
// is a normal state that yields nil, nil. A cookie that fails decryption,
// schema validation, or the business-level expiry check is cleared as a
// side effect before nil is returned, so a corrupted or stale cookie
// cannot keep erroring on every subsequent request. There is no repair
// path: invalid session data is always discarded, never partially trusted.
func (m *Manager) Get(store CookieStore) *auth.Session {
	env, ok := store.Get(m.CookieName())
	if !ok {
		return nil
	}

	var sess auth.Session
	if err := m.codec.Open(env, &sess); err != nil {
		m.logger.Warn("discarding undecryptable session cookie")
		m.Clear(store)
		return nil
	}

	if !sess.Validate(m.now()) {
		m.logger.Warn("discarding invalid session", "user_id", sess.UserID)
		m.Clear(store)
		return nil
	}

	return &sess
}

// Clear deletes the session cookie unconditionally. Idempotent: store
// errors are swallowed and logged, never surfaced to the caller.
func (m *Manager) Clear(store CookieStore) {
	if err := store.Delete(m.CookieName()); err != nil {
		m.logger.Warn("clear session cookie failed", "error", err)
	}
}
