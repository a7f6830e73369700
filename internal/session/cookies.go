package session

import (
	"net/http"
	"time"
)

// CookieStore is the capability the Manager needs from the platform's
// cookie handling. The production implementation wraps a request/response
// pair; tests use an in-memory fake. No component other than the Manager
// may touch the session cookie through any path.
type CookieStore interface {
	// Get returns the named cookie's value and whether it was present.
	Get(name string) (string, bool)
	// Set writes a cookie. Returns an error when the store can no longer
	// accept writes (e.g., the response has already been sent).
	Set(c *http.Cookie) error
	// Delete removes the named cookie, mirroring the attributes used when
	// setting it so browsers actually drop it.
	Delete(name string) error
}

// HTTPStore adapts an http.ResponseWriter/Request pair to CookieStore.
type HTTPStore struct {
	w      http.ResponseWriter
	r      *http.Request
	domain string
	secure bool
}

// NewHTTPStore builds a CookieStore over the given response/request pair.
func NewHTTPStore(w http.ResponseWriter, r *http.Request, domain string) *HTTPStore {
	return &HTTPStore{
		w:      w,
		r:      r,
		domain: domain,
		secure: isSecureRequest(r),
	}
}

// Get reads a cookie from the inbound request.
func (s *HTTPStore) Get(name string) (string, bool) {
	c, err := s.r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// Set writes a cookie on the response, filling in domain and secure
// attributes from the request context.
func (s *HTTPStore) Set(c *http.Cookie) error {
	if s.w == nil {
		return errNoResponseWriter
	}
	c.Domain = s.domain
	c.Secure = c.Secure || s.secure
	http.SetCookie(s.w, c)
	return nil
}

// Delete expires the named cookie immediately. It mirrors key attributes
// (Path, Domain, SameSite) used when setting session cookies to maximize
// compatibility across browsers during deletion.
func (s *HTTPStore) Delete(name string) error {
	if s.w == nil {
		return errNoResponseWriter
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   s.domain,
		HttpOnly: true,
		Secure:   s.secure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

// isSecureRequest reports whether the request arrived over TLS, directly
// or via a trusted reverse proxy.
func isSecureRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
