package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/parlo-app/parlo-ui-api/internal/domain/auth"
	obserrors "github.com/parlo-app/parlo-ui-api/internal/observability/errors"
	"github.com/parlo-app/parlo-ui-api/internal/service"
	"github.com/parlo-app/parlo-ui-api/internal/session"
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*domainauth.Session, error)
}

// AuthHandlers provides HTTP handlers for authentication operations.
// The gate never touches these paths; they live on the public allow-list.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	Sessions     *session.Manager
	CookieDomain string
	CallbackURL  string // absolute redirect URL registered with the IdP
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Login handles the login initiation endpoint.
// GET /auth/login?returnUrl=<optional_redirect>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	returnURL := safeRedirectPath(r.URL.Query().Get("returnUrl"))

	result, err := h.Svc.BeginLogin(r.Context(), h.CallbackURL)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_failed",
			Err:     err,
		})
		return
	}

	h.setOAuthCookies(w, r, oauthCookieParams{State: result.State, Nonce: result.Nonce, ReturnURL: returnURL})
	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback handles the OAuth callback endpoint.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_code",
			Err:     errors.New("authorization code is required"),
		})
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || state == "" || stateCookie.Value != state {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}
	nonceCookie, err := r.Cookie("oauth_nonce")
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_nonce",
			Err:     errors.New("missing nonce"),
		})
		return
	}

	sess, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:   code,
		State:  state,
		Nonce:  nonceCookie.Value,
		Caller: clientAddr(r),
	})
	if err != nil {
		if errors.Is(err, service.ErrLoginThrottled) {
			WriteError(w, ErrorParams{
				Code:    http.StatusTooManyRequests,
				ErrCode: "too_many_attempts",
				Err:     err,
			})
			return
		}
		h.logger().ErrorContext(r.Context(), "login completion failed",
			"error", err,
			"error_type", obserrors.Classify(err),
		)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_completion_failed",
			Err:     err,
		})
		return
	}

	// A cookie write failure means login did not complete; the user must
	// be told rather than silently left unauthenticated.
	store := session.NewHTTPStore(w, r, h.CookieDomain)
	if err := h.Sessions.Set(store, sess); err != nil {
		h.logger().ErrorContext(r.Context(), "persist session failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_incomplete",
			Err:     errors.New("could not persist session"),
		})
		return
	}

	h.clearCookie(w, r, "oauth_state")
	h.clearCookie(w, r, "oauth_nonce")

	http.Redirect(w, r, h.getPostLoginRedirect(w, r), http.StatusFound)
}

// Logout handles the logout endpoint.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	store := session.NewHTTPStore(w, r, h.CookieDomain)
	h.Sessions.Clear(store)

	returnURL := safeRedirectPath(r.FormValue("returnUrl"))

	if wantsJSON(r) {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "success",
			"redirect_to": "/login?returnUrl=" + returnURL,
		})
		return
	}
	http.Redirect(w, r, "/login?returnUrl="+returnURL, http.StatusFound)
}

// Status returns the current authentication status.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	store := session.NewHTTPStore(w, r, h.CookieDomain)
	sess := h.Sessions.Get(store)
	if sess == nil {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user": map[string]any{
			"id":    sess.UserID,
			"email": sess.Email,
		},
		"expires_at": sess.ExpiresAt,
	})
}

// oauthCookieParams groups values needed to set the OAuth flow cookies.
type oauthCookieParams struct {
	State     string
	Nonce     string
	ReturnURL string
}

// setOAuthCookies stores state, nonce, and the post-login destination in
// short-lived cookies for the callback to validate against.
func (h *AuthHandlers) setOAuthCookies(w http.ResponseWriter, r *http.Request, p oauthCookieParams) {
	isSecure := isSecureRequest(r)
	for name, value := range map[string]string{
		"oauth_state":         p.State,
		"oauth_nonce":         p.Nonce,
		"post_login_redirect": p.ReturnURL,
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			Domain:   h.CookieDomain,
			HttpOnly: true,
			Secure:   isSecure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   600,
		})
	}
}

// clearCookie expires a cookie immediately, mirroring the attributes used
// when it was set so browsers actually drop it.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// getPostLoginRedirect returns the post-login destination and clears its cookie.
func (h *AuthHandlers) getPostLoginRedirect(w http.ResponseWriter, r *http.Request) string {
	redirect := "/"
	if c, err := r.Cookie("post_login_redirect"); err == nil {
		redirect = safeRedirectPath(c.Value)
		h.clearCookie(w, r, "post_login_redirect")
	}
	return redirect
}

// safeRedirectPath ensures the candidate is a same-origin relative path
// starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	if strings.HasPrefix(candidate, "//") {
		return "/"
	}
	return candidate
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
}

// clientAddr extracts the caller address for rate limiting.
func clientAddr(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
