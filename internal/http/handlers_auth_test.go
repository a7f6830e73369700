package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/parlo-app/parlo-ui-api/internal/domain/auth"
	"github.com/parlo-app/parlo-ui-api/internal/envelope"
	"github.com/parlo-app/parlo-ui-api/internal/service"
	"github.com/parlo-app/parlo-ui-api/internal/session"
)

type fakeAuthService struct {
	beginErr    error
	completeErr error
	session     *domainauth.Session
	lastInput   service.CompleteLoginInput
}

func (s *fakeAuthService) BeginLogin(_ context.Context, _ string) (*service.BeginLoginResult, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	return &service.BeginLoginResult{
		AuthURL: "https://idp.test/authorize?state=st",
		State:   "st",
		Nonce:   "nn",
	}, nil
}

func (s *fakeAuthService) CompleteLogin(_ context.Context, in service.CompleteLoginInput) (*domainauth.Session, error) {
	s.lastInput = in
	if s.completeErr != nil {
		return nil, s.completeErr
	}
	return s.session, nil
}

func newAuthFixture(t *testing.T, svc AuthServiceInterface) *AuthHandlers {
	t.Helper()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	codec, err := envelope.NewCodec(key, session.MaxAge)
	require.NoError(t, err)
	manager, err := session.NewManager(session.Config{Codec: codec})
	require.NoError(t, err)
	return &AuthHandlers{
		Svc:         svc,
		Sessions:    manager,
		CallbackURL: "https://app.test/auth/callback",
	}
}

func TestAuthHandlers_Login(t *testing.T) {
	t.Parallel()
	h := newAuthFixture(t, &fakeAuthService{})

	r := httptest.NewRequest(http.MethodGet, "/auth/login?returnUrl=/lessons", nil)
	rec := httptest.NewRecorder()
	h.Login(rec, r)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://idp.test/authorize?state=st", rec.Header().Get("Location"))

	cookies := map[string]string{}
	for _, c := range rec.Result().Cookies() {
		cookies[c.Name] = c.Value
	}
	assert.Equal(t, "st", cookies["oauth_state"])
	assert.Equal(t, "nn", cookies["oauth_nonce"])
	assert.Equal(t, "/lessons", cookies["post_login_redirect"])
}

func TestAuthHandlers_Login_RejectsAbsoluteReturnURL(t *testing.T) {
	t.Parallel()
	h := newAuthFixture(t, &fakeAuthService{})

	r := httptest.NewRequest(http.MethodGet, "/auth/login?returnUrl=https://evil.test/", nil)
	rec := httptest.NewRecorder()
	h.Login(rec, r)

	for _, c := range rec.Result().Cookies() {
		if c.Name == "post_login_redirect" {
			assert.Equal(t, "/", c.Value)
		}
	}
}

func callbackRequest(state string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc&state="+state, nil)
	r.AddCookie(&http.Cookie{Name: "oauth_state", Value: "st"})
	r.AddCookie(&http.Cookie{Name: "oauth_nonce", Value: "nn"})
	r.AddCookie(&http.Cookie{Name: "post_login_redirect", Value: "/lessons"})
	return r
}

func TestAuthHandlers_Callback(t *testing.T) {
	t.Parallel()
	svc := &fakeAuthService{session: &domainauth.Session{
		UserID:      "user-1",
		AccessToken: "tok",
		ExpiresAt:   time.Now().Add(time.Hour).UnixMilli(),
	}}
	h := newAuthFixture(t, svc)

	rec := httptest.NewRecorder()
	h.Callback(rec, callbackRequest("st"))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/lessons", rec.Header().Get("Location"))
	assert.Equal(t, "abc", svc.lastInput.Code)
	assert.Equal(t, "nn", svc.lastInput.Nonce)
	assert.NotEmpty(t, svc.lastInput.Caller)

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName && c.Value != "" {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie, "session cookie should be set")
	assert.True(t, sessionCookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, sessionCookie.SameSite)
	assert.Equal(t, "/", sessionCookie.Path)
}

func TestAuthHandlers_Callback_StateMismatch(t *testing.T) {
	t.Parallel()
	h := newAuthFixture(t, &fakeAuthService{})

	rec := httptest.NewRecorder()
	h.Callback(rec, callbackRequest("forged"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_state")
}

func TestAuthHandlers_Callback_MissingCode(t *testing.T) {
	t.Parallel()
	h := newAuthFixture(t, &fakeAuthService{})

	r := httptest.NewRequest(http.MethodGet, "/auth/callback?state=st", nil)
	rec := httptest.NewRecorder()
	h.Callback(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing_code")
}

func TestAuthHandlers_Callback_Throttled(t *testing.T) {
	t.Parallel()
	h := newAuthFixture(t, &fakeAuthService{completeErr: service.ErrLoginThrottled})

	rec := httptest.NewRecorder()
	h.Callback(rec, callbackRequest("st"))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "too_many_attempts")
}

func TestAuthHandlers_Callback_CompleteFailure(t *testing.T) {
	t.Parallel()
	h := newAuthFixture(t, &fakeAuthService{completeErr: errors.New("idp down")})

	rec := httptest.NewRecorder()
	h.Callback(rec, callbackRequest("st"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "login_completion_failed")
}

func TestAuthHandlers_Logout(t *testing.T) {
	t.Parallel()
	h := newAuthFixture(t, &fakeAuthService{})

	r := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	r.AddCookie(&http.Cookie{Name: session.CookieName, Value: "whatever"})
	rec := httptest.NewRecorder()
	h.Logout(rec, r)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?returnUrl=/", rec.Header().Get("Location"))

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "session cookie should be expired")
}

func TestAuthHandlers_Logout_JSON(t *testing.T) {
	t.Parallel()
	h := newAuthFixture(t, &fakeAuthService{})

	r := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	r.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.Logout(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "redirect_to")
}

func TestAuthHandlers_Status(t *testing.T) {
	t.Parallel()
	h := newAuthFixture(t, &fakeAuthService{})

	r := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	rec := httptest.NewRecorder()
	h.Status(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":false`)
}

func TestSafeRedirectPath(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "/lessons", safeRedirectPath("/lessons"))
	assert.Equal(t, "/", safeRedirectPath(""))
	assert.Equal(t, "/", safeRedirectPath("https://evil.test/"))
	assert.Equal(t, "/", safeRedirectPath("//evil.test"))
	assert.Equal(t, "/", safeRedirectPath("relative/path"))
}
