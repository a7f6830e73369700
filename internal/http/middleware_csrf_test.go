package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csrfHandler() http.Handler {
	return CSRFProtection(CSRFConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCSRF_GetIssuesToken(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var tokenCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == DefaultCSRFCookieName {
			tokenCookie = c
		}
	}
	require.NotNil(t, tokenCookie)
	assert.NotEmpty(t, tokenCookie.Value)
	assert.False(t, tokenCookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, tokenCookie.SameSite)
}

func TestCSRF_PostWithoutTokenRejected(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRF_PostWithHeaderToken(t *testing.T) {
	t.Parallel()
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "tok-123"})
	r.Header.Set(DefaultCSRFHeaderName, "tok-123")
	rec := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRF_PostWithWrongHeaderToken(t *testing.T) {
	t.Parallel()
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "tok-123"})
	r.Header.Set(DefaultCSRFHeaderName, "tok-456")
	rec := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, r)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRF_PostWithFormToken(t *testing.T) {
	t.Parallel()
	body := strings.NewReader("csrf_token=tok-123&name=x")
	r := httptest.NewRequest(http.MethodPost, "/", body)
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "tok-123"})
	rec := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
}
