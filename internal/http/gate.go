package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/parlo-app/parlo-ui-api/internal/correlation"
	domainauth "github.com/parlo-app/parlo-ui-api/internal/domain/auth"
	obserrors "github.com/parlo-app/parlo-ui-api/internal/observability/errors"
	"github.com/parlo-app/parlo-ui-api/internal/observability/statsd"
	"github.com/parlo-app/parlo-ui-api/internal/session"
	"github.com/parlo-app/parlo-ui-api/internal/token"
)

const (
	// HeaderBudget is the maximum total byte size of inbound header values
	// before the request is short-circuited with cache suppression.
	HeaderBudget = 8 * 1024

	headerUserID      = "x-user-id"
	headerUserEmail   = "x-user-email"
	headerPermissions = "x-user-permissions"

	cacheSuppression = "no-cache, no-store, must-revalidate"
)

// defaultPublicPrefixes are reachable without a session.
var defaultPublicPrefixes = []string{
	"/login",
	"/register",
	"/password-reset",
	"/auth/",
	"/healthz",
	"/webhooks/",
	"/diagnostics/",
}

// defaultStaticPrefixes bypass the pipeline entirely.
var defaultStaticPrefixes = []string{
	"/static/",
	"/assets/",
	"/favicon.ico",
	"/robots.txt",
}

var staticExtensions = map[string]bool{
	".css": true, ".js": true, ".map": true, ".ico": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".webp": true, ".woff": true, ".woff2": true,
	".ttf": true, ".mp3": true, ".wav": true,
}

// GateConfig holds dependencies and tuning for the request gate.
type GateConfig struct {
	Sessions *session.Manager
	Verifier *token.Signer
	Logger   *slog.Logger
	Metrics  statsd.Sink // optional

	CookieDomain   string
	LoginPath      string   // default "/login"
	PublicPrefixes []string // default set when nil
	StaticPrefixes []string // default set when nil
	HeaderBudget   int      // default 8 KiB when zero
}

// Gate returns the request-gating middleware. Every inbound request runs a
// fixed sequence of stages: static bypass, tracing, header budget, route
// classification, session lookup, token verification, identity injection.
// Each stage either continues or produces a terminal response; a denial is
// always a redirect to the login boundary, never an error page.
func Gate(cfg GateConfig) func(http.Handler) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.PublicPrefixes == nil {
		cfg.PublicPrefixes = defaultPublicPrefixes
	}
	if cfg.StaticPrefixes == nil {
		cfg.StaticPrefixes = defaultStaticPrefixes
	}
	if cfg.HeaderBudget == 0 {
		cfg.HeaderBudget = HeaderBudget
	}
	return func(next http.Handler) http.Handler {
		return &gate{cfg: cfg, next: next}
	}
}

type gate struct {
	cfg  GateConfig
	next http.Handler
}

func (g *gate) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if g.isStatic(r.URL.Path) {
		g.next.ServeHTTP(w, r)
		return
	}

	start := time.Now()
	id := correlation.FromRequest(r)
	r = r.WithContext(correlation.NewContext(r.Context(), id))
	logger := g.cfg.Logger.With(slog.String("request_id", id))

	logger.InfoContext(r.Context(), "request started",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("user_agent", r.UserAgent()),
	)

	ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
	setSecurityHeaders(ww.Header())
	ww.Header().Set(correlation.Header, id)

	if size := headerSize(r.Header); size > g.cfg.HeaderBudget {
		logger.WarnContext(r.Context(), "header budget exceeded",
			slog.Int("size", size),
			slog.Int("budget", g.cfg.HeaderBudget),
		)
		g.count("gate.header_budget_exceeded", nil)
		ww.Header().Set("Cache-Control", cacheSuppression)
		ww.WriteHeader(http.StatusRequestHeaderFieldsTooLarge)
		g.finish(logger, r, ww, start)
		return
	}

	if g.isPublic(r.URL.Path) {
		r.Header.Set(correlation.Header, id)
		g.next.ServeHTTP(ww, r)
		g.finish(logger, r, ww, start)
		return
	}

	store := session.NewHTTPStore(ww, r, g.cfg.CookieDomain)
	sess := g.cfg.Sessions.Get(store)
	if sess == nil {
		logger.WarnContext(r.Context(), "no valid session",
			slog.String("path", r.URL.Path),
		)
		g.count("gate.session_missing", nil)
		g.redirectToLogin(ww, r, "")
		g.finish(logger, r, ww, start)
		return
	}

	if _, err := g.cfg.Verifier.Verify(sess.AccessToken); err != nil {
		logger.WarnContext(r.Context(), "access token rejected",
			slog.String("path", r.URL.Path),
			slog.String("user_id", sess.UserID),
			slog.String("error_type", obserrors.Classify(err)),
		)
		g.count("gate.token_rejected", map[string]string{"error_type": obserrors.Classify(err)})
		g.cfg.Sessions.Clear(store)
		g.redirectToLogin(ww, r, "session_expired")
		g.finish(logger, r, ww, start)
		return
	}

	if isDataAccessPath(r.URL.Path) {
		injectIdentityHeaders(r.Header, sess)
	}
	r.Header.Set(correlation.Header, id)

	g.next.ServeHTTP(ww, r.WithContext(SetSessionInContext(r.Context(), sess)))
	g.finish(logger, r, ww, start)
}

func (g *gate) finish(logger *slog.Logger, r *http.Request, ww *respWriter, start time.Time) {
	duration := time.Since(start)
	logger.InfoContext(r.Context(), "request completed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", ww.status),
		slog.Duration("duration", duration),
	)
	if g.cfg.Metrics != nil {
		g.cfg.Metrics.Timing("gate.request", duration, nil)
		g.cfg.Metrics.Count("gate.status", 1, map[string]string{
			"code": strconv.Itoa(ww.status),
		})
	}
}

func (g *gate) count(name string, tags map[string]string) {
	if g.cfg.Metrics != nil {
		g.cfg.Metrics.Count(name, 1, tags)
	}
}

// redirectToLogin issues the terminal redirect carrying the original path.
// reason is appended as an error marker when non-empty.
func (g *gate) redirectToLogin(w http.ResponseWriter, r *http.Request, reason string) {
	target := g.cfg.LoginPath + "?returnUrl=" + escapeReturnURL(safeRedirectPath(r.URL.Path))
	if reason != "" {
		target += "&error=" + url.QueryEscape(reason)
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// escapeReturnURL escapes query metacharacters but keeps slashes readable,
// so the redirect target stays "/login?returnUrl=/dashboard".
func escapeReturnURL(path string) string {
	return strings.ReplaceAll(url.QueryEscape(path), "%2F", "/")
}

func (g *gate) isStatic(path string) bool {
	for _, p := range g.cfg.StaticPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	if idx := strings.LastIndex(path, "."); idx >= 0 {
		return staticExtensions[strings.ToLower(path[idx:])]
	}
	return false
}

func (g *gate) isPublic(path string) bool {
	for _, p := range g.cfg.PublicPrefixes {
		if strings.HasSuffix(p, "/") {
			if strings.HasPrefix(path, p) || path == strings.TrimSuffix(p, "/") {
				return true
			}
			continue
		}
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// isDataAccessPath reports whether the request enters the app's own data
// surface, where identity headers are trusted as already authenticated.
func isDataAccessPath(path string) bool {
	return strings.HasPrefix(path, "/api/")
}

// injectIdentityHeaders stamps the verified identity onto the forwarded
// request. Any inbound values are overwritten; they are never trusted.
func injectIdentityHeaders(h http.Header, sess *domainauth.Session) {
	h.Set(headerUserID, sess.UserID)
	h.Set(headerUserEmail, sess.Email)
	perms, err := json.Marshal(sess.Permissions)
	if err != nil {
		perms = []byte("[]")
	}
	h.Set(headerPermissions, string(perms))
}

// headerSize sums the byte length of all header keys and values.
func headerSize(h http.Header) int {
	total := 0
	for k, vals := range h {
		for _, v := range vals {
			total += len(k) + len(v)
		}
	}
	return total
}

func setSecurityHeaders(h http.Header) {
	h.Set("X-Frame-Options", "SAMEORIGIN")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	h.Set("X-XSS-Protection", "1; mode=block")
	h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
}
