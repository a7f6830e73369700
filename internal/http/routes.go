package httpx

import (
	"log/slog"
	"net/http"

	"github.com/parlo-app/parlo-ui-api/internal/observability/statsd"
	"github.com/parlo-app/parlo-ui-api/internal/session"
	"github.com/parlo-app/parlo-ui-api/internal/token"
)

// RouterServices holds the services needed by the HTTP router.
type RouterServices struct {
	Auth         AuthServiceInterface
	Sessions     *session.Manager
	Verifier     *token.Signer
	CookieDomain string
	CallbackURL  string
	HeaderBudget int          // optional, gate default when zero
	Logger       *slog.Logger // optional
	Metrics      statsd.Sink  // optional
}

// NewRouter builds the route table and wraps it in the gating pipeline.
// Public and protected paths share one mux; the gate decides per request
// which treatment applies.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		Sessions:     services.Sessions,
		CookieDomain: services.CookieDomain,
		CallbackURL:  services.CallbackURL,
		Logger:       services.Logger,
	}

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	mux.HandleFunc("GET /auth/login", authHandlers.Login)
	mux.HandleFunc("GET /auth/callback", authHandlers.Callback)
	mux.HandleFunc("POST /auth/logout", authHandlers.Logout)
	mux.HandleFunc("GET /auth/status", authHandlers.Status)

	mux.HandleFunc("GET /api/me", MeHandler)

	gate := Gate(GateConfig{
		Sessions:     services.Sessions,
		Verifier:     services.Verifier,
		Logger:       services.Logger,
		Metrics:      services.Metrics,
		CookieDomain: services.CookieDomain,
		HeaderBudget: services.HeaderBudget,
	})
	csrf := CSRFProtection(CSRFConfig{CookieDomain: services.CookieDomain})

	return gate(csrf(mux))
}
