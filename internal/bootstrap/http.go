package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/parlo-app/parlo-ui-api/config"
	httpx "github.com/parlo-app/parlo-ui-api/internal/http"
	"github.com/parlo-app/parlo-ui-api/internal/observability/statsd"
	"github.com/parlo-app/parlo-ui-api/internal/service"
	"github.com/parlo-app/parlo-ui-api/internal/session"
	"github.com/parlo-app/parlo-ui-api/internal/token"
)

// HTTPServerDeps contains dependencies for the HTTP server.
type HTTPServerDeps struct {
	Config   config.AppConfig
	Auth     *service.AuthService
	Sessions *session.Manager
	Verifier *token.Signer
	Metrics  statsd.Sink // optional
	Logger   *slog.Logger
}

// BuildHTTPServer assembles the router, wraps it in the gating pipeline and
// panic recovery, and returns a server ready for ListenAndServe.
func BuildHTTPServer(deps HTTPServerDeps) *http.Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := httpx.NewRouter(httpx.RouterServices{
		Auth:         deps.Auth,
		Sessions:     deps.Sessions,
		Verifier:     deps.Verifier,
		CookieDomain: deps.Config.HTTP.CookieDomain,
		CallbackURL:  CallbackURL(deps.Config.HTTP),
		HeaderBudget: deps.Config.HTTP.HeaderBudget,
		Logger:       logger,
		Metrics:      deps.Metrics,
	})

	// The gate logs gated traffic; Recover stays outermost so panics in any
	// stage still produce a 500 instead of a dropped connection.
	handler := httpx.Recover(logger)(router)

	addr := deps.Config.HTTP.Addr
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	if server == nil {
		return nil
	}

	if logger != nil {
		logger.Info("shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if logger != nil {
		logger.Info("HTTP server stopped")
	}

	return nil
}
