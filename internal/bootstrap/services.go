package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/parlo-app/parlo-ui-api/internal/session"
)

// Run builds every component from configuration and serves HTTP until the
// process receives SIGINT or SIGTERM, or a component fails.
func Run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting parlo-ui-api",
		"addr", cfg.HTTP.Addr,
		"auth_mode", cfg.Auth.Mode,
		"dev_mode", cfg.IsDev,
		"login_limiter", cfg.Redis.Enabled)

	codec, err := BuildSessionCodec(cfg.Security)
	if err != nil {
		return err
	}
	signer, err := BuildTokenSigner(cfg.Security)
	if err != nil {
		return err
	}

	sessions, err := session.NewManager(session.Config{
		Codec:      codec,
		Production: !cfg.IsDev,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("session manager: %w", err)
	}

	redisClient, err := ConnectRedis(cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer func() {
			if cerr := redisClient.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close redis failed", "error", cerr)
			}
		}()
	}

	auth, err := BuildAuthService(AuthDeps{
		Config:      cfg,
		Signer:      signer,
		RedisClient: redisClient,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("build auth service: %w", err)
	}

	metrics, err := BuildMetrics(cfg.Observability.Metrics, logger)
	if err != nil {
		return fmt.Errorf("build metrics: %w", err)
	}
	defer func() {
		if cerr := metrics.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close statsd failed", "error", cerr)
		}
	}()

	server := BuildHTTPServer(HTTPServerDeps{
		Config:   cfg,
		Auth:     auth,
		Sessions: sessions,
		Verifier: signer,
		Metrics:  metrics,
		Logger:   logger,
	})

	return serveUntilSignal(ctx, server, logger)
}

// serveUntilSignal runs the server and blocks until a shutdown signal
// arrives or ListenAndServe fails.
func serveUntilSignal(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		// Shutdown gets a fresh context; gctx is already done.
		return ShutdownHTTPServer(context.Background(), server, logger)
	})

	return g.Wait()
}
