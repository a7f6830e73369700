package bootstrap

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/parlo-app/parlo-ui-api/config"
	"github.com/parlo-app/parlo-ui-api/internal/adapters/authperms"
	"github.com/parlo-app/parlo-ui-api/internal/adapters/devauth"
	"github.com/parlo-app/parlo-ui-api/internal/adapters/oidc"
	redisadapter "github.com/parlo-app/parlo-ui-api/internal/adapters/redis"
	"github.com/parlo-app/parlo-ui-api/internal/ports"
	"github.com/parlo-app/parlo-ui-api/internal/service"
	"github.com/parlo-app/parlo-ui-api/internal/token"
)

// AuthDeps contains dependencies for building the auth service.
type AuthDeps struct {
	Config      config.AppConfig
	Signer      *token.Signer
	RedisClient redis.UniversalClient // optional, enables the login limiter
	Logger      *slog.Logger
}

// BuildAuthService creates the auth service for the configured auth mode.
func BuildAuthService(deps AuthDeps) (*service.AuthService, error) {
	provider, err := buildProvider(deps.Config)
	if err != nil {
		return nil, err
	}

	mapper := authperms.StaticPermissionMapper{
		Grants: authperms.DefaultGrants(deps.Config.Auth.AdminGroup, deps.Config.Auth.UserGroup),
	}

	var limiter ports.LoginLimiter
	if deps.RedisClient != nil {
		limiter = redisadapter.NewLoginLimiter(deps.RedisClient,
			redisadapter.WithLimits(deps.Config.Redis.LoginMaxAttempts, deps.Config.Redis.LoginWindow))
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider: provider,
		Perms:    mapper,
		Signer:   deps.Signer,
		Limiter:  limiter,
		Logger:   deps.Logger,
	})
}

func buildProvider(cfg config.AppConfig) (ports.AuthProvider, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		prov, err := devauth.NewProvider(devauth.Config{
			UserID: cfg.Auth.DevAuth.UserID,
			Email:  cfg.Auth.DevAuth.Email,
			Groups: cfg.Auth.DevAuth.Groups,
		})
		if err != nil {
			return nil, fmt.Errorf("dev auth provider: %w", err)
		}
		return prov, nil

	case config.AuthModeOAuth:
		prov, err := oidc.NewProvider(oidc.ProviderConfig{
			ClientID:     cfg.Auth.OAuth.ClientID,
			ClientSecret: cfg.Auth.OAuth.ClientSecret,
			RedirectURL:  cfg.Auth.OAuth.RedirectURL,
			Scope:        cfg.Auth.OAuth.Scope,
			IssuerURL:    cfg.Auth.OAuth.IssuerURL,
		})
		if err != nil {
			return nil, fmt.Errorf("oidc provider: %w", err)
		}
		return prov, nil

	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}
}

// CallbackURL builds the absolute OAuth callback URL from the app base URL.
func CallbackURL(httpCfg config.HTTPConfig) string {
	return strings.TrimSuffix(httpCfg.BaseURL, "/") + "/auth/callback"
}
