package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainauth "github.com/parlo-app/parlo-ui-api/internal/domain/auth"
	"github.com/parlo-app/parlo-ui-api/internal/ports"
	"github.com/parlo-app/parlo-ui-api/internal/session"
	"github.com/parlo-app/parlo-ui-api/internal/token"
)

// ErrLoginThrottled is returned by CompleteLogin when the caller has
// exceeded the login attempt limit.
var ErrLoginThrottled = errors.New("too many login attempts")

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider
	Perms    ports.PermissionMapper
	Signer   *token.Signer
	Limiter  ports.LoginLimiter // optional
	Logger   *slog.Logger       // optional
}

// AuthService orchestrates authentication flows: it drives the provider,
// maps groups to permissions, and mints the internal access token that the
// request pipeline later verifies.
type AuthService struct {
	provider ports.AuthProvider
	perms    ports.PermissionMapper
	signer   *token.Signer
	limiter  ports.LoginLimiter
	logger   *slog.Logger
	now      func() time.Time
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	if opts.Provider == nil {
		return nil, errors.New("auth service: Provider is required")
	}
	if opts.Perms == nil {
		return nil, errors.New("auth service: Perms is required")
	}
	if opts.Signer == nil {
		return nil, errors.New("auth service: Signer is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		provider: opts.Provider,
		perms:    opts.Perms,
		signer:   opts.Signer,
		limiter:  opts.Limiter,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an authentication flow and returns the provider auth
// URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginLoginResult{
		AuthURL: authURL,
		State:   state,
		Nonce:   nonce,
	}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
// Caller identifies the requester, usually by remote address, for rate
// limiting before an identity exists.
type CompleteLoginInput struct {
	Code   string
	State  string
	Nonce  string
	Caller string
}

// CompleteLogin exchanges the code for an identity, maps its groups to
// permissions, signs an internal access token, and returns the session
// ready to be sealed into the cookie.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*domainauth.Session, error) {
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}

	if err := s.checkLimiter(ctx, input.Caller); err != nil {
		return nil, err
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	perms := s.perms.Map(identity.Groups)

	// Token and session expire together so the pipeline's independent
	// verification cannot outlive the cookie.
	accessToken, err := s.signer.Sign(token.Claims{
		UserID:      identity.UserID,
		Email:       identity.Email,
		Permissions: perms,
	}, session.MaxAge)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	if s.limiter != nil && input.Caller != "" {
		if resetErr := s.limiter.Reset(ctx, input.Caller); resetErr != nil {
			s.logger.WarnContext(ctx, "reset login attempts failed", "error", resetErr)
		}
	}

	return &domainauth.Session{
		UserID:      identity.UserID,
		Email:       identity.Email,
		AccessToken: accessToken,
		ExpiresAt:   s.now().Add(session.MaxAge).UnixMilli(),
		Permissions: perms,
	}, nil
}

// checkLimiter counts the attempt against the caller. Limiter
// unavailability denies the login.
func (s *AuthService) checkLimiter(ctx context.Context, caller string) error {
	if s.limiter == nil || caller == "" {
		return nil
	}
	ok, err := s.limiter.Allow(ctx, caller)
	if err != nil {
		return fmt.Errorf("login limiter: %w", err)
	}
	if !ok {
		return ErrLoginThrottled
	}
	return nil
}
