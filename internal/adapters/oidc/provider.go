// Package oidc implements ports.AuthProvider against a standard OIDC/OAuth2
// identity provider using discovery.
package oidc

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/parlo-app/parlo-ui-api/internal/domain/auth"
	"github.com/parlo-app/parlo-ui-api/internal/ports"
)

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	IssuerURL    string       // issuer or discovery document URL
	HTTPClient   *http.Client // optional, defaults to a 30s-timeout client
}

// Provider implements the AuthProvider interface using OIDC/OAuth2.
type Provider struct {
	oauth    *oauth2.Config
	verifier *gooidc.IDTokenVerifier
	provider *gooidc.Provider
}

// NewProvider fetches the discovery document once and wires up the OAuth2
// endpoints and ID token verifier from it.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	switch {
	case cfg.ClientID == "":
		return nil, errors.New("oidc: client ID is required")
	case cfg.ClientSecret == "":
		return nil, errors.New("oidc: client secret is required")
	case cfg.RedirectURL == "":
		return nil, errors.New("oidc: redirect URL is required")
	case cfg.IssuerURL == "":
		return nil, errors.New("oidc: issuer URL is required")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, client)
	issuer := strings.TrimSuffix(cfg.IssuerURL, "/.well-known/openid-configuration")
	issuer = strings.TrimSuffix(issuer, "/")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	scopes := strings.Fields(cfg.Scope)
	if len(scopes) == 0 {
		scopes = []string{gooidc.ScopeOpenID, "profile", "email"}
	}

	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     op.Endpoint(),
		},
		verifier: op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		provider: op,
	}, nil
}

// Begin generates state and nonce and builds the provider authorization URL.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("oidc: redirect URL is required")
	}
	state, err := randomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	authURL := p.oauth.AuthCodeURL(state,
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("response_type", "code"),
	)
	return authURL, state, nonce, nil
}

// Exchange redeems the authorization code, verifies the ID token and nonce,
// and maps claims to a domain identity. Missing profile fields are filled
// from the userinfo endpoint.
func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if in.Code == "" {
		return domainauth.Identity{}, errors.New("oidc: authorization code is required")
	}
	if in.Nonce == "" {
		return domainauth.Identity{}, errors.New("oidc: nonce is required")
	}

	token, err := p.oauth.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code: %w", err)
	}

	rawID, ok := token.Extra("id_token").(string)
	if !ok || rawID == "" {
		return domainauth.Identity{}, errors.New("oidc: missing id_token in token response")
	}
	idTok, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("verify id_token: %w", err)
	}

	var claims profileClaims
	if err := idTok.Claims(&claims); err != nil {
		return domainauth.Identity{}, fmt.Errorf("parse id_token claims: %w", err)
	}
	if idTok.Nonce != in.Nonce {
		return domainauth.Identity{}, errors.New("oidc: nonce mismatch")
	}

	if claims.Email == "" || claims.GivenName == "" {
		if err := p.fillFromUserInfo(ctx, token, &claims); err != nil {
			return domainauth.Identity{}, err
		}
	}

	expiresAt := token.Expiry
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(time.Hour)
	}
	return domainauth.Identity{
		UserID:    claims.Subject,
		FirstName: claims.GivenName,
		LastName:  claims.FamilyName,
		Email:     claims.Email,
		Groups:    claims.Groups,
		ExpiresAt: expiresAt,
	}, nil
}

// profileClaims covers the standard profile/email claims plus the
// non-standard but common "groups" claim.
type profileClaims struct {
	Subject    string   `json:"sub"`
	Email      string   `json:"email"`
	GivenName  string   `json:"given_name"`
	FamilyName string   `json:"family_name"`
	Groups     []string `json:"groups"`
}

func (p *Provider) fillFromUserInfo(ctx context.Context, token *oauth2.Token, claims *profileClaims) error {
	ui, err := p.provider.UserInfo(ctx, oauth2.StaticTokenSource(token))
	if err != nil {
		return fmt.Errorf("fetch userinfo: %w", err)
	}
	var extra profileClaims
	if err := ui.Claims(&extra); err != nil {
		return fmt.Errorf("decode userinfo: %w", err)
	}
	mergeClaims(claims, extra)
	return nil
}

// mergeClaims fills zero-valued fields in dst from src.
func mergeClaims(dst *profileClaims, src profileClaims) {
	if dst.Subject == "" {
		dst.Subject = src.Subject
	}
	if dst.Email == "" {
		dst.Email = src.Email
	}
	if dst.GivenName == "" {
		dst.GivenName = src.GivenName
	}
	if dst.FamilyName == "" {
		dst.FamilyName = src.FamilyName
	}
	if len(dst.Groups) == 0 {
		dst.Groups = src.Groups
	}
}

// randomString returns a URL-safe random string of exactly n characters.
func randomString(n int) (string, error) {
	b := make([]byte, (n*3+3)/4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < n {
		return "", errors.New("short random read")
	}
	return s[:n], nil
}
