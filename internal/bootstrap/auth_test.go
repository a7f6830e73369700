package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlo-app/parlo-ui-api/config"
)

func TestBuildAuthService_MockMode(t *testing.T) {
	signer, err := BuildTokenSigner(config.SecurityConfig{TokenIssuer: "parlo-ui-api"})
	require.NoError(t, err)

	cfg := config.AppConfig{}
	cfg.Auth.Mode = config.AuthModeMock
	cfg.Auth.DevAuth.UserID = "dev-user"
	cfg.Auth.DevAuth.Email = "dev@example.com"

	svc, err := BuildAuthService(AuthDeps{Config: cfg, Signer: signer})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestBuildAuthService_UnknownMode(t *testing.T) {
	signer, err := BuildTokenSigner(config.SecurityConfig{TokenIssuer: "parlo-ui-api"})
	require.NoError(t, err)

	cfg := config.AppConfig{}
	cfg.Auth.Mode = config.AuthMode("ldap")

	_, err = BuildAuthService(AuthDeps{Config: cfg, Signer: signer})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown auth mode")
}

func TestCallbackURL(t *testing.T) {
	assert.Equal(t, "https://app.example.com/auth/callback",
		CallbackURL(config.HTTPConfig{BaseURL: "https://app.example.com/"}))
	assert.Equal(t, "http://localhost:8080/auth/callback",
		CallbackURL(config.HTTPConfig{BaseURL: "http://localhost:8080"}))
}
