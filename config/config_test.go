package config

import (
	"testing"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.False(t, cfg.IsDev)
	assert.Equal(t, AuthModeOAuth, cfg.Auth.Mode)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 8192, cfg.HTTP.HeaderBudget)
	assert.Equal(t, "parlo-ui-api", cfg.Security.TokenIssuer)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, int64(10), cfg.Redis.LoginMaxAttempts)
}

func TestAppConfig_DevModeFromNodeEnv(t *testing.T) {
	t.Setenv("NODE_ENV", "development")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.True(t, cfg.IsDev)
}

func TestAuthMode_UnmarshalText(t *testing.T) {
	t.Parallel()

	var m AuthMode
	require.NoError(t, m.UnmarshalText([]byte("MOCK")))
	assert.Equal(t, AuthModeMock, m)

	assert.Error(t, m.UnmarshalText([]byte("ldap")))
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	t.Parallel()

	h := HTTPConfig{HeaderBudget: -1}
	h.Sanitize()
	assert.Equal(t, 8192, h.HeaderBudget)
}

func TestSecurityConfig_Validate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		cfg     AppConfig
		wantErr bool
	}{
		{
			name:    "dev mode allows missing keys",
			cfg:     AppConfig{IsDev: true},
			wantErr: false,
		},
		{
			name:    "production requires session key",
			cfg:     AppConfig{Security: SecurityConfig{TokenKey: "b"}},
			wantErr: true,
		},
		{
			name:    "production requires token key",
			cfg:     AppConfig{Security: SecurityConfig{SessionKey: "a"}},
			wantErr: true,
		},
		{
			name:    "keys must differ",
			cfg:     AppConfig{Security: SecurityConfig{SessionKey: "same", TokenKey: "same"}},
			wantErr: true,
		},
		{
			name:    "distinct keys pass",
			cfg:     AppConfig{Security: SecurityConfig{SessionKey: "a", TokenKey: "b"}},
			wantErr: false,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestObservabilityMetricsConfig_Sanitize(t *testing.T) {
	t.Parallel()

	c := ObservabilityMetricsConfig{Enabled: true, StatsdAddress: "  "}
	c.Sanitize()
	assert.False(t, c.IsEnabled())

	c = ObservabilityMetricsConfig{Enabled: true, StatsdAddress: "statsd:8125"}
	c.Sanitize()
	assert.True(t, c.IsEnabled())
}
