package config

import "time"

// RedisConfig contains Redis configuration. Redis backs the login attempt
// limiter only; sessions live entirely in the cookie envelope.
type RedisConfig struct {
	Enabled  bool   `env:"ENABLED"  envDefault:"false"`
	URI      string `env:"URI"      envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`

	// LoginMaxAttempts is the attempt ceiling per caller per window.
	LoginMaxAttempts int64 `env:"LOGIN_MAX_ATTEMPTS" envDefault:"10"`

	// LoginWindow is the counting window for login attempts.
	LoginWindow time.Duration `env:"LOGIN_WINDOW" envDefault:"5m"`
}
