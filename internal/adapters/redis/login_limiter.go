// Package redis provides Redis-backed adapters.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxAttempts = 10
	defaultWindow      = 5 * time.Minute
)

// LoginLimiter implements ports.LoginLimiter with a counter per subject.
// The counter expires after the window, so a quiet subject resets on its own.
type LoginLimiter struct {
	client      redis.UniversalClient
	prefix      string
	maxAttempts int64
	window      time.Duration
}

// LimiterOption customizes a LoginLimiter.
type LimiterOption func(*LoginLimiter)

// WithLimits overrides the attempt ceiling and counting window.
func WithLimits(maxAttempts int64, window time.Duration) LimiterOption {
	return func(l *LoginLimiter) {
		l.maxAttempts = maxAttempts
		l.window = window
	}
}

// NewLoginLimiter creates a limiter with a 10-attempts-per-5-minutes default.
func NewLoginLimiter(client redis.UniversalClient, opts ...LimiterOption) *LoginLimiter {
	l := &LoginLimiter{
		client:      client,
		prefix:      "login_attempts:",
		maxAttempts: defaultMaxAttempts,
		window:      defaultWindow,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow records an attempt for the subject and reports whether it is within
// the limit. Counting happens before the check, so the attempt that crosses
// the ceiling is itself denied.
func (l *LoginLimiter) Allow(ctx context.Context, subject string) (bool, error) {
	if subject == "" {
		return false, errors.New("login limiter: subject cannot be empty")
	}
	key := l.prefix + subject

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("record login attempt: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, fmt.Errorf("set attempt window: %w", err)
		}
	}
	return count <= l.maxAttempts, nil
}

// Reset clears the counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, subject string) error {
	if subject == "" {
		return nil
	}
	if err := l.client.Del(ctx, l.prefix+subject).Err(); err != nil {
		return fmt.Errorf("reset login attempts: %w", err)
	}
	return nil
}
