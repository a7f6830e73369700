package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parlo-app/parlo-ui-api/internal/token"
)

type limiterTimeout struct{}

func (limiterTimeout) Error() string { return "limiter timeout" }

func TestClassify(t *testing.T) {
	assert.Empty(t, Classify(nil))

	// Wrapping must not change the classification.
	inner := limiterTimeout{}
	wrapped := fmt.Errorf("login limiter: %w", fmt.Errorf("redis: %w", inner))
	assert.Equal(t, Classify(inner), Classify(wrapped))

	// Sentinel errors classify by their concrete type, not their message.
	assert.Equal(t, "errors_errorstring", Classify(token.ErrInvalidToken))
}
