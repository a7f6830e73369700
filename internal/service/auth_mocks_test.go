package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/parlo-app/parlo-ui-api/internal/domain/auth"
	"github.com/parlo-app/parlo-ui-api/internal/mocks"
	"github.com/parlo-app/parlo-ui-api/internal/ports"
	"github.com/parlo-app/parlo-ui-api/internal/service"
	"github.com/parlo-app/parlo-ui-api/internal/token"
)

// Mock-based tests covering the interaction contract between the auth
// service and its ports: argument propagation and call ordering that the
// hand-rolled fakes in auth_test.go do not pin down.

func newMockSigner(t *testing.T) *token.Signer {
	t.Helper()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i + 7)
	}
	signer, err := token.NewSigner(token.Config{Key: key, Issuer: "parlo-ui-api"})
	require.NoError(t, err)
	return signer
}

func TestCompleteLogin_PortInteractions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	provider := mocks.NewMockAuthProvider(ctrl)
	mapper := mocks.NewMockPermissionMapper(ctrl)
	limiter := mocks.NewMockLoginLimiter(ctrl)

	identity := domainauth.Identity{
		UserID:    "user-42",
		Email:     "user42@example.com",
		Groups:    []string{"users"},
		ExpiresAt: time.Now().Add(time.Hour),
	}

	gomock.InOrder(
		limiter.EXPECT().Allow(gomock.Any(), "203.0.113.9").Return(true, nil),
		provider.EXPECT().
			Exchange(gomock.Any(), ports.ExchangeInput{Code: "code-1", State: "state-1", Nonce: "nonce-1"}).
			Return(identity, nil),
		mapper.EXPECT().Map([]string{"users"}).Return([]string{"recordings:read"}),
		limiter.EXPECT().Reset(gomock.Any(), "203.0.113.9").Return(nil),
	)

	svc, err := service.NewAuthService(service.AuthServiceOptions{
		Provider: provider,
		Perms:    mapper,
		Signer:   newMockSigner(t),
		Limiter:  limiter,
	})
	require.NoError(t, err)

	sess, err := svc.CompleteLogin(context.Background(), service.CompleteLoginInput{
		Code:   "code-1",
		State:  "state-1",
		Nonce:  "nonce-1",
		Caller: "203.0.113.9",
	})
	require.NoError(t, err)

	assert.Equal(t, "user-42", sess.UserID)
	assert.Equal(t, []string{"recordings:read"}, sess.Permissions)
	assert.NotEmpty(t, sess.AccessToken)
}

func TestCompleteLogin_ExchangeFailureSkipsMappingAndReset(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	provider := mocks.NewMockAuthProvider(ctrl)
	mapper := mocks.NewMockPermissionMapper(ctrl)
	limiter := mocks.NewMockLoginLimiter(ctrl)

	limiter.EXPECT().Allow(gomock.Any(), gomock.Any()).Return(true, nil)
	provider.EXPECT().
		Exchange(gomock.Any(), gomock.Any()).
		Return(domainauth.Identity{}, errors.New("idp unavailable"))
	// No Map or Reset expectations: a failed exchange must not mint
	// permissions or clear the attempt counter.

	svc, err := service.NewAuthService(service.AuthServiceOptions{
		Provider: provider,
		Perms:    mapper,
		Signer:   newMockSigner(t),
		Limiter:  limiter,
	})
	require.NoError(t, err)

	_, err = svc.CompleteLogin(context.Background(), service.CompleteLoginInput{
		Code:   "code-1",
		State:  "state-1",
		Nonce:  "nonce-1",
		Caller: "203.0.113.9",
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "idp unavailable")
}
