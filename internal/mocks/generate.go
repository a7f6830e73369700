// Package mocks provides mock implementations for testing the auth ports.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the port interfaces. The mocks are regenerated via go:generate directives.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	provider := mocks.NewMockAuthProvider(ctrl)
//	provider.EXPECT().Begin(gomock.Any(), gomock.Any()).Return(authURL, state, nonce, nil)
package mocks

// Generate mocks for the auth port interfaces from internal/ports.
// This creates MockAuthProvider, MockPermissionMapper and MockLoginLimiter.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=ports_mock.go github.com/parlo-app/parlo-ui-api/internal/ports AuthProvider,PermissionMapper,LoginLimiter
