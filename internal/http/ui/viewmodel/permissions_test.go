package viewmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/parlo-app/parlo-ui-api/internal/domain/auth"
)

func TestPermissionView(t *testing.T) {
	t.Parallel()
	v := NewPermissionView(&domainauth.Session{
		UserID:      "u1",
		AccessToken: "tok",
		Permissions: []string{"recordings:read", "recordings:write"},
	})

	assert.True(t, v.Has("recordings:read"))
	assert.False(t, v.Has("users:write"))
	assert.True(t, v.HasResource("recordings", "write"))
	assert.False(t, v.HasResource("users", "write"))
	assert.True(t, v.HasAny("users:write", "recordings:read"))
	assert.False(t, v.HasAny("users:write"))
	assert.True(t, v.HasAll("recordings:read", "recordings:write"))
	assert.False(t, v.HasAll("recordings:read", "users:write"))
}

func TestPermissionView_FailClosed(t *testing.T) {
	t.Parallel()

	for name, v := range map[string]PermissionView{
		"nil session": NewPermissionView(nil),
		"no perms":    NewPermissionView(&domainauth.Session{UserID: "u1", AccessToken: "tok"}),
		"empty perms": NewPermissionView(&domainauth.Session{UserID: "u1", AccessToken: "tok", Permissions: []string{}}),
	} {
		t.Run(name, func(t *testing.T) {
			assert.False(t, v.Has("recordings:read"))
			assert.False(t, v.HasAny("recordings:read", "users:write"))
			assert.False(t, v.HasAll("recordings:read"))
			assert.False(t, v.HasAny())
			assert.False(t, v.HasAll())
		})
	}
}

func TestPermissionView_SnapshotIsolation(t *testing.T) {
	t.Parallel()
	sess := &domainauth.Session{
		UserID:      "u1",
		AccessToken: "tok",
		Permissions: []string{"recordings:read"},
	}
	v := NewPermissionView(sess)

	// Mutating the session after the snapshot does not change the view.
	sess.Permissions = append(sess.Permissions, "users:write")
	assert.False(t, v.Has("users:write"))
	assert.Len(t, v.List(), 1)
}
