// Package viewmodel holds read-only data handed to rendered pages.
package viewmodel

import (
	"sort"

	domainauth "github.com/parlo-app/parlo-ui-api/internal/domain/auth"
)

// PermissionView is a one-way snapshot of the session's permission set,
// taken once at render time. It drives conditional rendering only; it is
// never a gate in front of a privileged operation, which always re-checks
// the session server-side.
type PermissionView struct {
	perms map[string]struct{}
}

// NewPermissionView copies the permission list out of the session.
// A nil session produces an empty view where every check is false.
func NewPermissionView(sess *domainauth.Session) PermissionView {
	v := PermissionView{perms: make(map[string]struct{})}
	if sess == nil {
		return v
	}
	for _, p := range sess.Permissions {
		v.perms[p] = struct{}{}
	}
	return v
}

// Has reports whether the snapshot contains the permission.
func (v PermissionView) Has(perm string) bool {
	_, ok := v.perms[perm]
	return ok
}

// HasResource reports whether the snapshot grants action on resource.
func (v PermissionView) HasResource(resource, action string) bool {
	return v.Has(domainauth.PermissionString(resource, action))
}

// HasAny reports whether any of the listed permissions is present.
// An empty list is false.
func (v PermissionView) HasAny(perms ...string) bool {
	for _, p := range perms {
		if v.Has(p) {
			return true
		}
	}
	return false
}

// HasAll reports whether every listed permission is present.
// An empty list is false.
func (v PermissionView) HasAll(perms ...string) bool {
	if len(perms) == 0 {
		return false
	}
	for _, p := range perms {
		if !v.Has(p) {
			return false
		}
	}
	return true
}

// List returns the snapshot's permissions, sorted for stable serialization.
func (v PermissionView) List() []string {
	out := make([]string, 0, len(v.perms))
	for p := range v.perms {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
