package auth

import "strings"

// Permission strings take the form "<resource>:<action>", e.g.
// "recordings:delete". The predicates below are the single authoritative
// implementation; the render-time snapshot in the viewmodel package mirrors
// them for conditional UI only and is never a security boundary.
//
// Every predicate fails closed: a nil session, an empty permission list, or
// a malformed permission string all yield false. None of them ever error.

// PermissionString builds the canonical "<resource>:<action>" form.
func PermissionString(resource, action string) string {
	return resource + ":" + action
}

// CheckPermission reports whether the session holds the exact permission.
func CheckPermission(s *Session, perm string) bool {
	if s == nil || perm == "" {
		return false
	}
	for _, p := range s.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// CheckResourceAccess reports whether the session may perform action on resource.
func CheckResourceAccess(s *Session, resource, action string) bool {
	if resource == "" || action == "" {
		return false
	}
	return CheckPermission(s, PermissionString(resource, action))
}

// CheckAnyPermission reports whether the session holds at least one of perms.
// An empty perms list yields false.
func CheckAnyPermission(s *Session, perms []string) bool {
	for _, p := range perms {
		if CheckPermission(s, p) {
			return true
		}
	}
	return false
}

// CheckAllPermissions reports whether the session holds every one of perms.
// An empty perms list yields false: "all of nothing" is not an affordance.
func CheckAllPermissions(s *Session, perms []string) bool {
	if len(perms) == 0 {
		return false
	}
	for _, p := range perms {
		if !CheckPermission(s, p) {
			return false
		}
	}
	return true
}

// ValidPermission reports whether perm is syntactically a
// "<resource>:<action>" string with non-empty halves.
func ValidPermission(perm string) bool {
	resource, action, ok := strings.Cut(perm, ":")
	return ok && resource != "" && action != ""
}
