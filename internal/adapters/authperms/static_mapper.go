package authperms

import (
	"sort"
)

// StaticPermissionMapper maps provider groups to permission strings using a
// fixed grants table. Unknown groups contribute nothing; the result is the
// deduplicated union of every matched group's grants.
type StaticPermissionMapper struct {
	// Grants maps a provider group name to the permissions it confers.
	Grants map[string][]string
}

func (m StaticPermissionMapper) Map(groups []string) []string {
	seen := make(map[string]struct{})
	for _, g := range groups {
		for _, perm := range m.Grants[g] {
			seen[perm] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	perms := make([]string, 0, len(seen))
	for p := range seen {
		perms = append(perms, p)
	}
	sort.Strings(perms)
	return perms
}

// DefaultGrants is the standard group-to-permission table for the app.
// Admin groups receive management permissions on top of the user set.
func DefaultGrants(adminGroup, userGroup string) map[string][]string {
	grants := make(map[string][]string)
	userPerms := []string{
		"recordings:read",
		"recordings:write",
		"feedback:read",
		"lessons:read",
		"profile:read",
		"profile:write",
	}
	if userGroup != "" {
		grants[userGroup] = userPerms
	}
	if adminGroup != "" {
		grants[adminGroup] = append(append([]string(nil), userPerms...),
			"lessons:write",
			"users:read",
			"users:write",
			"settings:write",
		)
	}
	return grants
}
