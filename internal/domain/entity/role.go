// Package entity contains the core business objects of the project.
package entity

import (
	"slices"
	"strings"
)

// Roles is the set of role names held by a user.
type Roles []string

// Contains checks if the roles slice contains a specific role.
func (rs Roles) Contains(role string) bool {
	return slices.Contains(rs, role)
}

// Without returns a copy of the roles with role removed.
func (rs Roles) Without(role string) Roles {
	return slices.DeleteFunc(slices.Clone(rs), func(r string) bool { return r == role })
}

// Sorted returns a sorted copy, used for stable output.
func (rs Roles) Sorted() Roles {
	out := slices.Clone(rs)
	slices.Sort(out)

	return out
}

// IsValidRoleName reports whether s can be stored as a role name.
func IsValidRoleName(s string) bool {
	return strings.TrimSpace(s) != ""
}
