// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"slices"
	"time"
)

// User is the identity record persisted by the user store.
// Logins and Roles are denormalized onto the user; the login index is derived from Logins.
type User struct {
	ID                 string      // Stable, store-unique identifier. Assigned on create when empty.
	UserName           string      // Display name used for sign-in. Must not be empty.
	NormalizedUserName string      // Case-folded UserName, maintained by the store on every write.
	Email              string      // Optional contact email.
	NormalizedEmail    string      // Case-folded Email.
	PasswordHash       string      // Opaque credential hash, owned by the password hasher.
	SecurityStamp      string      // Random value rotated whenever credentials or logins change.
	Logins             []UserLogin // External logins. (LoginProvider, ProviderKey) pairs are unique.
	Roles              []string    // Role names, treated as a set.
	CreatedAt          time.Time   // Timestamp of when this user was first persisted.
	UpdatedAt          time.Time   // Timestamp of the last persisted modification.
}

// HasLogin reports whether the user already owns the given external login.
// Both values are compared exactly; identity providers issue case-sensitive keys.
func (u *User) HasLogin(provider, providerKey string) bool {
	return u.loginIndex(provider, providerKey) >= 0
}

// AppendLogin adds a login to the user's login list without any duplicate check.
func (u *User) AppendLogin(login UserLogin) {
	u.Logins = append(u.Logins, login)
}

// DropLogin removes the matching login and reports whether it was present.
func (u *User) DropLogin(provider, providerKey string) bool {
	idx := u.loginIndex(provider, providerKey)
	if idx < 0 {
		return false
	}
	u.Logins = slices.Delete(u.Logins, idx, idx+1)

	return true
}

func (u *User) loginIndex(provider, providerKey string) int {
	return slices.IndexFunc(u.Logins, func(l UserLogin) bool {
		return l.LoginProvider == provider && l.ProviderKey == providerKey
	})
}

// HasRole reports whether role is in the user's role set.
func (u *User) HasRole(role string) bool {
	return Roles(u.Roles).Contains(role)
}

// UserLogin is one external login linked to a user, e.g. a Google or Yahoo account.
type UserLogin struct {
	LoginProvider       string // Provider name, e.g. "Google".
	ProviderKey         string // The user's opaque identifier at the provider.
	ProviderDisplayName string // Optional human-readable provider name.
}
