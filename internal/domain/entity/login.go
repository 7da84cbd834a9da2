// Package entity contains the core business objects of the project.
package entity

import "net/url"

// LoginKeyPrefix starts the key of every login index entry.
const LoginKeyPrefix = "Logins/"

// LoginKey returns the index key for the pair.
// Both parts are path-escaped, so "/" and "%" inside them cannot collide with the separator
// and distinct pairs always map to distinct keys.
func LoginKey(provider, providerKey string) string {
	return LoginKeyPrefix + url.PathEscape(provider) + "/" + url.PathEscape(providerKey)
}

// LoginIndexEntry maps one external login back to the user that owns it.
// It is derived state: the owning user's Logins list is the source of truth.
type LoginIndexEntry struct {
	Key         string // Derived key, see LoginKey.
	UserID      string // ID of the user whose Logins contain this pair.
	Provider    string // Denormalized copy of the login provider.
	ProviderKey string // Denormalized copy of the provider key.
}

// Matches reports whether the entry describes the given login pair.
func (e *LoginIndexEntry) Matches(provider, providerKey string) bool {
	return e.Provider == provider && e.ProviderKey == providerKey
}
