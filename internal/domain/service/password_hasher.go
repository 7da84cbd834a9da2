// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// PasswordHasher turns plaintext passwords into the opaque credential hash stored on a user.
// The user store never inspects the hash.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Check compares a plaintext password with a hash to see if they match.
	Check(password, hash string) bool

	// NeedsRehash reports whether hash was produced with weaker parameters than the current ones.
	NeedsRehash(hash string) bool
}
