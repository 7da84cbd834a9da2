// Package model contains the persistence representations stored in the document collection.
package model

// Document is a record stored in the shared collection under a derived key.
type Document interface {
	// DocumentKey returns the key the document is stored under.
	DocumentKey() string

	// Snapshot returns a deep copy with the revision cleared, suitable for an unconditional write.
	Snapshot() Document

	// Revision returns the store revision the document was read or written at, nil when never stored.
	Revision() any

	// SetRevision overwrites the store revision.
	SetRevision(rev any)
}

// Document kinds. Every document carries its kind so queries never decode a foreign shape.
const (
	KindUser  = "user"
	KindLogin = "login"
)

// Field paths used in collection queries.
const (
	FieldKind               = "kind"
	FieldNormalizedUserName = "normalizedUserName"
	FieldNormalizedEmail    = "normalizedEmail"
)
