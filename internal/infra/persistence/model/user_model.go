package model

import (
	"slices"
	"time"
)

// UserDocument is the stored form of a user, keyed "Users/<userId>".
type UserDocument struct {
	Key                string             `docstore:"id"`
	Kind               string             `docstore:"kind"`
	UserID             string             `docstore:"userId"`
	UserName           string             `docstore:"userName"`
	NormalizedUserName string             `docstore:"normalizedUserName"`
	Email              string             `docstore:"email"`
	NormalizedEmail    string             `docstore:"normalizedEmail"`
	PasswordHash       string             `docstore:"passwordHash"`
	SecurityStamp      string             `docstore:"securityStamp"`
	Logins             []UserLoginElement `docstore:"logins"`
	Roles              []string           `docstore:"roles"`
	CreatedAt          time.Time          `docstore:"createdAt"`
	UpdatedAt          time.Time          `docstore:"updatedAt"`

	DocstoreRevision any
}

// UserLoginElement is one entry of the embedded login list.
type UserLoginElement struct {
	LoginProvider       string `docstore:"loginProvider"`
	ProviderKey         string `docstore:"providerKey"`
	ProviderDisplayName string `docstore:"providerDisplayName"`
}

// DocumentKey implements Document.
func (d *UserDocument) DocumentKey() string {
	return d.Key
}

// Snapshot implements Document.
func (d *UserDocument) Snapshot() Document {
	cp := *d
	cp.Logins = slices.Clone(d.Logins)
	cp.Roles = slices.Clone(d.Roles)
	cp.DocstoreRevision = nil

	return &cp
}

// Revision implements Document.
func (d *UserDocument) Revision() any {
	return d.DocstoreRevision
}

// SetRevision implements Document.
func (d *UserDocument) SetRevision(rev any) {
	d.DocstoreRevision = rev
}
