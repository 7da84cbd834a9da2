package model

// LoginDocument is one login index entry, keyed "Logins/<provider>/<providerKey>".
type LoginDocument struct {
	Key         string `docstore:"id"`
	Kind        string `docstore:"kind"`
	UserID      string `docstore:"userId"`
	Provider    string `docstore:"provider"`
	ProviderKey string `docstore:"providerKey"`

	DocstoreRevision any
}

// DocumentKey implements Document.
func (d *LoginDocument) DocumentKey() string {
	return d.Key
}

// Snapshot implements Document.
func (d *LoginDocument) Snapshot() Document {
	cp := *d
	cp.DocstoreRevision = nil

	return &cp
}

// Revision implements Document.
func (d *LoginDocument) Revision() any {
	return d.DocstoreRevision
}

// SetRevision implements Document.
func (d *LoginDocument) SetRevision(rev any) {
	d.DocstoreRevision = rev
}
