package usecase

import "context"

// LoginIssue describes one disagreement between a user's login list and the login index.
type LoginIssue struct {
	Key         string `json:"key"`
	UserID      string `json:"userId"`
	Provider    string `json:"provider"`
	ProviderKey string `json:"providerKey"`
	// IndexedUserID is the user the index entry points at, empty when the entry is missing.
	IndexedUserID string `json:"indexedUserId,omitempty"`
}

// ConsistencyReport is the result of comparing every user's logins with the login index.
type ConsistencyReport struct {
	Users        int `json:"users"`
	IndexEntries int `json:"indexEntries"`

	// Missing lists logins on a user without an index entry pointing back at that user.
	Missing []LoginIssue `json:"missing"`

	// Orphans lists index entries with no matching login on the user they point at.
	Orphans []LoginIssue `json:"orphans"`

	// Conflicts lists logins claimed by more than one user. The index keeps its current owner
	// and Repair leaves them for an operator.
	Conflicts []LoginIssue `json:"conflicts"`
}

// Consistent reports whether the report found no issue.
func (r *ConsistencyReport) Consistent() bool {
	return len(r.Missing) == 0 && len(r.Orphans) == 0 && len(r.Conflicts) == 0
}

// ConsistencyUsecase audits and repairs the login index against user documents.
type ConsistencyUsecase interface {
	// Check reports index drift without changing anything.
	Check(ctx context.Context) (*ConsistencyReport, error)

	// Repair rewrites the index from the users' login lists in one unit of work and
	// returns the report of what was fixed.
	Repair(ctx context.Context) (*ConsistencyReport, error)
}
