package repository

import "context"

// TransactionManager opens units of work over the document store.
// This allows the use case layer to group writes without depending on a specific store driver.
type TransactionManager interface {
	// Execute runs fn within a new unit of work.
	// If fn returns an error the staged writes are discarded. Otherwise they are saved atomically.
	Execute(ctx context.Context, fn func(repoFactory RepositoryFactory) error) error

	// Begin opens a unit of work that the caller saves explicitly.
	Begin(ctx context.Context) UnitOfWork
}

// RepositoryFactory provides repository instances bound to one unit of work.
// Repeated reads through the same factory observe the same staged state.
type RepositoryFactory interface {
	// UserRepo returns the user record store bound to the current unit of work.
	UserRepo() UserRepository

	// LoginRepo returns the login index bound to the current unit of work.
	LoginRepo() LoginRepository
}

// UnitOfWork is a caller-held context that stages writes for one atomic save.
type UnitOfWork interface {
	RepositoryFactory

	// SaveChanges flushes every staged write. On failure no staged write remains applied.
	SaveChanges(ctx context.Context) error

	// HasChanges reports whether any write is staged.
	HasChanges() bool
}
