package docdb

import (
	"context"
	"log/slog"

	"userstore/internal/domain/repository"
	"userstore/internal/domain/service"

	"go.uber.org/fx"
	"gocloud.dev/docstore"
)

// sessionTransactionManager implements the domain's TransactionManager interface with document sessions.
type sessionTransactionManager struct {
	coll       *docstore.Collection
	normalizer service.LookupNormalizer
	logger     *slog.Logger
}

// unitOfWork implements repository.UnitOfWork. Its repositories are bound to one session,
// so they share the identity map and every write they stage.
type unitOfWork struct {
	session *Session
	users   repository.UserRepository
	logins  repository.LoginRepository
}

// TransactionParams defines the dependencies of the transaction manager
type TransactionParams struct {
	fx.In

	Collection *docstore.Collection
	Normalizer service.LookupNormalizer
	Logger     *slog.Logger
}

// NewTransactionManager is the constructor for sessionTransactionManager.
// This function will be used as an Fx provider.
func NewTransactionManager(params TransactionParams) repository.TransactionManager {
	return &sessionTransactionManager{
		coll:       params.Collection,
		normalizer: params.Normalizer,
		logger:     params.Logger,
	}
}

// Begin opens a unit of work the caller saves explicitly.
func (tm *sessionTransactionManager) Begin(_ context.Context) repository.UnitOfWork {
	session := NewSession(tm.coll, tm.logger)
	logins := NewLoginRepository(session)

	return &unitOfWork{
		session: session,
		users:   NewUserRepository(session, logins, tm.normalizer, tm.logger),
		logins:  logins,
	}
}

// Execute runs fn in a new unit of work and saves it when fn succeeds.
// When fn fails nothing is written; the staged writes are dropped with the session.
func (tm *sessionTransactionManager) Execute(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	uow := tm.Begin(ctx)

	if err := fn(uow); err != nil {
		return err
	}

	return uow.SaveChanges(ctx)
}

// UserRepo returns the user repository bound to the unit of work.
func (u *unitOfWork) UserRepo() repository.UserRepository {
	return u.users
}

// LoginRepo returns the login repository bound to the unit of work.
func (u *unitOfWork) LoginRepo() repository.LoginRepository {
	return u.logins
}

// SaveChanges flushes the staged writes.
func (u *unitOfWork) SaveChanges(ctx context.Context) error {
	return u.session.SaveChanges(ctx)
}

// HasChanges reports whether any write is staged.
func (u *unitOfWork) HasChanges() bool {
	return u.session.HasChanges()
}
