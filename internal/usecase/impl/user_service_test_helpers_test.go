package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"userstore/config"
	"userstore/internal/domain/repository"
	"userstore/internal/domain/service"
	"userstore/internal/infra/auth"
	"userstore/internal/infra/persistence/docdb"
	"userstore/internal/infra/text"
	"userstore/internal/usecase"

	"github.com/stretchr/testify/require"
	"gocloud.dev/docstore"
	"gocloud.dev/docstore/memdocstore"
	"golang.org/x/crypto/bcrypt"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig(bcryptCost int, requireUniqueUserName bool) *config.Config {
	return &config.Config{
		Auth:     &config.AuthConfig{BcryptCost: bcryptCost},
		Identity: &config.IdentityConfig{RequireUniqueUserName: requireUniqueUserName},
	}
}

type testEnv struct {
	cfg       *config.Config
	coll      *docstore.Collection
	txManager repository.TransactionManager
	hasher    service.PasswordHasher
	users     usecase.UserUsecase
	checker   usecase.ConsistencyUsecase
}

type testEnvOption func(*testEnv)

func withConfig(cfg *config.Config) testEnvOption {
	return func(env *testEnv) { env.cfg = cfg }
}

func withHasher(hasher service.PasswordHasher) testEnvOption {
	return func(env *testEnv) { env.hasher = hasher }
}

// newTestEnv wires the services over an in-memory collection the same way the application does.
func newTestEnv(t *testing.T, opts ...testEnvOption) *testEnv {
	t.Helper()

	coll, err := memdocstore.OpenCollection("id", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = coll.Close() })

	env := &testEnv{
		cfg:  newTestConfig(bcrypt.MinCost, true),
		coll: coll,
	}
	for _, opt := range opts {
		opt(env)
	}
	if env.hasher == nil {
		env.hasher = auth.NewBcryptHasher(env.cfg)
	}

	logger := newDiscardLogger()
	env.txManager = docdb.NewTransactionManager(docdb.TransactionParams{
		Collection: coll,
		Normalizer: text.NewLookupNormalizer(),
		Logger:     logger,
	})
	env.users = NewUserService(UserServiceParams{
		TxManager: env.txManager,
		Hasher:    env.hasher,
		Config:    env.cfg,
		Logger:    logger,
	})
	env.checker = NewConsistencyService(ConsistencyServiceParams{
		TxManager: env.txManager,
		Logger:    logger,
	})

	return env
}

func (env *testEnv) createUser(t *testing.T, id, userName, password string) {
	t.Helper()

	_, err := env.users.CreateUser(context.Background(), &usecase.CreateUserInput{
		ID:       id,
		UserName: userName,
		Password: password,
	})
	require.NoError(t, err)
}
