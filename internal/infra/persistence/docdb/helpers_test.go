package docdb

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"userstore/internal/domain/entity"
	"userstore/internal/domain/repository"
	"userstore/internal/infra/text"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/docstore"
	"gocloud.dev/docstore/memdocstore"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCollection(t *testing.T) *docstore.Collection {
	t.Helper()

	coll, err := memdocstore.OpenCollection("id", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = coll.Close() })

	return coll
}

func newTestTransactionManager(t *testing.T) (repository.TransactionManager, *docstore.Collection) {
	t.Helper()

	coll := newTestCollection(t)
	tm := NewTransactionManager(TransactionParams{
		Collection: coll,
		Normalizer: text.NewLookupNormalizer(),
		Logger:     newTestLogger(),
	})

	return tm, coll
}

// seedUser commits a user with the given id and name in its own unit of work.
func seedUser(t *testing.T, tm repository.TransactionManager, id, name string) {
	t.Helper()

	err := tm.Execute(context.Background(), func(f repository.RepositoryFactory) error {
		return f.UserRepo().Create(context.Background(), &entity.User{ID: id, UserName: name})
	})
	require.NoError(t, err)
}

// assertIndexConsistent checks, from a fresh unit of work, that every user login has an index
// entry pointing back at its user and that every index entry is backed by such a login.
func assertIndexConsistent(t *testing.T, tm repository.TransactionManager) {
	t.Helper()

	ctx := context.Background()
	uow := tm.Begin(ctx)

	users, err := uow.UserRepo().List(ctx)
	require.NoError(t, err)
	entries, err := uow.LoginRepo().ListAll(ctx, entity.LoginKeyPrefix)
	require.NoError(t, err)

	expected := 0
	for _, u := range users {
		for _, l := range u.Logins {
			expected++
			owner, err := uow.LoginRepo().FindUserID(ctx, l.LoginProvider, l.ProviderKey)
			require.NoError(t, err, "missing index entry for %s/%s", l.LoginProvider, l.ProviderKey)
			assert.Equal(t, u.ID, owner)
		}
	}
	assert.Len(t, entries, expected, "index entries without a matching login")
}
