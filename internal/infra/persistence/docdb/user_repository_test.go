package docdb

import (
	"context"
	"testing"

	"userstore/internal/domain/entity"
	domainerrors "userstore/internal/domain/errors"
	"userstore/internal/domain/repository"
	"userstore/internal/errors"
	"userstore/internal/infra/persistence/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	tm, _ := newTestTransactionManager(t)

	uow := tm.Begin(ctx)
	user := &entity.User{UserName: "Alice", Email: "Alice@Example.com"}
	require.NoError(t, uow.UserRepo().Create(ctx, user))
	assert.NotEmpty(t, user.ID)
	assert.NotEmpty(t, user.SecurityStamp)
	assert.Equal(t, "alice", user.NormalizedUserName)
	require.NoError(t, uow.SaveChanges(ctx))

	read := tm.Begin(ctx)
	byID, err := read.UserRepo().FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotSame(t, user, byID)
	assert.Equal(t, "Alice", byID.UserName)
	assert.False(t, byID.CreatedAt.IsZero())

	byName, err := read.UserRepo().FindByName(ctx, "ALICE")
	require.NoError(t, err)
	assert.Same(t, byID, byName)

	byEmail, err := read.UserRepo().FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Same(t, byID, byEmail)

	_, err = read.UserRepo().FindByName(ctx, "bob")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUserRepository_CreateValidation(t *testing.T) {
	ctx := context.Background()
	tm, _ := newTestTransactionManager(t)

	uow := tm.Begin(ctx)
	err := uow.UserRepo().Create(ctx, &entity.User{ID: "u1", UserName: "  "})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	assert.False(t, uow.HasChanges())
}

func TestUserRepository_CreateInvalidLoginsStageNothing(t *testing.T) {
	ctx := context.Background()
	tm, _ := newTestTransactionManager(t)

	tests := []struct {
		name    string
		logins  []entity.UserLogin
		wantErr error
	}{
		{
			name:    "empty provider key",
			logins:  []entity.UserLogin{{LoginProvider: "Google"}},
			wantErr: domainerrors.ErrValidationFailed,
		},
		{
			name:    "empty provider",
			logins:  []entity.UserLogin{{LoginProvider: "Google", ProviderKey: "g1"}, {ProviderKey: "y1"}},
			wantErr: domainerrors.ErrValidationFailed,
		},
		{
			name:    "pair listed twice",
			logins:  []entity.UserLogin{{LoginProvider: "Google", ProviderKey: "g1"}, {LoginProvider: "Google", ProviderKey: "g1"}},
			wantErr: domainerrors.ErrDuplicateLogin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uow := tm.Begin(ctx)
			user := &entity.User{UserName: "alice", Logins: tt.logins}

			err := uow.UserRepo().Create(ctx, user)
			require.ErrorIs(t, err, tt.wantErr)
			assert.False(t, uow.HasChanges())
			assert.Empty(t, user.ID)

			require.NoError(t, uow.SaveChanges(ctx))
		})
	}

	users, err := tm.Begin(ctx).UserRepo().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
	assertIndexConsistent(t, tm)
}

func TestUserRepository_CreateDuplicateIdentityStagesNothing(t *testing.T) {
	ctx := context.Background()
	tm, _ := newTestTransactionManager(t)
	seedUser(t, tm, "u1", "alice")

	uow := tm.Begin(ctx)
	err := uow.UserRepo().Create(ctx, &entity.User{ID: "u1", UserName: "mallory"})
	require.ErrorIs(t, err, domainerrors.ErrDuplicateIdentity)
	assert.False(t, uow.HasChanges())

	stored, err := tm.Begin(ctx).UserRepo().FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.UserName)
}

func TestUserRepository_ConcurrentCreateSameID(t *testing.T) {
	ctx := context.Background()
	tm, _ := newTestTransactionManager(t)

	first := tm.Begin(ctx)
	second := tm.Begin(ctx)
	require.NoError(t, first.UserRepo().Create(ctx, &entity.User{ID: "u1", UserName: "alice"}))
	require.NoError(t, second.UserRepo().Create(ctx, &entity.User{ID: "u1", UserName: "bob"}))

	require.NoError(t, first.SaveChanges(ctx))
	assert.ErrorIs(t, second.SaveChanges(ctx), domainerrors.ErrDuplicateIdentity)
}

func TestUserRepository_AliceLoginLifecycle(t *testing.T) {
	ctx := context.Background()
	tm, _ := newTestTransactionManager(t)
	seedUser(t, tm, "u1", "alice")

	// AddLogin then commit: the login resolves through the index.
	uow := tm.Begin(ctx)
	alice, err := uow.UserRepo().FindByID(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, uow.UserRepo().AddLogin(ctx, alice, entity.UserLogin{LoginProvider: "Google", ProviderKey: "g-123"}))
	require.NoError(t, uow.SaveChanges(ctx))

	read := tm.Begin(ctx)
	found, err := read.UserRepo().FindByLogin(ctx, "Google", "g-123")
	require.NoError(t, err)
	assert.Equal(t, "u1", found.ID)
	owner, err := read.LoginRepo().FindUserID(ctx, "Google", "g-123")
	require.NoError(t, err)
	assert.Equal(t, "u1", owner)
	assertIndexConsistent(t, tm)

	// RemoveLogin then commit: neither the list nor the index keeps it.
	uow = tm.Begin(ctx)
	alice, err = uow.UserRepo().FindByID(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, uow.UserRepo().RemoveLogin(ctx, alice, "Google", "g-123"))
	require.NoError(t, uow.SaveChanges(ctx))

	read = tm.Begin(ctx)
	_, err = read.UserRepo().FindByLogin(ctx, "Google", "g-123")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	entries, err := read.LoginRepo().ListAll(ctx, entity.LoginKeyPrefix)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assertIndexConsistent(t, tm)
}

func TestUserRepository_RemoveAbsentLoginChangesNothing(t *testing.T) {
	ctx := context.Background()
	tm, _ := newTestTransactionManager(t)
	seedUser(t, tm, "u1", "alice")

	uow := tm.Begin(ctx)
	alice, err := uow.UserRepo().FindByID(ctx, "u1")
	require.NoError(t, err)
	stamp := alice.SecurityStamp

	err = uow.UserRepo().RemoveLogin(ctx, alice, "Google", "nope")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.False(t, uow.HasChanges())
	assert.Equal(t, stamp, alice.SecurityStamp)
}

func TestUserRepository_AddLoginDuplicates(t *testing.T) {
	ctx := context.Background()
	tm, _ := newTestTransactionManager(t)
	seedUser(t, tm, "u1", "alice")
	seedUser(t, tm, "u2", "bob")

	uow := tm.Begin(ctx)
	alice, err := uow.UserRepo().FindByID(ctx, "u1")
	require.NoError(t, err)
	login := entity.UserLogin{LoginProvider: "Google", ProviderKey: "g1"}
	require.NoError(t, uow.UserRepo().AddLogin(ctx, alice, login))

	// Already on the user's own list.
	assert.ErrorIs(t, uow.UserRepo().AddLogin(ctx, alice, login), domainerrors.ErrDuplicateLogin)
	require.NoError(t, uow.SaveChanges(ctx))

	// Indexed for another user.
	uow = tm.Begin(ctx)
	bob, err := uow.UserRepo().FindByID(ctx, "u2")
	require.NoError(t, err)
	assert.ErrorIs(t, uow.UserRepo().AddLogin(ctx, bob, login), domainerrors.ErrDuplicateLogin)
	assert.Empty(t, bob.Logins)
	assert.False(t, uow.HasChanges())

	// Keys differ only in case are different logins.
	require.NoError(t, uow.UserRepo().AddLogin(ctx, bob, entity.UserLogin{LoginProvider: "Google", ProviderKey: "G1"}))
	require.NoError(t, uow.SaveChanges(ctx))
	assertIndexConsistent(t, tm)
}

func TestUserRepository_RacingAddLoginOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	tm, _ := newTestTransactionManager(t)
	seedUser(t, tm, "u1", "alice")
	seedUser(t, tm, "u2", "bob")
	login := entity.UserLogin{LoginProvider: "Google", ProviderKey: "shared"}

	first := tm.Begin(ctx)
	alice, err := first.UserRepo().FindByID(ctx, "u1")
	require.NoError(t, err)
	second := tm.Begin(ctx)
	bob, err := second.UserRepo().FindByID(ctx, "u2")
	require.NoError(t, err)

	// Both pass their checks before either commits.
	require.NoError(t, first.UserRepo().AddLogin(ctx, alice, login))
	require.NoError(t, second.UserRepo().AddLogin(ctx, bob, login))

	require.NoError(t, first.SaveChanges(ctx))
	assert.ErrorIs(t, second.SaveChanges(ctx), domainerrors.ErrDuplicateLogin)

	read := tm.Begin(ctx)
	owner, err := read.LoginRepo().FindUserID(ctx, "Google", "shared")
	require.NoError(t, err)
	assert.Equal(t, "u1", owner)
	storedBob, err := read.UserRepo().FindByID(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, storedBob.Logins)
	assertIndexConsistent(t, tm)
}

func TestUserRepository_FailedCommitLeavesNoPartialWrites(t *testing.T) {
	ctx := context.Background()
	tm, _ := newTestTransactionManager(t)
	seedUser(t, tm, "u1", "alice")

	stale := tm.Begin(ctx)
	staleAlice, err := stale.UserRepo().FindByID(ctx, "u1")
	require.NoError(t, err)

	other := tm.Begin(ctx)
	otherAlice, err := other.UserRepo().FindByID(ctx, "u1")
	require.NoError(t, err)
	otherAlice.Email = "alice@example.com"
	require.NoError(t, other.UserRepo().Update(ctx, otherAlice))
	require.NoError(t, other.SaveChanges(ctx))

	// The index create applies first; the stale user replace then fails and the create is undone.
	require.NoError(t, stale.UserRepo().AddLogin(ctx, staleAlice, entity.UserLogin{LoginProvider: "Google", ProviderKey: "g1"}))
	require.ErrorIs(t, stale.SaveChanges(ctx), domainerrors.ErrConcurrencyConflict)

	read := tm.Begin(ctx)
	_, err = read.LoginRepo().Find(ctx, "Google", "g1")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	stored, err := read.UserRepo().FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", stored.Email)
	assert.Empty(t, stored.Logins)
	assertIndexConsistent(t, tm)
}

func TestUserRepository_CreateWithLoginsAndFindByLoginIdentityMap(t *testing.T) {
	ctx := context.Background()
	tm, coll := newTestTransactionManager(t)

	const (
		userName    = "DavidBoike"
		userID      = "user_id_1"
		googleLogin = "http://www.google.com/fake/user/identifier"
		yahooLogin  = "http://www.yahoo.com/fake/user/identifier"
	)

	user := &entity.User{ID: userID, UserName: userName, PasswordHash: "hashed"}
	err := tm.Execute(ctx, func(f repository.RepositoryFactory) error {
		if err := f.UserRepo().Create(ctx, user); err != nil {
			return err
		}
		if err := f.UserRepo().AddLogin(ctx, user, entity.UserLogin{LoginProvider: "Google", ProviderKey: googleLogin, ProviderDisplayName: "GoogleDisplayName"}); err != nil {
			return err
		}

		return f.UserRepo().AddLogin(ctx, user, entity.UserLogin{LoginProvider: "Yahoo", ProviderKey: yahooLogin, ProviderDisplayName: "YahooDisplayName"})
	})
	require.NoError(t, err)

	read := tm.Begin(ctx)
	loaded, err := read.UserRepo().FindByID(ctx, userID)
	require.NoError(t, err)
	assert.NotSame(t, user, loaded)
	assert.Equal(t, userName, loaded.UserName)
	assert.NotEmpty(t, loaded.PasswordHash)
	require.Len(t, loaded.Logins, 2)
	assert.True(t, loaded.HasLogin("Google", googleLogin))
	assert.True(t, loaded.HasLogin("Yahoo", yahooLogin))

	entries, err := read.LoginRepo().ListAll(ctx, entity.LoginKeyPrefix)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	for _, login := range loaded.Logins {
		doc := &model.LoginDocument{Key: entity.LoginKey(login.LoginProvider, login.ProviderKey)}
		require.NoError(t, coll.Get(ctx, doc))
		assert.Equal(t, login.LoginProvider, doc.Provider)
		assert.Equal(t, login.ProviderKey, doc.ProviderKey)
		assert.Equal(t, userID, doc.UserID)
	}

	lookup := tm.Begin(ctx)
	byName, err := lookup.UserRepo().FindByName(ctx, userName)
	require.NoError(t, err)
	byGoogle, err := lookup.UserRepo().FindByLogin(ctx, "Google", googleLogin)
	require.NoError(t, err)
	byYahoo, err := lookup.UserRepo().FindByLogin(ctx, "Yahoo", yahooLogin)
	require.NoError(t, err)

	assert.Equal(t, userID, byName.ID)
	assert.Same(t, byName, byGoogle)
	assert.Same(t, byName, byYahoo)
	assert.False(t, lookup.HasChanges())
	require.NoError(t, lookup.SaveChanges(ctx))
}

func TestUserRepository_FindByLoginOrphan(t *testing.T) {
	ctx := context.Background()
	tm, _ := newTestTransactionManager(t)
	seedUser(t, tm, "u1", "alice")

	uow := tm.Begin(ctx)
	require.NoError(t, uow.LoginRepo().Upsert(ctx, "Google", "ghost", "u404"))
	require.NoError(t, uow.LoginRepo().Upsert(ctx, "Google", "unlisted", "u1"))
	require.NoError(t, uow.SaveChanges(ctx))

	read := tm.Begin(ctx)
	_, err := read.UserRepo().FindByLogin(ctx, "Google", "ghost")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = read.UserRepo().FindByLogin(ctx, "Google", "unlisted")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUserRepository_UpdateStaleIsConcurrencyConflict(t *testing.T) {
	ctx := context.Background()
	tm, _ := newTestTransactionManager(t)
	seedUser(t, tm, "u1", "alice")

	first := tm.Begin(ctx)
	a1, err := first.UserRepo().FindByID(ctx, "u1")
	require.NoError(t, err)
	second := tm.Begin(ctx)
	a2, err := second.UserRepo().FindByID(ctx, "u1")
	require.NoError(t, err)

	a1.UserName = "alice-1"
	require.NoError(t, first.UserRepo().Update(ctx, a1))
	require.NoError(t, first.SaveChanges(ctx))

	a2.UserName = "alice-2"
	require.NoError(t, second.UserRepo().Update(ctx, a2))
	assert.ErrorIs(t, second.SaveChanges(ctx), domainerrors.ErrConcurrencyConflict)

	stored, err := tm.Begin(ctx).UserRepo().FindByName(ctx, "ALICE-1")
	require.NoError(t, err)
	assert.Equal(t, "alice-1", stored.UserName)
}

func TestUserRepository_UpdateMissing(t *testing.T) {
	ctx := context.Background()
	tm, _ := newTestTransactionManager(t)

	err := tm.Begin(ctx).UserRepo().Update(ctx, &entity.User{ID: "u404", UserName: "ghost"})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUserRepository_UpdateSyncsLoginIndex(t *testing.T) {
	ctx := context.Background()
	tm, _ := newTestTransactionManager(t)
	seedUser(t, tm, "u1", "alice")

	err := tm.Execute(ctx, func(f repository.RepositoryFactory) error {
		alice, err := f.UserRepo().FindByID(ctx, "u1")
		if err != nil {
			return err
		}
		alice.Logins = []entity.UserLogin{{LoginProvider: "Google", ProviderKey: "g1"}, {LoginProvider: "Yahoo", ProviderKey: "y1"}}

		return f.UserRepo().Update(ctx, alice)
	})
	require.NoError(t, err)
	assertIndexConsistent(t, tm)

	err = tm.Execute(ctx, func(f repository.RepositoryFactory) error {
		alice, err := f.UserRepo().FindByID(ctx, "u1")
		if err != nil {
			return err
		}
		alice.Logins = alice.Logins[1:]

		return f.UserRepo().Update(ctx, alice)
	})
	require.NoError(t, err)
	assertIndexConsistent(t, tm)

	_, err = tm.Begin(ctx).LoginRepo().Find(ctx, "Google", "g1")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUserRepository_UpdateRejectsRepeatedLogin(t *testing.T) {
	ctx := context.Background()
	tm, _ := newTestTransactionManager(t)
	seedUser(t, tm, "u1", "alice")

	uow := tm.Begin(ctx)
	alice, err := uow.UserRepo().FindByID(ctx, "u1")
	require.NoError(t, err)
	login := entity.UserLogin{LoginProvider: "Google", ProviderKey: "g1"}
	alice.Logins = append(alice.Logins, login, login)

	err = uow.UserRepo().Update(ctx, alice)
	require.ErrorIs(t, err, domainerrors.ErrDuplicateLogin)
	assert.False(t, uow.HasChanges())
	require.NoError(t, uow.SaveChanges(ctx))

	stored, err := tm.Begin(ctx).UserRepo().FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, stored.Logins)
	assertIndexConsistent(t, tm)
}

func TestUserRepository_FailedMutationLeavesEntityUnchanged(t *testing.T) {
	ctx := context.Background()
	tm, _ := newTestTransactionManager(t)
	repo := tm.Begin(ctx).UserRepo()

	ghost := &entity.User{ID: "ghost", UserName: "ghost", PasswordHash: "old", SecurityStamp: "stamp"}

	err := repo.AddLogin(ctx, ghost, entity.UserLogin{LoginProvider: "Google", ProviderKey: "g1"})
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
	err = repo.AddRole(ctx, ghost, "admin")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
	err = repo.SetPasswordHash(ctx, ghost, "new")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	assert.Empty(t, ghost.Logins)
	assert.Empty(t, ghost.Roles)
	assert.Equal(t, "old", ghost.PasswordHash)
	assert.Equal(t, "stamp", ghost.SecurityStamp)
}

func TestUserRepository_DeleteRemovesIndexEntries(t *testing.T) {
	ctx := context.Background()
	tm, _ := newTestTransactionManager(t)
	seedUser(t, tm, "u1", "alice")

	err := tm.Execute(ctx, func(f repository.RepositoryFactory) error {
		alice, err := f.UserRepo().FindByID(ctx, "u1")
		if err != nil {
			return err
		}

		return f.UserRepo().AddLogin(ctx, alice, entity.UserLogin{LoginProvider: "Google", ProviderKey: "g1"})
	})
	require.NoError(t, err)

	err = tm.Execute(ctx, func(f repository.RepositoryFactory) error {
		alice, err := f.UserRepo().FindByID(ctx, "u1")
		if err != nil {
			return err
		}

		return f.UserRepo().Delete(ctx, alice)
	})
	require.NoError(t, err)

	read := tm.Begin(ctx)
	_, err = read.UserRepo().FindByID(ctx, "u1")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	entries, err := read.LoginRepo().ListAll(ctx, entity.LoginKeyPrefix)
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.ErrorIs(t, read.UserRepo().Delete(ctx, &entity.User{ID: "u1"}), domainerrors.ErrNotFound)
}

func TestUserRepository_Roles(t *testing.T) {
	ctx := context.Background()
	tm, _ := newTestTransactionManager(t)
	seedUser(t, tm, "u1", "alice")

	uow := tm.Begin(ctx)
	repo := uow.UserRepo()
	alice, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, repo.AddRole(ctx, alice, "admin"))
	require.NoError(t, repo.AddRole(ctx, alice, "editor"))
	assert.ErrorIs(t, repo.AddRole(ctx, alice, "admin"), domainerrors.ErrDuplicateRole)
	assert.ErrorIs(t, repo.AddRole(ctx, alice, " "), domainerrors.ErrValidationFailed)
	assert.ErrorIs(t, repo.RemoveRole(ctx, alice, "owner"), domainerrors.ErrNotFound)
	require.NoError(t, repo.RemoveRole(ctx, alice, "editor"))
	require.NoError(t, uow.SaveChanges(ctx))

	read := tm.Begin(ctx)
	stored, err := read.UserRepo().FindByID(ctx, "u1")
	require.NoError(t, err)
	roles, err := read.UserRepo().GetRoles(ctx, stored)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin"}, roles)

	inRole, err := read.UserRepo().IsInRole(ctx, stored, "admin")
	require.NoError(t, err)
	assert.True(t, inRole)
	inRole, err = read.UserRepo().IsInRole(ctx, stored, "Admin")
	require.NoError(t, err)
	assert.False(t, inRole)
}

func TestUserRepository_SetPasswordHashRotatesStamp(t *testing.T) {
	ctx := context.Background()
	tm, _ := newTestTransactionManager(t)
	seedUser(t, tm, "u1", "alice")

	uow := tm.Begin(ctx)
	alice, err := uow.UserRepo().FindByID(ctx, "u1")
	require.NoError(t, err)
	stamp := alice.SecurityStamp

	require.NoError(t, uow.UserRepo().SetPasswordHash(ctx, alice, "new-hash"))
	assert.NotEqual(t, stamp, alice.SecurityStamp)
	require.NoError(t, uow.SaveChanges(ctx))

	stored, err := tm.Begin(ctx).UserRepo().FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "new-hash", stored.PasswordHash)
	logins, err := tm.Begin(ctx).UserRepo().GetLogins(ctx, stored)
	require.NoError(t, err)
	assert.Empty(t, logins)
}

func TestTransactionManager_ExecuteDiscardsOnError(t *testing.T) {
	ctx := context.Background()
	tm, _ := newTestTransactionManager(t)
	boom := errors.New("boom")

	err := tm.Execute(ctx, func(f repository.RepositoryFactory) error {
		if err := f.UserRepo().Create(ctx, &entity.User{ID: "u1", UserName: "alice"}); err != nil {
			return err
		}

		return boom
	})
	require.ErrorIs(t, err, boom)

	users, err := tm.Begin(ctx).UserRepo().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserRepository_ListIncludesStagedUsers(t *testing.T) {
	ctx := context.Background()
	tm, _ := newTestTransactionManager(t)
	seedUser(t, tm, "u1", "alice")

	uow := tm.Begin(ctx)
	require.NoError(t, uow.UserRepo().Create(ctx, &entity.User{ID: "u2", UserName: "bob"}))

	users, err := uow.UserRepo().List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u1", users[0].ID)
	assert.Equal(t, "u2", users[1].ID)

	byName, err := uow.UserRepo().FindByName(ctx, "BOB")
	require.NoError(t, err)
	assert.Equal(t, "u2", byName.ID)
}
