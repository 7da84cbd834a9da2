// Package docdb contains the concrete implementation of the persistence layer on a gocloud.dev docstore collection.
package docdb

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"userstore/internal/domain/entity"
	domainerrors "userstore/internal/domain/errors"
	"userstore/internal/domain/repository"
	"userstore/internal/domain/service"
	"userstore/internal/infra/persistence/model"

	"github.com/google/uuid"
)

// userRepository implements repository.UserRepository on a session.
// It keeps the user document list of logins and the login index in step: every staged
// change to a user's logins stages the matching index writes in the same session.
type userRepository struct {
	session    *Session
	logins     repository.LoginRepository
	normalizer service.LookupNormalizer
	logger     *slog.Logger

	// entities maps document keys to the entity handed out for them, so reads within
	// one unit of work return the same *entity.User.
	entities map[string]*entity.User

	now func() time.Time
}

// NewUserRepository is the constructor for userRepository.
func NewUserRepository(
	session *Session,
	logins repository.LoginRepository,
	normalizer service.LookupNormalizer,
	logger *slog.Logger,
) repository.UserRepository {
	return &userRepository{
		session:    session,
		logins:     logins,
		normalizer: normalizer,
		logger:     logger,
		entities:   make(map[string]*entity.User),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create stages a new user document, plus index entries for any logins the user starts with.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	if strings.TrimSpace(user.UserName) == "" {
		return domainerrors.ErrValidationFailed.WithDetails("user name is required")
	}

	if err := validateLogins(user.Logins); err != nil {
		return err
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	} else if err := repo.ensureAbsent(ctx, user.ID); err != nil {
		return err
	}

	for _, login := range user.Logins {
		if err := repo.checkLoginAvailable(ctx, user.ID, login.LoginProvider, login.ProviderKey); err != nil {
			return err
		}
	}

	now := repo.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.SecurityStamp == "" {
		user.SecurityStamp = uuid.New().String()
	}
	repo.normalize(user)

	doc := &model.UserDocument{Key: UserKey(user.ID), Kind: model.KindUser}
	applyUser(doc, user)
	if err := repo.session.Store(doc); err != nil {
		return err
	}
	repo.entities[doc.Key] = user

	for _, login := range user.Logins {
		if err := repo.logins.Upsert(ctx, login.LoginProvider, login.ProviderKey, user.ID); err != nil {
			return err
		}
	}

	return nil
}

func (repo *userRepository) ensureAbsent(ctx context.Context, userID string) error {
	_, err := LoadDocument(ctx, repo.session, &model.UserDocument{Key: UserKey(userID)})
	switch {
	case err == nil:
		return domainerrors.ErrDuplicateIdentity.WithDetails(UserKey(userID))
	case domainerrors.IsNotFound(err):
		return nil
	default:
		return err
	}
}

// FindByID retrieves a user by ID.
func (repo *userRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if id == "" {
		return nil, domainerrors.ErrNotFound.WithDetails("empty user id")
	}

	doc, err := LoadDocument(ctx, repo.session, &model.UserDocument{Key: UserKey(id)})
	if err != nil {
		return nil, err
	}

	return repo.entityFor(doc), nil
}

// FindByName retrieves a user by normalized user name. When several users share the name
// the one with the lowest key wins.
func (repo *userRepository) FindByName(ctx context.Context, userName string) (*entity.User, error) {
	normalized := repo.normalizer.NormalizeName(userName)

	return repo.findOneBy(ctx, model.FieldNormalizedUserName, normalized, func(d *model.UserDocument) bool {
		return d.NormalizedUserName == normalized
	})
}

// FindByEmail retrieves a user by normalized email.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	normalized := repo.normalizer.NormalizeEmail(email)
	if normalized == "" {
		return nil, domainerrors.ErrNotFound.WithDetails("empty email")
	}

	return repo.findOneBy(ctx, model.FieldNormalizedEmail, normalized, func(d *model.UserDocument) bool {
		return d.NormalizedEmail == normalized
	})
}

func (repo *userRepository) findOneBy(ctx context.Context, field, value string, match func(*model.UserDocument) bool) (*entity.User, error) {
	docs, err := QueryDocuments(ctx, repo.session, model.KindUser, newUserDocument, match,
		Filter{Field: field, Op: "=", Value: value})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domainerrors.ErrNotFound.WithDetails(field + "=" + value)
	}
	if len(docs) > 1 {
		repo.logger.WarnContext(ctx, "Lookup matched several users",
			slog.String("field", field),
			slog.Int("matches", len(docs)),
		)
	}

	return repo.entityFor(docs[0]), nil
}

// Update stages the user's current state, syncing the login index with any change to its logins.
func (repo *userRepository) Update(ctx context.Context, user *entity.User) error {
	if strings.TrimSpace(user.UserName) == "" {
		return domainerrors.ErrValidationFailed.WithDetails("user name is required")
	}

	return repo.save(ctx, user, nil)
}

// Delete stages removal of the user and of every index entry pointing at it.
func (repo *userRepository) Delete(ctx context.Context, user *entity.User) error {
	doc, err := LoadDocument(ctx, repo.session, &model.UserDocument{Key: UserKey(user.ID)})
	if err != nil {
		return err
	}

	for _, login := range doc.Logins {
		owner, err := repo.logins.FindUserID(ctx, login.LoginProvider, login.ProviderKey)
		if domainerrors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return err
		}
		if owner != user.ID {
			continue
		}
		if err := repo.logins.Delete(ctx, login.LoginProvider, login.ProviderKey); err != nil {
			return err
		}
	}

	if err := repo.session.Delete(doc.Key); err != nil {
		return err
	}
	delete(repo.entities, doc.Key)

	return nil
}

// List returns every user, staged state included, ordered by key.
func (repo *userRepository) List(ctx context.Context) ([]*entity.User, error) {
	docs, err := QueryDocuments(ctx, repo.session, model.KindUser, newUserDocument,
		func(*model.UserDocument) bool { return true })
	if err != nil {
		return nil, err
	}

	users := make([]*entity.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, repo.entityFor(d))
	}

	return users, nil
}

// AddLogin links login to the user and stages the index entry.
func (repo *userRepository) AddLogin(ctx context.Context, user *entity.User, login entity.UserLogin) error {
	if login.LoginProvider == "" || login.ProviderKey == "" {
		return domainerrors.ErrValidationFailed.WithDetails("login provider and provider key are required")
	}
	if user.HasLogin(login.LoginProvider, login.ProviderKey) {
		return domainerrors.ErrDuplicateLogin.WithDetails(login.LoginProvider + "/" + login.ProviderKey)
	}
	if err := repo.checkLoginAvailable(ctx, user.ID, login.LoginProvider, login.ProviderKey); err != nil {
		return err
	}

	return repo.save(ctx, user, func(next *entity.User) {
		next.AppendLogin(login)
		next.SecurityStamp = uuid.New().String()
	})
}

// RemoveLogin unlinks the login and stages deletion of its index entry.
func (repo *userRepository) RemoveLogin(ctx context.Context, user *entity.User, provider, providerKey string) error {
	if !user.HasLogin(provider, providerKey) {
		return domainerrors.ErrNotFound.WithDetails(provider + "/" + providerKey)
	}

	return repo.save(ctx, user, func(next *entity.User) {
		next.DropLogin(provider, providerKey)
		next.SecurityStamp = uuid.New().String()
	})
}

// GetLogins returns a copy of the user's logins.
func (repo *userRepository) GetLogins(_ context.Context, user *entity.User) ([]entity.UserLogin, error) {
	return slices.Clone(user.Logins), nil
}

// FindByLogin resolves a login through the index. An entry whose user is gone, or whose user
// no longer lists the login, is an orphan: it is logged and reported as not found.
func (repo *userRepository) FindByLogin(ctx context.Context, provider, providerKey string) (*entity.User, error) {
	userID, err := repo.logins.FindUserID(ctx, provider, providerKey)
	if err != nil {
		return nil, err
	}

	user, err := repo.FindByID(ctx, userID)
	if domainerrors.IsNotFound(err) {
		repo.logOrphan(ctx, userID, provider, providerKey)

		return nil, domainerrors.ErrNotFound.WithDetails(entity.LoginKey(provider, providerKey))
	}
	if err != nil {
		return nil, err
	}

	if !user.HasLogin(provider, providerKey) {
		repo.logOrphan(ctx, userID, provider, providerKey)

		return nil, domainerrors.ErrNotFound.WithDetails(entity.LoginKey(provider, providerKey))
	}

	return user, nil
}

func (repo *userRepository) logOrphan(ctx context.Context, userID, provider, providerKey string) {
	repo.logger.WarnContext(ctx, "Login index entry has no matching user login",
		slog.String("key", entity.LoginKey(provider, providerKey)),
		slog.String("user_id", userID),
	)
}

// AddRole adds role to the user's role set.
func (repo *userRepository) AddRole(ctx context.Context, user *entity.User, role string) error {
	if !entity.IsValidRoleName(role) {
		return domainerrors.ErrValidationFailed.WithDetails("role name is required")
	}
	if user.HasRole(role) {
		return domainerrors.ErrDuplicateRole.WithDetails(role)
	}

	return repo.save(ctx, user, func(next *entity.User) {
		next.Roles = append(next.Roles, role)
	})
}

// RemoveRole removes role from the user's role set.
func (repo *userRepository) RemoveRole(ctx context.Context, user *entity.User, role string) error {
	if !user.HasRole(role) {
		return domainerrors.ErrNotFound.WithDetails("role " + role)
	}

	return repo.save(ctx, user, func(next *entity.User) {
		next.Roles = entity.Roles(next.Roles).Without(role)
	})
}

// GetRoles returns the user's roles, sorted.
func (repo *userRepository) GetRoles(_ context.Context, user *entity.User) ([]string, error) {
	return entity.Roles(user.Roles).Sorted(), nil
}

// IsInRole reports whether the user holds role.
func (repo *userRepository) IsInRole(_ context.Context, user *entity.User, role string) (bool, error) {
	return user.HasRole(role), nil
}

// SetPasswordHash replaces the credential hash and rotates the security stamp.
func (repo *userRepository) SetPasswordHash(ctx context.Context, user *entity.User, passwordHash string) error {
	return repo.save(ctx, user, func(next *entity.User) {
		next.PasswordHash = passwordHash
		next.SecurityStamp = uuid.New().String()
	})
}

// checkLoginAvailable fails with ErrDuplicateLogin when the pair is indexed for another user.
func (repo *userRepository) checkLoginAvailable(ctx context.Context, userID, provider, providerKey string) error {
	owner, err := repo.logins.FindUserID(ctx, provider, providerKey)
	switch {
	case domainerrors.IsNotFound(err):
		return nil
	case err != nil:
		return err
	case owner != userID:
		return domainerrors.ErrDuplicateLogin.WithDetails(provider + "/" + providerKey)
	default:
		return nil
	}
}

// save applies mutate to a copy of user and stages the resulting document together with the
// index writes for the difference between the stored login list and the new one.
// The caller's entity only takes the new state once everything is staged.
func (repo *userRepository) save(ctx context.Context, user *entity.User, mutate func(next *entity.User)) error {
	doc, err := LoadDocument(ctx, repo.session, &model.UserDocument{Key: UserKey(user.ID)})
	if err != nil {
		return err
	}

	next := cloneUser(user)
	if mutate != nil {
		mutate(next)
	}
	if err := validateLogins(next.Logins); err != nil {
		return err
	}

	added, removed := diffLogins(doc.Logins, next.Logins)
	for _, l := range added {
		if err := repo.checkLoginAvailable(ctx, next.ID, l.LoginProvider, l.ProviderKey); err != nil {
			return err
		}
	}

	for _, l := range added {
		if err := repo.logins.Upsert(ctx, l.LoginProvider, l.ProviderKey, next.ID); err != nil {
			return err
		}
	}
	for _, l := range removed {
		if err := repo.logins.Delete(ctx, l.LoginProvider, l.ProviderKey); err != nil {
			return err
		}
	}

	next.UpdatedAt = repo.now()
	repo.normalize(next)
	applyUser(doc, next)
	if err := repo.session.Store(doc); err != nil {
		return err
	}

	*user = *next
	repo.entities[doc.Key] = user

	return nil
}

// validateLogins rejects logins with an empty provider or key and pairs listed twice.
func validateLogins(logins []entity.UserLogin) error {
	for i, login := range logins {
		if login.LoginProvider == "" || login.ProviderKey == "" {
			return domainerrors.ErrValidationFailed.WithDetails("login provider and provider key are required")
		}
		if slices.ContainsFunc(logins[:i], func(l entity.UserLogin) bool {
			return l.LoginProvider == login.LoginProvider && l.ProviderKey == login.ProviderKey
		}) {
			return domainerrors.ErrDuplicateLogin.WithDetails(login.LoginProvider + "/" + login.ProviderKey)
		}
	}

	return nil
}

func cloneUser(user *entity.User) *entity.User {
	next := *user
	next.Logins = slices.Clone(user.Logins)
	next.Roles = slices.Clone(user.Roles)

	return &next
}

func (repo *userRepository) normalize(user *entity.User) {
	user.NormalizedUserName = repo.normalizer.NormalizeName(user.UserName)
	user.NormalizedEmail = repo.normalizer.NormalizeEmail(user.Email)
}

// entityFor returns the entity already handed out for doc, or maps and remembers a new one.
func (repo *userRepository) entityFor(doc *model.UserDocument) *entity.User {
	if user, ok := repo.entities[doc.Key]; ok {
		return user
	}

	user := toUserDomain(doc)
	repo.entities[doc.Key] = user

	return user
}

func newUserDocument() *model.UserDocument {
	return &model.UserDocument{}
}

// diffLogins returns the logins present only in next (added) and only in prev (removed).
func diffLogins(prev []model.UserLoginElement, next []entity.UserLogin) (added, removed []entity.UserLogin) {
	inPrev := func(l entity.UserLogin) bool {
		return slices.ContainsFunc(prev, func(p model.UserLoginElement) bool {
			return p.LoginProvider == l.LoginProvider && p.ProviderKey == l.ProviderKey
		})
	}
	for _, l := range next {
		if !inPrev(l) {
			added = append(added, l)
		}
	}

	for _, p := range prev {
		if !slices.ContainsFunc(next, func(l entity.UserLogin) bool {
			return p.LoginProvider == l.LoginProvider && p.ProviderKey == l.ProviderKey
		}) {
			removed = append(removed, entity.UserLogin{LoginProvider: p.LoginProvider, ProviderKey: p.ProviderKey})
		}
	}

	return added, removed
}

// --- Mapper Functions ---

// toUserDomain converts a stored UserDocument to a domain User entity.
func toUserDomain(doc *model.UserDocument) *entity.User {
	logins := make([]entity.UserLogin, 0, len(doc.Logins))
	for _, l := range doc.Logins {
		logins = append(logins, entity.UserLogin{
			LoginProvider:       l.LoginProvider,
			ProviderKey:         l.ProviderKey,
			ProviderDisplayName: l.ProviderDisplayName,
		})
	}

	return &entity.User{
		ID:                 doc.UserID,
		UserName:           doc.UserName,
		NormalizedUserName: doc.NormalizedUserName,
		Email:              doc.Email,
		NormalizedEmail:    doc.NormalizedEmail,
		PasswordHash:       doc.PasswordHash,
		SecurityStamp:      doc.SecurityStamp,
		Logins:             logins,
		Roles:              slices.Clone(doc.Roles),
		CreatedAt:          doc.CreatedAt,
		UpdatedAt:          doc.UpdatedAt,
	}
}

// applyUser copies the entity state onto the stored document, keeping key and revision.
func applyUser(doc *model.UserDocument, user *entity.User) {
	logins := make([]model.UserLoginElement, 0, len(user.Logins))
	for _, l := range user.Logins {
		logins = append(logins, model.UserLoginElement{
			LoginProvider:       l.LoginProvider,
			ProviderKey:         l.ProviderKey,
			ProviderDisplayName: l.ProviderDisplayName,
		})
	}

	doc.Kind = model.KindUser
	doc.UserID = user.ID
	doc.UserName = user.UserName
	doc.NormalizedUserName = user.NormalizedUserName
	doc.Email = user.Email
	doc.NormalizedEmail = user.NormalizedEmail
	doc.PasswordHash = user.PasswordHash
	doc.SecurityStamp = user.SecurityStamp
	doc.Logins = logins
	doc.Roles = slices.Clone(user.Roles)
	doc.CreatedAt = user.CreatedAt
	doc.UpdatedAt = user.UpdatedAt
}
