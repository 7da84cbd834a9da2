package docdb

import (
	"context"
	"strings"

	"userstore/internal/domain/entity"
	domainerrors "userstore/internal/domain/errors"
	"userstore/internal/domain/repository"
	"userstore/internal/infra/persistence/model"
)

// loginRepository implements repository.LoginRepository on a session.
type loginRepository struct {
	session *Session
}

// NewLoginRepository is the constructor for loginRepository.
func NewLoginRepository(session *Session) repository.LoginRepository {
	return &loginRepository{session: session}
}

// Upsert stages the entry for the pair pointing at userID.
// An entry already stored is replaced at its loaded revision; a missing one is created,
// so two units of work racing on the same pair cannot both succeed.
func (repo *loginRepository) Upsert(ctx context.Context, provider, providerKey, userID string) error {
	if provider == "" || providerKey == "" || userID == "" {
		return domainerrors.ErrValidationFailed.WithDetails("login provider, provider key and user id are required")
	}

	key := entity.LoginKey(provider, providerKey)
	doc, err := LoadDocument(ctx, repo.session, &model.LoginDocument{Key: key})
	switch {
	case err == nil:
		doc.UserID = userID
	case domainerrors.IsNotFound(err):
		doc = &model.LoginDocument{
			Key:         key,
			Kind:        model.KindLogin,
			UserID:      userID,
			Provider:    provider,
			ProviderKey: providerKey,
		}
	default:
		return err
	}

	return repo.session.Store(doc)
}

// Delete stages removal of the entry. A missing entry is left alone.
func (repo *loginRepository) Delete(ctx context.Context, provider, providerKey string) error {
	key := entity.LoginKey(provider, providerKey)
	if _, err := LoadDocument(ctx, repo.session, &model.LoginDocument{Key: key}); err != nil {
		if domainerrors.IsNotFound(err) {
			return nil
		}

		return err
	}

	return repo.session.Delete(key)
}

// Find returns the entry for the pair.
func (repo *loginRepository) Find(ctx context.Context, provider, providerKey string) (*entity.LoginIndexEntry, error) {
	doc, err := LoadDocument(ctx, repo.session, &model.LoginDocument{Key: entity.LoginKey(provider, providerKey)})
	if err != nil {
		return nil, err
	}

	return toLoginEntry(doc), nil
}

// FindUserID returns the ID of the user the pair is indexed for.
func (repo *loginRepository) FindUserID(ctx context.Context, provider, providerKey string) (string, error) {
	entry, err := repo.Find(ctx, provider, providerKey)
	if err != nil {
		return "", err
	}

	return entry.UserID, nil
}

// ListAll enumerates index entries whose key starts with prefix, staged state included.
func (repo *loginRepository) ListAll(ctx context.Context, prefix string) ([]*entity.LoginIndexEntry, error) {
	docs, err := QueryDocuments(ctx, repo.session, model.KindLogin,
		func() *model.LoginDocument { return &model.LoginDocument{} },
		func(d *model.LoginDocument) bool { return strings.HasPrefix(d.Key, prefix) },
	)
	if err != nil {
		return nil, err
	}

	entries := make([]*entity.LoginIndexEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, toLoginEntry(d))
	}

	return entries, nil
}

func toLoginEntry(doc *model.LoginDocument) *entity.LoginIndexEntry {
	return &entity.LoginIndexEntry{
		Key:         doc.Key,
		UserID:      doc.UserID,
		Provider:    doc.Provider,
		ProviderKey: doc.ProviderKey,
	}
}
