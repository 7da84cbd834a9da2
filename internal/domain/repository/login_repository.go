package repository

import (
	"context"

	"userstore/internal/domain/entity"
)

// LoginRepository is the login index: one entry per (provider, providerKey) pair,
// addressed by a derived key so lookups are direct key fetches.
type LoginRepository interface {
	// Upsert stages creation or overwrite of the entry for the pair.
	Upsert(ctx context.Context, provider, providerKey, userID string) error

	// Delete stages removal of the entry for the pair. Deleting a missing entry is a no-op.
	Delete(ctx context.Context, provider, providerKey string) error

	// Find returns the entry for the pair, ErrNotFound when absent.
	Find(ctx context.Context, provider, providerKey string) (*entity.LoginIndexEntry, error)

	// FindUserID returns the ID of the user owning the pair, ErrNotFound when absent.
	FindUserID(ctx context.Context, provider, providerKey string) (string, error)

	// ListAll enumerates entries whose key starts with prefix. Not for hot paths.
	ListAll(ctx context.Context, prefix string) ([]*entity.LoginIndexEntry, error)
}
