// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"userstore/internal/domain/entity"
)

// UserRepository is the user record store. Every mutating call is staged in the unit of
// work the repository is bound to; nothing becomes durable until that unit of work is saved.
//
// Failures carry one of the kinds in internal/domain/errors.
type UserRepository interface {
	// Create stages a new user. The ID is generated when empty.
	// Fails with ErrValidationFailed on an empty user name and ErrDuplicateIdentity
	// when a user with the same ID already exists.
	Create(ctx context.Context, user *entity.User) error

	// FindByID retrieves a user by ID, ErrNotFound when absent.
	FindByID(ctx context.Context, id string) (*entity.User, error)

	// FindByName retrieves a user by case-normalized user name, ErrNotFound when absent.
	FindByName(ctx context.Context, userName string) (*entity.User, error)

	// FindByEmail retrieves a user by case-normalized email, ErrNotFound when absent.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Update stages the user's current state. ErrNotFound when the user does not exist.
	// A stale revision surfaces as ErrConcurrencyConflict when the unit of work is saved.
	Update(ctx context.Context, user *entity.User) error

	// Delete stages removal of the user and of every login index entry it owns.
	Delete(ctx context.Context, user *entity.User) error

	// List returns every stored user. Intended for diagnostics.
	List(ctx context.Context) ([]*entity.User, error)

	// AddLogin links an external login to the user and stages the matching index entry.
	// Fails with ErrDuplicateLogin when the pair is on the user's list or indexed for another user.
	AddLogin(ctx context.Context, user *entity.User, login entity.UserLogin) error

	// RemoveLogin unlinks an external login and stages deletion of its index entry.
	// Fails with ErrNotFound when the user does not own the login.
	RemoveLogin(ctx context.Context, user *entity.User, provider, providerKey string) error

	// GetLogins returns a copy of the user's logins.
	GetLogins(ctx context.Context, user *entity.User) ([]entity.UserLogin, error)

	// FindByLogin resolves an external login through the login index.
	// An index entry whose user is missing is reported as ErrNotFound.
	FindByLogin(ctx context.Context, provider, providerKey string) (*entity.User, error)

	// AddRole adds role to the user's role set, ErrDuplicateRole when already present.
	AddRole(ctx context.Context, user *entity.User, role string) error

	// RemoveRole removes role from the user's role set, ErrNotFound when absent.
	RemoveRole(ctx context.Context, user *entity.User, role string) error

	// GetRoles returns the user's roles, sorted.
	GetRoles(ctx context.Context, user *entity.User) ([]string, error)

	// IsInRole reports whether the user holds role.
	IsInRole(ctx context.Context, user *entity.User, role string) (bool, error)

	// SetPasswordHash replaces the stored credential hash and rotates the security stamp.
	SetPasswordHash(ctx context.Context, user *entity.User, passwordHash string) error
}
