// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"userstore/internal/domain/entity"
)

// --- Input DTOs ---

// CreateUserInput defines the data required to create a user.
// ID is optional; one is generated when empty. Password is optional for users that only
// sign in through external logins.
type CreateUserInput struct {
	ID       string `validate:"omitempty,max=128"`
	UserName string `validate:"required,max=256"`
	Email    string `validate:"omitempty,email,max=256"`
	Password string `validate:"omitempty,min=8,max=72"`
}

// UpdateUserInput defines the profile fields that can be changed. Nil fields are left untouched.
type UpdateUserInput struct {
	UserID   string  `validate:"required"`
	UserName *string `validate:"omitempty,min=1,max=256"`
	Email    *string `validate:"omitempty,email,max=256"`
}

// AddLoginInput links an external login to a user.
type AddLoginInput struct {
	UserID              string `validate:"required"`
	LoginProvider       string `validate:"required,max=128"`
	ProviderKey         string `validate:"required,max=1024"`
	ProviderDisplayName string `validate:"max=256"`
}

// ChangePasswordInput replaces a user's password. CurrentPassword is required when the user has one.
type ChangePasswordInput struct {
	UserID          string `validate:"required"`
	CurrentPassword string
	NewPassword     string `validate:"required,min=8,max=72"`
}

// CheckPasswordInput verifies a user name and password pair.
type CheckPasswordInput struct {
	UserName string `validate:"required"`
	Password string `validate:"required"`
}

// UserUsecase defines the interface for user-related business operations.
// Every call runs in its own unit of work and is saved before it returns.
type UserUsecase interface {
	CreateUser(ctx context.Context, input *CreateUserInput) (*entity.User, error)
	GetUser(ctx context.Context, userID string) (*entity.User, error)
	FindByName(ctx context.Context, userName string) (*entity.User, error)
	FindByLogin(ctx context.Context, provider, providerKey string) (*entity.User, error)
	ListUsers(ctx context.Context) ([]*entity.User, error)
	UpdateUser(ctx context.Context, input *UpdateUserInput) (*entity.User, error)
	DeleteUser(ctx context.Context, userID string) error
	AddLogin(ctx context.Context, input *AddLoginInput) (*entity.User, error)
	RemoveLogin(ctx context.Context, userID, provider, providerKey string) (*entity.User, error)
	AddRole(ctx context.Context, userID, role string) (*entity.User, error)
	RemoveRole(ctx context.Context, userID, role string) (*entity.User, error)
	ChangePassword(ctx context.Context, input *ChangePasswordInput) error
	CheckPassword(ctx context.Context, input *CheckPasswordInput) (*entity.User, error)
}
