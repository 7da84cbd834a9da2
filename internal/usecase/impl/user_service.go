// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"

	"userstore/config"
	deliverycontext "userstore/internal/delivery/context"
	"userstore/internal/domain/entity"
	domainerrors "userstore/internal/domain/errors"
	"userstore/internal/domain/repository"
	"userstore/internal/domain/service"
	"userstore/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// userService implements the UserUsecase interface.
type userService struct {
	txManager             repository.TransactionManager
	hasher                service.PasswordHasher
	validate              *validator.Validate
	requireUniqueUserName bool
	logger                *slog.Logger
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Hasher    service.PasswordHasher
	Config    *config.Config
	Logger    *slog.Logger
}

// NewUserService is the constructor for userService. It receives all dependencies as interfaces.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	requireUnique := true
	if params.Config != nil && params.Config.Identity != nil {
		requireUnique = params.Config.Identity.RequireUniqueUserName
	}

	return &userService{
		txManager:             params.TxManager,
		hasher:                params.Hasher,
		validate:              validator.New(validator.WithRequiredStructEnabled()),
		requireUniqueUserName: requireUnique,
		logger:                params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *userService) validateInput(input any) error {
	if err := srv.validate.Struct(input); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}

// CreateUser hashes the password, if any, and stores the new user.
func (srv *userService) CreateUser(ctx context.Context, input *usecase.CreateUserInput) (*entity.User, error) {
	if err := srv.validateInput(input); err != nil {
		return nil, err
	}

	user := &entity.User{
		ID:       input.ID,
		UserName: input.UserName,
		Email:    input.Email,
	}

	if input.Password != "" {
		hash, err := srv.hasher.Hash(input.Password)
		if err != nil {
			srv.log(ctx).Error("Failed to hash password", slog.Any("error", err))

			return nil, errors.Wrap(err, "failed to hash password")
		}
		user.PasswordHash = hash
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		if err := srv.ensureUserNameAvailable(ctx, userRepo, input.UserName, ""); err != nil {
			return err
		}

		return userRepo.Create(ctx, user)
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to create user", slog.String("userName", input.UserName), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create user")
	}

	srv.log(ctx).Info("User created", slog.String("userID", user.ID))

	return user, nil
}

// ensureUserNameAvailable fails with ErrDuplicateUserName when another user holds the normalized name.
// The lookup is not atomic with the later write; two concurrent creates can still both succeed.
func (srv *userService) ensureUserNameAvailable(ctx context.Context, userRepo repository.UserRepository, userName, selfID string) error {
	if !srv.requireUniqueUserName {
		return nil
	}

	existing, err := userRepo.FindByName(ctx, userName)
	if domainerrors.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to look up user name")
	}
	if existing.ID == selfID {
		return nil
	}

	return domainerrors.ErrDuplicateUserName.WithDetails(userName)
}

// GetUser retrieves a user by ID.
func (srv *userService) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	var user *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		user, err = repoFactory.UserRepo().FindByID(ctx, userID)

		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}

	return user, nil
}

// FindByName retrieves a user by case-insensitive user name.
func (srv *userService) FindByName(ctx context.Context, userName string) (*entity.User, error) {
	var user *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		user, err = repoFactory.UserRepo().FindByName(ctx, userName)

		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user by name")
	}

	return user, nil
}

// FindByLogin resolves an external login to its user.
func (srv *userService) FindByLogin(ctx context.Context, provider, providerKey string) (*entity.User, error) {
	var user *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		user, err = repoFactory.UserRepo().FindByLogin(ctx, provider, providerKey)

		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user by login")
	}

	return user, nil
}

// ListUsers returns every user.
func (srv *userService) ListUsers(ctx context.Context) ([]*entity.User, error) {
	var users []*entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		users, err = repoFactory.UserRepo().List(ctx)

		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}

	return users, nil
}

// UpdateUser changes the user name and/or email.
func (srv *userService) UpdateUser(ctx context.Context, input *usecase.UpdateUserInput) (*entity.User, error) {
	if err := srv.validateInput(input); err != nil {
		return nil, err
	}

	return srv.mutateUser(ctx, input.UserID, "update user", func(userRepo repository.UserRepository, user *entity.User) error {
		if input.UserName != nil && *input.UserName != user.UserName {
			if err := srv.ensureUserNameAvailable(ctx, userRepo, *input.UserName, user.ID); err != nil {
				return err
			}
			user.UserName = *input.UserName
		}
		if input.Email != nil {
			user.Email = *input.Email
		}

		return userRepo.Update(ctx, user)
	})
}

// DeleteUser removes the user and its login index entries.
func (srv *userService) DeleteUser(ctx context.Context, userID string) error {
	_, err := srv.mutateUser(ctx, userID, "delete user", func(userRepo repository.UserRepository, user *entity.User) error {
		return userRepo.Delete(ctx, user)
	})
	if err != nil {
		return err
	}

	srv.log(ctx).Info("User deleted", slog.String("userID", userID))

	return nil
}

// AddLogin links an external login to the user.
func (srv *userService) AddLogin(ctx context.Context, input *usecase.AddLoginInput) (*entity.User, error) {
	if err := srv.validateInput(input); err != nil {
		return nil, err
	}

	login := entity.UserLogin{
		LoginProvider:       input.LoginProvider,
		ProviderKey:         input.ProviderKey,
		ProviderDisplayName: input.ProviderDisplayName,
	}

	return srv.mutateUser(ctx, input.UserID, "add login", func(userRepo repository.UserRepository, user *entity.User) error {
		return userRepo.AddLogin(ctx, user, login)
	})
}

// RemoveLogin unlinks an external login from the user.
func (srv *userService) RemoveLogin(ctx context.Context, userID, provider, providerKey string) (*entity.User, error) {
	return srv.mutateUser(ctx, userID, "remove login", func(userRepo repository.UserRepository, user *entity.User) error {
		return userRepo.RemoveLogin(ctx, user, provider, providerKey)
	})
}

// AddRole adds a role to the user.
func (srv *userService) AddRole(ctx context.Context, userID, role string) (*entity.User, error) {
	return srv.mutateUser(ctx, userID, "add role", func(userRepo repository.UserRepository, user *entity.User) error {
		return userRepo.AddRole(ctx, user, role)
	})
}

// RemoveRole removes a role from the user.
func (srv *userService) RemoveRole(ctx context.Context, userID, role string) (*entity.User, error) {
	return srv.mutateUser(ctx, userID, "remove role", func(userRepo repository.UserRepository, user *entity.User) error {
		return userRepo.RemoveRole(ctx, user, role)
	})
}

// ChangePassword verifies the current password, when the user has one, and stores the new hash.
func (srv *userService) ChangePassword(ctx context.Context, input *usecase.ChangePasswordInput) error {
	if err := srv.validateInput(input); err != nil {
		return err
	}

	newHash, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password", slog.Any("error", err))

		return errors.Wrap(err, "failed to hash password")
	}

	_, err = srv.mutateUser(ctx, input.UserID, "change password", func(userRepo repository.UserRepository, user *entity.User) error {
		if user.PasswordHash != "" && !srv.hasher.Check(input.CurrentPassword, user.PasswordHash) {
			srv.log(ctx).Warn("Current password mismatch", slog.String("userID", user.ID))

			return domainerrors.ErrInvalidCredentials
		}

		return userRepo.SetPasswordHash(ctx, user, newHash)
	})

	return err
}

// CheckPassword authenticates a user name and password. Hashes produced with an outdated
// cost are upgraded on success.
func (srv *userService) CheckPassword(ctx context.Context, input *usecase.CheckPasswordInput) (*entity.User, error) {
	if err := srv.validateInput(input); err != nil {
		return nil, err
	}

	var user *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		found, err := userRepo.FindByName(ctx, input.UserName)
		if domainerrors.IsNotFound(err) {
			return domainerrors.ErrInvalidCredentials
		}
		if err != nil {
			return err
		}

		if found.PasswordHash == "" || !srv.hasher.Check(input.Password, found.PasswordHash) {
			return domainerrors.ErrInvalidCredentials
		}
		user = found

		if !srv.hasher.NeedsRehash(found.PasswordHash) {
			return nil
		}
		rehashed, err := srv.hasher.Hash(input.Password)
		if err != nil {
			return errors.Wrap(err, "failed to rehash password")
		}

		return userRepo.SetPasswordHash(ctx, found, rehashed)
	})
	if err != nil {
		srv.log(ctx).Debug("Password check failed", slog.String("userName", input.UserName), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to check password")
	}

	return user, nil
}

// mutateUser loads the user and applies fn in one unit of work.
func (srv *userService) mutateUser(
	ctx context.Context,
	userID, action string,
	fn func(userRepo repository.UserRepository, user *entity.User) error,
) (*entity.User, error) {
	var user *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		found, err := userRepo.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := fn(userRepo, found); err != nil {
			return err
		}
		user = found

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("User operation failed", slog.String("action", action), slog.String("userID", userID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to "+action)
	}

	srv.log(ctx).Debug("User operation completed", slog.String("action", action), slog.String("userID", userID))

	return user, nil
}
