// Package handler contains the HTTP handlers for the application.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"userstore/internal/delivery/api/response"
	"userstore/internal/domain/entity"
	domainerrors "userstore/internal/domain/errors"
	"userstore/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// UserHandlerParams holds dependencies for UserHandler, injected by Fx.
type UserHandlerParams struct {
	fx.In

	UserUC usecase.UserUsecase
	Logger *slog.Logger
}

// UserHandler holds dependencies for user-related handlers.
type UserHandler struct {
	userUC usecase.UserUsecase
	logger *slog.Logger
}

// NewUserHandler is the constructor for UserHandler.
func NewUserHandler(params UserHandlerParams) *UserHandler {
	return &UserHandler{
		userUC: params.UserUC,
		logger: params.Logger,
	}
}

// CreateUserRequest represents the request body for creating a user.
type CreateUserRequest struct {
	ID       string `json:"id"`
	UserName string `json:"userName" validate:"required"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest represents the request body for updating a user. Absent fields are kept.
type UpdateUserRequest struct {
	UserName *string `json:"userName"`
	Email    *string `json:"email"`
}

// AddLoginRequest represents the request body for linking an external login.
type AddLoginRequest struct {
	LoginProvider       string `json:"loginProvider" validate:"required"`
	ProviderKey         string `json:"providerKey" validate:"required"`
	ProviderDisplayName string `json:"providerDisplayName"`
}

// ChangePasswordRequest represents the request body for changing a password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

// CheckPasswordRequest represents the request body for verifying credentials.
type CheckPasswordRequest struct {
	UserName string `json:"userName" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the public form of a linked external login.
type LoginResponse struct {
	LoginProvider       string `json:"loginProvider"`
	ProviderKey         string `json:"providerKey"`
	ProviderDisplayName string `json:"providerDisplayName,omitempty"`
}

// UserResponse is the public form of a user. Credentials never leave the service.
type UserResponse struct {
	ID          string          `json:"id"`
	UserName    string          `json:"userName"`
	Email       string          `json:"email,omitempty"`
	HasPassword bool            `json:"hasPassword"`
	Logins      []LoginResponse `json:"logins"`
	Roles       []string        `json:"roles"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func newUserResponse(user *entity.User) *UserResponse {
	logins := make([]LoginResponse, 0, len(user.Logins))
	for _, l := range user.Logins {
		logins = append(logins, LoginResponse{
			LoginProvider:       l.LoginProvider,
			ProviderKey:         l.ProviderKey,
			ProviderDisplayName: l.ProviderDisplayName,
		})
	}

	roles := user.Roles
	if roles == nil {
		roles = []string{}
	}

	return &UserResponse{
		ID:          user.ID,
		UserName:    user.UserName,
		Email:       user.Email,
		HasPassword: user.PasswordHash != "",
		Logins:      logins,
		Roles:       roles,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

// pathParam returns the unescaped path parameter. User ids and role names may carry
// reserved characters and arrive percent-encoded.
func pathParam(c echo.Context, name string) (string, error) {
	value, err := url.PathUnescape(c.Param(name))
	if err != nil {
		return "", domainerrors.ErrValidationFailed.WithDetails("malformed path parameter " + name)
	}

	return value, nil
}

// loginQuery reads the provider and key query parameters that identify an external login.
// Provider keys are often URLs, so they travel in the query rather than the path.
func loginQuery(c echo.Context) (string, string, error) {
	provider := c.QueryParam("provider")
	key := c.QueryParam("key")
	if provider == "" || key == "" {
		return "", "", domainerrors.ErrValidationFailed.WithDetails("provider and key query parameters are required")
	}

	return provider, key, nil
}

// CreateUser handles POST /users.
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid user input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userUC.CreateUser(c.Request().Context(), &usecase.CreateUserInput{
		ID:       req.ID,
		UserName: req.UserName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, newUserResponse(user))
}

// GetUser handles GET /users/:id.
func (h *UserHandler) GetUser(c echo.Context) error {
	userID, err := pathParam(c, "id")
	if err != nil {
		return err
	}

	user, err := h.userUC.GetUser(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newUserResponse(user))
}

// ListUsers handles GET /users. With ?name= it resolves a single user by case-insensitive name.
func (h *UserHandler) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()

	if name := c.QueryParam("name"); name != "" {
		user, err := h.userUC.FindByName(ctx, name)
		if err != nil {
			return errors.WithStack(err)
		}

		return response.Success(c, http.StatusOK, newUserResponse(user))
	}

	users, err := h.userUC.ListUsers(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResponse(u))
	}

	return response.Success(c, http.StatusOK, out)
}

// UpdateUser handles PUT /users/:id.
func (h *UserHandler) UpdateUser(c echo.Context) error {
	userID, err := pathParam(c, "id")
	if err != nil {
		return err
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid user input")
	}

	user, err := h.userUC.UpdateUser(c.Request().Context(), &usecase.UpdateUserInput{
		UserID:   userID,
		UserName: req.UserName,
		Email:    req.Email,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newUserResponse(user))
}

// DeleteUser handles DELETE /users/:id.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	userID, err := pathParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.userUC.DeleteUser(c.Request().Context(), userID); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// AddLogin handles POST /users/:id/logins.
func (h *UserHandler) AddLogin(c echo.Context) error {
	userID, err := pathParam(c, "id")
	if err != nil {
		return err
	}

	var req AddLoginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userUC.AddLogin(c.Request().Context(), &usecase.AddLoginInput{
		UserID:              userID,
		LoginProvider:       req.LoginProvider,
		ProviderKey:         req.ProviderKey,
		ProviderDisplayName: req.ProviderDisplayName,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, newUserResponse(user))
}

// RemoveLogin handles DELETE /users/:id/logins?provider=&key=.
func (h *UserHandler) RemoveLogin(c echo.Context) error {
	userID, err := pathParam(c, "id")
	if err != nil {
		return err
	}
	provider, key, err := loginQuery(c)
	if err != nil {
		return err
	}

	user, err := h.userUC.RemoveLogin(c.Request().Context(), userID, provider, key)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newUserResponse(user))
}

// FindByLogin handles GET /logins?provider=&key=.
func (h *UserHandler) FindByLogin(c echo.Context) error {
	provider, key, err := loginQuery(c)
	if err != nil {
		return err
	}

	user, err := h.userUC.FindByLogin(c.Request().Context(), provider, key)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newUserResponse(user))
}

// AddRole handles POST /users/:id/roles/:role.
func (h *UserHandler) AddRole(c echo.Context) error {
	return h.changeRole(c, h.userUC.AddRole)
}

// RemoveRole handles DELETE /users/:id/roles/:role.
func (h *UserHandler) RemoveRole(c echo.Context) error {
	return h.changeRole(c, h.userUC.RemoveRole)
}

func (h *UserHandler) changeRole(c echo.Context, apply func(ctx context.Context, userID, role string) (*entity.User, error)) error {
	userID, err := pathParam(c, "id")
	if err != nil {
		return err
	}
	role, err := pathParam(c, "role")
	if err != nil {
		return err
	}

	user, err := apply(c.Request().Context(), userID, role)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newUserResponse(user))
}

// ChangePassword handles PUT /users/:id/password.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	userID, err := pathParam(c, "id")
	if err != nil {
		return err
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid password input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	err = h.userUC.ChangePassword(c.Request().Context(), &usecase.ChangePasswordInput{
		UserID:          userID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// CheckPassword handles POST /auth/check.
func (h *UserHandler) CheckPassword(c echo.Context) error {
	var req CheckPasswordRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid credentials input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userUC.CheckPassword(c.Request().Context(), &usecase.CheckPasswordInput{
		UserName: req.UserName,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newUserResponse(user))
}

// HealthCheck handles GET /health.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"})
}
