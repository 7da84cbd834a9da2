package middleware

import (
	"crypto/subtle"
	"log/slog"
	"strings"

	"userstore/config"
	"userstore/internal/delivery/api/response"
	deliverycontext "userstore/internal/delivery/context"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AuthMiddlewareParams holds dependencies for AuthMiddleware, injected by Fx.
type AuthMiddlewareParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// AuthMiddleware guards operator endpoints with the static bearer token from http.adminToken.
type AuthMiddleware struct {
	adminToken string
	logger     *slog.Logger
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(params AuthMiddlewareParams) *AuthMiddleware {
	return &AuthMiddleware{
		adminToken: params.Config.HTTP.AdminToken,
		logger:     params.Logger,
	}
}

// RequireAdmin rejects requests whose Authorization header does not carry the admin token.
// With no token configured every request is rejected.
func (m *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger)

		if m.adminToken == "" {
			log.Warn("Admin endpoint called but no admin token is configured", slog.String("path", c.Path()))

			return response.Forbidden(c, "ADMIN_DISABLED", "Admin endpoints are disabled")
		}

		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return response.Unauthorized(c, "MISSING_TOKEN", "Authorization header is missing")
		}

		token, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			return response.Unauthorized(c, "INVALID_TOKEN", "Invalid token format, must be Bearer token")
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(m.adminToken)) != 1 {
			log.Warn("Rejected admin request", slog.String("path", c.Path()), slog.String("remote_ip", c.RealIP()))

			return response.Unauthorized(c, "INVALID_TOKEN", "Invalid admin token")
		}

		return next(c)
	}
}
