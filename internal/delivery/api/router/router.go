// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"userstore/internal/delivery/api/middleware"
	"userstore/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	UserHandler    *handler.UserHandler
	AdminHandler   *handler.AdminHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	userHandler    *handler.UserHandler
	adminHandler   *handler.AdminHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		userHandler:    params.UserHandler,
		adminHandler:   params.AdminHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	e.POST("/auth/check", r.userHandler.CheckPassword)
	e.GET("/logins", r.userHandler.FindByLogin)

	usersGroup := e.Group("/users")
	{
		usersGroup.POST("", r.userHandler.CreateUser)
		usersGroup.GET("", r.userHandler.ListUsers)
		usersGroup.GET("/:id", r.userHandler.GetUser)
		usersGroup.PUT("/:id", r.userHandler.UpdateUser)
		usersGroup.DELETE("/:id", r.userHandler.DeleteUser)
		usersGroup.PUT("/:id/password", r.userHandler.ChangePassword)

		usersGroup.POST("/:id/logins", r.userHandler.AddLogin)
		usersGroup.DELETE("/:id/logins", r.userHandler.RemoveLogin)

		usersGroup.POST("/:id/roles/:role", r.userHandler.AddRole)
		usersGroup.DELETE("/:id/roles/:role", r.userHandler.RemoveRole)
	}

	adminGroup := e.Group("/admin")
	adminGroup.Use(r.authMiddleware.RequireAdmin)
	{
		adminGroup.GET("/consistency", r.adminHandler.CheckConsistency)
		adminGroup.POST("/consistency/repair", r.adminHandler.RepairConsistency)
	}
}
