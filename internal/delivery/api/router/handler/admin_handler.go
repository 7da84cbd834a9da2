package handler

import (
	"net/http"

	"userstore/internal/delivery/api/response"
	"userstore/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// AdminHandlerParams holds dependencies for AdminHandler, injected by Fx.
type AdminHandlerParams struct {
	fx.In

	ConsistencyUC usecase.ConsistencyUsecase
}

// AdminHandler exposes operator tooling for the login index.
type AdminHandler struct {
	consistencyUC usecase.ConsistencyUsecase
}

// NewAdminHandler is the constructor for AdminHandler.
func NewAdminHandler(params AdminHandlerParams) *AdminHandler {
	return &AdminHandler{consistencyUC: params.ConsistencyUC}
}

// CheckConsistency handles GET /admin/consistency.
func (h *AdminHandler) CheckConsistency(c echo.Context) error {
	report, err := h.consistencyUC.Check(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, report)
}

// RepairConsistency handles POST /admin/consistency/repair.
func (h *AdminHandler) RepairConsistency(c echo.Context) error {
	report, err := h.consistencyUC.Repair(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, report)
}
