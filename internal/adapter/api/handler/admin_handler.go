package handler

import (
	"github.com/labstack/echo/v4"

	"recyclex/internal/usecase"
	"recyclex/pkg/response"
	"recyclex/pkg/utils"
)

type AdminHandler struct {
	userUseCase *usecase.UserUseCase
}

func NewAdminHandler(userUseCase *usecase.UserUseCase) *AdminHandler {
	return &AdminHandler{
		userUseCase: userUseCase,
	}
}

type assignRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=buyer supplier agent admin"`
}

func (h *AdminHandler) AssignRole(c echo.Context) error {
	var req assignRoleRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.AssignRole(c.Request().Context(), c.Param("id"), req.Role)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}

func (h *AdminHandler) ListUsersByRole(c echo.Context) error {
	users, err := h.userUseCase.ListByRole(c.Request().Context(), c.QueryParam("role"), utils.GetPagination(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, users)
}
