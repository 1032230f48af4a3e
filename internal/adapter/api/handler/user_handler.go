package handler

import (
	"github.com/labstack/echo/v4"

	"recyclex/internal/usecase"
	"recyclex/pkg/response"
)

type UserHandler struct {
	userUseCase *usecase.UserUseCase
}

func NewUserHandler(userUseCase *usecase.UserUseCase) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
	}
}

type registerProfileRequest struct {
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role" validate:"required,oneof=buyer supplier agent"`
	Language string `json:"language" validate:"omitempty,oneof=en si ta"`
	Address  string `json:"address"`
	District string `json:"district"`
}

type updateProfileRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Language string `json:"language" validate:"omitempty,oneof=en si ta"`
	Address  string `json:"address"`
	District string `json:"district"`
	Avatar   string `json:"avatar_url" validate:"omitempty,url"`
}

func (h *UserHandler) RegisterProfile(c echo.Context) error {
	var req registerProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID, err := getUserID(c)
	if err != nil {
		return err
	}
	email, _ := c.Get("email").(string)

	user, err := h.userUseCase.RegisterProfile(c.Request().Context(), usecase.RegisterProfileInput{
		UserID:   userID,
		Email:    email,
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     req.Role,
		Language: req.Language,
		Address:  req.Address,
		District: req.District,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, user)
}

func (h *UserHandler) GetMe(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	user, err := h.userUseCase.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}

func (h *UserHandler) UpdateMe(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	user, err := h.userUseCase.UpdateProfile(c.Request().Context(), userID, usecase.UpdateProfileInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Language: req.Language,
		Address:  req.Address,
		District: req.District,
		Avatar:   req.Avatar,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}
