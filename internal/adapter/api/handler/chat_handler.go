package handler

import (
	"github.com/labstack/echo/v4"

	"recyclex/internal/domain/entity"
	"recyclex/internal/usecase"
	"recyclex/pkg/response"
	"recyclex/pkg/utils"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type createRoomRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Type        string `json:"type" validate:"omitempty,oneof=room group"`
	RoomType    string `json:"room_type"`
	IsPrivate   bool   `json:"is_private"`
}

func (h *ChatHandler) GetConversations(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	conversations, err := h.chatUseCase.GetConversations(c.Request().Context(), userID, utils.GetPagination(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, conversations)
}

func (h *ChatHandler) GetMessages(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	messages, err := h.chatUseCase.GetMessages(c.Request().Context(), c.Param("id"), userID, utils.GetPagination(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, messages)
}

func (h *ChatHandler) CreateRoom(c echo.Context) error {
	var req createRoomRequest
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
	name, _ := c.Get("name").(string)
	role, _ := c.Get("role").(string)

	conv, err := h.chatUseCase.CreateRoom(c.Request().Context(), usecase.CreateRoomInput{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		RoomType:    req.RoomType,
		IsPrivate:   req.IsPrivate,
		Creator:     entity.Participant{ID: userID, Name: name, Role: role},
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, conv)
}

func (h *ChatHandler) MarkConversationRead(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	if err := h.chatUseCase.MarkConversationRead(c.Request().Context(), c.Param("id"), userID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "read"})
}
