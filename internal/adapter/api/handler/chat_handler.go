package handler

import (
	"github.com/labstack/echo/v4"

	"expertchat/internal/usecase"
	"expertchat/pkg/response"
	"expertchat/pkg/utils"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
	authUseCase *usecase.AuthUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase, authUseCase *usecase.AuthUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
		authUseCase: authUseCase,
	}
}

type sendMessageRequest struct {
	Content   string `json:"content" validate:"required,max=2000"`
	ReplyToID string `json:"reply_to_id"`
}

// SendMessage posts a message into a room
func (h *ChatHandler) SendMessage(c echo.Context) error {
	roomID := c.Param("id")
	uid := c.Get("uid").(string)

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	sender, err := h.authUseCase.GetProfile(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), sender, usecase.SendMessageInput{
		RoomID:    roomID,
		Content:   req.Content,
		ReplyToID: req.ReplyToID,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// GetRoomMessages returns the room's live (non-expired) message window
func (h *ChatHandler) GetRoomMessages(c echo.Context) error {
	roomID := c.Param("id")
	params := utils.GetPaginationParams(c)

	messages, total, err := h.chatUseCase.ListRoomMessages(c.Request().Context(), roomID, params.PageSize, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, messages, total, params.Page, params.PageSize)
}

// GetUnansweredQuestions returns the expert dashboard queue
func (h *ChatHandler) GetUnansweredQuestions(c echo.Context) error {
	uid := c.Get("uid").(string)

	caller, err := h.authUseCase.GetProfile(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	messages, err := h.chatUseCase.ListUnansweredQuestions(c.Request().Context(), caller)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, messages)
}
