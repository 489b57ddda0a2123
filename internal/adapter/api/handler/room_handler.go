package handler

import (
	"github.com/labstack/echo/v4"

	"expertchat/internal/domain/entity"
	"expertchat/internal/usecase"
	"expertchat/pkg/response"
)

type RoomHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewRoomHandler(chatUseCase *usecase.ChatUseCase) *RoomHandler {
	return &RoomHandler{
		chatUseCase: chatUseCase,
	}
}

// GetCountries returns the static room catalog
func (h *RoomHandler) GetCountries(c echo.Context) error {
	return response.Success(c, entity.Countries)
}

// GetRoomUsers lists who is currently present in the room
func (h *RoomHandler) GetRoomUsers(c echo.Context) error {
	roomID := c.Param("id")

	users, err := h.chatUseCase.RoomUsers(c.Request().Context(), roomID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, users)
}
