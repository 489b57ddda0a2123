package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"expertchat/internal/adapter/api/middleware"
	ws "expertchat/internal/infrastructure/websocket"
	"expertchat/internal/usecase"
	"expertchat/pkg/errors"
)

type WebSocketHandler struct {
	wsManager      *ws.Manager
	chatUseCase    *usecase.ChatUseCase
	authUseCase    *usecase.AuthUseCase
	authMiddleware *middleware.AuthMiddleware
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // You should restrict this in production
	},
}

func NewWebSocketHandler(
	wsManager *ws.Manager,
	chatUseCase *usecase.ChatUseCase,
	authUseCase *usecase.AuthUseCase,
	authMiddleware *middleware.AuthMiddleware,
) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:      wsManager,
		chatUseCase:    chatUseCase,
		authUseCase:    authUseCase,
		authMiddleware: authMiddleware,
	}
}

type inboundMessage struct {
	Content   string `json:"content"`
	ReplyToID string `json:"reply_to_id"`
}

// HandleRoom joins the caller to a room over websocket: presence is set, the
// room session (subscription + timers) is ensured, snapshots are streamed
// out, and inbound frames become message sends. Browsers cannot set headers
// on websocket requests, so auth rides on a query parameter.
func (h *WebSocketHandler) HandleRoom(c echo.Context) error {
	roomID := c.Param("id")

	token := c.QueryParam("token")
	if token == "" {
		return errors.Unauthorized("Authentication required", nil)
	}

	uid, err := h.authMiddleware.ResolveToken(c.Request().Context(), token)
	if err != nil {
		return errors.Unauthorized("Invalid or expired token", err)
	}

	user, err := h.authUseCase.GetProfile(c.Request().Context(), uid)
	if err != nil {
		return err
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	if err := h.chatUseCase.JoinRoom(c.Request().Context(), roomID, user); err != nil {
		conn.Close()
		return err
	}

	client := &ws.Client{
		UserID: user.ID,
		RoomID: roomID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}

	h.wsManager.Register <- client

	go client.WritePump()
	go func() {
		// The request context dies with the handler; the pump outlives it.
		ctx := context.Background()

		client.ReadPump(h.wsManager, func(frame []byte) {
			var in inboundMessage
			if err := json.Unmarshal(frame, &in); err != nil {
				log.Printf("Dropping malformed frame from %s: %v", user.ID, err)
				return
			}

			// Reload the sender so the guest counter stays current across sends.
			sender, err := h.authUseCase.GetProfile(ctx, user.ID)
			if err != nil {
				log.Printf("Failed to load sender %s: %v", user.ID, err)
				return
			}

			if _, err := h.chatUseCase.SendMessage(ctx, sender, usecase.SendMessageInput{
				RoomID:    roomID,
				Content:   in.Content,
				ReplyToID: in.ReplyToID,
			}); err != nil {
				log.Printf("Websocket send from %s rejected: %v", user.ID, err)
			}
		})

		// Connection is gone; drop presence and let the session wind down
		// when the room empties.
		h.chatUseCase.LeaveRoom(ctx, roomID, user.ID)
	}()

	return nil
}
