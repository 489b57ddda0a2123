package router

import (
	"github.com/labstack/echo/v4"

	"expertchat/internal/adapter/api/handler"
)

// SetupWebSocketRouter sets up WebSocket routes
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	// Auth is handled inside the handler (query parameter token)
	e.GET("/ws/rooms/:id", wsHandler.HandleRoom)
}
