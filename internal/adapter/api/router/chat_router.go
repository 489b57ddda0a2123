package router

import (
	"github.com/labstack/echo/v4"

	"expertchat/internal/adapter/api/handler"
	"expertchat/internal/adapter/api/middleware"
)

// SetupChatRouter sets up all room and message routes (excluding WebSocket)
func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, roomHandler *handler.RoomHandler, authMiddleware *middleware.AuthMiddleware) {
	rooms := e.Group("/v1/rooms")
	rooms.Use(authMiddleware.Authenticate)

	rooms.GET("/:id/users", roomHandler.GetRoomUsers)          // GET /v1/rooms/:id/users - Who is online
	rooms.GET("/:id/messages", chatHandler.GetRoomMessages)    // GET /v1/rooms/:id/messages - Live window
	rooms.POST("/:id/messages", chatHandler.SendMessage)       // POST /v1/rooms/:id/messages - Send message

	advisor := e.Group("/v1/advisor")
	advisor.Use(authMiddleware.Authenticate)
	advisor.GET("/unanswered", chatHandler.GetUnansweredQuestions) // Expert dashboard queue
}
