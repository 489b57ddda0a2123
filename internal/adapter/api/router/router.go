package router

import (
	"github.com/labstack/echo/v4"

	"expertchat/internal/adapter/api/handler"
	"expertchat/internal/adapter/api/middleware"
)

// Setup wires the auth and catalog routes
func Setup(e *echo.Echo, authHandler *handler.AuthHandler, roomHandler *handler.RoomHandler, authMiddleware *middleware.AuthMiddleware) {
	auth := e.Group("/v1/auth")
	auth.POST("/register", authHandler.Register) // POST /v1/auth/register - Create account
	auth.POST("/guest", authHandler.GuestSession) // POST /v1/auth/guest - Start capped guest session
	auth.GET("/me", authHandler.Me, authMiddleware.Authenticate)

	e.GET("/v1/countries", roomHandler.GetCountries) // Public room catalog
}
