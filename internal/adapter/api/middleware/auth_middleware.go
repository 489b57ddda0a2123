package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"

	"expertchat/internal/usecase"
)

type AuthMiddleware struct {
	authClient  *auth.Client
	authUseCase *usecase.AuthUseCase
}

func NewAuthMiddleware(authClient *auth.Client, authUseCase *usecase.AuthUseCase) *AuthMiddleware {
	return &AuthMiddleware{
		authClient:  authClient,
		authUseCase: authUseCase,
	}
}

// Authenticate accepts either a Firebase ID token (registered users and
// experts) or a guest session token, and stores the resolved uid on the
// context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is required")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization format")
		}

		uid, err := m.ResolveToken(c.Request().Context(), parts[1])
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}

		c.Set("uid", uid)
		return next(c)
	}
}

// ResolveToken verifies a bearer token of either kind and returns the uid.
// Used directly by the websocket handler, which authenticates via query
// parameter instead of header.
func (m *AuthMiddleware) ResolveToken(ctx context.Context, token string) (string, error) {
	firebaseToken, err := m.authClient.VerifyIDToken(ctx, token)
	if err == nil {
		return firebaseToken.UID, nil
	}

	return m.authUseCase.VerifyGuestToken(token)
}
