package handler

import (
	"github.com/labstack/echo/v4"

	"expertchat/internal/usecase"
	"expertchat/pkg/response"
)

type AuthHandler struct {
	authUseCase *usecase.AuthUseCase
}

func NewAuthHandler(authUseCase *usecase.AuthUseCase) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
	}
}

type registerRequest struct {
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=8"`
	DisplayName      string `json:"display_name" validate:"required"`
	MobileNumber     string `json:"mobile_number"`
	UserType         string `json:"user_type" validate:"omitempty,oneof=user consultant resident"`
	Country          string `json:"country"`
	ReasonForJoining string `json:"reason_for_joining"`
	SelectedCategory string `json:"selected_category" validate:"omitempty,oneof=study travel visa"`
}

type guestSessionRequest struct {
	DisplayName string `json:"display_name"`
}

// Register creates a new account and its profile
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.authUseCase.Register(c.Request().Context(), usecase.RegisterInput{
		Email:            req.Email,
		Password:         req.Password,
		DisplayName:      req.DisplayName,
		MobileNumber:     req.MobileNumber,
		UserType:         req.UserType,
		Country:          req.Country,
		ReasonForJoining: req.ReasonForJoining,
		SelectedCategory: req.SelectedCategory,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, user)
}

// GuestSession issues a message-capped guest identity and token
func (h *AuthHandler) GuestSession(c echo.Context) error {
	var req guestSessionRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	session, err := h.authUseCase.GuestSession(c.Request().Context(), req.DisplayName, c.RealIP())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, session)
}

// Me returns the authenticated caller's profile
func (h *AuthHandler) Me(c echo.Context) error {
	uid := c.Get("uid").(string)

	user, err := h.authUseCase.GetProfile(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}
