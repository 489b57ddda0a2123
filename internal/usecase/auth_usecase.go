package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"expertchat/internal/domain/entity"
	"expertchat/internal/domain/repository"
	"expertchat/internal/infrastructure/firebase"
	"expertchat/internal/infrastructure/ratelimit"
	"expertchat/pkg/errors"
)

type AuthUseCase struct {
	userRepo    repository.UserRepository
	authClient  *firebase.FirebaseAuthClient
	rateLimiter *ratelimit.RateLimiter
	jwtSecret   []byte
	jwtExpiry   time.Duration
}

func NewAuthUseCase(
	userRepo repository.UserRepository,
	authClient *firebase.FirebaseAuthClient,
	jwtSecret string,
	jwtExpirySeconds int64,
) *AuthUseCase {
	return &AuthUseCase{
		userRepo:    userRepo,
		authClient:  authClient,
		rateLimiter: ratelimit.NewRateLimiter(),
		jwtSecret:   []byte(jwtSecret),
		jwtExpiry:   time.Duration(jwtExpirySeconds) * time.Second,
	}
}

type RegisterInput struct {
	Email            string
	Password         string
	DisplayName      string
	MobileNumber     string
	UserType         string
	Country          string
	ReasonForJoining string
	SelectedCategory string
}

type GuestSessionOutput struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`
}

// Register creates the Firebase account and the matching profile document.
func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	if input.UserType == "" {
		input.UserType = entity.UserTypeUser
	}
	if input.UserType == entity.UserTypeGuest {
		return nil, errors.BadRequest("Guests cannot register; use a guest session", nil)
	}

	uid, err := uc.authClient.CreateUser(ctx, input.Email, input.Password, input.DisplayName)
	if err != nil {
		log.Printf("Register: Firebase user creation failed for %s: %v", input.Email, err)
		return nil, errors.BadRequest("Failed to create account", err)
	}

	user := &entity.User{
		ID:               uid,
		Email:            input.Email,
		DisplayName:      input.DisplayName,
		MobileNumber:     input.MobileNumber,
		UserType:         input.UserType,
		Country:          input.Country,
		ReasonForJoining: input.ReasonForJoining,
		SelectedCategory: input.SelectedCategory,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GuestSession creates an unauthenticated, message-capped identity and hands
// back a signed token for it. The message counter lives server-side so the
// cap survives token reuse.
func (uc *AuthUseCase) GuestSession(ctx context.Context, displayName, clientIP string) (*GuestSessionOutput, error) {
	allowed, waitTime := uc.rateLimiter.Allow(clientIP, "guest_session")
	if !allowed {
		log.Printf("GuestSession rate limited for %s, wait %v", clientIP, waitTime)
		return nil, errors.TooManyRequests("Too many guest sessions. Please wait", waitTime)
	}

	if displayName == "" {
		displayName = fmt.Sprintf("Guest-%s", uuid.New().String()[:8])
	}

	user := &entity.User{
		ID:          "guest-" + uuid.New().String(),
		DisplayName: displayName,
		UserType:    entity.UserTypeGuest,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	claims := jwt.MapClaims{
		"sub":  user.ID,
		"name": user.DisplayName,
		"type": entity.UserTypeGuest,
		"exp":  time.Now().Add(uc.jwtExpiry).Unix(),
		"iat":  time.Now().Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.jwtSecret)
	if err != nil {
		return nil, errors.Internal("Failed to sign guest token", err)
	}

	return &GuestSessionOutput{Token: token, User: user}, nil
}

// VerifyGuestToken validates a guest session token and returns the guest uid.
func (uc *AuthUseCase) VerifyGuestToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return uc.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", errors.Unauthorized("Invalid or expired guest token", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["type"] != entity.UserTypeGuest {
		return "", errors.Unauthorized("Invalid guest token", nil)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.Unauthorized("Invalid guest token", nil)
	}
	return sub, nil
}

func (uc *AuthUseCase) GetProfile(ctx context.Context, uid string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, uid)
}
