package repository

import (
	"context"

	"expertchat/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error

	// IncrementMessageCount bumps the guest send counter and returns the new
	// value.
	IncrementMessageCount(ctx context.Context, id string) (int, error)
}
