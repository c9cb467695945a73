package repository

import (
	"context"
	"errors"

	"authgate/internal/domain"
)

// Typed store outcomes. Driver error text never crosses this boundary;
// callers see these sentinels or a wrapped opaque failure.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateEmail(ctx context.Context, id, email string) error
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	UpdateAvatarKey(ctx context.Context, id, avatarKey string) error
	// Update applies the non-nil fields in a single transaction; either both
	// changes land or neither does.
	Update(ctx context.Context, id string, email, passwordHash *string) error
	Delete(ctx context.Context, id string) error
}
