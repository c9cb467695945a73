package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"authgate/internal/auth"
	"authgate/internal/domain"
	"authgate/internal/repository"
)

var (
	// ErrInvalidCredentials covers unknown email and wrong password alike so
	// responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailRequired indicates a signup or login payload without an email.
	ErrEmailRequired = errors.New("email is required")
)

// AuthResult is returned by flows that end with a signed-in user.
type AuthResult struct {
	Token string
	User  domain.PublicUser
}

// UserService orchestrates the authentication workflows over the hasher,
// the policy validator, the token service and the user repository.
type UserService interface {
	Signup(ctx context.Context, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	GetByID(ctx context.Context, id string) (*domain.PublicUser, error)
	GetByEmail(ctx context.Context, email string) (*domain.PublicUser, error)
	UpdateUser(ctx context.Context, id string, email, password *string) error
	DeleteUser(ctx context.Context, id string) error
	SetAvatarKey(ctx context.Context, id, key string) error
	AvatarKey(ctx context.Context, id string) (string, error)
}

type userService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
}

func NewUserService(users repository.UserRepository, tokens *auth.TokenService) UserService {
	return &userService{
		users:  users,
		tokens: tokens,
	}
}

func (s *userService) Signup(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
	}
	// uniqueness is the store's job; a lost race surfaces as ErrEmailTaken
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResult{Token: token, User: user.Public()}, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResult{Token: token, User: user.Public()}, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := auth.VerifyPassword(oldPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.users.UpdatePasswordHash(ctx, userID, hash)
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.PublicUser, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*domain.PublicUser, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

func (s *userService) UpdateUser(ctx context.Context, id string, email, password *string) error {
	if email == nil && password == nil {
		return nil
	}
	if email != nil && strings.TrimSpace(*email) == "" {
		return ErrEmailRequired
	}

	var hash *string
	if password != nil {
		if err := auth.ValidatePassword(*password); err != nil {
			return err
		}
		h, err := auth.HashPassword(*password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		hash = &h
	}

	return s.users.Update(ctx, id, email, hash)
}

func (s *userService) DeleteUser(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}

func (s *userService) SetAvatarKey(ctx context.Context, id, key string) error {
	return s.users.UpdateAvatarKey(ctx, id, key)
}

func (s *userService) AvatarKey(ctx context.Context, id string) (string, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return user.AvatarKey, nil
}
