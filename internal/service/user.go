package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/parceltrack/parceltrack/internal/model"
	"github.com/parceltrack/parceltrack/internal/repository"
)

// Registration messages.
const (
	MessageUserCreated = "user created"
	MessageUserExists  = "user already exists"
)

// UserService handles user registration.
type UserService struct {
	users  repository.UserStore
	logger *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users repository.UserStore, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger.With("component", "service.user"),
	}
}

// RegisterResult reports whether a registration wrote a new user.
type RegisterResult struct {
	Message    string
	Inserted   bool
	InsertedID string
}

// Register inserts a user unless one with the same email exists.
// A concurrent insert that loses the unique-index race returns ErrUserExists.
func (s *UserService) Register(ctx context.Context, fields map[string]any) (*RegisterResult, error) {
	user := model.UserFromFields(fields)
	if user.Email == "" {
		return nil, ErrEmailRequired
	}

	_, err := s.users.GetUserByEmail(ctx, user.Email)
	switch {
	case err == nil:
		return &RegisterResult{Message: MessageUserExists, Inserted: false}, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user.ID = model.NewID()
	user.CreatedAt = time.Now().UTC()

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			s.logger.Info("registration lost unique email race", "email", user.Email)
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &RegisterResult{
		Message:    MessageUserCreated,
		Inserted:   true,
		InsertedID: user.ID,
	}, nil
}

// GetUser retrieves a user by email.
func (s *UserService) GetUser(ctx context.Context, email string) (*model.User, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}
