// internal/service/user_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/gurkanbulca/taskapproval/internal/errors"
	"github.com/gurkanbulca/taskapproval/internal/models"
	"github.com/gurkanbulca/taskapproval/internal/repository"
	"github.com/gurkanbulca/taskapproval/internal/validation"
	"github.com/gurkanbulca/taskapproval/pkg/auth"
)

// UserService manages the identities tasks refer to
type UserService struct {
	users           repository.UserRepository
	passwordManager *auth.PasswordManager
	validator       *validation.Validator
	emitter         *EventEmitter
	logger          *slog.Logger
}

func NewUserService(
	users repository.UserRepository,
	passwordManager *auth.PasswordManager,
	emitter *EventEmitter,
	logger *slog.Logger,
) *UserService {
	if passwordManager == nil {
		passwordManager = auth.NewPasswordManager()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		users:           users,
		passwordManager: passwordManager,
		validator:       validation.New(nil),
		emitter:         emitter,
		logger:          logger,
	}
}

// CreateUserInput carries a new identity and its plain password
type CreateUserInput struct {
	Username string
	Name     string
	Email    string
	Password string
	Role     models.Role
}

// CreateUser validates, hashes the password and stores the user
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if in.Role == "" {
		in.Role = models.RoleUser
	}

	username := repository.NormalizeUsername(in.Username)
	if err := s.validator.ValidateUser(validation.UserFields{
		Username: username,
		Name:     in.Name,
		Email:    in.Email,
		Role:     in.Role,
	}); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, apperrors.NewDuplicateUsernameError(username)
	}

	hash, err := s.passwordManager.HashPassword(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrWeakPassword) {
			return nil, apperrors.NewValidationError(err.Error())
		}
		return nil, apperrors.NewInternalError("hash password", err)
	}

	user, err := s.users.Create(ctx, &models.User{
		Username:     username,
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		Role:         in.Role,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created", "user_id", user.ID.String(), "username", user.Username, "role", string(user.Role))
	s.emitter.UserCreated(ctx, user)

	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}

// ListUsers returns every user ordered by username
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
