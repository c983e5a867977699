// internal/service/auth_service.go
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/gurkanbulca/taskapproval/internal/errors"
	"github.com/gurkanbulca/taskapproval/internal/models"
	"github.com/gurkanbulca/taskapproval/internal/repository"
	"github.com/gurkanbulca/taskapproval/internal/session"
	"github.com/gurkanbulca/taskapproval/internal/validation"
	"github.com/gurkanbulca/taskapproval/pkg/auth"
)

// AuthService verifies credentials and resolves bearer tokens to identities
type AuthService struct {
	users           repository.UserRepository
	tokenManager    *auth.TokenManager
	passwordManager *auth.PasswordManager
	revocations     session.RevocationStore
	validator       *validation.Validator
	emitter         *EventEmitter
	logger          *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokenManager *auth.TokenManager,
	passwordManager *auth.PasswordManager,
	revocations session.RevocationStore,
	emitter *EventEmitter,
	logger *slog.Logger,
) *AuthService {
	if passwordManager == nil {
		passwordManager = auth.NewPasswordManager()
	}
	if revocations == nil {
		revocations = session.NewMemoryRevocationStore()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:           users,
		tokenManager:    tokenManager,
		passwordManager: passwordManager,
		revocations:     revocations,
		validator:       validation.New(nil),
		emitter:         emitter,
		logger:          logger,
	}
}

// LoginResult is returned by a successful Authenticate
type LoginResult struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresIn    int64       `json:"expiresIn"`
	ID           uuid.UUID   `json:"id"`
	Username     string      `json:"username"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Role         models.Role `json:"role"`
	Message      string      `json:"message"`
}

// RefreshResult carries a newly issued access token
type RefreshResult struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// Authenticate checks a username and password. Unknown users and wrong passwords fail
// with the same AuthError.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*LoginResult, error) {
	if err := s.validator.ValidateLogin(username, password); err != nil {
		return nil, err
	}

	loginID := repository.NormalizeUsername(username)
	user, err := s.users.FindByUsername(ctx, loginID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			s.emitter.LoginFailed(ctx, loginID, "user not found")
			return nil, apperrors.NewAuthError()
		}
		return nil, err
	}

	if err := s.passwordManager.ComparePassword(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Error("password comparison failed", "user_id", user.ID.String(), "error", err)
		}
		s.emitter.LoginFailed(ctx, loginID, "invalid password")
		return nil, apperrors.NewAuthError()
	}

	pair, err := s.tokenManager.GenerateTokenPair(user.ID.String(), user.Username, string(user.Role))
	if err != nil {
		return nil, apperrors.NewInternalError("generate tokens", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID.String(), "username", user.Username)
	s.emitter.LoginSucceeded(ctx, user)

	return &LoginResult{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		ID:           user.ID,
		Username:     user.Username,
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		Message:      "Login successful",
	}, nil
}

// CurrentIdentity resolves an access token. The role is read from the store, not the
// token, so a role change applies to tokens already issued.
func (s *AuthService) CurrentIdentity(ctx context.Context, token string) (*models.Identity, error) {
	claims, err := s.validAccessClaims(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.identity(ctx, claims)
}

func (s *AuthService) identity(ctx context.Context, claims *auth.CustomClaims) (*models.Identity, error) {
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperrors.NewUnauthenticatedError("invalid user ID in token")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.NewUnauthenticatedError("user no longer exists")
		}
		return nil, err
	}

	return &models.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Name:     user.Name,
		Role:     user.Role,
	}, nil
}

// Logout revokes the access token until it would have expired anyway
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.validAccessClaims(ctx, token)
	if err != nil {
		return err
	}

	identity, err := s.identity(ctx, claims)
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(24 * time.Hour)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.revocations.Revoke(ctx, claims.ID, expiresAt); err != nil {
		return apperrors.NewInternalError("revoke token", err)
	}

	s.logger.Info("user logged out", "user_id", identity.UserID.String())
	s.emitter.LoggedOut(ctx, identity)
	return nil
}

// Refresh issues a new access token for a valid refresh token whose user still exists
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	if refreshToken == "" {
		return nil, apperrors.NewValidationError("refresh token is required")
	}

	claims, err := s.tokenManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.NewUnauthenticatedError("invalid refresh token")
	}

	if _, err := s.identity(ctx, claims); err != nil {
		return nil, err
	}

	accessToken, expiresIn, err := s.tokenManager.RefreshAccessToken(refreshToken)
	if err != nil {
		return nil, apperrors.NewUnauthenticatedError("invalid refresh token")
	}

	return &RefreshResult{AccessToken: accessToken, ExpiresIn: expiresIn}, nil
}

func (s *AuthService) validAccessClaims(ctx context.Context, token string) (*auth.CustomClaims, error) {
	if token == "" {
		return nil, apperrors.NewUnauthenticatedError("missing token")
	}

	claims, err := s.tokenManager.ValidateAccessToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, apperrors.NewUnauthenticatedError("token has expired")
		}
		return nil, apperrors.NewUnauthenticatedError("invalid or expired token")
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperrors.NewInternalError("check token revocation", err)
	}
	if revoked {
		return nil, apperrors.NewUnauthenticatedError("token has been revoked")
	}

	return claims, nil
}
