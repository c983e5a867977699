// pkg/auth/jwt.go
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrInvalidClaims = errors.New("invalid token claims")
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenManager manages JWT tokens
type TokenManager struct {
	accessSecret    []byte
	refreshSecret   []byte
	accessDuration  time.Duration
	refreshDuration time.Duration
	issuer          string
	now             func() time.Time
}

// NewTokenManager creates a new token manager
func NewTokenManager(accessSecret, refreshSecret string, accessDuration, refreshDuration time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:    []byte(accessSecret),
		refreshSecret:   []byte(refreshSecret),
		accessDuration:  accessDuration,
		refreshDuration: refreshDuration,
		issuer:          "taskapproval",
		now:             time.Now,
	}
}

// CustomClaims represents the custom JWT claims
type CustomClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Type     string `json:"type"`
	jwt.RegisteredClaims
}

// TokenPair is the result of a successful login
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// GenerateTokenPair generates both access and refresh tokens
func (tm *TokenManager) GenerateTokenPair(userID, username, role string) (*TokenPair, error) {
	accessToken, err := tm.generateToken(userID, username, role, TokenTypeAccess, tm.accessSecret, tm.accessDuration)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := tm.generateToken(userID, username, role, TokenTypeRefresh, tm.refreshSecret, tm.refreshDuration)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(tm.accessDuration.Seconds()),
	}, nil
}

func (tm *TokenManager) generateToken(userID, username, role, tokenType string, secret []byte, duration time.Duration) (string, error) {
	now := tm.now()

	claims := CustomClaims{
		UserID:   userID,
		Username: username,
		Role:     role,
		Type:     tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    tm.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateAccessToken validates an access token and returns the claims
func (tm *TokenManager) ValidateAccessToken(tokenString string) (*CustomClaims, error) {
	return tm.validateToken(tokenString, TokenTypeAccess, tm.accessSecret)
}

// ValidateRefreshToken validates a refresh token and returns the claims
func (tm *TokenManager) ValidateRefreshToken(tokenString string) (*CustomClaims, error) {
	return tm.validateToken(tokenString, TokenTypeRefresh, tm.refreshSecret)
}

func (tm *TokenManager) validateToken(tokenString, expectedType string, secret []byte) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(tm.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	if claims.Type != expectedType {
		return nil, fmt.Errorf("%w: expected %s token, got %s", ErrInvalidToken, expectedType, claims.Type)
	}

	return claims, nil
}

// RefreshAccessToken generates a new access token from a valid refresh token
func (tm *TokenManager) RefreshAccessToken(refreshToken string) (string, int64, error) {
	claims, err := tm.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", 0, fmt.Errorf("validate refresh token: %w", err)
	}

	accessToken, err := tm.generateToken(
		claims.UserID,
		claims.Username,
		claims.Role,
		TokenTypeAccess,
		tm.accessSecret,
		tm.accessDuration,
	)
	if err != nil {
		return "", 0, fmt.Errorf("generate access token: %w", err)
	}

	return accessToken, int64(tm.accessDuration.Seconds()), nil
}

// ExtractTokenFromHeader extracts the token from the Authorization header
func ExtractTokenFromHeader(authHeader string) (string, error) {
	const prefix = "Bearer "
	if len(authHeader) < len(prefix) || !strings.EqualFold(authHeader[:len(prefix)], prefix) {
		return "", errors.New("invalid authorization header format")
	}
	token := strings.TrimSpace(authHeader[len(prefix):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}
