// pkg/auth/password.go
package auth

import (
	"errors"
	"fmt"
	"regexp"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrWeakPassword     = errors.New("password does not meet requirements")
	ErrPasswordMismatch = errors.New("password does not match")
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)

// PasswordPolicy configures the strength rules applied before hashing
type PasswordPolicy struct {
	MinLength      int
	RequireUpper   bool
	RequireLower   bool
	RequireNumber  bool
	RequireSpecial bool
}

// DefaultPasswordPolicy returns the policy used when none is configured
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:     8,
		RequireLower:  true,
		RequireNumber: true,
	}
}

// PasswordManager handles password hashing and validation
type PasswordManager struct {
	policy PasswordPolicy
	cost   int
}

// NewPasswordManager creates a new password manager with default settings
func NewPasswordManager() *PasswordManager {
	return NewPasswordManagerWithPolicy(DefaultPasswordPolicy(), 12)
}

// NewPasswordManagerWithPolicy creates a password manager with an explicit policy and bcrypt cost
func NewPasswordManagerWithPolicy(policy PasswordPolicy, cost int) *PasswordManager {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordManager{
		policy: policy,
		cost:   cost,
	}
}

// HashPassword validates and hashes a password using bcrypt
func (pm *PasswordManager) HashPassword(password string) (string, error) {
	if err := pm.ValidatePassword(password); err != nil {
		return "", err
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), pm.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hashedBytes), nil
}

// ComparePassword checks a plain password against a stored hash.
// It never reverses the hash; bcrypt re-derives and compares in constant time.
func (pm *PasswordManager) ComparePassword(hashedPassword, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("compare password: %w", err)
	}
	return nil
}

// ValidatePassword checks if a password meets the requirements
func (pm *PasswordManager) ValidatePassword(password string) error {
	if len(password) < pm.policy.MinLength {
		return fmt.Errorf("%w: minimum length is %d characters", ErrWeakPassword, pm.policy.MinLength)
	}
	// bcrypt ignores everything past 72 bytes
	if len(password) > 72 {
		return fmt.Errorf("%w: maximum length is 72 bytes", ErrWeakPassword)
	}

	var (
		hasUpper   bool
		hasLower   bool
		hasNumber  bool
		hasSpecial bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	if pm.policy.RequireUpper && !hasUpper {
		return fmt.Errorf("%w: must contain at least one uppercase letter", ErrWeakPassword)
	}
	if pm.policy.RequireLower && !hasLower {
		return fmt.Errorf("%w: must contain at least one lowercase letter", ErrWeakPassword)
	}
	if pm.policy.RequireNumber && !hasNumber {
		return fmt.Errorf("%w: must contain at least one number", ErrWeakPassword)
	}
	if pm.policy.RequireSpecial && !hasSpecial {
		return fmt.Errorf("%w: must contain at least one special character", ErrWeakPassword)
	}

	return nil
}

// ValidateUsername checks the length bounds and the allowed character set of a username
func ValidateUsername(username string, minLen, maxLen int) error {
	if len(username) < minLen {
		return fmt.Errorf("username too short (min %d characters)", minLen)
	}

	if len(username) > maxLen {
		return fmt.Errorf("username too long (max %d characters)", maxLen)
	}

	if !usernamePattern.MatchString(username) {
		return errors.New("username can only contain letters, numbers, dots, underscores, and hyphens")
	}

	return nil
}
