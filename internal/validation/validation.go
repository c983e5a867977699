// internal/validation/validation.go
package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	apperrors "github.com/gurkanbulca/taskapproval/internal/errors"
	"github.com/gurkanbulca/taskapproval/internal/models"
	"github.com/gurkanbulca/taskapproval/pkg/auth"
)

// Config holds validation limits
type Config struct {
	MinUsernameLength    int
	MaxUsernameLength    int
	MaxEmailLength       int
	MaxNameLength        int
	MaxTitleLength       int
	MaxDescriptionLength int
}

// DefaultConfig returns the limits matching the persisted column sizes
func DefaultConfig() *Config {
	return &Config{
		MinUsernameLength:    3,
		MaxUsernameLength:    50,
		MaxEmailLength:       255,
		MaxNameLength:        100,
		MaxTitleLength:       200,
		MaxDescriptionLength: 1000,
	}
}

// Validator checks request fields and reports every problem in one ValidationError
type Validator struct {
	config *Config
}

func New(config *Config) *Validator {
	if config == nil {
		config = DefaultConfig()
	}
	return &Validator{config: config}
}

// TaskFields are the caller-supplied fields of a new task
type TaskFields struct {
	Title          string
	Description    string
	Priority       models.Priority
	AssignedUserID uuid.UUID
	ScheduledDate  time.Time
}

func (v *Validator) ValidateTask(f TaskFields) error {
	var errs []string

	// Title validation
	if strings.TrimSpace(f.Title) == "" {
		errs = append(errs, "title is required")
	} else if utf8.RuneCountInString(f.Title) > v.config.MaxTitleLength {
		errs = append(errs, fmt.Sprintf("title too long (max %d characters)", v.config.MaxTitleLength))
	}

	if utf8.RuneCountInString(f.Description) > v.config.MaxDescriptionLength {
		errs = append(errs, fmt.Sprintf("description too long (max %d characters)", v.config.MaxDescriptionLength))
	}

	switch {
	case f.Priority == "":
		errs = append(errs, "priority is required")
	case !f.Priority.Valid():
		errs = append(errs, fmt.Sprintf("invalid priority %q", string(f.Priority)))
	}

	if f.AssignedUserID == uuid.Nil {
		errs = append(errs, "assigned user is required")
	}

	if f.ScheduledDate.IsZero() {
		errs = append(errs, "scheduled date is required")
	}

	return joined(errs)
}

// UserFields are the fields of a new identity
type UserFields struct {
	Username string
	Name     string
	Email    string
	Role     models.Role
}

func (v *Validator) ValidateUser(f UserFields) error {
	var errs []string

	if err := v.validateUsername(f.Username); err != nil {
		errs = append(errs, fmt.Sprintf("username: %s", err.Error()))
	}

	if strings.TrimSpace(f.Name) == "" {
		errs = append(errs, "name is required")
	} else if utf8.RuneCountInString(f.Name) > v.config.MaxNameLength {
		errs = append(errs, fmt.Sprintf("name too long (max %d characters)", v.config.MaxNameLength))
	}

	if err := v.validateEmail(f.Email); err != nil {
		errs = append(errs, fmt.Sprintf("email: %s", err.Error()))
	}

	if !f.Role.Valid() {
		errs = append(errs, fmt.Sprintf("invalid role %q", string(f.Role)))
	}

	return joined(errs)
}

func (v *Validator) ValidateLogin(username, password string) error {
	var errs []string

	if strings.TrimSpace(username) == "" {
		errs = append(errs, "username is required")
	} else if len(username) > v.config.MaxUsernameLength {
		errs = append(errs, fmt.Sprintf("username too long (max %d characters)", v.config.MaxUsernameLength))
	}

	if password == "" {
		errs = append(errs, "password is required")
	}

	return joined(errs)
}

func (v *Validator) validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > v.config.MaxEmailLength {
		return fmt.Errorf("email too long (max %d characters)", v.config.MaxEmailLength)
	}

	// Parse email to validate format
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

func (v *Validator) validateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	return auth.ValidateUsername(username, v.config.MinUsernameLength, v.config.MaxUsernameLength)
}

func joined(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return apperrors.NewValidationError(strings.Join(errs, "; "))
}
