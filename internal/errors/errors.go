// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// Sentinels usable with errors.Is; matching is by kind only.
var (
	ErrValidation        = &AppError{Kind: KindValidation}
	ErrNotFound          = &AppError{Kind: KindNotFound}
	ErrForbidden         = &AppError{Kind: KindForbidden}
	ErrUnauthenticated   = &AppError{Kind: KindUnauthenticated}
	ErrDuplicateUsername = &AppError{Kind: KindDuplicateUsername}
	ErrAuth              = &AppError{Kind: KindAuth}
	ErrConflict          = &AppError{Kind: KindConflict}
	ErrInternal          = &AppError{Kind: KindInternal}
)

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Message: message,
	}
}

// NewFieldError creates a validation error for a single request field
func NewFieldError(field, reason string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Message: fmt.Sprintf("%s %s", field, reason),
		Context: map[string]interface{}{
			"field": field,
		},
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string, identifier string) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, identifier),
		Context: map[string]interface{}{
			"resource":   resource,
			"identifier": identifier,
		},
	}
}

// NewForbiddenError creates a new authorization error
func NewForbiddenError(message string) *AppError {
	return &AppError{
		Kind:    KindForbidden,
		Message: message,
	}
}

// NewUnauthenticatedError creates an error for a missing or invalid identity
func NewUnauthenticatedError(message string) *AppError {
	return &AppError{
		Kind:    KindUnauthenticated,
		Message: message,
	}
}

// NewDuplicateUsernameError creates an identity conflict error
func NewDuplicateUsernameError(username string) *AppError {
	return &AppError{
		Kind:    KindDuplicateUsername,
		Message: "Username already exists",
		Context: map[string]interface{}{
			"username": username,
		},
	}
}

// NewAuthError creates an error for rejected credentials
func NewAuthError() *AppError {
	return &AppError{
		Kind:    KindAuth,
		Message: "Invalid username or password",
	}
}

// NewConflictError creates an error for a stale or disallowed write
func NewConflictError(message string) *AppError {
	return &AppError{
		Kind:    KindConflict,
		Message: message,
	}
}

// NewInternalError wraps an unexpected failure such as a storage error
func NewInternalError(operation string, cause error) *AppError {
	return &AppError{
		Kind:    KindInternal,
		Message: fmt.Sprintf("operation failed: %s", operation),
		Cause:   cause,
		Context: map[string]interface{}{
			"operation": operation,
		},
	}
}

// As returns the first AppError in err's chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err's chain contains an AppError of the given kind
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}

// KindOf returns the kind of the first AppError in err's chain, or KindInternal
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}
