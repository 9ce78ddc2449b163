package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every NotFoundError
var ErrNotFound = errors.New("not found")

// ValidationError reports missing or invalid user input. It is raised before
// any backend call is made.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError for a field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports an operation targeting a missing record
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// Is makes errors.Is(err, ErrNotFound) hold for any NotFoundError
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// PersistenceError wraps a backing store read or write failure
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// AuthErrorCode classifies authentication provider failures
type AuthErrorCode string

const (
	AuthInvalidEmail      AuthErrorCode = "invalid-email"
	AuthUserNotFound      AuthErrorCode = "user-not-found"
	AuthWrongPassword     AuthErrorCode = "wrong-password"
	AuthInvalidCredential AuthErrorCode = "invalid-credential"
	AuthUserDisabled      AuthErrorCode = "user-disabled"
	AuthTooManyRequests   AuthErrorCode = "too-many-requests"
	AuthNetworkFailed     AuthErrorCode = "network-request-failed"
	AuthInternal          AuthErrorCode = "internal"
)

// AuthError is a classified authentication provider failure
type AuthError struct {
	Code AuthErrorCode
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return "auth/" + string(e.Code)
	}
	return fmt.Sprintf("auth/%s: %v", e.Code, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// AuthCode extracts the classification from err, or AuthInternal when err is
// not an AuthError.
func AuthCode(err error) AuthErrorCode {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Code
	}
	return AuthInternal
}
