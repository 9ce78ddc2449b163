// Package login validates credentials locally, forwards them to the
// authentication provider and maps provider failures onto fixed messages.
package login

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"storefront/internal/domain"

	"go.uber.org/zap"
)

const (
	MsgMissingFields  = "Please enter both email and password"
	MsgInvalidEmail   = "Please enter a valid email address (e.g., example@domain.com)"
	MsgShortPassword  = "Password must be at least 6 characters long"
	MinPasswordLength = 6
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ErrSubmissionInFlight is returned when a submit arrives while another one
// is still waiting on the provider
var ErrSubmissionInFlight = errors.New("login submission already in progress")

// Provider is the part of the authentication provider the flow needs
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*domain.Session, string, error)
	Session(ctx context.Context, token string) (*domain.Session, error)
}

// FailedError carries the user-facing message for a rejected sign-in
type FailedError struct {
	Message string
	Err     error
}

func (e *FailedError) Error() string {
	return e.Message
}

func (e *FailedError) Unwrap() error {
	return e.Err
}

// Result is a successful sign-in
type Result struct {
	Session *domain.Session
	Token   string
}

// Flow drives the login form
type Flow struct {
	provider Provider
	logger   *zap.Logger
	busy     atomic.Bool
}

// NewFlow creates a login flow backed by the provider
func NewFlow(provider Provider, logger *zap.Logger) *Flow {
	return &Flow{provider: provider, logger: logger}
}

// Validate runs the local checks in order and returns the first failure
func Validate(email, password string) *domain.ValidationError {
	if strings.TrimSpace(email) == "" || password == "" {
		return domain.NewValidationError("", MsgMissingFields)
	}
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return domain.NewValidationError("email", MsgInvalidEmail)
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return domain.NewValidationError("password", MsgShortPassword)
	}
	return nil
}

// Busy reports whether a submission is waiting on the provider
func (f *Flow) Busy() bool {
	return f.busy.Load()
}

// Submit validates the credentials and signs in. Validation failures never
// reach the provider.
func (f *Flow) Submit(ctx context.Context, email, password string) (*Result, error) {
	if err := Validate(email, password); err != nil {
		return nil, err
	}

	if !f.busy.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInFlight
	}
	defer f.busy.Store(false)

	session, token, err := f.provider.SignIn(ctx, strings.ToLower(strings.TrimSpace(email)), password)
	if err != nil {
		code := domain.AuthCode(err)
		f.logger.Info("Sign-in rejected", zap.String("code", string(code)))
		return nil, &FailedError{Message: Message(code), Err: err}
	}

	return &Result{Session: session, Token: token}, nil
}

// Resume returns the session already attached to token, if any, so the
// login page can redirect straight to the admin area
func (f *Flow) Resume(ctx context.Context, token string) *domain.Session {
	if token == "" {
		return nil
	}
	session, err := f.provider.Session(ctx, token)
	if err != nil {
		f.logger.Warn("Failed to resume session", zap.Error(err))
		return nil
	}
	return session
}

// Message maps a provider failure code onto the message shown to the user
func Message(code domain.AuthErrorCode) string {
	switch code {
	case domain.AuthInvalidEmail:
		return "Please enter a valid email address"
	case domain.AuthUserNotFound:
		return "No account found with this email address"
	case domain.AuthWrongPassword:
		return "Incorrect password"
	case domain.AuthInvalidCredential:
		return "Invalid email or password"
	case domain.AuthUserDisabled:
		return "This account has been disabled"
	case domain.AuthTooManyRequests:
		return "Too many login attempts. Please try again later"
	case domain.AuthNetworkFailed:
		return "Network error. Please check your connection"
	default:
		return "Login failed. Please try again"
	}
}
