package service

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/juju/pubsub/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10

	// DefaultSessionExpiry applies when no expiry is configured
	DefaultSessionExpiry = 24 * time.Hour

	sessionTopicPrefix = "auth.session."
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrInvalidRole  = errors.New("invalid role")
)

var validate = validator.New()

// AuthService is the authentication provider. It issues opaque session
// tokens and notifies watchers whenever a session changes.
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*domain.Session, string, error)
	SignOut(ctx context.Context, token string) error
	Session(ctx context.Context, token string) (*domain.Session, error)
	Subscribe(ctx context.Context, token string) *SessionWatcher
	CreateUser(ctx context.Context, email, password, role string) (*domain.User, error)
}

// Claims represents the JWT claims carried by a session token
type Claims struct {
	SessionID string `json:"sid"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// AuthOptions tunes the provider
type AuthOptions struct {
	JWTSecret     string
	SessionExpiry time.Duration
	// EnumerationProtection collapses unknown-user and wrong-password into
	// a single invalid-credential failure
	EnumerationProtection bool
}

type authService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	attempts AttemptLimiter
	hub      *pubsub.SimpleHub
	opts     AuthOptions
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService creates a new instance of AuthService. A nil limiter
// disables attempt throttling.
func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	attempts AttemptLimiter,
	hub *pubsub.SimpleHub,
	opts AuthOptions,
	logger *zap.Logger,
) AuthService {
	if attempts == nil {
		attempts = noopLimiter{}
	}
	if opts.SessionExpiry <= 0 {
		opts.SessionExpiry = DefaultSessionExpiry
	}
	return &authService{
		users:    users,
		sessions: sessions,
		attempts: attempts,
		hub:      hub,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// SignIn verifies the credentials and opens a new session
func (s *authService) SignIn(ctx context.Context, email, password string) (*domain.Session, string, error) {
	email = NormalizeEmail(email)
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, "", &domain.AuthError{Code: domain.AuthInvalidEmail}
	}

	allowed, err := s.attempts.Allow(ctx, email)
	if err != nil {
		s.logger.Warn("Failed to check sign-in attempts", zap.Error(err))
	} else if !allowed {
		s.logger.Warn("Sign-in throttled", zap.String("email", email))
		return nil, "", &domain.AuthError{Code: domain.AuthTooManyRequests}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.recordFailure(ctx, email)
			return nil, "", s.credentialError(domain.AuthUserNotFound)
		}
		return nil, "", classify(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.recordFailure(ctx, email)
		return nil, "", s.credentialError(domain.AuthWrongPassword)
	}

	if user.Disabled {
		return nil, "", &domain.AuthError{Code: domain.AuthUserDisabled}
	}

	if err := s.attempts.Reset(ctx, email); err != nil {
		s.logger.Warn("Failed to reset sign-in attempts", zap.Error(err))
	}

	now := s.now()
	record := &domain.SessionRecord{
		ID:        uuid.New(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.opts.SessionExpiry),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, record); err != nil {
		return nil, "", classify(err)
	}

	token, err := s.signToken(record, user)
	if err != nil {
		return nil, "", &domain.AuthError{Code: domain.AuthInternal, Err: err}
	}

	session := toSession(record, user)
	s.publish(record.ID.String(), session)

	s.logger.Info("User signed in", zap.String("user_id", user.ID.String()))
	return session, token, nil
}

// SignOut revokes the session behind the token. Unknown sessions are
// already signed out.
func (s *authService) SignOut(ctx context.Context, token string) error {
	claims, err := s.parseToken(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil
	}
	id, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return nil
	}

	if err := s.sessions.Revoke(ctx, id); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil
		}
		return classify(err)
	}

	s.publish(id.String(), nil)
	s.logger.Info("Session revoked", zap.String("session_id", id.String()))
	return nil
}

// Session resolves a token to its live session. Invalid, expired or revoked
// tokens and disabled users yield a nil session and no error.
func (s *authService) Session(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, nil
	}
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, nil
	}
	id, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return nil, nil
	}

	record, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) || errors.Is(err, repository.ErrSessionRevoked) {
			return nil, nil
		}
		return nil, classify(err)
	}
	if !s.now().Before(record.ExpiresAt) {
		return nil, nil
	}

	user, err := s.users.FindByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil
		}
		return nil, classify(err)
	}
	if user.Disabled {
		return nil, nil
	}

	return toSession(record, user), nil
}

// Subscribe returns a watcher that first delivers the current session, then
// every later change to it.
func (s *authService) Subscribe(ctx context.Context, token string) *SessionWatcher {
	current, err := s.Session(ctx, token)
	if err != nil {
		s.logger.Warn("Failed to resolve session for watcher", zap.Error(err))
	}

	topic := ""
	if claims, err := s.parseToken(token, jwt.WithoutClaimsValidation()); err == nil && claims.SessionID != "" {
		topic = sessionTopicPrefix + claims.SessionID
	}
	return newSessionWatcher(s.hub, topic, current)
}

// CreateUser registers an account with a bcrypt-hashed password
func (s *authService) CreateUser(ctx context.Context, email, password, role string) (*domain.User, error) {
	email = NormalizeEmail(email)
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, domain.NewValidationError("email", "Please enter a valid email address")
	}
	if len(password) < 6 {
		return nil, domain.NewValidationError("password", "Password must be at least 6 characters long")
	}
	if role == "" {
		role = "admin"
	}
	if err := validate.Var(role, "oneof=admin editor"); err != nil {
		return nil, ErrInvalidRole
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// NormalizeEmail trims and lowercases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) credentialError(code domain.AuthErrorCode) error {
	if s.opts.EnumerationProtection {
		code = domain.AuthInvalidCredential
	}
	return &domain.AuthError{Code: code}
}

func (s *authService) recordFailure(ctx context.Context, email string) {
	if err := s.attempts.Fail(ctx, email); err != nil {
		s.logger.Warn("Failed to record sign-in attempt", zap.Error(err))
	}
}

func (s *authService) publish(sessionID string, session *domain.Session) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(sessionTopicPrefix+sessionID, sessionChange{Session: session})
}

func (s *authService) signToken(record *domain.SessionRecord, user *domain.User) (string, error) {
	claims := &Claims{
		SessionID: record.ID.String(),
		Role:      user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(record.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(record.CreatedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.opts.JWTSecret))
}

func (s *authService) parseToken(tokenString string, opts ...jwt.ParserOption) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.opts.JWTSecret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func toSession(record *domain.SessionRecord, user *domain.User) *domain.Session {
	return &domain.Session{
		ID:        record.ID.String(),
		UserID:    user.ID.String(),
		Email:     user.Email,
		Role:      user.Role,
		ExpiresAt: record.ExpiresAt,
	}
}

// classify maps a store failure onto an auth error code
func classify(err error) error {
	if isNetworkError(err) {
		return &domain.AuthError{Code: domain.AuthNetworkFailed, Err: err}
	}
	return &domain.AuthError{Code: domain.AuthInternal, Err: err}
}

func isNetworkError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
