package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/domain"

	"go.uber.org/zap"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	UserRoleKey contextKey = "user_role"
	SessionKey  contextKey = "session"

	// SessionCookieName holds the session token for HTML pages
	SessionCookieName = "storefront_session"
)

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthHeader = errors.New("invalid authorization header format")
)

// SessionResolver turns a token into a live session; nil means none
type SessionResolver interface {
	Session(ctx context.Context, token string) (*domain.Session, error)
}

// AuthMiddleware resolves the bearer token to a live session and stores it
// in the request context
func AuthMiddleware(resolver SessionResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r)
			if err != nil {
				logger.Debug("Rejected authorization header", zap.Error(err))
				RespondWithError(w, http.StatusUnauthorized, err.Error())
				return
			}

			session, err := resolver.Session(r.Context(), token)
			if err != nil {
				logger.Error("Failed to resolve session", zap.Error(err))
				RespondWithError(w, http.StatusServiceUnavailable, "authentication unavailable")
				return
			}
			if session == nil {
				logger.Debug("Invalid or expired session token")
				RespondWithError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			logger.Debug("User authenticated",
				zap.String("user_id", session.UserID),
				zap.String("role", session.Role),
			)

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header
func BearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrInvalidAuthHeader
	}
	return parts[1], nil
}

// SessionToken returns the session cookie, falling back to a bearer token
func SessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	token, _ := BearerToken(r)
	return token
}

// WithSession stores the session and its user claims in ctx
func WithSession(ctx context.Context, session *domain.Session) context.Context {
	ctx = context.WithValue(ctx, SessionKey, session)
	ctx = context.WithValue(ctx, UserIDKey, session.UserID)
	return context.WithValue(ctx, UserRoleKey, session.Role)
}

// GetSession extracts the session from request context
func GetSession(ctx context.Context) (*domain.Session, bool) {
	session, ok := ctx.Value(SessionKey).(*domain.Session)
	return session, ok && session != nil
}

// GetUserID extracts user ID from request context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

// GetUserRole extracts user role from request context
func GetUserRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(UserRoleKey).(string)
	return role, ok
}
