package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"storefront/internal/domain"

	"go.uber.org/zap"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// RespondWithError sends a structured error response
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithErrorDetails(w, statusCode, message, nil)
}

// RespondWithErrorDetails sends a structured error response with additional details
func RespondWithErrorDetails(w http.ResponseWriter, statusCode int, message string, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error: ErrorDetail{
			Code:      http.StatusText(statusCode),
			Message:   message,
			Details:   details,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	json.NewEncoder(w).Encode(response)
}

// RespondWithValidationErrors sends validation error response
func RespondWithValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	details := make(map[string]interface{})
	details["validation_errors"] = errors

	RespondWithErrorDetails(w, http.StatusBadRequest, "validation failed", details)
}

// RespondWithDomainError maps a domain error onto a status code and a
// message safe to show to clients
func RespondWithDomainError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var (
		validationErr *domain.ValidationError
		authErr       *domain.AuthError
		persistErr    *domain.PersistenceError
	)

	switch {
	case errors.As(err, &validationErr):
		RespondWithValidationErrors(w, []ValidationError{{Field: validationErr.Field, Message: validationErr.Message}})
	case errors.Is(err, domain.ErrNotFound):
		RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &authErr):
		switch authErr.Code {
		case domain.AuthTooManyRequests:
			RespondWithError(w, http.StatusTooManyRequests, "too many login attempts")
		case domain.AuthNetworkFailed:
			logger.Error("Authentication backend unreachable", zap.Error(err))
			RespondWithError(w, http.StatusServiceUnavailable, "authentication unavailable")
		case domain.AuthUserDisabled:
			RespondWithError(w, http.StatusForbidden, "account disabled")
		case domain.AuthInternal:
			logger.Error("Authentication failed", zap.Error(err))
			RespondWithError(w, http.StatusInternalServerError, "internal server error")
		default:
			RespondWithError(w, http.StatusUnauthorized, "invalid email or password")
		}
	case errors.As(err, &persistErr):
		logger.Error("Persistence failure", zap.String("op", persistErr.Op), zap.Error(persistErr.Err))
		RespondWithError(w, http.StatusBadGateway, "failed to "+persistErr.Op)
	default:
		logger.Error("Unhandled error", zap.Error(err))
		RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}
