package middleware

import (
	"net/http"
	"slices"

	"go.uber.org/zap"
)

// Account roles
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// CatalogEditors may change products and categories
var CatalogEditors = []string{RoleAdmin, RoleEditor}

// RequireAdmin only lets admin sessions through
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole(logger, RoleAdmin)
}

// RequireRole only lets sessions holding one of roles through. It must run
// after AuthMiddleware or SessionGate.
func RequireRole(logger *zap.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRole(r.Context())
			if !ok {
				logger.Warn("Role not found in context", zap.String("path", r.URL.Path))
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			if !slices.Contains(roles, role) {
				logger.Warn("User role not authorized",
					zap.String("role", role),
					zap.Strings("allowed_roles", roles),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
