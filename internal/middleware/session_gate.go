package middleware

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/gate"

	"go.uber.org/zap"
)

// SubscribeFunc opens a session source for a token
type SubscribeFunc func(ctx context.Context, token string) gate.Source

// SessionGateConfig configures SessionGate
type SessionGateConfig struct {
	// Timeout bounds how long a request waits for the first session report
	Timeout   time.Duration
	LoginPath string
}

// SessionGate runs an authentication gate for each request. Authenticated
// requests reach next with the session in context, unauthenticated ones are
// sent to the login page and undecided ones get the loading view.
func SessionGate(subscribe SubscribeFunc, config SessionGateConfig, loading http.Handler, logger *zap.Logger) func(http.Handler) http.Handler {
	if config.LoginPath == "" {
		config.LoginPath = "/login"
	}
	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Second
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g := gate.New(subscribe(r.Context(), SessionToken(r)))
			g.Mount()
			defer g.Unmount()

			ctx, cancel := context.WithTimeout(r.Context(), config.Timeout)
			state := g.Wait(ctx)
			cancel()

			switch state {
			case gate.Authenticated:
				next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), g.Session())))
			case gate.Unauthenticated:
				logger.Debug("Gate redirecting to login", zap.String("path", r.URL.Path))
				http.Redirect(w, r, config.LoginPath, http.StatusSeeOther)
			default:
				logger.Warn("Session check timed out", zap.String("path", r.URL.Path))
				w.Header().Set("Cache-Control", "no-store")
				loading.ServeHTTP(w, r)
			}
		})
	}
}
