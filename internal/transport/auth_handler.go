package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"storefront/internal/domain"
	"storefront/internal/login"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      UserProfile `json:"user"`
}

// UserProfile represents the signed-in account
type UserProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// LoginPage is the data behind the login form
type LoginPage struct {
	Title string
	Email string
	Error string
	Busy  bool
}

// SessionEnder signs sessions out
type SessionEnder interface {
	Session(ctx context.Context, token string) (*domain.Session, error)
	SignOut(ctx context.Context, token string) error
}

// AuthHandler handles sign-in and sign-out for the HTML pages and the API
type AuthHandler struct {
	flows        *login.Flows
	sessions     SessionEnder
	views        *Views
	secureCookie bool
	onSignOut    func(sessionID string)
	logger       *zap.Logger
}

// NewAuthHandler creates a new AuthHandler. onSignOut runs with the id of
// every session that signs out.
func NewAuthHandler(flows *login.Flows, sessions SessionEnder, views *Views, secureCookie bool, onSignOut func(string), logger *zap.Logger) *AuthHandler {
	if onSignOut == nil {
		onSignOut = func(string) {}
	}
	return &AuthHandler{
		flows:        flows,
		sessions:     sessions,
		views:        views,
		secureCookie: secureCookie,
		onSignOut:    onSignOut,
		logger:       logger,
	}
}

// RegisterRoutes registers the login pages and the auth API
func (h *AuthHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/login", h.LoginPage)
	r.Post("/login", h.LoginForm)
	r.Post("/logout", h.LogoutForm)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/logout", h.Logout)
		})
	})
}

// LoginPage renders the form, or skips it when the visitor is already
// signed in
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if session := h.flows.Resume(r.Context(), middleware.SessionToken(r)); session != nil {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	h.views.Render(w, http.StatusOK, PageLogin, LoginPage{Title: "Admin Login"})
}

// LoginForm handles the form post
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.views.Render(w, http.StatusBadRequest, PageLogin, LoginPage{Title: "Admin Login", Error: login.MsgMissingFields})
		return
	}
	email := r.PostForm.Get("email")
	password := r.PostForm.Get("password")
	page := LoginPage{Title: "Admin Login", Email: email}

	flow := h.flows.For(email)
	defer h.flows.Release(email, flow)

	result, err := flow.Submit(r.Context(), email, password)
	if err != nil {
		var (
			validationErr *domain.ValidationError
			failedErr     *login.FailedError
		)
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, login.ErrSubmissionInFlight):
			page.Busy = true
			status = http.StatusConflict
		case errors.As(err, &validationErr):
			page.Error = validationErr.Message
			status = http.StatusBadRequest
		case errors.As(err, &failedErr):
			page.Error = failedErr.Message
			status = authStatus(domain.AuthCode(failedErr.Err))
		default:
			page.Error = login.Message(domain.AuthInternal)
		}
		h.views.Render(w, status, PageLogin, page)
		return
	}

	http.SetCookie(w, h.sessionCookie(result.Token, result.Session.ExpiresAt))
	h.logger.Info("User signed in", zap.String("user_id", result.Session.UserID))
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// LogoutForm signs out the cookie session and returns to the login page
func (h *AuthHandler) LogoutForm(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionToken(r); token != "" {
		h.signOut(r.Context(), token)
	}
	expired := h.sessionCookie("", time.Unix(0, 0))
	expired.MaxAge = -1
	http.SetCookie(w, expired)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Login handles API authentication
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("Login decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	flow := h.flows.For(req.Email)
	defer h.flows.Release(req.Email, flow)

	result, err := flow.Submit(r.Context(), req.Email, req.Password)
	if err != nil {
		var (
			validationErr *domain.ValidationError
			failedErr     *login.FailedError
		)
		switch {
		case errors.Is(err, login.ErrSubmissionInFlight):
			middleware.RespondWithError(w, http.StatusConflict, err.Error())
		case errors.As(err, &validationErr):
			middleware.RespondWithValidationErrors(w, []middleware.ValidationError{{Field: validationErr.Field, Message: validationErr.Message}})
		case errors.As(err, &failedErr):
			middleware.RespondWithError(w, authStatus(domain.AuthCode(failedErr.Err)), failedErr.Message)
		default:
			middleware.RespondWithDomainError(w, err, h.logger)
		}
		return
	}

	h.logger.Info("User signed in", zap.String("user_id", result.Session.UserID))
	middleware.RespondWithJSON(w, http.StatusOK, LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.Session.ExpiresAt,
		User: UserProfile{
			ID:    result.Session.UserID,
			Email: result.Session.Email,
			Role:  result.Session.Role,
		},
	})
}

// Logout ends the bearer session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, err := middleware.BearerToken(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !h.signOut(r.Context(), token) {
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to logout")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) signOut(ctx context.Context, token string) bool {
	session, err := h.sessions.Session(ctx, token)
	if err != nil {
		h.logger.Warn("Failed to resolve session on sign-out", zap.Error(err))
	}
	if err := h.sessions.SignOut(ctx, token); err != nil {
		h.logger.Error("Sign-out failed", zap.Error(err))
		return false
	}
	if session != nil {
		h.onSignOut(session.ID)
		h.logger.Info("User signed out", zap.String("user_id", session.UserID))
	}
	return true
}

func (h *AuthHandler) sessionCookie(token string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

func authStatus(code domain.AuthErrorCode) int {
	switch code {
	case domain.AuthTooManyRequests:
		return http.StatusTooManyRequests
	case domain.AuthNetworkFailed:
		return http.StatusServiceUnavailable
	case domain.AuthUserDisabled:
		return http.StatusForbidden
	case domain.AuthInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusUnauthorized
	}
}
