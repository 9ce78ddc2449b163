package transport

import (
	"encoding/json"
	"net/http"
	"testing"

	"storefront/internal/login"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func authRouter(t *testing.T, auth *fakeAuth, evicted *[]string) chi.Router {
	t.Helper()
	h := NewAuthHandler(newLoginFlows(auth), auth, mustViews(t), true, func(id string) {
		*evicted = append(*evicted, id)
	}, zap.NewNop())
	r := chi.NewRouter()
	h.RegisterRoutes(r, middleware.AuthMiddleware(auth, zap.NewNop()))
	return r
}

func TestLoginPage(t *testing.T) {
	auth := newFakeAuth()
	r := authRouter(t, auth, new([]string))

	w := serve(r, "GET", "/login", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `action="/login"`)

	token := auth.signIn(t, "owner@shop.com")
	w = serve(r, "GET", "/login", "", cookie(token))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))
}

func TestLoginForm(t *testing.T) {
	auth := newFakeAuth()
	r := authRouter(t, auth, new([]string))

	cases := []struct {
		name, body string
		status     int
		message    string
	}{
		{"missing fields", "email=&password=", http.StatusBadRequest, login.MsgMissingFields},
		{"bad email", "email=owner&password=secret1", http.StatusBadRequest, "Please enter a valid email address (e.g., example@domain.com)"},
		{"short password", "email=owner%40shop.com&password=abc", http.StatusBadRequest, login.MsgShortPassword},
		{"wrong password", "email=owner%40shop.com&password=wrong-one", http.StatusUnauthorized, "Invalid email or password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(r, "POST", "/login", tc.body, form)
			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), tc.message)
			assert.Empty(t, w.Result().Cookies())
		})
	}
}

func TestLoginForm_SuccessSetsCookie(t *testing.T) {
	auth := newFakeAuth()
	r := authRouter(t, auth, new([]string))

	w := serve(r, "POST", "/login", "email=+Owner%40Shop.com+&password=secret1", form)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookieName, cookies[0].Name)
	assert.Equal(t, "token-owner@shop.com", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
}

func TestLogoutForm(t *testing.T) {
	auth := newFakeAuth()
	var evicted []string
	r := authRouter(t, auth, &evicted)
	token := auth.signIn(t, "owner@shop.com")

	w := serve(r, "POST", "/logout", "", cookie(token))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Equal(t, []string{"session-owner@shop.com"}, evicted)
	assert.Equal(t, []string{token}, auth.signedOut)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
}

func TestAPILogin(t *testing.T) {
	auth := newFakeAuth()
	r := authRouter(t, auth, new([]string))

	w := serve(r, "POST", "/api/auth/login", `{"email":"editor@shop.com","password":"secret2"}`, jsonBody)
	require.Equal(t, http.StatusOK, w.Code)

	var resp LoginResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "token-editor@shop.com", resp.Token)
	assert.Equal(t, "editor", resp.User.Role)

	w = serve(r, "POST", "/api/auth/login", `{"email":"editor@shop.com","password":"nope-nope"}`, jsonBody)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var errResp middleware.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&errResp))
	assert.Equal(t, "Invalid email or password", errResp.Error.Message)

	w = serve(r, "POST", "/api/auth/login", `{"email":"editor"}`, jsonBody)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, "POST", "/api/auth/login", `{`, jsonBody)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPILogout(t *testing.T) {
	auth := newFakeAuth()
	var evicted []string
	r := authRouter(t, auth, &evicted)

	w := serve(r, "POST", "/api/auth/logout", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := auth.signIn(t, "owner@shop.com")
	w = serve(r, "POST", "/api/auth/logout", "", bearer(token))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"session-owner@shop.com"}, evicted)

	w = serve(r, "POST", "/api/auth/logout", "", bearer(token))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
