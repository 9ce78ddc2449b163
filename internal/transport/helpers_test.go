package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/login"
	"storefront/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAuth accepts one password per email and hands out "token-<email>"
type fakeAuth struct {
	mu        sync.Mutex
	passwords map[string]string
	roles     map[string]string
	sessions  map[string]*domain.Session
	signedOut []string
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		passwords: map[string]string{"owner@shop.com": "secret1", "editor@shop.com": "secret2"},
		roles:     map[string]string{"owner@shop.com": "admin", "editor@shop.com": "editor"},
		sessions:  make(map[string]*domain.Session),
	}
}

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) (*domain.Session, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	want, ok := f.passwords[email]
	if !ok || want != password {
		return nil, "", &domain.AuthError{Code: domain.AuthInvalidCredential}
	}
	session := &domain.Session{
		ID:        "session-" + email,
		UserID:    "user-" + email,
		Email:     email,
		Role:      f.roles[email],
		ExpiresAt: time.Now().Add(time.Hour),
	}
	token := "token-" + email
	f.sessions[token] = session
	return session, token, nil
}

func (f *fakeAuth) Session(ctx context.Context, token string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[token], nil
}

func (f *fakeAuth) SignOut(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)
	f.signedOut = append(f.signedOut, token)
	return nil
}

func (f *fakeAuth) signIn(t *testing.T, email string) string {
	t.Helper()
	_, token, err := f.SignIn(context.Background(), email, f.passwords[email])
	require.NoError(t, err)
	return token
}

func seededStore() *catalog.Store {
	return catalog.NewStore(
		repository.NewInMemoryProductRepository(repository.SeedProducts()),
		repository.NewInMemoryCategoryRepository(repository.SeedCategories()),
		zap.NewNop(),
	)
}

func mustViews(t *testing.T) *Views {
	t.Helper()
	views, err := NewViews(zap.NewNop())
	require.NoError(t, err)
	return views
}

func newLoginFlows(auth login.Provider) *login.Flows {
	return login.NewFlows(auth, zap.NewNop())
}

func passThrough(next http.Handler) http.Handler { return next }

func serve(router chi.Router, method, target string, body string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	for _, m := range mutate {
		m(req)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func form(req *http.Request) {
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
}

func jsonBody(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
}

func bearer(token string) func(*http.Request) {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func cookie(token string) func(*http.Request) {
	return func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "storefront_session", Value: token})
	}
}
