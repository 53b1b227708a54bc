// ABOUTME: Tests for HTTP authentication middleware
// ABOUTME: Covers token extraction, validation, user lookup, and admin gate

package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mk7/tradebot-backend/internal/store"
)

// httpTestSecret is a 32-byte secret that meets MinSecretLength requirement.
var httpTestSecret = []byte("http-middleware-test-secret-32b!")

// mockUserStore implements store.UserStore for middleware tests.
type mockUserStore struct {
	user *store.User
	err  error
}

func (m *mockUserStore) CreateUser(ctx context.Context, user *store.User) error { return m.err }

func (m *mockUserStore) GetUser(ctx context.Context, id string) (*store.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.user == nil || m.user.ID != id {
		return nil, store.ErrNotFound
	}
	return m.user, nil
}

func (m *mockUserStore) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.user == nil || m.user.Email != email {
		return nil, store.ErrNotFound
	}
	return m.user, nil
}

func (m *mockUserStore) ListUsers(ctx context.Context) ([]*store.User, error) {
	if m.user == nil {
		return nil, nil
	}
	return []*store.User{m.user}, nil
}

func (m *mockUserStore) UpdateUserPlan(ctx context.Context, id string, plan store.Plan) error {
	return m.err
}

func (m *mockUserStore) SetUserActive(ctx context.Context, id string, active bool) error {
	return m.err
}

func (m *mockUserStore) CountUsers(ctx context.Context) (int, error) { return 0, m.err }

func newTestVerifier(t *testing.T) *JWTVerifier {
	t.Helper()
	verifier, err := NewJWTVerifier(httpTestSecret)
	if err != nil {
		t.Fatalf("NewJWTVerifier() error = %v", err)
	}
	return verifier
}

func TestHTTPAuthMiddleware_ValidToken(t *testing.T) {
	verifier := newTestVerifier(t)

	userID := "user-123"
	token, _ := verifier.Generate(userID, time.Hour)

	users := &mockUserStore{
		user: &store.User{
			ID:       userID,
			Email:    "alice@example.com",
			FullName: "Alice Example",
			Plan:     store.PlanPremium,
			Active:   true,
		},
	}

	middleware := HTTPAuthMiddleware(users, verifier)

	// Create test handler that checks context
	var gotAuthCtx *AuthContext
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuthCtx = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	middleware(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if gotAuthCtx == nil {
		t.Fatal("expected AuthContext in context")
	}
	if gotAuthCtx.UserID != userID {
		t.Errorf("expected user ID %q, got %q", userID, gotAuthCtx.UserID)
	}
	if gotAuthCtx.Email != "alice@example.com" {
		t.Errorf("expected email 'alice@example.com', got %q", gotAuthCtx.Email)
	}
	if gotAuthCtx.Plan != store.PlanPremium {
		t.Errorf("expected plan premium, got %q", gotAuthCtx.Plan)
	}
}

func TestHTTPAuthMiddleware_MissingAuthHeader(t *testing.T) {
	verifier := newTestVerifier(t)

	middleware := HTTPAuthMiddleware(&mockUserStore{}, verifier)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()

	middleware(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}

func TestHTTPAuthMiddleware_MalformedHeader(t *testing.T) {
	verifier := newTestVerifier(t)
	middleware := HTTPAuthMiddleware(&mockUserStore{}, verifier)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	tests := []struct {
		name   string
		header string
	}{
		{"no bearer prefix", "token-without-prefix"},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"empty token", "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()

			middleware(handler).ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected status 401, got %d", rec.Code)
			}
		})
	}
}

func TestHTTPAuthMiddleware_InvalidToken(t *testing.T) {
	verifier := newTestVerifier(t)
	middleware := HTTPAuthMiddleware(&mockUserStore{}, verifier)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-valid-token")
	rec := httptest.NewRecorder()

	middleware(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}

func TestHTTPAuthMiddleware_ExpiredToken(t *testing.T) {
	verifier := newTestVerifier(t)
	token, _ := verifier.Generate("user-123", -time.Minute)

	middleware := HTTPAuthMiddleware(&mockUserStore{}, verifier)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	middleware(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}

func TestHTTPAuthMiddleware_UserNotFound(t *testing.T) {
	verifier := newTestVerifier(t)
	token, _ := verifier.Generate("ghost-user", time.Hour)

	// A valid token whose subject no longer exists must be rejected.
	middleware := HTTPAuthMiddleware(&mockUserStore{}, verifier)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	middleware(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}

func TestHTTPAuthMiddleware_InactiveUser(t *testing.T) {
	verifier := newTestVerifier(t)
	userID := "user-123"
	token, _ := verifier.Generate(userID, time.Hour)

	users := &mockUserStore{
		user: &store.User{
			ID:     userID,
			Email:  "alice@example.com",
			Plan:   store.PlanBasic,
			Active: false,
		},
	}

	middleware := HTTPAuthMiddleware(users, verifier)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	middleware(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}

func TestHTTPAuthMiddleware_StoreFailure(t *testing.T) {
	verifier := newTestVerifier(t)
	token, _ := verifier.Generate("user-123", time.Hour)

	// Store unavailability is a server-side failure, not an auth failure.
	users := &mockUserStore{err: errors.New("database locked")}

	middleware := HTTPAuthMiddleware(users, verifier)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	middleware(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
}

func TestRequireAdminHTTP_Admin(t *testing.T) {
	middleware := RequireAdminHTTP()

	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	authCtx := &AuthContext{UserID: "admin-1", Plan: store.PlanAdmin, Active: true}
	req := httptest.NewRequest(http.MethodGet, "/api/admin/settings", nil)
	req = req.WithContext(WithAuth(req.Context(), authCtx))
	rec := httptest.NewRecorder()

	middleware(handler).ServeHTTP(rec, req)

	if !called {
		t.Error("handler was not called for admin")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}

func TestRequireAdminHTTP_NonAdmin(t *testing.T) {
	middleware := RequireAdminHTTP()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	for _, plan := range []store.Plan{store.PlanBasic, store.PlanPremium} {
		authCtx := &AuthContext{UserID: "user-1", Plan: plan, Active: true}
		req := httptest.NewRequest(http.MethodGet, "/api/admin/settings", nil)
		req = req.WithContext(WithAuth(req.Context(), authCtx))
		rec := httptest.NewRecorder()

		middleware(handler).ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Errorf("plan %q: expected status 403, got %d", plan, rec.Code)
		}
	}
}

func TestRequireAdminHTTP_NoAuthContext(t *testing.T) {
	middleware := RequireAdminHTTP()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/settings", nil)
	rec := httptest.NewRecorder()

	middleware(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}
