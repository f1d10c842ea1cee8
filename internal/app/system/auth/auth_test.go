package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/helal366/flexora-server/internal/app/system/auth"
	"go.uber.org/zap"
)

type stubVerifier struct {
	id  auth.Identity
	err error
}

func (s stubVerifier) Verify(ctx context.Context, token string) (auth.Identity, error) {
	return s.id, s.err
}

func okHandler(t *testing.T, wantEmail string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.CurrentIdentity(r)
		if !ok {
			t.Error("expected identity in context")
		}
		if wantEmail != "" && id.Email != wantEmail {
			t.Errorf("email = %q, want %q", id.Email, wantEmail)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireVerified_MissingHeader(t *testing.T) {
	m := auth.NewMiddleware(stubVerifier{}, zap.NewNop())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	m.RequireVerified(okHandler(t, "")).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireVerified_MalformedHeader(t *testing.T) {
	m := auth.NewMiddleware(stubVerifier{}, zap.NewNop())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")

	m.RequireVerified(okHandler(t, "")).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireVerified_BadToken(t *testing.T) {
	m := auth.NewMiddleware(stubVerifier{err: errors.New("expired")}, zap.NewNop())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")

	m.RequireVerified(okHandler(t, "")).ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestRequireVerified_OK(t *testing.T) {
	m := auth.NewMiddleware(stubVerifier{id: auth.Identity{UID: "u1", Email: "a@b.com"}}, zap.NewNop())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")

	m.RequireVerified(okHandler(t, "a@b.com")).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRequireVerified_TestInjection(t *testing.T) {
	m := auth.NewMiddleware(stubVerifier{err: errors.New("should not be called")}, zap.NewNop())
	rec := httptest.NewRecorder()
	req := auth.WithTestIdentity(httptest.NewRequest(http.MethodGet, "/", nil), auth.Identity{Email: "t@t.com"})

	m.RequireVerified(okHandler(t, "t@t.com")).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	m := auth.NewMiddleware(stubVerifier{}, zap.NewNop())
	lookup := func(ctx context.Context, email string) (string, error) {
		if email == "admin@t.com" {
			return "admin", nil
		}
		return "user", nil
	}
	mw := m.RequireRole(lookup, "admin")
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	rec := httptest.NewRecorder()
	req := auth.WithTestIdentity(httptest.NewRequest(http.MethodGet, "/", nil), auth.Identity{Email: "admin@t.com"})
	mw(next).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("admin: status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = auth.WithTestIdentity(httptest.NewRequest(http.MethodGet, "/", nil), auth.Identity{Email: "plain@t.com"})
	mw(next).ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-admin: status = %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil) // no identity at all
	mw(next).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: status = %d, want 401", rec.Code)
	}
}
