// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/helal366/flexora-server/internal/app/system/apperr"
	"github.com/helal366/flexora-server/internal/app/system/httpjson"
	"go.uber.org/zap"
)

// Identity is the caller identity the external provider vouches for. The core
// trusts it once verified; credential checking is never re-implemented here.
type Identity struct {
	UID   string
	Email string
	Name  string
}

// TokenVerifier verifies a bearer credential and yields the caller identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// AccountDeleter removes an identity-provider account. Used only by the
// user-teardown cascade, where a failure aborts the whole operation.
type AccountDeleter interface {
	DeleteAccount(ctx context.Context, uid string) error
}

// Provider is the full identity-provider surface the app consumes.
type Provider interface {
	TokenVerifier
	AccountDeleter
}

type ctxKey string

const identityKey ctxKey = "identity"

// CurrentIdentity returns the verified identity and a found flag.
func CurrentIdentity(r *http.Request) (Identity, bool) {
	id, ok := r.Context().Value(identityKey).(Identity)
	return id, ok
}

func withIdentity(r *http.Request, id Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), identityKey, id))
}

// WithTestIdentity injects an identity directly, bypassing verification.
// For handler tests only.
func WithTestIdentity(r *http.Request, id Identity) *http.Request {
	return withIdentity(r, id)
}

// Middleware holds the verifier and produces the auth middlewares.
type Middleware struct {
	Verifier TokenVerifier
	Log      *zap.Logger
}

func NewMiddleware(v TokenVerifier, logger *zap.Logger) *Middleware {
	return &Middleware{Verifier: v, Log: logger}
}

// RequireVerified rejects requests without a valid bearer token and injects
// the verified identity into the request context.
func (m *Middleware) RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentIdentity(r); ok { // test injection
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			httpjson.WriteError(w, m.Log, apperr.E(apperr.Unauthorized, "missing authorization header"))
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			httpjson.WriteError(w, m.Log, apperr.E(apperr.Unauthorized, "malformed authorization header"))
			return
		}

		id, err := m.Verifier.Verify(r.Context(), token)
		if err != nil {
			m.Log.Warn("token verification failed", zap.Error(err))
			httpjson.WriteError(w, m.Log, apperr.E(apperr.Forbidden, "invalid credential"))
			return
		}
		next.ServeHTTP(w, withIdentity(r, id))
	})
}

// RoleLookup resolves the stored role for an email. Roles live in the user
// collection, not in the token, so role changes take effect immediately.
type RoleLookup func(ctx context.Context, email string) (string, error)

// RequireRole ensures the verified caller's stored role is one of allowed.
// Must be mounted inside RequireVerified.
func (m *Middleware) RequireRole(lookup RoleLookup, allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := CurrentIdentity(r)
			if !ok {
				httpjson.WriteError(w, m.Log, apperr.E(apperr.Unauthorized, "not signed in"))
				return
			}
			role, err := lookup(r.Context(), id.Email)
			if err != nil {
				httpjson.WriteError(w, m.Log, apperr.Wrap(apperr.Forbidden, "role lookup failed", err))
				return
			}
			if _, ok := set[strings.ToLower(role)]; !ok {
				httpjson.WriteError(w, m.Log, apperr.E(apperr.Forbidden, "insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
