package httputil

import (
	"context"
	"net/http"
	"strings"

	"github.com/suenos-shipping/console/internal/domain"
	"github.com/suenos-shipping/console/internal/pkg/ctxlog"
)

// CORSMiddleware creates CORS middleware that handles preflight requests
// and adds appropriate CORS headers to responses.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	originsSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originsSet[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if originsSet[origin] || originsSet["*"] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Max-Age", "86400")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type contextKey string

// UserIDKey stores the resolved caller id in the request context.
const UserIDKey contextKey = "user_id"

// TokenResolver resolves a bearer credential to a user id.
type TokenResolver interface {
	ResolveUser(ctx context.Context, token string) (userID string, err error)
}

// RoleSource looks up the current role of a user.
// Roles are read fresh on every request; there is no session cache.
type RoleSource interface {
	GetRole(ctx context.Context, userID string) (domain.Role, error)
}

// AuthMiddleware extracts the bearer token, resolves it to a user id and
// stores the id in the request context. Requests without a valid token
// are rejected before any data access happens.
func AuthMiddleware(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				Error(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				Error(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			userID, err := resolver.ResolveUser(r.Context(), parts[1])
			if err != nil {
				Error(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireStaff rejects callers whose profile role is neither staff nor
// admin. The role comes from the profile store, not from token claims,
// so a demoted account loses access immediately.
func RequireStaff(roles RoleSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := GetUserID(r.Context())
			if userID == "" {
				Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			role, err := roles.GetRole(r.Context(), userID)
			if err != nil {
				ctxlog.FromContext(r.Context()).Warn("role lookup failed", "user_id", userID, "error", err)
				Error(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			if !role.HasStaffAccess() {
				Error(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUserID extracts the caller's user id from context.
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}
