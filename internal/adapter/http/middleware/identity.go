package middleware

import (
	"context"
	"net/http"

	"github.com/iho/valcoin/internal/domain"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// CallerIDContextKey is the context key for the caller's user id
	CallerIDContextKey ContextKey = "caller_id"

	// CallerRoleContextKey is the context key for the caller's role
	CallerRoleContextKey ContextKey = "caller_role"
)

// Identity extracts the caller's identity from gateway headers. The
// platform gateway authenticates users upstream and forwards the
// resolved id and role; requests without them are refused.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			http.Error(w, "missing X-User-ID header", http.StatusUnauthorized)
			return
		}

		role := domain.Role(r.Header.Get("X-User-Role"))
		if !role.IsValid() {
			http.Error(w, "missing or invalid X-User-Role header", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), CallerIDContextKey, userID)
		ctx = context.WithValue(ctx, CallerRoleContextKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CallerID returns the caller's user id from the request context.
func CallerID(ctx context.Context) string {
	id, _ := ctx.Value(CallerIDContextKey).(string)
	return id
}

// CallerRole returns the caller's role from the request context.
func CallerRole(ctx context.Context) domain.Role {
	role, _ := ctx.Value(CallerRoleContextKey).(domain.Role)
	return role
}

// RequireRuleManager refuses callers whose role may not manage rules.
func RequireRuleManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !CallerRole(r.Context()).CanManageRules() {
			http.Error(w, "insufficient permissions", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireApprover refuses callers whose role may not approve or reject
// pending transactions.
func RequireApprover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !CallerRole(r.Context()).CanApproveTransactions() {
			http.Error(w, "insufficient permissions", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
