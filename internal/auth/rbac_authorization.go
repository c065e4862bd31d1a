package auth

import (
	"context"
	"log/slog"
	"net/http"
)

// RoleSource resolves the caller's role from the store. Token claims are
// never consulted for authorization.
type RoleSource interface {
	RoleForUser(ctx context.Context, userID string) (Role, error)
}

// RBACAuthorization gates privileged route groups on the store-held role of
// the session user.
type RBACAuthorization struct {
	roles  RoleSource
	logger *slog.Logger
}

func NewRBACAuthorization(roles RoleSource, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		roles:  roles,
		logger: logger,
	}
}

// RequireRole builds a middleware admitting only the listed roles. The role
// is re-read from the store so a stale or tampered session cannot escalate.
func (ra *RBACAuthorization) RequireRole(allowed ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				ra.logger.Warn("authorization check failed: user not found in context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			role, err := ra.roles.RoleForUser(r.Context(), user.ID)
			if err != nil {
				ra.logger.ErrorContext(r.Context(), "role lookup failed", "error", err, "user_id", user.ID)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			for _, a := range allowed {
				if role == a {
					next.ServeHTTP(w, r)
					return
				}
			}

			ra.logger.WarnContext(r.Context(), "access denied: insufficient role",
				"user_id", user.ID,
				"role", role,
				"allowed", allowed)
			http.Error(w, "Forbidden: insufficient role", http.StatusForbidden)
		})
	}
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.RequireRole(RoleAdmin)
}

func (ra *RBACAuthorization) RequireSupervisor() func(http.Handler) http.Handler {
	return ra.RequireRole(RoleSupervisor, RoleAdmin)
}

func (ra *RBACAuthorization) RequireTechnician() func(http.Handler) http.Handler {
	return ra.RequireRole(RoleTechnician)
}
