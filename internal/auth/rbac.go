package auth

import (
	"log/slog"
	"net/http"
)

// RoleGuard is the role-restricted route guard. It sits behind the auth
// middleware and checks the actor against an allow-list of admin roles.
// A role failure is a 403 and never touches the session: only the auth
// middleware's 401 paths revoke anything.
type RoleGuard struct {
	logger *slog.Logger
}

func NewRoleGuard(logger *slog.Logger) *RoleGuard {
	return &RoleGuard{logger: logger}
}

// RequireRoles gates the nested routes to admins whose role is in the
// allow-list. With an empty list any authenticated actor passes, which
// makes it equivalent to the plain authenticated guard.
func (g *RoleGuard) RequireRoles(allowedRoles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, role := range allowedRoles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok || actor == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if len(allowed) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			if !actor.IsAdmin() {
				g.logger.WarnContext(r.Context(), "access denied: admin route",
					"actor_id", actor.ID,
					"actor_type", actor.Type)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			if _, ok := allowed[actor.AdminRole]; !ok {
				g.logger.WarnContext(r.Context(), "access denied: role not allowed",
					"actor_id", actor.ID,
					"role", actor.AdminRole,
					"allowed_roles", allowedRoles)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin allows any admin, regardless of role.
func (g *RoleGuard) RequireAdmin() func(http.Handler) http.Handler {
	return g.RequireRoles(RoleAdmin, RoleSuperAdmin)
}

// RequireSuperAdmin allows super admins only.
func (g *RoleGuard) RequireSuperAdmin() func(http.Handler) http.Handler {
	return g.RequireRoles(RoleSuperAdmin)
}
