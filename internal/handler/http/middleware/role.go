package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/worknest/intranet-backend-go/internal/domain/user"
	"github.com/worknest/intranet-backend-go/internal/handler/http/response"
)

func roleFromClaims(r *http.Request) (user.Role, bool) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", false
	}
	roleStr, ok := claims["role"].(string)
	if !ok {
		return "", false
	}
	return user.Role(roleStr), true
}

// RequireApprover requires manager, hr or super_admin role. The
// service re-checks the reporting relationship per request; this guard
// only keeps plain employees off the approval routes.
func RequireApprover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := roleFromClaims(r)
		if !ok || !role.IsApprover() {
			response.Forbidden(w, "Approver role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireHR requires hr or super_admin role.
func RequireHR(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := roleFromClaims(r)
		if !ok || (role != user.RoleHR && role != user.RoleSuperAdmin) {
			response.Forbidden(w, "HR role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
