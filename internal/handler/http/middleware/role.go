package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/office-backend-go/internal/handler/http/response"
)

// guard rejects the request with denied unless allow accepts the caller
func guard(allow func(user.Caller) bool, denied error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := user.CallerFromContext(r.Context())
			if err != nil {
				response.HandleError(w, err)
				return
			}

			if !allow(caller) {
				response.HandleError(w, denied)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireSupervisor requires supervisor or admin role
func RequireSupervisor(next http.Handler) http.Handler {
	return guard(user.Caller.IsSupervisor, user.ErrSupervisorAccessRequired)(next)
}

// RequireAdmin requires admin role
func RequireAdmin(next http.Handler) http.Handler {
	return guard(user.Caller.IsAdmin, user.ErrAdminAccessRequired)(next)
}

// RequirePermission checks the caller's role grants permission
func RequirePermission(permission user.Permission) func(http.Handler) http.Handler {
	return guard(func(c user.Caller) bool {
		return user.HasPermission(c.Role, permission)
	}, user.ErrInsufficientPermissions)
}
