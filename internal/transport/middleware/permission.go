package middleware

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/timesheet-management/internal/auth"
)

// RequirePermissions creates a middleware that checks if user has any of
// the required permissions.
func RequirePermissions(permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !user.HasAnyPermission(permissions) {
				slog.Warn("access denied: user lacks required permissions",
					"user_id", user.ID,
					"required_permissions", permissions,
					"user_permissions", user.Permissions)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// HasApproverPermissions checks if user can act on submitted timesheets.
func HasApproverPermissions(user *auth.User) bool {
	return user.HasAnyPermission([]string{
		auth.PermissionApproveTimesheets,
		auth.PermissionRejectTimesheets,
		auth.PermissionAdmin,
	})
}
