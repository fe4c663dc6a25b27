package auth

import (
	"log/slog"
	"net/http"
)

// RBACAuthorization gates route groups on the permissions attached to the
// request's user. The admin permission passes every gate.
type RBACAuthorization struct {
	logger *slog.Logger
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{logger: logger}
}

func (ra *RBACAuthorization) Middleware(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				ra.logger.Warn("authorization check failed: user not found in context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !user.HasAnyPermission([]string{permission, PermissionAdmin}) {
				ra.logger.WarnContext(r.Context(), "access denied: insufficient permissions",
					"user_id", user.ID,
					"required_permission", permission,
					"user_permissions", user.Permissions)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RBACAuthorization) RequireApproveTimesheet() func(http.Handler) http.Handler {
	return ra.Middleware(PermissionApproveTimesheets)
}

func (ra *RBACAuthorization) RequireRejectTimesheet() func(http.Handler) http.Handler {
	return ra.Middleware(PermissionRejectTimesheets)
}

func (ra *RBACAuthorization) RequireManageSettings() func(http.Handler) http.Handler {
	return ra.Middleware(PermissionManageSettings)
}

func (ra *RBACAuthorization) RequireViewReports() func(http.Handler) http.Handler {
	return ra.Middleware(PermissionViewReports)
}
