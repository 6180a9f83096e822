package middleware

import (
	"net/http"

	"github.com/amaracare/careops-backend/api/responses"
	"github.com/amaracare/careops-backend/internal/access"
	"github.com/amaracare/careops-backend/pkg/enums"
	pkgerrors "github.com/amaracare/careops-backend/pkg/errors"
	"github.com/amaracare/careops-backend/pkg/logger"
)

// RouteGuard gates a subtree to roles whose portal policy grants the named
// section. It complements RequireRole for surfaces shared by several roles.
func RouteGuard(policy *access.Policy, section string, logg *logger.Logger) func(http.Handler) http.Handler {
	if policy == nil {
		policy = access.DefaultPolicy()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := enums.Role(RoleFromContext(r.Context()))
			if !policy.IsRouteAllowed(actor, section) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "section not permitted for role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
