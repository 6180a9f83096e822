package middleware

import (
	"net/http"

	"github.com/amaracare/careops-backend/api/responses"
	"github.com/amaracare/careops-backend/pkg/enums"
	pkgerrors "github.com/amaracare/careops-backend/pkg/errors"
	"github.com/amaracare/careops-backend/pkg/logger"
)

// RequireRole gates a subtree to a single role. Anything else, including a
// role the enum does not recognize, is refused.
func RequireRole(role enums.Role, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := enums.Role(RoleFromContext(r.Context()))
			if !actor.IsValid() || actor != role {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
