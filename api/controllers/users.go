package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/amaracare/careops-backend/api/middleware"
	"github.com/amaracare/careops-backend/api/responses"
	"github.com/amaracare/careops-backend/api/validators"
	"github.com/amaracare/careops-backend/internal/auth"
	"github.com/amaracare/careops-backend/pkg/enums"
	pkgerrors "github.com/amaracare/careops-backend/pkg/errors"
	"github.com/amaracare/careops-backend/pkg/logger"
)

func actorFromContext(r *http.Request) (auth.Actor, error) {
	id, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		return auth.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return auth.Actor{
		ID:   id,
		Role: enums.Role(middleware.RoleFromContext(r.Context())),
	}, nil
}

// UsersUpdate applies a partial identity update. Non-admin callers may only
// touch their own record, and never role or activation.
func UsersUpdate(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		targetID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid user id"))
			return
		}

		var body auth.UpdateIdentityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateIdentity(r.Context(), actor, targetID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

type adminRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin staff volunteer beneficiary"`
}

type adminActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// AdminSetRole changes a user's role. Admin only by routing.
func AdminSetRole(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		targetID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid user id"))
			return
		}

		var body adminRoleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateIdentity(r.Context(), actor, targetID, auth.UpdateIdentityRequest{Role: &body.Role})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// AdminSetActive toggles a user's activation flag. Deactivating also revokes
// the target's live sessions so the flag takes effect immediately.
func AdminSetActive(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		targetID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid user id"))
			return
		}

		var body adminActiveRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateIdentity(r.Context(), actor, targetID, auth.UpdateIdentityRequest{IsActive: body.IsActive})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}
