package controllers

import (
	"net/http"

	"github.com/amaracare/careops-backend/api/responses"
	"github.com/amaracare/careops-backend/api/validators"
	"github.com/amaracare/careops-backend/internal/auth"
	pkgerrors "github.com/amaracare/careops-backend/pkg/errors"
	"github.com/amaracare/careops-backend/pkg/logger"
	"github.com/amaracare/careops-backend/pkg/metrics"
)

// AuthLogin wires the login endpoint into the HTTP layer.
func AuthLogin(svc auth.Service, m *metrics.AuthMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			m.IncLogin(loginOutcome(err))
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		m.IncLogin("success")
		w.Header().Set("X-CO-Token", result.AccessToken)
		responses.WriteSuccess(w, result)
	}
}

func loginOutcome(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return "error"
	}
	switch typed.Code() {
	case pkgerrors.CodeUnauthorized:
		return "invalid_credentials"
	case pkgerrors.CodeAccountInactive:
		return "inactive"
	case pkgerrors.CodeDependency:
		return "unavailable"
	}
	return "error"
}
