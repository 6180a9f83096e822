package controllers

import (
	"net/http"

	"github.com/amaracare/careops-backend/api/responses"
	"github.com/amaracare/careops-backend/internal/access"
	"github.com/amaracare/careops-backend/internal/auth"
	"github.com/amaracare/careops-backend/pkg/logger"
)

type navigationDecision struct {
	Action   string `json:"action"`
	Location string `json:"location"`
	Role     string `json:"role,omitempty"`
	Label    string `json:"role_label,omitempty"`
}

// NavigationAuthorize resolves a target route for the caller. The guard
// never fails: an invalid, revoked, or deactivated session simply routes
// as anonymous, so deep links degrade to the login page instead of a 500.
func NavigationAuthorize(svc auth.Service, guard *access.Guard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := r.URL.Query().Get("target")

		var sess *access.Session
		var label string
		if token, err := parseBearerToken(r); err == nil {
			// Resume re-reads the identity record, so a mid-session
			// deactivation takes effect on this navigation.
			if info, err := svc.Resume(r.Context(), token); err == nil {
				sess = &access.Session{Role: info.Role, Active: true}
				label = info.Role.DisplayName()
			}
		}

		decision := guard.Evaluate(sess, target)

		payload := navigationDecision{
			Action:   string(decision.Action),
			Location: decision.Location,
			Label:    label,
		}
		if sess != nil {
			payload.Role = string(sess.Role)
		}
		responses.WriteSuccess(w, payload)
	}
}
