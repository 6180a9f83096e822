package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// AuthMetrics records login outcomes and route guard decisions.
type AuthMetrics struct {
	logins    *prometheus.CounterVec
	decisions *prometheus.CounterVec
}

// NewAuthMetrics registers the auth metrics on the provided registerer.
func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	if reg == nil {
		return &AuthMetrics{}
	}
	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_login_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "route_guard_decisions_total",
		Help: "Route guard outcomes by action and role.",
	}, []string{"action", "role"})
	reg.MustRegister(logins, decisions)
	return &AuthMetrics{
		logins:    logins,
		decisions: decisions,
	}
}

// IncLogin increments the login counter for the named outcome.
func (a *AuthMetrics) IncLogin(outcome string) {
	if a == nil || a.logins == nil {
		return
	}
	a.logins.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncGuardDecision increments the guard decision counter.
func (a *AuthMetrics) IncGuardDecision(action, role string) {
	if a == nil || a.decisions == nil {
		return
	}
	a.decisions.WithLabelValues(normalizeLabel(action), normalizeLabel(role)).Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return value
}
