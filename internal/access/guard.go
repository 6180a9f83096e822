package access

import (
	"github.com/amaracare/careops-backend/pkg/enums"
	"github.com/amaracare/careops-backend/pkg/metrics"
)

// Action tells the caller what to do with the requested route.
type Action string

const (
	ActionRender   Action = "render"
	ActionRedirect Action = "redirect"
)

// Session is the guard's view of the visitor. A nil *Session means the
// visitor is not authenticated. Active mirrors the identity record, so a
// deactivated account is treated the same as no session at all.
type Session struct {
	Role   enums.Role
	Active bool
}

// Decision is the guard's verdict: render the target, or redirect to
// Location. Every input resolves to exactly one of the two.
type Decision struct {
	Action   Action
	Location string
}

// Guard decides whether a navigation may proceed. It never returns an
// error: anything it cannot positively allow becomes a redirect.
type Guard struct {
	policy  *Policy
	metrics *metrics.AuthMetrics
}

// NewGuard builds a guard over the given policy. Metrics may be nil.
func NewGuard(policy *Policy, m *metrics.AuthMetrics) *Guard {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Guard{policy: policy, metrics: m}
}

// Evaluate runs the navigation state machine for the session and target.
func (g *Guard) Evaluate(sess *Session, target string) Decision {
	target = normalizeRoute(target)
	d := g.decide(sess, target)
	g.record(sess, d)
	return d
}

func (g *Guard) decide(sess *Session, target string) Decision {
	// A session carrying a role the policy does not know grants nothing,
	// so it routes exactly like no session at all.
	authed := sess != nil && sess.Active && g.policy.knows(sess.Role)

	if !authed {
		if target == LoginRoute {
			return Decision{Action: ActionRender, Location: target}
		}
		return Decision{Action: ActionRedirect, Location: LoginRoute}
	}

	// A signed-in visitor has no business on the login page.
	if target == LoginRoute {
		return Decision{Action: ActionRedirect, Location: g.policy.DefaultRouteFor(sess.Role)}
	}

	if g.policy.IsRouteAllowed(sess.Role, target) {
		return Decision{Action: ActionRender, Location: target}
	}

	// Denied but authenticated: send them to their landing route.
	return Decision{Action: ActionRedirect, Location: g.policy.DefaultRouteFor(sess.Role)}
}

func (g *Guard) record(sess *Session, d Decision) {
	role := "anonymous"
	if sess != nil {
		role = string(sess.Role)
	}
	g.metrics.IncGuardDecision(string(d.Action), role)
}
