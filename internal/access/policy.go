package access

import (
	"strings"

	"github.com/amaracare/careops-backend/pkg/enums"
)

// LoginRoute is where unauthenticated visitors land.
const LoginRoute = "/login"

// Shared routes every authenticated role may visit.
var sharedRoutes = []string{"/profile", "/announcements"}

// Policy maps each role to its allowed route prefixes and landing route.
// Roles outside the table resolve to nothing: unknown means denied.
type Policy struct {
	allowed  map[enums.Role][]string
	landings map[enums.Role]string
}

// DefaultPolicy returns the route table for the four operational roles.
func DefaultPolicy() *Policy {
	p := &Policy{
		allowed:  make(map[enums.Role][]string),
		landings: make(map[enums.Role]string),
	}
	p.grant(enums.RoleAdmin, "/admin")
	p.grant(enums.RoleStaff, "/staff")
	p.grant(enums.RoleVolunteer, "/volunteer")
	p.grant(enums.RoleBeneficiary, "/beneficiary")
	return p
}

func (p *Policy) grant(role enums.Role, home string) {
	prefixes := append([]string{home}, sharedRoutes...)
	p.allowed[role] = prefixes
	p.landings[role] = home
}

// IsRouteAllowed reports whether the role may visit the target route.
// Matching is segment-aware: "/admin" covers "/admin/users" but not
// "/administrator". Roles without a table entry are denied everything.
func (p *Policy) IsRouteAllowed(role enums.Role, route string) bool {
	route = normalizeRoute(route)
	for _, prefix := range p.allowed[role] {
		if route == prefix || strings.HasPrefix(route, prefix+"/") {
			return true
		}
	}
	return false
}

// DefaultRouteFor returns the landing route for the role. Unknown roles
// fall back to the login route so redirects always have a destination.
func (p *Policy) DefaultRouteFor(role enums.Role) string {
	if home, ok := p.landings[role]; ok {
		return home
	}
	return LoginRoute
}

func (p *Policy) knows(role enums.Role) bool {
	_, ok := p.landings[role]
	return ok
}

// AllowedRoutes returns a copy of the role's route prefixes.
func (p *Policy) AllowedRoutes(role enums.Role) []string {
	prefixes := p.allowed[role]
	out := make([]string, len(prefixes))
	copy(out, prefixes)
	return out
}

func normalizeRoute(route string) string {
	if route == "" {
		return "/"
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	if len(route) > 1 {
		route = strings.TrimRight(route, "/")
		if route == "" {
			route = "/"
		}
	}
	return route
}
