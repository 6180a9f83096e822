package access

import (
	"testing"

	"github.com/amaracare/careops-backend/pkg/enums"
)

func TestIsRouteAllowedSegmentBoundaries(t *testing.T) {
	p := DefaultPolicy()

	cases := []struct {
		role  enums.Role
		route string
		want  bool
	}{
		{enums.RoleAdmin, "/admin", true},
		{enums.RoleAdmin, "/admin/users", true},
		{enums.RoleAdmin, "/admin/users/42/edit", true},
		{enums.RoleAdmin, "/administrator", false},
		{enums.RoleStaff, "/staff", true},
		{enums.RoleStaff, "/admin/users", false},
		{enums.RoleVolunteer, "/volunteer/shifts", true},
		{enums.RoleVolunteer, "/staff", false},
		{enums.RoleBeneficiary, "/beneficiary", true},
		{enums.RoleBeneficiary, "/beneficiaries", false},
	}

	for _, tc := range cases {
		if got := p.IsRouteAllowed(tc.role, tc.route); got != tc.want {
			t.Errorf("IsRouteAllowed(%s, %s) = %v, want %v", tc.role, tc.route, got, tc.want)
		}
	}
}

func TestSharedRoutesAllowedForEveryRole(t *testing.T) {
	p := DefaultPolicy()

	for _, role := range enums.Roles() {
		for _, route := range []string{"/profile", "/announcements", "/profile/edit"} {
			if !p.IsRouteAllowed(role, route) {
				t.Errorf("expected %s to reach %s", role, route)
			}
		}
	}
}

func TestDefaultRouteAlwaysAllowed(t *testing.T) {
	p := DefaultPolicy()

	for _, role := range enums.Roles() {
		home := p.DefaultRouteFor(role)
		if !p.IsRouteAllowed(role, home) {
			t.Errorf("role %s cannot reach its own landing route %s", role, home)
		}
	}
}

func TestUnknownRoleDeniedEverywhere(t *testing.T) {
	p := DefaultPolicy()

	for _, route := range []string{"/admin", "/staff", "/volunteer", "/beneficiary", "/profile", "/announcements"} {
		if p.IsRouteAllowed(enums.Role("superuser"), route) {
			t.Errorf("unknown role granted %s", route)
		}
	}
	if got := p.DefaultRouteFor(enums.Role("superuser")); got != LoginRoute {
		t.Errorf("unknown role landing = %s, want %s", got, LoginRoute)
	}
}

func TestNormalizeRoute(t *testing.T) {
	cases := map[string]string{
		"":               "/",
		"/":              "/",
		"admin":          "/admin",
		"/admin/":        "/admin",
		"/admin/users//": "/admin/users",
	}
	for in, want := range cases {
		if got := normalizeRoute(in); got != want {
			t.Errorf("normalizeRoute(%q) = %q, want %q", in, got, want)
		}
	}
}
