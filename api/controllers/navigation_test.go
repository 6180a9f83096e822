package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amaracare/careops-backend/internal/access"
	"github.com/amaracare/careops-backend/internal/auth"
	"github.com/amaracare/careops-backend/pkg/enums"
	pkgerrors "github.com/amaracare/careops-backend/pkg/errors"
)

func decodeDecision(t *testing.T, resp *httptest.ResponseRecorder) navigationDecision {
	t.Helper()
	var envelope struct {
		Data navigationDecision `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope.Data
}

func TestNavigationAuthorizeAnonymousRedirectsToLogin(t *testing.T) {
	handler := NavigationAuthorize(&stubAuthService{}, access.NewGuard(nil, nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/navigation/authorize?target=/admin/users", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	d := decodeDecision(t, resp)
	if d.Action != "redirect" || d.Location != "/login" {
		t.Fatalf("expected redirect to /login got %+v", d)
	}
}

func TestNavigationAuthorizeAllowedRouteRenders(t *testing.T) {
	svc := &stubAuthService{resumeInfo: &auth.SessionInfo{
		User:         testUserDTO(enums.RoleVolunteer),
		Role:         enums.RoleVolunteer,
		DefaultRoute: "/volunteer",
	}}
	handler := NavigationAuthorize(svc, access.NewGuard(nil, nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/navigation/authorize?target=/volunteer/shifts", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	d := decodeDecision(t, resp)
	if d.Action != "render" || d.Location != "/volunteer/shifts" {
		t.Fatalf("expected render got %+v", d)
	}
	if d.Role != "volunteer" || d.Label != "Volunteer" {
		t.Fatalf("expected role metadata got %+v", d)
	}
}

func TestNavigationAuthorizeCrossRoleRedirectsHome(t *testing.T) {
	svc := &stubAuthService{resumeInfo: &auth.SessionInfo{
		User:         testUserDTO(enums.RoleStaff),
		Role:         enums.RoleStaff,
		DefaultRoute: "/staff",
	}}
	handler := NavigationAuthorize(svc, access.NewGuard(nil, nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/navigation/authorize?target=/admin/users", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	d := decodeDecision(t, resp)
	if d.Action != "redirect" || d.Location != "/staff" {
		t.Fatalf("expected redirect to /staff got %+v", d)
	}
}

func TestNavigationAuthorizeDeactivatedSessionRoutesAsAnonymous(t *testing.T) {
	svc := &stubAuthService{resumeErr: pkgerrors.New(pkgerrors.CodeAccountInactive, "account inactive, contact an administrator")}
	handler := NavigationAuthorize(svc, access.NewGuard(nil, nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/navigation/authorize?target=/staff", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("guard endpoint must not fail, got %d", resp.Code)
	}
	d := decodeDecision(t, resp)
	if d.Action != "redirect" || d.Location != "/login" {
		t.Fatalf("expected redirect to /login got %+v", d)
	}
}

func TestNavigationAuthorizeAuthenticatedOnLogin(t *testing.T) {
	svc := &stubAuthService{resumeInfo: &auth.SessionInfo{
		User:         testUserDTO(enums.RoleBeneficiary),
		Role:         enums.RoleBeneficiary,
		DefaultRoute: "/beneficiary",
	}}
	handler := NavigationAuthorize(svc, access.NewGuard(nil, nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/navigation/authorize?target=/login", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	d := decodeDecision(t, resp)
	if d.Action != "redirect" || d.Location != "/beneficiary" {
		t.Fatalf("expected redirect to /beneficiary got %+v", d)
	}
}
