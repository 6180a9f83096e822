package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/amaracare/careops-backend/internal/auth"
	"github.com/amaracare/careops-backend/internal/users"
	"github.com/amaracare/careops-backend/pkg/enums"
	pkgerrors "github.com/amaracare/careops-backend/pkg/errors"
)

type stubAuthService struct {
	loginResp  *auth.LoginResponse
	loginErr   error
	resumeInfo *auth.SessionInfo
	resumeErr  error
	signOutErr error
	updated    *users.UserDTO
	updateErr  error

	lastActor  auth.Actor
	lastTarget uuid.UUID
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return s.loginResp, nil
}

func (s *stubAuthService) Resume(ctx context.Context, accessToken string) (*auth.SessionInfo, error) {
	if s.resumeErr != nil {
		return nil, s.resumeErr
	}
	return s.resumeInfo, nil
}

func (s *stubAuthService) SignOut(ctx context.Context, accessToken string) error {
	return s.signOutErr
}

func (s *stubAuthService) UpdateIdentity(ctx context.Context, actor auth.Actor, targetID uuid.UUID, req auth.UpdateIdentityRequest) (*users.UserDTO, error) {
	s.lastActor = actor
	s.lastTarget = targetID
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return s.updated, nil
}

func testUserDTO(role enums.Role) *users.UserDTO {
	return &users.UserDTO{
		ID:       uuid.New(),
		Email:    "member@example.org",
		FullName: "Member One",
		Role:     role,
		IsActive: true,
	}
}

func TestAuthLoginSuccess(t *testing.T) {
	svc := &stubAuthService{loginResp: &auth.LoginResponse{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		User:         testUserDTO(enums.RoleStaff),
		DefaultRoute: "/staff",
	}}
	handler := AuthLogin(svc, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		bytes.NewReader([]byte(`{"email":"member@example.org","password":"Secret#1"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Header().Get("X-CO-Token"); got != "access-token" {
		t.Fatalf("expected x-co-token header set to access-token got %s", got)
	}

	var envelope struct {
		Data struct {
			AccessToken  string         `json:"access_token"`
			DefaultRoute string         `json:"default_route"`
			User         *users.UserDTO `json:"user"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.DefaultRoute != "/staff" {
		t.Fatalf("expected default route /staff got %s", envelope.Data.DefaultRoute)
	}
	if envelope.Data.User == nil || envelope.Data.User.Role != enums.RoleStaff {
		t.Fatalf("expected staff user in payload got %+v", envelope.Data.User)
	}
}

func TestAuthLoginInvalidPayload(t *testing.T) {
	handler := AuthLogin(&stubAuthService{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		bytes.NewReader([]byte(`{"email":"not-an-email","password":""}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthLoginInvalidCredentials(t *testing.T) {
	svc := &stubAuthService{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	handler := AuthLogin(svc, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		bytes.NewReader([]byte(`{"email":"member@example.org","password":"wrong"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Message != "invalid credentials" {
		t.Fatalf("expected generic credentials message got %q", envelope.Error.Message)
	}
}

func TestAuthLoginInactiveAccount(t *testing.T) {
	svc := &stubAuthService{loginErr: pkgerrors.New(pkgerrors.CodeAccountInactive, "account inactive, contact an administrator")}
	handler := AuthLogin(svc, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		bytes.NewReader([]byte(`{"email":"member@example.org","password":"Secret#1"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeAccountInactive) {
		t.Fatalf("expected account inactive code got %s", envelope.Error.Code)
	}
}
