package auth

import (
	"github.com/google/uuid"

	"github.com/amaracare/careops-backend/internal/users"
	"github.com/amaracare/careops-backend/pkg/enums"
)

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the tokens and identity produced by a successful login.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
	DefaultRoute string         `json:"default_route"`
}

// SessionInfo describes a live, still-active session.
type SessionInfo struct {
	User         *users.UserDTO `json:"user"`
	Role         enums.Role     `json:"role"`
	DefaultRoute string         `json:"default_route"`
}

// Actor identifies who is performing a mutation.
type Actor struct {
	ID   uuid.UUID
	Role enums.Role
}

// UpdateIdentityRequest carries a partial identity update. Role and IsActive
// are admin-only fields.
type UpdateIdentityRequest struct {
	FullName       *string        `json:"full_name" validate:"omitempty,min=1,max=255"`
	ContactInfo    *string        `json:"contact_info" validate:"omitempty,max=512"`
	AdditionalInfo map[string]any `json:"additional_info"`
	Role           *string        `json:"role" validate:"omitempty,oneof=admin staff volunteer beneficiary"`
	IsActive       *bool          `json:"is_active"`
}
