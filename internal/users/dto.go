package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/amaracare/careops-backend/pkg/db/models"
	dbtypes "github.com/amaracare/careops-backend/pkg/db/types"
	"github.com/amaracare/careops-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID             uuid.UUID      `json:"id"`
	Email          string         `json:"email"`
	FullName       string         `json:"full_name"`
	ContactInfo    *string        `json:"contact_info,omitempty"`
	Role           enums.Role     `json:"role"`
	RoleLabel      string         `json:"role_label"`
	IsActive       bool           `json:"is_active"`
	AdditionalInfo map[string]any `json:"additional_info"`
	LastLoginAt    *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email          string
	PasswordHash   string
	FullName       string
	ContactInfo    *string
	Role           enums.Role
	AdditionalInfo map[string]any
	IsActive       *bool
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	role := enums.Role(u.Role)
	info := map[string]any(u.AdditionalInfo)
	if info == nil {
		info = map[string]any{}
	}

	return &UserDTO{
		ID:             u.ID,
		Email:          u.Email,
		FullName:       u.FullName,
		ContactInfo:    u.ContactInfo,
		Role:           role,
		RoleLabel:      role.DisplayName(),
		IsActive:       u.IsActive,
		AdditionalInfo: info,
		LastLoginAt:    u.LastLoginAt,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	isActive := true
	if c.IsActive != nil {
		isActive = *c.IsActive
	}

	info := c.AdditionalInfo
	if info == nil {
		info = map[string]any{}
	}

	return &models.User{
		Email:          c.Email,
		PasswordHash:   c.PasswordHash,
		FullName:       c.FullName,
		ContactInfo:    c.ContactInfo,
		Role:           string(c.Role),
		IsActive:       isActive,
		AdditionalInfo: dbtypes.JSONMap(info),
	}
}
