package models

import (
	"time"

	dbtypes "github.com/amaracare/careops-backend/pkg/db/types"
	"github.com/google/uuid"
)

// User represents the canonical identity entity. Role is stored as text and
// parsed through enums.Role at the service boundary; AdditionalInfo is the
// role-shaped attribute bag (skills for volunteers, family size for
// beneficiaries, and so on).
type User struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email          string          `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash   string          `gorm:"column:password_hash;not null"`
	FullName       string          `gorm:"column:full_name;not null"`
	ContactInfo    *string         `gorm:"column:contact_info"`
	Role           string          `gorm:"column:role;not null"`
	IsActive       bool            `gorm:"column:is_active;not null;default:true"`
	AdditionalInfo dbtypes.JSONMap `gorm:"type:jsonb;column:additional_info;not null;default:'{}'"`
	LastLoginAt    *time.Time      `gorm:"column:last_login_at"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
