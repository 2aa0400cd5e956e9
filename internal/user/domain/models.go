// Package domain contains persistence models for users and roles.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Role tiers. Superadmin is global; the other two are scoped to a company.
const (
	RoleSuperAdmin   = "superadmin"
	RoleCompanyAdmin = "company_admin"
	RoleEmployee     = "employee"
)

// User represents any account in the system. Superusers carry no company and
// bypass tenant scoping; everyone else belongs to exactly one company.
type User struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	Email        string        `gorm:"not null;uniqueIndex" json:"email"`
	PasswordHash string        `gorm:"not null" json:"-"`
	FullName     string        `gorm:"not null" json:"full_name"`
	IsActive     bool          `gorm:"not null;default:true" json:"is_active"`
	IsSuperuser  bool          `gorm:"not null;default:false" json:"is_superuser"`
	CompanyID    *snowflake.ID `gorm:"index" json:"company_id,omitempty"`
	LastLoginAt  *time.Time    `json:"last_login_at,omitempty"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Roles []Role `gorm:"many2many:user_roles;" json:"roles,omitempty"`
}

func (User) TableName() string { return "users" }

// Role defines a permission tier. CompanyID is nil for global roles.
type Role struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name        string            `gorm:"not null;index" json:"name"`
	CompanyID   *snowflake.ID     `gorm:"index" json:"company_id,omitempty"`
	Permissions datatypes.JSONMap `gorm:"type:jsonb" json:"permissions,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Role) TableName() string { return "roles" }

// RoleNames flattens a user's assigned roles.
func (u User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		names = append(names, role.Name)
	}
	return names
}
