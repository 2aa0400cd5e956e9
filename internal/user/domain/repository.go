package domain

import (
	"context"

	"github.com/MaverickDev-J/hrm/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListUserFilter struct {
	Role     string
	IsActive *bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *User) error
	Update(ctx context.Context, db *gorm.DB, user *User) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter ListUserFilter, page pagination.Pagination) ([]*User, error)
	EnsureRole(ctx context.Context, db *gorm.DB, name string, companyID *snowflake.ID) (*Role, error)
	AssignRole(ctx context.Context, db *gorm.DB, userID, roleID snowflake.ID) error
}
