package domain

import (
	"context"
	"errors"

	"github.com/MaverickDev-J/hrm/pkg/db/pagination"
)

type CreateAdminRequest struct {
	CompanyID string `json:"-"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FullName  string `json:"full_name" binding:"required"`
}

type CreateEmployeeRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
}

type ListUserRequest struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
	Role      string `form:"role"`
	IsActive  *bool  `form:"is_active"`
}

type ListUserResponse struct {
	pagination.PageInfo
	Users []User `json:"users"`
}

type UpdateUserRequest struct {
	ID       string  `json:"-"`
	FullName *string `json:"full_name"`
	IsActive *bool   `json:"is_active"`
}

type Service interface {
	CreateCompanyAdmin(context.Context, CreateAdminRequest) (User, error)
	CreateEmployee(context.Context, CreateEmployeeRequest) (User, error)
	List(context.Context, ListUserRequest) (ListUserResponse, error)
	GetByID(ctx context.Context, id string) (User, error)
	Update(context.Context, UpdateUserRequest) (User, error)
}

var (
	ErrNotFound        = errors.New("user_not_found")
	ErrEmailTaken      = errors.New("email_taken")
	ErrInvalidEmail    = errors.New("invalid_email")
	ErrInvalidPassword = errors.New("invalid_password")
	ErrInvalidName     = errors.New("invalid_full_name")
	ErrInvalidCompany  = errors.New("invalid_company")
	ErrInvalidID       = errors.New("invalid_user_id")
)
