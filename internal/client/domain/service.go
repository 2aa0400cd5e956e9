package domain

import (
	"context"
	"errors"

	"github.com/MaverickDev-J/hrm/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("client_not_found")
	ErrInvalidName     = errors.New("invalid_client_name")
	ErrInvalidID       = errors.New("invalid_client_id")
	ErrInvalidCompany  = errors.New("invalid_company")
	ErrNoColumns       = errors.New("no_columns")
	ErrInvalidColumn   = errors.New("invalid_column")
	ErrDuplicateColumn = errors.New("duplicate_column")
	ErrTooManyColumns  = errors.New("too_many_columns")
)

type CreateClientRequest struct {
	ClientName string `json:"client_name" binding:"required"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	Pincode    string `json:"pincode"`
	GSTIN      string `json:"gstin"`
	PAN        string `json:"pan"`
}

type UpdateClientRequest struct {
	ID         string  `json:"-"`
	ClientName *string `json:"client_name"`
	Address    *string `json:"address"`
	City       *string `json:"city"`
	State      *string `json:"state"`
	Pincode    *string `json:"pincode"`
	GSTIN      *string `json:"gstin"`
	PAN        *string `json:"pan"`
	IsActive   *bool   `json:"is_active"`
}

type ListClientRequest struct {
	PageToken   string `form:"page_token"`
	PageSize    int    `form:"page_size"`
	ActiveOnly  bool   `form:"active_only"`
	SearchQuery string `form:"q"`
}

type ListClientResponse struct {
	Clients  []Client            `json:"clients"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

type UpsertColumnConfigRequest struct {
	ClientID string      `json:"-"`
	Columns  []ColumnDef `json:"columns" binding:"required"`
}

type Repository interface {
	Insert(ctx context.Context, tx *gorm.DB, client *Client) error
	Update(ctx context.Context, tx *gorm.DB, client *Client) error
	FindByID(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*Client, error)
	List(ctx context.Context, tx *gorm.DB, companyID snowflake.ID, filter ListClientRequest, p pagination.Pagination) ([]*Client, error)

	FindColumnConfig(ctx context.Context, tx *gorm.DB, clientID snowflake.ID) (*ColumnConfig, error)
	SaveColumnConfig(ctx context.Context, tx *gorm.DB, config *ColumnConfig) error
}

type Service interface {
	Create(ctx context.Context, req CreateClientRequest) (Client, error)
	GetByID(ctx context.Context, id string) (Client, error)
	List(ctx context.Context, req ListClientRequest) (ListClientResponse, error)
	Update(ctx context.Context, req UpdateClientRequest) (Client, error)

	// Delete deactivates the client. Rows are never removed so historical
	// invoices keep resolving.
	Delete(ctx context.Context, id string) error

	GetColumnConfig(ctx context.Context, clientID string) (ColumnConfig, error)
	UpsertColumnConfig(ctx context.Context, req UpsertColumnConfigRequest) (ColumnConfig, error)
}
