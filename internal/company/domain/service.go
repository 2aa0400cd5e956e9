package domain

import (
	"context"
	"errors"

	"github.com/MaverickDev-J/hrm/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("company_not_found")
	ErrSubdomainTaken   = errors.New("subdomain_taken")
	ErrInvalidName      = errors.New("invalid_company_name")
	ErrInvalidSubdomain = errors.New("invalid_subdomain")
	ErrInvalidID        = errors.New("invalid_company_id")
)

// Branding identifies which company image an upload replaces.
type BrandingKind string

const (
	BrandingLogo      BrandingKind = "logo"
	BrandingBanner    BrandingKind = "banner"
	BrandingSignature BrandingKind = "signature"
	BrandingStamp     BrandingKind = "stamp"
)

var ErrInvalidBrandingKind = errors.New("invalid_branding_kind")

type CreateCompanyRequest struct {
	Name      string `json:"name" binding:"required"`
	Subdomain string `json:"subdomain" binding:"required"`
	Tagline   string `json:"tagline"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Pincode   string `json:"pincode"`
	PAN       string `json:"pan"`
}

type UpdateCompanyRequest struct {
	ID            string  `json:"-"`
	Name          *string `json:"name"`
	Tagline       *string `json:"tagline"`
	Address       *string `json:"address"`
	City          *string `json:"city"`
	State         *string `json:"state"`
	Pincode       *string `json:"pincode"`
	PAN           *string `json:"pan"`
	BankName      *string `json:"bank_name"`
	AccountHolder *string `json:"account_holder"`
	AccountNumber *string `json:"account_number"`
	IFSCCode      *string `json:"ifsc_code"`
	IsActive      *bool   `json:"is_active"`
}

type ListCompanyRequest struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
}

type ListCompanyResponse struct {
	Companies []Company           `json:"companies"`
	PageInfo  pagination.PageInfo `json:"page_info"`
}

type Repository interface {
	Insert(ctx context.Context, tx *gorm.DB, company *Company) error
	Update(ctx context.Context, tx *gorm.DB, company *Company) error
	FindByID(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*Company, error)
	FindBySubdomain(ctx context.Context, tx *gorm.DB, subdomain string) (*Company, error)
	List(ctx context.Context, tx *gorm.DB, p pagination.Pagination) ([]*Company, error)
}

type Service interface {
	Create(ctx context.Context, req CreateCompanyRequest) (Company, error)
	GetByID(ctx context.Context, id string) (Company, error)
	List(ctx context.Context, req ListCompanyRequest) (ListCompanyResponse, error)
	Update(ctx context.Context, req UpdateCompanyRequest) (Company, error)

	// SetBrandingImage records the stored locator for one of the four
	// company images used on invoice documents.
	SetBrandingImage(ctx context.Context, id string, kind BrandingKind, locator string) (Company, error)
}
