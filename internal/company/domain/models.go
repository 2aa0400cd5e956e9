package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Company is the tenant root. Every client, candidate and invoice hangs
// off exactly one company.
type Company struct {
	ID        snowflake.ID `json:"id,string" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"size:255;not null"`
	Subdomain string       `json:"subdomain" gorm:"size:100;uniqueIndex;not null"`
	Tagline   string       `json:"tagline,omitempty" gorm:"size:255"`

	Address string `json:"address,omitempty" gorm:"size:500"`
	City    string `json:"city,omitempty" gorm:"size:100"`
	State   string `json:"state,omitempty" gorm:"size:100"`
	Pincode string `json:"pincode,omitempty" gorm:"size:20"`
	PAN     string `json:"pan,omitempty" gorm:"column:pan;size:20"`

	BankName      string `json:"bank_name,omitempty" gorm:"size:255"`
	AccountHolder string `json:"account_holder,omitempty" gorm:"size:255"`
	AccountNumber string `json:"account_number,omitempty" gorm:"size:50"`
	IFSCCode      string `json:"ifsc_code,omitempty" gorm:"column:ifsc_code;size:20"`

	LogoPath      string `json:"logo_path,omitempty" gorm:"size:500"`
	BannerPath    string `json:"banner_path,omitempty" gorm:"size:500"`
	SignaturePath string `json:"signature_path,omitempty" gorm:"size:500"`
	StampPath     string `json:"stamp_path,omitempty" gorm:"size:500"`

	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Company) TableName() string { return "companies" }

// HasCompleteProfile reports whether the company carries everything an
// invoice document needs: identity, address and bank details.
func (c Company) HasCompleteProfile() bool {
	return c.Name != "" &&
		c.Address != "" &&
		c.PAN != "" &&
		c.BankName != "" &&
		c.AccountHolder != "" &&
		c.AccountNumber != "" &&
		c.IFSCCode != ""
}
