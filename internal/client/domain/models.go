package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// MaxColumns caps the configured non-serial columns per client. The
// rendered table lays out on a 12-unit grid with one unit reserved for
// the serial column, so every configured column must keep at least one
// unit.
const MaxColumns = 11

// serialSynonyms are configured field names that denote the serial
// number. The serial column is always generated, so these are dropped
// from any configured column list before rendering.
var serialSynonyms = map[string]struct{}{
	"s.no":          {},
	"s no":          {},
	"s_no":          {},
	"sno":           {},
	"sl.no":         {},
	"sl no":         {},
	"sl_no":         {},
	"slno":          {},
	"sr.no":         {},
	"sr no":         {},
	"sr_no":         {},
	"srno":          {},
	"serial":        {},
	"serial no":     {},
	"serial_no":     {},
	"serial number": {},
	"serial_number": {},
}

// IsSerialField reports whether a configured field name denotes the
// auto-generated serial column.
func IsSerialField(name string) bool {
	_, ok := serialSynonyms[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Client is a billable customer of a company.
type Client struct {
	ID        snowflake.ID `json:"id,string" gorm:"primaryKey"`
	CompanyID snowflake.ID `json:"company_id,string" gorm:"index;not null"`

	ClientName string `json:"client_name" gorm:"size:255;not null"`
	Address    string `json:"address,omitempty" gorm:"size:500"`
	City       string `json:"city,omitempty" gorm:"size:100"`
	State      string `json:"state,omitempty" gorm:"size:100"`
	Pincode    string `json:"pincode,omitempty" gorm:"size:20"`
	GSTIN      string `json:"gstin,omitempty" gorm:"column:gstin;size:20"`
	PAN        string `json:"pan,omitempty" gorm:"column:pan;size:20"`

	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Client) TableName() string { return "clients" }

// ColumnDef describes one configured invoice table column for a client.
type ColumnDef struct {
	FieldName    string `json:"field_name"`
	DisplayLabel string `json:"display_label"`
	Width        int    `json:"width,omitempty"`
	IsRequired   bool   `json:"is_required,omitempty"`
	Order        int    `json:"order"`
}

// ColumnConfig holds the per-client invoice column layout. At most one
// row per client; upserts replace the whole column list.
type ColumnConfig struct {
	ID        snowflake.ID   `json:"id,string" gorm:"primaryKey"`
	CompanyID snowflake.ID   `json:"company_id,string" gorm:"index;not null"`
	ClientID  snowflake.ID   `json:"client_id,string" gorm:"uniqueIndex;not null"`
	Columns   datatypes.JSON `json:"columns" gorm:"not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (ColumnConfig) TableName() string { return "client_column_configs" }

// DecodeColumns unmarshals the stored column list, ordered as persisted.
func (c ColumnConfig) DecodeColumns() ([]ColumnDef, error) {
	if len(c.Columns) == 0 {
		return nil, nil
	}
	var defs []ColumnDef
	if err := json.Unmarshal(c.Columns, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// EncodeColumns marshals a column list for storage.
func EncodeColumns(defs []ColumnDef) (datatypes.JSON, error) {
	raw, err := json.Marshal(defs)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
