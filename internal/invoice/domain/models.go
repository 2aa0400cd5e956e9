package domain

import (
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Invoice status values. Transitions only move forward:
// DRAFT -> GENERATED -> SENT.
const (
	StatusDraft     = "DRAFT"
	StatusGenerated = "GENERATED"
	StatusSent      = "SENT"
)

// Totals are the operator-supplied financial figures. They are stored
// and rendered exactly as given, never recomputed from candidate rows,
// so the record always matches the rendered document.
type Totals struct {
	Subtotal   float64 `json:"subtotal"`
	CGSTAmount float64 `json:"cgst_amount"`
	SGSTAmount float64 `json:"sgst_amount"`
	IGSTAmount float64 `json:"igst_amount"`
	GrandTotal float64 `json:"grand_total"`
}

// Invoice is the lifecycle-governed billing record. invoice_number is
// unique per company, not globally.
type Invoice struct {
	ID        snowflake.ID `json:"id,string" gorm:"primaryKey"`
	CompanyID snowflake.ID `json:"company_id,string" gorm:"uniqueIndex:ux_invoices_company_number;index"`
	ClientID  snowflake.ID `json:"client_id,string" gorm:"index;not null"`

	InvoiceNumber string    `json:"invoice_number" gorm:"size:100;uniqueIndex:ux_invoices_company_number;not null"`
	InvoiceDate   time.Time `json:"invoice_date" gorm:"not null"`
	Status        string    `json:"status" gorm:"size:20;index;not null"`

	// CandidateIDs is the exact ordered id list billed, as JSON strings.
	CandidateIDs datatypes.JSON `json:"candidate_ids"`

	Subtotal   float64 `json:"subtotal"`
	CGSTAmount float64 `json:"cgst_amount" gorm:"column:cgst_amount"`
	SGSTAmount float64 `json:"sgst_amount" gorm:"column:sgst_amount"`
	IGSTAmount float64 `json:"igst_amount" gorm:"column:igst_amount"`
	GrandTotal float64 `json:"grand_total"`

	// Snapshot is the full aggregated data the artifact was rendered
	// from. Immutable once the invoice leaves DRAFT.
	Snapshot datatypes.JSON `json:"invoice_snapshot,omitempty"`

	FileURL string     `json:"file_url,omitempty" gorm:"size:500"`
	SentAt  *time.Time `json:"sent_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Invoice) TableName() string { return "invoices" }

// Totals assembles the stored totals columns.
func (i Invoice) TotalsBlock() Totals {
	return Totals{
		Subtotal:   i.Subtotal,
		CGSTAmount: i.CGSTAmount,
		SGSTAmount: i.SGSTAmount,
		IGSTAmount: i.IGSTAmount,
		GrandTotal: i.GrandTotal,
	}
}

// DecodeCandidateIDs returns the billed candidate ids in stored order.
func (i Invoice) DecodeCandidateIDs() ([]snowflake.ID, error) {
	if len(i.CandidateIDs) == 0 {
		return nil, nil
	}
	var raw []string
	if err := json.Unmarshal(i.CandidateIDs, &raw); err != nil {
		return nil, err
	}
	ids := make([]snowflake.ID, 0, len(raw))
	for _, s := range raw {
		id, err := snowflake.ParseString(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// EncodeCandidateIDs marshals an id list for storage.
func EncodeCandidateIDs(ids []snowflake.ID) (datatypes.JSON, error) {
	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.String())
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(encoded), nil
}
