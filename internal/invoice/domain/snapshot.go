package domain

import "encoding/json"

// Snapshot is the denormalized unit of truth an invoice document is
// rendered from. It is stored on the invoice row when the invoice is
// persisted and never mutated after the invoice leaves DRAFT.
type Snapshot struct {
	InvoiceNumber string `json:"invoice_number"`
	InvoiceDate   string `json:"invoice_date"`

	Company   CompanyBlock `json:"company"`
	Client    ClientBlock  `json:"client"`
	Columns   []ColumnSpec `json:"columns"`
	LineItems []LineItem   `json:"line_items"`
	Totals    Totals       `json:"totals"`

	// Source marks where the snapshot came from: "snapshot" when read
	// back from a stored invoice, "reconstruction" when rebuilt from
	// live rows because no stored snapshot exists.
	Source string `json:"source,omitempty"`
}

const (
	SnapshotSourceStored        = "snapshot"
	SnapshotSourceReconstructed = "reconstruction"
)

type CompanyBlock struct {
	Name    string `json:"name"`
	Tagline string `json:"tagline,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Pincode string `json:"pincode,omitempty"`
	PAN     string `json:"pan,omitempty"`

	BankName      string `json:"bank_name,omitempty"`
	AccountHolder string `json:"account_holder,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	IFSCCode      string `json:"ifsc_code,omitempty"`

	LogoPath      string `json:"logo_path,omitempty"`
	BannerPath    string `json:"banner_path,omitempty"`
	SignaturePath string `json:"signature_path,omitempty"`
	StampPath     string `json:"stamp_path,omitempty"`
}

type ClientBlock struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Pincode string `json:"pincode,omitempty"`
	GSTIN   string `json:"gstin,omitempty"`
	PAN     string `json:"pan,omitempty"`
}

// ColumnSpec is one effective column of the rendered line-item table,
// after serial-number synonyms are filtered out.
type ColumnSpec struct {
	FieldName    string `json:"field_name"`
	DisplayLabel string `json:"display_label"`
	Width        int    `json:"width,omitempty"`
}

// LineItem is one candidate projected onto the effective columns.
// Fields holds a value for every configured field name (empty string
// when the candidate lacks the key) and always for "amount".
type LineItem struct {
	Serial int               `json:"serial"`
	Fields map[string]string `json:"fields"`
	Amount float64           `json:"amount"`
}

// EncodeSnapshot marshals a snapshot for storage on the invoice row.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

// DecodeSnapshot unmarshals a stored snapshot.
func DecodeSnapshot(raw []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
