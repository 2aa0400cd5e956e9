package domain

import (
	"context"
	"errors"
	"time"

	"github.com/MaverickDev-J/hrm/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("invoice_not_found")
	ErrNumberTaken      = errors.New("invoice_number_taken")
	ErrInvalidState     = errors.New("invalid_invoice_state")
	ErrInvalidID        = errors.New("invalid_invoice_id")
	ErrInvalidNumber    = errors.New("invalid_invoice_number")
	ErrInvalidDate      = errors.New("invalid_invoice_date")
	ErrInvalidStatus    = errors.New("invalid_invoice_status")
	ErrInvalidTotals    = errors.New("invalid_totals")
	ErrNoCandidates     = errors.New("no_candidates")
	ErrInvalidCandidate = errors.New("invalid_candidate_selection")
	ErrInvalidCompany   = errors.New("invalid_company")
)

type GenerateRequest struct {
	ClientID      string   `json:"client_id" binding:"required"`
	CandidateIDs  []string `json:"candidate_ids" binding:"required"`
	InvoiceNumber string   `json:"invoice_number" binding:"required"`
	InvoiceDate   string   `json:"invoice_date" binding:"required"`
	Totals        Totals   `json:"totals"`

	// Status is DRAFT or GENERATED; empty defaults to DRAFT.
	Status string `json:"status"`
}

type PreviewRequest struct {
	ClientID      string   `json:"client_id" binding:"required"`
	CandidateIDs  []string `json:"candidate_ids" binding:"required"`
	InvoiceNumber string   `json:"invoice_number" binding:"required"`
	InvoiceDate   string   `json:"invoice_date" binding:"required"`
	Totals        Totals   `json:"totals"`
}

// PreviewResponse carries a disposable artifact. The locator is not
// tracked by any invoice row and is not collision-safe across callers
// reusing the same invoice number.
type PreviewResponse struct {
	Snapshot Snapshot `json:"snapshot"`
	FileURL  string   `json:"file_url"`
}

type UpdateRequest struct {
	ID            string    `json:"-"`
	CandidateIDs  *[]string `json:"candidate_ids"`
	InvoiceNumber *string   `json:"invoice_number"`
	InvoiceDate   *string   `json:"invoice_date"`
	Totals        *Totals   `json:"totals"`
}

type ListRequest struct {
	Status    string `form:"status"`
	ClientID  string `form:"client_id"`
	DateFrom  string `form:"date_from"`
	DateTo    string `form:"date_to"`
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
}

type ListResponse struct {
	Invoices []Invoice           `json:"invoices"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

type ListFilter struct {
	Status   string
	ClientID snowflake.ID
	DateFrom *time.Time
	DateTo   *time.Time
}

// Aggregator builds an invoice snapshot from live company, client,
// column-config and candidate rows.
type Aggregator interface {
	Prepare(ctx context.Context, tx *gorm.DB, companyID, clientID snowflake.ID, candidateIDs []snowflake.ID, totals Totals, number string, date time.Time) (Snapshot, error)
}

// Renderer turns a snapshot into a stored document artifact and returns
// its locator.
type Renderer interface {
	Render(ctx context.Context, snapshot Snapshot, locator string) error
}

type Repository interface {
	Insert(ctx context.Context, tx *gorm.DB, invoice *Invoice) error
	Update(ctx context.Context, tx *gorm.DB, invoice *Invoice) error
	Delete(ctx context.Context, tx *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, tx *gorm.DB, id snowflake.ID, forUpdate bool) (*Invoice, error)

	// NumberExists reports whether number is taken inside the company,
	// excluding excludeID when non-zero.
	NumberExists(ctx context.Context, tx *gorm.DB, companyID snowflake.ID, number string, excludeID snowflake.ID) (bool, error)

	List(ctx context.Context, tx *gorm.DB, companyID snowflake.ID, filter ListFilter, p pagination.Pagination) ([]*Invoice, error)

	// FindLatestByClient returns the client's most recent invoice by
	// invoice date, or nil when the client has none.
	FindLatestByClient(ctx context.Context, tx *gorm.DB, companyID, clientID snowflake.ID) (*Invoice, error)
}

type Service interface {
	Generate(ctx context.Context, req GenerateRequest) (Invoice, error)
	PreviewDraft(ctx context.Context, req PreviewRequest) (PreviewResponse, error)
	Update(ctx context.Context, req UpdateRequest) (Invoice, error)
	Finalize(ctx context.Context, id string) (Invoice, error)
	Send(ctx context.Context, id string) (Invoice, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Invoice, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)

	// LatestData returns the invoice's render data: the stored snapshot
	// when present, otherwise a reconstruction from live rows labeled as
	// such.
	LatestData(ctx context.Context, id string) (Snapshot, error)

	// LatestDataForClient resolves the client's most recent invoice by
	// invoice date and returns its render data the same way LatestData
	// does.
	LatestDataForClient(ctx context.Context, clientID string) (Snapshot, error)
}
