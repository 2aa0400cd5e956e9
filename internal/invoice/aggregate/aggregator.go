package aggregate

import (
	"context"
	"strconv"
	"time"

	candidatedomain "github.com/MaverickDev-J/hrm/internal/candidate/domain"
	clientdomain "github.com/MaverickDev-J/hrm/internal/client/domain"
	companydomain "github.com/MaverickDev-J/hrm/internal/company/domain"
	"github.com/MaverickDev-J/hrm/internal/invoice/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// fallbackColumns apply when a client has no column configuration.
var fallbackColumns = []domain.ColumnSpec{
	{FieldName: "candidate_name", DisplayLabel: "Candidate Name"},
	{FieldName: candidatedomain.AmountField, DisplayLabel: "Amount"},
}

type Params struct {
	fx.In

	Companies  companydomain.Repository
	Clients    clientdomain.Repository
	Candidates candidatedomain.Repository
}

type Aggregator struct {
	companies  companydomain.Repository
	clients    clientdomain.Repository
	candidates candidatedomain.Repository
}

func New(p Params) domain.Aggregator {
	return &Aggregator{
		companies:  p.Companies,
		clients:    p.Clients,
		candidates: p.Candidates,
	}
}

// Prepare assembles the denormalized snapshot an invoice document is
// rendered from. Candidates are ordered by created_at then id ascending
// regardless of the caller-supplied id order. Totals pass through
// exactly as given.
func (a *Aggregator) Prepare(ctx context.Context, tx *gorm.DB, companyID, clientID snowflake.ID, candidateIDs []snowflake.ID, totals domain.Totals, number string, date time.Time) (domain.Snapshot, error) {
	company, err := a.companies.FindByID(ctx, tx, companyID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if company == nil {
		return domain.Snapshot{}, companydomain.ErrNotFound
	}

	client, err := a.clients.FindByID(ctx, tx, clientID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if client == nil || client.CompanyID != companyID {
		return domain.Snapshot{}, clientdomain.ErrNotFound
	}

	columns, err := a.effectiveColumns(ctx, tx, clientID)
	if err != nil {
		return domain.Snapshot{}, err
	}

	candidates, err := a.candidates.FindByIDs(ctx, tx, companyID, clientID, candidateIDs)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if len(candidates) != len(dedupe(candidateIDs)) {
		return domain.Snapshot{}, domain.ErrInvalidCandidate
	}

	items := make([]domain.LineItem, 0, len(candidates))
	for i, candidate := range candidates {
		items = append(items, projectLine(i+1, candidate, columns))
	}

	return domain.Snapshot{
		InvoiceNumber: number,
		InvoiceDate:   date.Format("2006-01-02"),
		Company:       companyBlock(*company),
		Client:        clientBlock(*client),
		Columns:       columns,
		LineItems:     items,
		Totals:        totals,
	}, nil
}

// effectiveColumns resolves the client's configured columns with serial
// synonyms removed, or the two-column fallback when nothing usable is
// configured.
func (a *Aggregator) effectiveColumns(ctx context.Context, tx *gorm.DB, clientID snowflake.ID) ([]domain.ColumnSpec, error) {
	config, err := a.clients.FindColumnConfig(ctx, tx, clientID)
	if err != nil {
		return nil, err
	}
	if config == nil {
		return fallbackColumns, nil
	}

	defs, err := config.DecodeColumns()
	if err != nil {
		return nil, err
	}

	columns := make([]domain.ColumnSpec, 0, len(defs))
	for _, def := range defs {
		if clientdomain.IsSerialField(def.FieldName) {
			continue
		}
		columns = append(columns, domain.ColumnSpec{
			FieldName:    def.FieldName,
			DisplayLabel: def.DisplayLabel,
			Width:        def.Width,
		})
	}
	if len(columns) == 0 {
		return fallbackColumns, nil
	}
	return columns, nil
}

// projectLine maps one candidate's attribute bag onto the effective
// columns. Every configured field gets a value (empty string when the
// candidate lacks the key) and amount is always carried even when not
// configured.
func projectLine(serial int, candidate candidatedomain.Candidate, columns []domain.ColumnSpec) domain.LineItem {
	fields := make(map[string]string, len(columns)+1)
	for _, col := range columns {
		fields[col.FieldName] = stringify(candidate.Data[col.FieldName])
	}
	if _, ok := fields[candidatedomain.AmountField]; !ok {
		fields[candidatedomain.AmountField] = stringify(candidate.Data[candidatedomain.AmountField])
	}

	amount, _ := candidate.Amount()
	return domain.LineItem{
		Serial: serial,
		Fields: fields,
		Amount: amount,
	}
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func companyBlock(c companydomain.Company) domain.CompanyBlock {
	return domain.CompanyBlock{
		Name:          c.Name,
		Tagline:       c.Tagline,
		Address:       c.Address,
		City:          c.City,
		State:         c.State,
		Pincode:       c.Pincode,
		PAN:           c.PAN,
		BankName:      c.BankName,
		AccountHolder: c.AccountHolder,
		AccountNumber: c.AccountNumber,
		IFSCCode:      c.IFSCCode,
		LogoPath:      c.LogoPath,
		BannerPath:    c.BannerPath,
		SignaturePath: c.SignaturePath,
		StampPath:     c.StampPath,
	}
}

func clientBlock(c clientdomain.Client) domain.ClientBlock {
	return domain.ClientBlock{
		Name:    c.ClientName,
		Address: c.Address,
		City:    c.City,
		State:   c.State,
		Pincode: c.Pincode,
		GSTIN:   c.GSTIN,
		PAN:     c.PAN,
	}
}

func dedupe(ids []snowflake.ID) []snowflake.ID {
	seen := make(map[snowflake.ID]struct{}, len(ids))
	out := make([]snowflake.ID, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
