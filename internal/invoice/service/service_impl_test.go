package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	candidatedomain "github.com/MaverickDev-J/hrm/internal/candidate/domain"
	candidaterepo "github.com/MaverickDev-J/hrm/internal/candidate/repository"
	clientdomain "github.com/MaverickDev-J/hrm/internal/client/domain"
	clientrepo "github.com/MaverickDev-J/hrm/internal/client/repository"
	companydomain "github.com/MaverickDev-J/hrm/internal/company/domain"
	companyrepo "github.com/MaverickDev-J/hrm/internal/company/repository"
	"github.com/MaverickDev-J/hrm/internal/config"
	"github.com/MaverickDev-J/hrm/internal/invoice/aggregate"
	"github.com/MaverickDev-J/hrm/internal/invoice/domain"
	invoicerepo "github.com/MaverickDev-J/hrm/internal/invoice/repository"
	"github.com/MaverickDev-J/hrm/internal/storage"
	"github.com/MaverickDev-J/hrm/internal/tenantctx"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// stubRenderer writes a fixed payload through the real store so artifact
// bookkeeping (overwrite, cleanup, existence) behaves like production.
type stubRenderer struct {
	store    storage.Store
	rendered []string
}

func (r *stubRenderer) Render(_ context.Context, _ domain.Snapshot, locator string) error {
	r.rendered = append(r.rendered, locator)
	return r.store.Write(locator, strings.NewReader("%PDF-1.7 stub"))
}

type invoiceFixture struct {
	db       *gorm.DB
	svc      domain.Service
	store    storage.Store
	renderer *stubRenderer
	params   Params
}

// withRepo builds a second service over the same database and store,
// swapping in a wrapped repository.
func (f *invoiceFixture) withRepo(repo domain.Repository) domain.Service {
	p := f.params
	p.Repo = repo
	return New(p)
}

func setupInvoiceService(t *testing.T) *invoiceFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:inv_%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&companydomain.Company{},
		&clientdomain.Client{},
		&clientdomain.ColumnConfig{},
		&candidatedomain.Candidate{},
		&domain.Invoice{},
	))

	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	renderer := &stubRenderer{store: store}
	params := Params{
		DB:    gdb,
		Log:   zap.NewNop(),
		GenID: node,
		Config: config.Config{
			StaticMount: "/static",
		},
		Repo: invoicerepo.Provide(),
		Aggregator: aggregate.New(aggregate.Params{
			Companies:  companyrepo.Provide(),
			Clients:    clientrepo.Provide(),
			Candidates: candidaterepo.Provide(),
		}),
		Renderer: renderer,
		Store:    store,
	}

	return &invoiceFixture{db: gdb, svc: New(params), store: store, renderer: renderer, params: params}
}

func (f *invoiceFixture) seedTenant(t *testing.T, companyID, clientID snowflake.ID) {
	t.Helper()
	require.NoError(t, f.db.Create(&companydomain.Company{
		ID:        companyID,
		Name:      "Acme Staffing",
		Subdomain: fmt.Sprintf("acme-%d", companyID),
		State:     "Karnataka",
		PAN:       "AAACA1234A",
		IsActive:  true,
	}).Error)
	require.NoError(t, f.db.Create(&clientdomain.Client{
		ID:         clientID,
		CompanyID:  companyID,
		ClientName: "Globex",
		State:      "Chhattisgarh",
		GSTIN:      "22ABCDE1234F1Z5",
		IsActive:   true,
	}).Error)
}

func (f *invoiceFixture) seedCandidate(t *testing.T, id, companyID, clientID snowflake.ID, name string, amount float64) {
	t.Helper()
	require.NoError(t, f.db.Create(&candidatedomain.Candidate{
		ID:        id,
		CompanyID: companyID,
		ClientID:  clientID,
		Data: datatypes.JSONMap{
			"candidate_name": name,
			"amount":         amount,
		},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}).Error)
}

func adminCtx(companyID snowflake.ID) context.Context {
	return tenantctx.WithActor(context.Background(), tenantctx.Actor{
		UserID:    snowflake.ID(1),
		CompanyID: companyID,
		Roles:     []string{"company_admin"},
	})
}

func generateReq(clientID snowflake.ID, candidateIDs []snowflake.ID, number string) domain.GenerateRequest {
	ids := make([]string, len(candidateIDs))
	for i, id := range candidateIDs {
		ids[i] = id.String()
	}
	return domain.GenerateRequest{
		ClientID:      clientID.String(),
		CandidateIDs:  ids,
		InvoiceNumber: number,
		InvoiceDate:   "2026-03-15",
		Totals: domain.Totals{
			Subtotal:   5000,
			GrandTotal: 5000,
		},
	}
}

func TestGenerateDraft(t *testing.T) {
	f := setupInvoiceService(t)
	f.seedTenant(t, 1, 10)
	f.seedCandidate(t, 100, 1, 10, "J Doe", 5000)
	ctx := adminCtx(1)

	invoice, err := f.svc.Generate(ctx, generateReq(10, []snowflake.ID{100}, "INV-2026-001"))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusDraft, invoice.Status)
	assert.Equal(t, "INV-2026-001", invoice.InvoiceNumber)
	assert.Equal(t, float64(5000), invoice.Subtotal)
	assert.Equal(t, float64(5000), invoice.GrandTotal)
	assert.Equal(t, "/static/invoices/1/INV-2026-001.pdf", invoice.FileURL)
	assert.True(t, f.store.Exists("invoices/1/INV-2026-001.pdf"))

	ids, err := invoice.DecodeCandidateIDs()
	require.NoError(t, err)
	assert.Equal(t, []snowflake.ID{100}, ids)

	snapshot, err := domain.DecodeSnapshot(invoice.Snapshot)
	require.NoError(t, err)
	require.Len(t, snapshot.LineItems, 1)
	assert.Equal(t, "J Doe", snapshot.LineItems[0].Fields["candidate_name"])
	assert.Equal(t, float64(5000), snapshot.LineItems[0].Amount)
}

func TestGenerateNumberScopedPerCompany(t *testing.T) {
	f := setupInvoiceService(t)
	f.seedTenant(t, 1, 10)
	f.seedTenant(t, 2, 20)
	f.seedCandidate(t, 100, 1, 10, "J Doe", 5000)
	f.seedCandidate(t, 200, 2, 20, "A Roe", 3000)

	_, err := f.svc.Generate(adminCtx(1), generateReq(10, []snowflake.ID{100}, "INV-1"))
	require.NoError(t, err)

	_, err = f.svc.Generate(adminCtx(1), generateReq(10, []snowflake.ID{100}, "INV-1"))
	assert.ErrorIs(t, err, domain.ErrNumberTaken)

	// The same number is free under another company.
	_, err = f.svc.Generate(adminCtx(2), generateReq(20, []snowflake.ID{200}, "INV-1"))
	assert.NoError(t, err)
}

func TestGenerateValidation(t *testing.T) {
	f := setupInvoiceService(t)
	f.seedTenant(t, 1, 10)
	f.seedCandidate(t, 100, 1, 10, "J Doe", 5000)
	ctx := adminCtx(1)

	req := generateReq(10, []snowflake.ID{100}, "")
	_, err := f.svc.Generate(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidNumber)

	req = generateReq(10, []snowflake.ID{100}, "INV-1")
	req.InvoiceDate = "15/03/2026"
	_, err = f.svc.Generate(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	req = generateReq(10, []snowflake.ID{100}, "INV-1")
	req.Status = "SENT"
	_, err = f.svc.Generate(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	req = generateReq(10, []snowflake.ID{100}, "INV-1")
	req.Totals.CGSTAmount = -1
	_, err = f.svc.Generate(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidTotals)

	req = generateReq(10, nil, "INV-1")
	_, err = f.svc.Generate(ctx, req)
	assert.ErrorIs(t, err, domain.ErrNoCandidates)

	req = generateReq(10, []snowflake.ID{404}, "INV-1")
	_, err = f.svc.Generate(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidCandidate)
}

func TestTotalsStoredVerbatim(t *testing.T) {
	f := setupInvoiceService(t)
	f.seedTenant(t, 1, 10)
	f.seedCandidate(t, 100, 1, 10, "J Doe", 5000)

	// Deliberately inconsistent figures pass through untouched.
	req := generateReq(10, []snowflake.ID{100}, "INV-1")
	req.Totals = domain.Totals{
		Subtotal:   1000,
		CGSTAmount: 90,
		SGSTAmount: 90,
		GrandTotal: 999,
	}
	invoice, err := f.svc.Generate(adminCtx(1), req)
	require.NoError(t, err)

	assert.Equal(t, float64(1000), invoice.Subtotal)
	assert.Equal(t, float64(90), invoice.CGSTAmount)
	assert.Equal(t, float64(90), invoice.SGSTAmount)
	assert.Equal(t, float64(0), invoice.IGSTAmount)
	assert.Equal(t, float64(999), invoice.GrandTotal)
}

func TestLifecycle(t *testing.T) {
	f := setupInvoiceService(t)
	f.seedTenant(t, 1, 10)
	f.seedCandidate(t, 100, 1, 10, "J Doe", 5000)
	ctx := adminCtx(1)

	invoice, err := f.svc.Generate(ctx, generateReq(10, []snowflake.ID{100}, "INV-1"))
	require.NoError(t, err)
	id := invoice.ID.String()

	finalized, err := f.svc.Finalize(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusGenerated, finalized.Status)

	// GENERATED invoices are immutable.
	_, err = f.svc.Finalize(ctx, id)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	number := "INV-2"
	_, err = f.svc.Update(ctx, domain.UpdateRequest{ID: id, InvoiceNumber: &number})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.ErrorIs(t, f.svc.Delete(ctx, id), domain.ErrInvalidState)

	sent, err := f.svc.Send(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSent, sent.Status)
	require.NotNil(t, sent.SentAt)
	sentAt := *sent.SentAt

	// Sending again is a no-op returning the same row.
	again, err := f.svc.Send(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSent, again.Status)
	require.NotNil(t, again.SentAt)
	assert.WithinDuration(t, sentAt, *again.SentAt, time.Second)
}

func TestSendRequiresGenerated(t *testing.T) {
	f := setupInvoiceService(t)
	f.seedTenant(t, 1, 10)
	f.seedCandidate(t, 100, 1, 10, "J Doe", 5000)
	ctx := adminCtx(1)

	invoice, err := f.svc.Generate(ctx, generateReq(10, []snowflake.ID{100}, "INV-1"))
	require.NoError(t, err)

	_, err = f.svc.Send(ctx, invoice.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestUpdateDraftRenumbers(t *testing.T) {
	f := setupInvoiceService(t)
	f.seedTenant(t, 1, 10)
	f.seedCandidate(t, 100, 1, 10, "J Doe", 5000)
	f.seedCandidate(t, 101, 1, 10, "A Roe", 2500)
	ctx := adminCtx(1)

	invoice, err := f.svc.Generate(ctx, generateReq(10, []snowflake.ID{100}, "INV-1"))
	require.NoError(t, err)

	number := "INV-1-REV"
	candidateIDs := []string{"100", "101"}
	totals := domain.Totals{Subtotal: 7500, GrandTotal: 7500}
	updated, err := f.svc.Update(ctx, domain.UpdateRequest{
		ID:            invoice.ID.String(),
		InvoiceNumber: &number,
		CandidateIDs:  &candidateIDs,
		Totals:        &totals,
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-1-REV", updated.InvoiceNumber)
	assert.Equal(t, float64(7500), updated.GrandTotal)
	assert.Equal(t, "/static/invoices/1/INV-1-REV.pdf", updated.FileURL)

	// The old artifact is gone and the replacement exists.
	assert.False(t, f.store.Exists("invoices/1/INV-1.pdf"))
	assert.True(t, f.store.Exists("invoices/1/INV-1-REV.pdf"))

	snapshot, err := domain.DecodeSnapshot(updated.Snapshot)
	require.NoError(t, err)
	assert.Len(t, snapshot.LineItems, 2)
}

// staleCheckRepo answers the number pre-check in the negative, standing
// in for a concurrent generate whose check ran before the other row
// landed. The unique index stays authoritative.
type staleCheckRepo struct {
	domain.Repository
}

func (r *staleCheckRepo) NumberExists(context.Context, *gorm.DB, snowflake.ID, string, snowflake.ID) (bool, error) {
	return false, nil
}

func TestGenerateConflictKeepsExistingArtifact(t *testing.T) {
	f := setupInvoiceService(t)
	f.seedTenant(t, 1, 10)
	f.seedCandidate(t, 100, 1, 10, "J Doe", 5000)
	ctx := adminCtx(1)

	_, err := f.svc.Generate(ctx, generateReq(10, []snowflake.ID{100}, "INV-1"))
	require.NoError(t, err)

	racing := f.withRepo(&staleCheckRepo{Repository: f.params.Repo})
	_, err = racing.Generate(ctx, generateReq(10, []snowflake.ID{100}, "INV-1"))
	assert.ErrorIs(t, err, domain.ErrNumberTaken)

	// The first caller's artifact survives the loser's cleanup, and no
	// staging file is left behind.
	assert.True(t, f.store.Exists("invoices/1/INV-1.pdf"))
	dir, err := f.store.Resolve("invoices/1")
	require.NoError(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

// refusingUpdateRepo fails row updates on demand.
type refusingUpdateRepo struct {
	domain.Repository
	refuse bool
}

func (r *refusingUpdateRepo) Update(ctx context.Context, tx *gorm.DB, invoice *domain.Invoice) error {
	if r.refuse {
		return errRowUpdateRefused
	}
	return r.Repository.Update(ctx, tx, invoice)
}

var errRowUpdateRefused = errors.New("row update refused")

func TestUpdateFailureKeepsCurrentArtifact(t *testing.T) {
	f := setupInvoiceService(t)
	f.seedTenant(t, 1, 10)
	f.seedCandidate(t, 100, 1, 10, "J Doe", 5000)
	ctx := adminCtx(1)

	repo := &refusingUpdateRepo{Repository: f.params.Repo}
	svc := f.withRepo(repo)

	invoice, err := svc.Generate(ctx, generateReq(10, []snowflake.ID{100}, "INV-1"))
	require.NoError(t, err)

	repo.refuse = true
	totals := domain.Totals{Subtotal: 1, GrandTotal: 1}
	_, err = svc.Update(ctx, domain.UpdateRequest{ID: invoice.ID.String(), Totals: &totals})
	assert.ErrorIs(t, err, errRowUpdateRefused)

	// The rolled-back row still points at an intact artifact.
	assert.True(t, f.store.Exists("invoices/1/INV-1.pdf"))
	dir, err := f.store.Resolve("invoices/1")
	require.NoError(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUpdateRejectsTakenNumber(t *testing.T) {
	f := setupInvoiceService(t)
	f.seedTenant(t, 1, 10)
	f.seedCandidate(t, 100, 1, 10, "J Doe", 5000)
	ctx := adminCtx(1)

	_, err := f.svc.Generate(ctx, generateReq(10, []snowflake.ID{100}, "INV-1"))
	require.NoError(t, err)
	second, err := f.svc.Generate(ctx, generateReq(10, []snowflake.ID{100}, "INV-2"))
	require.NoError(t, err)

	taken := "INV-1"
	_, err = f.svc.Update(ctx, domain.UpdateRequest{ID: second.ID.String(), InvoiceNumber: &taken})
	assert.ErrorIs(t, err, domain.ErrNumberTaken)

	// Keeping its own number is never a conflict.
	own := "INV-2"
	totals := domain.Totals{Subtotal: 1, GrandTotal: 1}
	_, err = f.svc.Update(ctx, domain.UpdateRequest{ID: second.ID.String(), InvoiceNumber: &own, Totals: &totals})
	assert.NoError(t, err)
}

func TestDeleteDraft(t *testing.T) {
	f := setupInvoiceService(t)
	f.seedTenant(t, 1, 10)
	f.seedCandidate(t, 100, 1, 10, "J Doe", 5000)
	ctx := adminCtx(1)

	invoice, err := f.svc.Generate(ctx, generateReq(10, []snowflake.ID{100}, "INV-1"))
	require.NoError(t, err)
	require.True(t, f.store.Exists("invoices/1/INV-1.pdf"))

	require.NoError(t, f.svc.Delete(ctx, invoice.ID.String()))
	assert.False(t, f.store.Exists("invoices/1/INV-1.pdf"))

	_, err = f.svc.GetByID(ctx, invoice.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCrossTenantReadsAsMissing(t *testing.T) {
	f := setupInvoiceService(t)
	f.seedTenant(t, 1, 10)
	f.seedTenant(t, 2, 20)
	f.seedCandidate(t, 100, 1, 10, "J Doe", 5000)

	invoice, err := f.svc.Generate(adminCtx(1), generateReq(10, []snowflake.ID{100}, "INV-1"))
	require.NoError(t, err)

	_, err = f.svc.GetByID(adminCtx(2), invoice.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.Finalize(adminCtx(2), invoice.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(adminCtx(2), invoice.ID.String()), domain.ErrNotFound)
}

func TestPreviewDraftLeavesNoRow(t *testing.T) {
	f := setupInvoiceService(t)
	f.seedTenant(t, 1, 10)
	f.seedCandidate(t, 100, 1, 10, "J Doe", 5000)
	ctx := adminCtx(1)

	resp, err := f.svc.PreviewDraft(ctx, domain.PreviewRequest{
		ClientID:      "10",
		CandidateIDs:  []string{"100"},
		InvoiceNumber: "INV-1",
		InvoiceDate:   "2026-03-15",
		Totals:        domain.Totals{Subtotal: 5000, GrandTotal: 5000},
	})
	require.NoError(t, err)

	assert.Equal(t, "/static/invoices/1/INV-1_preview.pdf", resp.FileURL)
	assert.True(t, f.store.Exists("invoices/1/INV-1_preview.pdf"))
	require.Len(t, resp.Snapshot.LineItems, 1)

	list, err := f.svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Invoices)

	// The preview number stays available for a real generate.
	_, err = f.svc.Generate(ctx, generateReq(10, []snowflake.ID{100}, "INV-1"))
	assert.NoError(t, err)
}

func TestLatestDataStoredSnapshot(t *testing.T) {
	f := setupInvoiceService(t)
	f.seedTenant(t, 1, 10)
	f.seedCandidate(t, 100, 1, 10, "J Doe", 5000)
	ctx := adminCtx(1)

	invoice, err := f.svc.Generate(ctx, generateReq(10, []snowflake.ID{100}, "INV-1"))
	require.NoError(t, err)

	// Mutate the candidate after generation; the stored snapshot wins.
	require.NoError(t, f.db.Model(&candidatedomain.Candidate{}).
		Where("id = ?", 100).
		Update("data", datatypes.JSONMap{"candidate_name": "Renamed", "amount": float64(9999)}).Error)

	snapshot, err := f.svc.LatestData(ctx, invoice.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.SnapshotSourceStored, snapshot.Source)
	require.Len(t, snapshot.LineItems, 1)
	assert.Equal(t, "J Doe", snapshot.LineItems[0].Fields["candidate_name"])
}

func TestLatestDataReconstructs(t *testing.T) {
	f := setupInvoiceService(t)
	f.seedTenant(t, 1, 10)
	f.seedCandidate(t, 100, 1, 10, "J Doe", 5000)
	ctx := adminCtx(1)

	invoice, err := f.svc.Generate(ctx, generateReq(10, []snowflake.ID{100}, "INV-1"))
	require.NoError(t, err)

	// Legacy rows predate snapshot storage.
	require.NoError(t, f.db.Model(&domain.Invoice{}).
		Where("id = ?", invoice.ID).
		Update("snapshot", nil).Error)

	snapshot, err := f.svc.LatestData(ctx, invoice.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.SnapshotSourceReconstructed, snapshot.Source)
	require.Len(t, snapshot.LineItems, 1)
	assert.Equal(t, "J Doe", snapshot.LineItems[0].Fields["candidate_name"])
}

func TestLatestDataForClient(t *testing.T) {
	f := setupInvoiceService(t)
	f.seedTenant(t, 1, 10)
	f.seedTenant(t, 2, 20)
	f.seedCandidate(t, 100, 1, 10, "J Doe", 5000)
	ctx := adminCtx(1)

	// Recency goes by invoice date, not by creation order.
	newer := generateReq(10, []snowflake.ID{100}, "INV-APR")
	newer.InvoiceDate = "2026-04-01"
	_, err := f.svc.Generate(ctx, newer)
	require.NoError(t, err)

	older := generateReq(10, []snowflake.ID{100}, "INV-MAR")
	older.InvoiceDate = "2026-03-15"
	_, err = f.svc.Generate(ctx, older)
	require.NoError(t, err)

	snapshot, err := f.svc.LatestDataForClient(ctx, "10")
	require.NoError(t, err)
	assert.Equal(t, "INV-APR", snapshot.InvoiceNumber)
	assert.Equal(t, domain.SnapshotSourceStored, snapshot.Source)

	// A client with no invoices reads as missing, as does a client of
	// another tenant.
	_, err = f.svc.LatestDataForClient(adminCtx(2), "20")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.LatestDataForClient(adminCtx(2), "10")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.LatestDataForClient(ctx, "not-a-number")
	assert.ErrorIs(t, err, clientdomain.ErrInvalidID)
}

func TestListFilters(t *testing.T) {
	f := setupInvoiceService(t)
	f.seedTenant(t, 1, 10)
	f.seedCandidate(t, 100, 1, 10, "J Doe", 5000)
	ctx := adminCtx(1)

	first, err := f.svc.Generate(ctx, generateReq(10, []snowflake.ID{100}, "INV-1"))
	require.NoError(t, err)
	_, err = f.svc.Generate(ctx, generateReq(10, []snowflake.ID{100}, "INV-2"))
	require.NoError(t, err)
	_, err = f.svc.Finalize(ctx, first.ID.String())
	require.NoError(t, err)

	all, err := f.svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Invoices, 2)

	drafts, err := f.svc.List(ctx, domain.ListRequest{Status: "draft"})
	require.NoError(t, err)
	require.Len(t, drafts.Invoices, 1)
	assert.Equal(t, "INV-2", drafts.Invoices[0].InvoiceNumber)

	generated, err := f.svc.List(ctx, domain.ListRequest{Status: domain.StatusGenerated})
	require.NoError(t, err)
	require.Len(t, generated.Invoices, 1)
	assert.Equal(t, "INV-1", generated.Invoices[0].InvoiceNumber)
}

func TestSanitizeNumber(t *testing.T) {
	assert.Equal(t, "INV-2026-001", sanitizeNumber("INV-2026-001"))
	assert.Equal(t, "INV_2026_001", sanitizeNumber("INV/2026 001"))
	assert.Equal(t, "acme_1.2", sanitizeNumber("acme#1.2"))
}
