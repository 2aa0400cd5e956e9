package aggregate

import (
	"context"
	"fmt"
	"testing"
	"time"

	candidatedomain "github.com/MaverickDev-J/hrm/internal/candidate/domain"
	candidaterepo "github.com/MaverickDev-J/hrm/internal/candidate/repository"
	clientdomain "github.com/MaverickDev-J/hrm/internal/client/domain"
	clientrepo "github.com/MaverickDev-J/hrm/internal/client/repository"
	companydomain "github.com/MaverickDev-J/hrm/internal/company/domain"
	companyrepo "github.com/MaverickDev-J/hrm/internal/company/repository"
	"github.com/MaverickDev-J/hrm/internal/invoice/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupAggregator(t *testing.T) (*gorm.DB, domain.Aggregator) {
	t.Helper()

	dsn := fmt.Sprintf("file:agg_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&companydomain.Company{},
		&clientdomain.Client{},
		&clientdomain.ColumnConfig{},
		&candidatedomain.Candidate{},
	))

	agg := New(Params{
		Companies:  companyrepo.Provide(),
		Clients:    clientrepo.Provide(),
		Candidates: candidaterepo.Provide(),
	})
	return db, agg
}

func seedCompanyAndClient(t *testing.T, db *gorm.DB) (snowflake.ID, snowflake.ID) {
	t.Helper()

	companyID := snowflake.ID(1)
	clientID := snowflake.ID(10)

	require.NoError(t, db.Create(&companydomain.Company{
		ID:        companyID,
		Name:      "Acme Staffing",
		Subdomain: "acme",
		State:     "Karnataka",
		PAN:       "AAACA1234A",
		IsActive:  true,
	}).Error)
	require.NoError(t, db.Create(&clientdomain.Client{
		ID:         clientID,
		CompanyID:  companyID,
		ClientName: "Globex",
		State:      "Chhattisgarh",
		GSTIN:      "22ABCDE1234F1Z5",
		IsActive:   true,
	}).Error)
	return companyID, clientID
}

func seedCandidate(t *testing.T, db *gorm.DB, id, companyID, clientID snowflake.ID, data map[string]any, createdAt time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&candidatedomain.Candidate{
		ID:        id,
		CompanyID: companyID,
		ClientID:  clientID,
		Data:      datatypes.JSONMap(data),
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}).Error)
}

func seedColumnConfig(t *testing.T, db *gorm.DB, companyID, clientID snowflake.ID, defs []clientdomain.ColumnDef) {
	t.Helper()
	raw, err := clientdomain.EncodeColumns(defs)
	require.NoError(t, err)
	require.NoError(t, db.Create(&clientdomain.ColumnConfig{
		ID:        snowflake.ID(999),
		CompanyID: companyID,
		ClientID:  clientID,
		Columns:   raw,
	}).Error)
}

func TestPrepareProjectsConfiguredColumns(t *testing.T) {
	db, agg := setupAggregator(t)
	ctx := context.Background()
	companyID, clientID := seedCompanyAndClient(t, db)

	seedColumnConfig(t, db, companyID, clientID, []clientdomain.ColumnDef{
		{FieldName: "s.no", DisplayLabel: "S.No", Order: 1},
		{FieldName: "candidate_name", DisplayLabel: "Candidate Name", Width: 3, Order: 2},
		{FieldName: "doj", DisplayLabel: "Date of Joining", Width: 2, Order: 3},
		{FieldName: "amount", DisplayLabel: "Amount", Width: 2, Order: 4},
	})

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	seedCandidate(t, db, 100, companyID, clientID, map[string]any{
		"candidate_name": "J Doe",
		"doj":            "2026-02-01",
		"amount":         float64(5000),
	}, base)
	seedCandidate(t, db, 101, companyID, clientID, map[string]any{
		"candidate_name": "A Roe",
		"amount":         "2500.50",
	}, base.Add(time.Minute))

	snap, err := agg.Prepare(ctx, db, companyID, clientID,
		[]snowflake.ID{101, 100},
		domain.Totals{Subtotal: 7500.50, GrandTotal: 7500.50},
		"INV-2026-001", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// Serial synonym dropped from the effective column list.
	require.Len(t, snap.Columns, 3)
	assert.Equal(t, "candidate_name", snap.Columns[0].FieldName)
	assert.Equal(t, "doj", snap.Columns[1].FieldName)
	assert.Equal(t, "amount", snap.Columns[2].FieldName)

	// Ordered by created_at regardless of the requested id order.
	require.Len(t, snap.LineItems, 2)
	first, second := snap.LineItems[0], snap.LineItems[1]
	assert.Equal(t, 1, first.Serial)
	assert.Equal(t, "J Doe", first.Fields["candidate_name"])
	assert.Equal(t, "2026-02-01", first.Fields["doj"])
	assert.Equal(t, "5000", first.Fields["amount"])
	assert.Equal(t, float64(5000), first.Amount)

	assert.Equal(t, 2, second.Serial)
	assert.Equal(t, "A Roe", second.Fields["candidate_name"])
	// Missing configured field projects as empty, never dropped.
	assert.Equal(t, "", second.Fields["doj"])
	assert.Equal(t, "2500.50", second.Fields["amount"])
	assert.Equal(t, 2500.50, second.Amount)

	assert.Equal(t, "INV-2026-001", snap.InvoiceNumber)
	assert.Equal(t, "2026-03-15", snap.InvoiceDate)
	assert.Equal(t, "Acme Staffing", snap.Company.Name)
	assert.Equal(t, "Globex", snap.Client.Name)
	assert.Equal(t, "22ABCDE1234F1Z5", snap.Client.GSTIN)
	assert.Equal(t, 7500.50, snap.Totals.Subtotal)
	assert.Equal(t, 7500.50, snap.Totals.GrandTotal)
}

func TestPrepareFallbackColumns(t *testing.T) {
	db, agg := setupAggregator(t)
	ctx := context.Background()
	companyID, clientID := seedCompanyAndClient(t, db)

	seedCandidate(t, db, 100, companyID, clientID, map[string]any{
		"candidate_name": "J Doe",
		"amount":         float64(1200),
	}, time.Now().UTC())

	snap, err := agg.Prepare(ctx, db, companyID, clientID,
		[]snowflake.ID{100}, domain.Totals{}, "INV-1", time.Now())
	require.NoError(t, err)

	require.Len(t, snap.Columns, 2)
	assert.Equal(t, "candidate_name", snap.Columns[0].FieldName)
	assert.Equal(t, "amount", snap.Columns[1].FieldName)
}

func TestPrepareFallbackWhenOnlySerialConfigured(t *testing.T) {
	db, agg := setupAggregator(t)
	ctx := context.Background()
	companyID, clientID := seedCompanyAndClient(t, db)

	seedColumnConfig(t, db, companyID, clientID, []clientdomain.ColumnDef{
		{FieldName: "S.No", DisplayLabel: "S.No", Order: 1},
		{FieldName: "serial_no", DisplayLabel: "Serial", Order: 2},
	})
	seedCandidate(t, db, 100, companyID, clientID, map[string]any{
		"candidate_name": "J Doe",
		"amount":         float64(1200),
	}, time.Now().UTC())

	snap, err := agg.Prepare(ctx, db, companyID, clientID,
		[]snowflake.ID{100}, domain.Totals{}, "INV-1", time.Now())
	require.NoError(t, err)

	require.Len(t, snap.Columns, 2)
	assert.Equal(t, "candidate_name", snap.Columns[0].FieldName)
	assert.Equal(t, "amount", snap.Columns[1].FieldName)
}

func TestPrepareUnknownCompanyOrClient(t *testing.T) {
	db, agg := setupAggregator(t)
	ctx := context.Background()
	companyID, clientID := seedCompanyAndClient(t, db)

	_, err := agg.Prepare(ctx, db, snowflake.ID(404), clientID, nil, domain.Totals{}, "INV-1", time.Now())
	assert.ErrorIs(t, err, companydomain.ErrNotFound)

	_, err = agg.Prepare(ctx, db, companyID, snowflake.ID(404), nil, domain.Totals{}, "INV-1", time.Now())
	assert.ErrorIs(t, err, clientdomain.ErrNotFound)
}

func TestPrepareClientOfOtherCompany(t *testing.T) {
	db, agg := setupAggregator(t)
	ctx := context.Background()
	companyID, _ := seedCompanyAndClient(t, db)

	require.NoError(t, db.Create(&clientdomain.Client{
		ID:         20,
		CompanyID:  2,
		ClientName: "Initech",
		IsActive:   true,
	}).Error)

	_, err := agg.Prepare(ctx, db, companyID, snowflake.ID(20), nil, domain.Totals{}, "INV-1", time.Now())
	assert.ErrorIs(t, err, clientdomain.ErrNotFound)
}

func TestPrepareUnresolvedCandidates(t *testing.T) {
	db, agg := setupAggregator(t)
	ctx := context.Background()
	companyID, clientID := seedCompanyAndClient(t, db)

	seedCandidate(t, db, 100, companyID, clientID, map[string]any{
		"amount": float64(100),
	}, time.Now().UTC())

	// Unknown id.
	_, err := agg.Prepare(ctx, db, companyID, clientID,
		[]snowflake.ID{100, 404}, domain.Totals{}, "INV-1", time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidCandidate)

	// Candidate under a different client does not resolve either.
	seedCandidate(t, db, 200, companyID, snowflake.ID(77), map[string]any{
		"amount": float64(100),
	}, time.Now().UTC())
	_, err = agg.Prepare(ctx, db, companyID, clientID,
		[]snowflake.ID{100, 200}, domain.Totals{}, "INV-1", time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidCandidate)

	// Duplicate ids collapse to one row instead of failing.
	snap, err := agg.Prepare(ctx, db, companyID, clientID,
		[]snowflake.ID{100, 100}, domain.Totals{}, "INV-1", time.Now())
	require.NoError(t, err)
	assert.Len(t, snap.LineItems, 1)
}
