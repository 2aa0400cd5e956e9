package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/MaverickDev-J/hrm/internal/candidate/domain"
	"github.com/MaverickDev-J/hrm/internal/candidate/repository"
	clientdomain "github.com/MaverickDev-J/hrm/internal/client/domain"
	clientrepo "github.com/MaverickDev-J/hrm/internal/client/repository"
	"github.com/MaverickDev-J/hrm/internal/tenantctx"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupCandidateService(t *testing.T) (*gorm.DB, domain.Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:cand_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&clientdomain.Client{}, &domain.Candidate{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Repo:    repository.Provide(),
		Clients: clientrepo.Provide(),
	})
	return db, svc
}

func seedClient(t *testing.T, db *gorm.DB, id, companyID snowflake.ID) {
	t.Helper()
	require.NoError(t, db.Create(&clientdomain.Client{
		ID:         id,
		CompanyID:  companyID,
		ClientName: "Globex",
		IsActive:   true,
	}).Error)
}

func employeeCtx(companyID snowflake.ID) context.Context {
	return tenantctx.WithActor(context.Background(), tenantctx.Actor{
		UserID:    snowflake.ID(1),
		CompanyID: companyID,
		Roles:     []string{"employee"},
	})
}

func TestCreateCandidate(t *testing.T) {
	db, svc := setupCandidateService(t)
	seedClient(t, db, 10, 1)
	ctx := employeeCtx(1)

	candidate, err := svc.Create(ctx, domain.CreateCandidateRequest{
		ClientID: "10",
		Data: map[string]any{
			"candidate_name": "J Doe",
			"doj":            "2026-02-01",
			"amount":         float64(5000),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, snowflake.ID(1), candidate.CompanyID)
	assert.Equal(t, snowflake.ID(10), candidate.ClientID)
	amount, err := candidate.Amount()
	require.NoError(t, err)
	assert.Equal(t, float64(5000), amount)

	// Amount is mandatory and must be numeric.
	_, err = svc.Create(ctx, domain.CreateCandidateRequest{
		ClientID: "10",
		Data:     map[string]any{"candidate_name": "No Amount"},
	})
	assert.ErrorIs(t, err, domain.ErrMissingAmount)

	_, err = svc.Create(ctx, domain.CreateCandidateRequest{
		ClientID: "10",
		Data:     map[string]any{"amount": "five grand"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestCreateCandidateUnknownClient(t *testing.T) {
	db, svc := setupCandidateService(t)
	seedClient(t, db, 10, 1)

	_, err := svc.Create(employeeCtx(1), domain.CreateCandidateRequest{
		ClientID: "404",
		Data:     map[string]any{"amount": float64(1)},
	})
	assert.ErrorIs(t, err, clientdomain.ErrNotFound)

	// A client of another tenant is invisible as well.
	_, err = svc.Create(employeeCtx(2), domain.CreateCandidateRequest{
		ClientID: "10",
		Data:     map[string]any{"amount": float64(1)},
	})
	assert.ErrorIs(t, err, clientdomain.ErrNotFound)
}

func TestUpdateCandidateReplacesData(t *testing.T) {
	db, svc := setupCandidateService(t)
	seedClient(t, db, 10, 1)
	ctx := employeeCtx(1)

	candidate, err := svc.Create(ctx, domain.CreateCandidateRequest{
		ClientID: "10",
		Data:     map[string]any{"candidate_name": "J Doe", "amount": float64(5000)},
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, domain.UpdateCandidateRequest{
		ID:   candidate.ID.String(),
		Data: map[string]any{"candidate_name": "J Doe", "amount": "6000.50"},
	})
	require.NoError(t, err)

	amount, err := updated.Amount()
	require.NoError(t, err)
	assert.Equal(t, 6000.50, amount)

	// Updates go through the same payload validation.
	_, err = svc.Update(ctx, domain.UpdateCandidateRequest{
		ID:   candidate.ID.String(),
		Data: map[string]any{"candidate_name": "J Doe"},
	})
	assert.ErrorIs(t, err, domain.ErrMissingAmount)
}

func TestCandidateTenantIsolation(t *testing.T) {
	db, svc := setupCandidateService(t)
	seedClient(t, db, 10, 1)

	candidate, err := svc.Create(employeeCtx(1), domain.CreateCandidateRequest{
		ClientID: "10",
		Data:     map[string]any{"amount": float64(1)},
	})
	require.NoError(t, err)

	_, err = svc.GetByID(employeeCtx(2), candidate.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(employeeCtx(2), candidate.ID.String()), domain.ErrNotFound)
}

func TestListCandidatesByClient(t *testing.T) {
	db, svc := setupCandidateService(t)
	seedClient(t, db, 10, 1)
	ctx := employeeCtx(1)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, domain.CreateCandidateRequest{
			ClientID: "10",
			Data:     map[string]any{"candidate_name": fmt.Sprintf("c%d", i), "amount": float64(i + 1)},
		})
		require.NoError(t, err)
	}

	resp, err := svc.ListByClient(ctx, domain.ListCandidateRequest{ClientID: "10"})
	require.NoError(t, err)
	require.Len(t, resp.Candidates, 3)
	// Oldest first, matching the order rows are billed in.
	assert.Equal(t, "c0", resp.Candidates[0].Data["candidate_name"])
	assert.Equal(t, "c2", resp.Candidates[2].Data["candidate_name"])
}

func TestListCandidatesPaginatesTimestampTies(t *testing.T) {
	db, svc := setupCandidateService(t)
	seedClient(t, db, 10, 1)
	ctx := employeeCtx(1)

	// Bulk imports can land several rows on the same timestamp; paging
	// must still visit each row exactly once, oldest first.
	stamp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= 3; i++ {
		require.NoError(t, db.Create(&domain.Candidate{
			ID:        snowflake.ID(i),
			CompanyID: 1,
			ClientID:  10,
			Data:      datatypes.JSONMap{"amount": float64(i)},
			CreatedAt: stamp,
			UpdatedAt: stamp,
		}).Error)
	}

	var walked []snowflake.ID
	token := ""
	for range [5]int{} {
		page, err := svc.ListByClient(ctx, domain.ListCandidateRequest{
			ClientID:  "10",
			PageSize:  1,
			PageToken: token,
		})
		require.NoError(t, err)
		for _, c := range page.Candidates {
			walked = append(walked, c.ID)
		}
		if !page.PageInfo.HasMore {
			break
		}
		token = page.PageInfo.NextPageToken
	}
	assert.Equal(t, []snowflake.ID{1, 2, 3}, walked)
}

func TestDeleteCandidate(t *testing.T) {
	db, svc := setupCandidateService(t)
	seedClient(t, db, 10, 1)
	ctx := employeeCtx(1)

	candidate, err := svc.Create(ctx, domain.CreateCandidateRequest{
		ClientID: "10",
		Data:     map[string]any{"amount": float64(1)},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, candidate.ID.String()))
	_, err = svc.GetByID(ctx, candidate.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
