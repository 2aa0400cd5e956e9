package service

import (
	"context"
	"fmt"
	"testing"

	companydomain "github.com/MaverickDev-J/hrm/internal/company/domain"
	"github.com/MaverickDev-J/hrm/internal/tenantctx"
	"github.com/MaverickDev-J/hrm/internal/user/domain"
	"github.com/MaverickDev-J/hrm/internal/user/repository"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupUserService(t *testing.T) (*gorm.DB, domain.Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:user_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&companydomain.Company{},
		&domain.User{},
		&domain.Role{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(node),
	})
	return db, svc
}

func seedCompany(t *testing.T, db *gorm.DB, id snowflake.ID) {
	t.Helper()
	require.NoError(t, db.Create(&companydomain.Company{
		ID:        id,
		Name:      "Acme",
		Subdomain: fmt.Sprintf("acme-%d", id),
		IsActive:  true,
	}).Error)
}

func platformCtx() context.Context {
	return tenantctx.WithActor(context.Background(), tenantctx.Actor{
		UserID:    snowflake.ID(1),
		Superuser: true,
		Roles:     []string{domain.RoleSuperAdmin},
	})
}

func tenantAdminCtx(companyID snowflake.ID) context.Context {
	return tenantctx.WithActor(context.Background(), tenantctx.Actor{
		UserID:    snowflake.ID(2),
		CompanyID: companyID,
		Roles:     []string{domain.RoleCompanyAdmin},
	})
}

func TestCreateCompanyAdmin(t *testing.T) {
	db, svc := setupUserService(t)
	seedCompany(t, db, 1)
	ctx := platformCtx()

	user, err := svc.CreateCompanyAdmin(ctx, domain.CreateAdminRequest{
		CompanyID: "1",
		Email:     "Admin@Acme.Test",
		Password:  "secret123",
		FullName:  "Ada Admin",
	})
	require.NoError(t, err)

	assert.Equal(t, "admin@acme.test", user.Email)
	require.NotNil(t, user.CompanyID)
	assert.Equal(t, snowflake.ID(1), *user.CompanyID)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsSuperuser)
	assert.Contains(t, user.RoleNames(), domain.RoleCompanyAdmin)

	// Unknown company rejected before touching the users table.
	_, err = svc.CreateCompanyAdmin(ctx, domain.CreateAdminRequest{
		CompanyID: "404",
		Email:     "x@acme.test",
		Password:  "secret123",
		FullName:  "X",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCompany)
}

func TestCreateUserValidation(t *testing.T) {
	db, svc := setupUserService(t)
	seedCompany(t, db, 1)
	ctx := platformCtx()

	_, err := svc.CreateCompanyAdmin(ctx, domain.CreateAdminRequest{
		CompanyID: "1", Email: "not-an-email", Password: "secret123", FullName: "X",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.CreateCompanyAdmin(ctx, domain.CreateAdminRequest{
		CompanyID: "1", Email: "x@acme.test", Password: "short", FullName: "X",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPassword)

	_, err = svc.CreateCompanyAdmin(ctx, domain.CreateAdminRequest{
		CompanyID: "1", Email: "x@acme.test", Password: "secret123", FullName: "  ",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db, svc := setupUserService(t)
	seedCompany(t, db, 1)
	ctx := platformCtx()

	req := domain.CreateAdminRequest{
		CompanyID: "1",
		Email:     "admin@acme.test",
		Password:  "secret123",
		FullName:  "Ada Admin",
	}
	_, err := svc.CreateCompanyAdmin(ctx, req)
	require.NoError(t, err)

	// Emails are unique across the platform, case-insensitively.
	req.Email = "ADMIN@acme.test"
	_, err = svc.CreateCompanyAdmin(ctx, req)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestCreateEmployeeScopedToTenant(t *testing.T) {
	db, svc := setupUserService(t)
	seedCompany(t, db, 1)

	user, err := svc.CreateEmployee(tenantAdminCtx(1), domain.CreateEmployeeRequest{
		Email:    "emp@acme.test",
		Password: "secret123",
		FullName: "Eve Employee",
	})
	require.NoError(t, err)
	require.NotNil(t, user.CompanyID)
	assert.Equal(t, snowflake.ID(1), *user.CompanyID)
	assert.Contains(t, user.RoleNames(), domain.RoleEmployee)

	// A superuser without an acting company has no tenant to create into.
	_, err = svc.CreateEmployee(platformCtx(), domain.CreateEmployeeRequest{
		Email:    "emp2@acme.test",
		Password: "secret123",
		FullName: "Eve Employee",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCompany)
}

func TestUserTenantIsolation(t *testing.T) {
	db, svc := setupUserService(t)
	seedCompany(t, db, 1)
	seedCompany(t, db, 2)

	user, err := svc.CreateEmployee(tenantAdminCtx(1), domain.CreateEmployeeRequest{
		Email:    "emp@acme.test",
		Password: "secret123",
		FullName: "Eve Employee",
	})
	require.NoError(t, err)

	_, err = svc.GetByID(tenantAdminCtx(2), user.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := svc.GetByID(tenantAdminCtx(1), user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestUpdateUser(t *testing.T) {
	db, svc := setupUserService(t)
	seedCompany(t, db, 1)
	ctx := tenantAdminCtx(1)

	user, err := svc.CreateEmployee(ctx, domain.CreateEmployeeRequest{
		Email:    "emp@acme.test",
		Password: "secret123",
		FullName: "Eve Employee",
	})
	require.NoError(t, err)

	name := "Eve E."
	inactive := false
	updated, err := svc.Update(ctx, domain.UpdateUserRequest{
		ID:       user.ID.String(),
		FullName: &name,
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Eve E.", updated.FullName)
	assert.False(t, updated.IsActive)
}

func TestListUsersByRole(t *testing.T) {
	db, svc := setupUserService(t)
	seedCompany(t, db, 1)
	ctx := tenantAdminCtx(1)

	_, err := svc.CreateCompanyAdmin(platformCtx(), domain.CreateAdminRequest{
		CompanyID: "1", Email: "admin@acme.test", Password: "secret123", FullName: "Ada",
	})
	require.NoError(t, err)
	_, err = svc.CreateEmployee(ctx, domain.CreateEmployeeRequest{
		Email: "emp@acme.test", Password: "secret123", FullName: "Eve",
	})
	require.NoError(t, err)

	all, err := svc.List(ctx, domain.ListUserRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Users, 2)

	admins, err := svc.List(ctx, domain.ListUserRequest{Role: domain.RoleCompanyAdmin})
	require.NoError(t, err)
	require.Len(t, admins.Users, 1)
	assert.Equal(t, "admin@acme.test", admins.Users[0].Email)
}
