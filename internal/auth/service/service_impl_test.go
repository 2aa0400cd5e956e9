package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/MaverickDev-J/hrm/internal/auth/domain"
	"github.com/MaverickDev-J/hrm/internal/auth/password"
	"github.com/MaverickDev-J/hrm/internal/auth/token"
	userdomain "github.com/MaverickDev-J/hrm/internal/user/domain"
	userrepo "github.com/MaverickDev-J/hrm/internal/user/repository"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupAuthService(t *testing.T) (*gorm.DB, domain.Service, *token.Issuer) {
	t.Helper()

	dsn := fmt.Sprintf("file:auth_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&userdomain.User{}, &userdomain.Role{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	issuer := token.NewIssuer("test-secret", 30*time.Minute, 24*time.Hour)
	svc := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		Issuer: issuer,
		Users:  userrepo.Provide(node),
	})
	return db, svc, issuer
}

func seedUser(t *testing.T, db *gorm.DB, email, plaintext string, active bool) *userdomain.User {
	t.Helper()

	hash, err := password.Hash(plaintext)
	require.NoError(t, err)

	companyID := snowflake.ID(1)
	user := &userdomain.User{
		ID:           snowflake.ID(100),
		Email:        email,
		PasswordHash: hash,
		FullName:     "Test User",
		IsActive:     active,
		CompanyID:    &companyID,
		Roles: []userdomain.Role{
			{ID: snowflake.ID(500), Name: userdomain.RoleCompanyAdmin, CompanyID: &companyID},
		},
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestLogin(t *testing.T) {
	db, svc, issuer := setupAuthService(t)
	seedUser(t, db, "admin@acme.test", "secret123", true)
	ctx := context.Background()

	pair, err := svc.Login(ctx, domain.LoginRequest{Email: "admin@acme.test", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", pair.TokenType)

	claims, err := issuer.Parse(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "100", claims.Subject)
	assert.Equal(t, "1", claims.CompanyID)
	assert.Contains(t, claims.Roles, userdomain.RoleCompanyAdmin)

	// Email matching is case-insensitive.
	_, err = svc.Login(ctx, domain.LoginRequest{Email: "  Admin@Acme.Test ", Password: "secret123"})
	assert.NoError(t, err)

	// Successful login stamps last_login_at.
	var stored userdomain.User
	require.NoError(t, db.First(&stored, "id = ?", 100).Error)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db, svc, _ := setupAuthService(t)
	seedUser(t, db, "admin@acme.test", "secret123", true)
	ctx := context.Background()

	_, err := svc.Login(ctx, domain.LoginRequest{Email: "admin@acme.test", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// Unknown accounts fail the same way as bad passwords.
	_, err = svc.Login(ctx, domain.LoginRequest{Email: "nobody@acme.test", Password: "secret123"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	db, svc, _ := setupAuthService(t)
	seedUser(t, db, "gone@acme.test", "secret123", false)

	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "gone@acme.test", Password: "secret123"})
	assert.ErrorIs(t, err, domain.ErrInactiveUser)
}

func TestRefresh(t *testing.T) {
	db, svc, _ := setupAuthService(t)
	seedUser(t, db, "admin@acme.test", "secret123", true)
	ctx := context.Background()

	pair, err := svc.Login(ctx, domain.LoginRequest{Email: "admin@acme.test", Password: "secret123"})
	require.NoError(t, err)

	fresh, err := svc.Refresh(ctx, domain.RefreshRequest{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)

	// An access token is not accepted as a refresh token.
	_, err = svc.Refresh(ctx, domain.RefreshRequest{RefreshToken: pair.AccessToken})
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	// Deactivation cuts off refresh.
	require.NoError(t, db.Model(&userdomain.User{}).Where("id = ?", 100).Update("is_active", false).Error)
	_, err = svc.Refresh(ctx, domain.RefreshRequest{RefreshToken: pair.RefreshToken})
	assert.ErrorIs(t, err, domain.ErrInactiveUser)
}

func TestAuthenticate(t *testing.T) {
	db, svc, _ := setupAuthService(t)
	seedUser(t, db, "admin@acme.test", "secret123", true)
	ctx := context.Background()

	pair, err := svc.Login(ctx, domain.LoginRequest{Email: "admin@acme.test", Password: "secret123"})
	require.NoError(t, err)

	actor, err := svc.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(100), actor.UserID)
	assert.Equal(t, snowflake.ID(1), actor.CompanyID)
	assert.False(t, actor.Superuser)
	assert.True(t, actor.HasRole(userdomain.RoleCompanyAdmin))

	// Refresh tokens cannot authenticate requests.
	_, err = svc.Authenticate(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = svc.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
