package token

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuePairAndParse(t *testing.T) {
	issuer := NewIssuer("test-secret", 30*time.Minute, 7*24*time.Hour)
	companyID := snowflake.ID(42)

	pair, err := issuer.IssuePair(snowflake.ID(100), &companyID, false, []string{"company_admin"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", pair.TokenType)
	assert.Equal(t, int64(1800), pair.ExpiresIn)

	claims, err := issuer.Parse(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, TypeAccess, claims.TokenType)
	assert.Equal(t, "100", claims.Subject)
	assert.Equal(t, "42", claims.CompanyID)
	assert.Equal(t, []string{"company_admin"}, claims.Roles)
	assert.False(t, claims.Superuser)

	refresh, err := issuer.Parse(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, TypeRefresh, refresh.TokenType)
	// Refresh tokens carry identity only, no tenant claims.
	assert.Empty(t, refresh.CompanyID)
	assert.Empty(t, refresh.Roles)
}

func TestIssuePairSuperuser(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Minute, time.Hour)

	pair, err := issuer.IssuePair(snowflake.ID(7), nil, true, []string{"superadmin"})
	require.NoError(t, err)

	claims, err := issuer.Parse(pair.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.Superuser)
	assert.Empty(t, claims.CompanyID)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer := NewIssuer("secret-a", time.Minute, time.Hour)
	other := NewIssuer("secret-b", time.Minute, time.Hour)

	pair, err := issuer.IssuePair(snowflake.ID(1), nil, false, nil)
	require.NoError(t, err)

	_, err = other.Parse(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	issuer := NewIssuer("secret", -time.Minute, time.Hour)

	pair, err := issuer.IssuePair(snowflake.ID(1), nil, false, nil)
	require.NoError(t, err)

	_, err = issuer.Parse(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
