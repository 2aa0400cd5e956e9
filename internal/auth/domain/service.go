package domain

import (
	"context"
	"errors"

	"github.com/MaverickDev-J/hrm/internal/auth/token"
	"github.com/MaverickDev-J/hrm/internal/tenantctx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInactiveUser       = errors.New("inactive_user")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrTooManyAttempts    = errors.New("too_many_attempts")
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type Service interface {
	// Login verifies credentials and issues a token pair.
	Login(ctx context.Context, req LoginRequest) (token.Pair, error)

	// Refresh exchanges a valid refresh token for a new pair.
	Refresh(ctx context.Context, req RefreshRequest) (token.Pair, error)

	// Authenticate resolves a bearer access token into an actor.
	Authenticate(ctx context.Context, accessToken string) (tenantctx.Actor, error)
}
