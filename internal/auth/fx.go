package auth

import (
	"github.com/MaverickDev-J/hrm/internal/auth/service"
	"github.com/MaverickDev-J/hrm/internal/auth/token"
	"github.com/MaverickDev-J/hrm/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("auth",
	fx.Provide(
		newIssuer,
		service.New,
	),
)

func newIssuer(cfg config.Config) *token.Issuer {
	return token.NewIssuer(cfg.AuthJWTSecret, cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry)
}
