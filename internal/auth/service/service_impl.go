package service

import (
	"context"
	"strings"
	"time"

	"github.com/MaverickDev-J/hrm/internal/auth/domain"
	"github.com/MaverickDev-J/hrm/internal/auth/password"
	"github.com/MaverickDev-J/hrm/internal/auth/token"
	"github.com/MaverickDev-J/hrm/internal/ratelimit"
	"github.com/MaverickDev-J/hrm/internal/tenantctx"
	userdomain "github.com/MaverickDev-J/hrm/internal/user/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Issuer  *token.Issuer
	Users   userdomain.Repository
	Limiter *ratelimit.TokenBucket `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	issuer  *token.Issuer
	users   userdomain.Repository
	limiter *ratelimit.TokenBucket
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("auth.service"),
		issuer:  p.Issuer,
		users:   p.Users,
		limiter: p.Limiter,
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (token.Pair, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, "login:"+email)
		if err != nil {
			s.log.Warn("rate limiter unavailable", zap.Error(err))
		} else if !allowed {
			return token.Pair{}, domain.ErrTooManyAttempts
		}
	}

	user, err := s.users.FindByEmail(ctx, s.db, email)
	if err != nil {
		return token.Pair{}, err
	}
	if user == nil {
		return token.Pair{}, domain.ErrInvalidCredentials
	}

	if !password.Verify(req.Password, user.PasswordHash) {
		return token.Pair{}, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return token.Pair{}, domain.ErrInactiveUser
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := s.users.Update(ctx, s.db, user); err != nil {
		s.log.Warn("failed to record last login", zap.Error(err))
	}

	pair, err := s.issuer.IssuePair(user.ID, user.CompanyID, user.IsSuperuser, user.RoleNames())
	if err != nil {
		return token.Pair{}, err
	}

	s.log.Info("user logged in", zap.String("user_id", user.ID.String()))
	return pair, nil
}

func (s *Service) Refresh(ctx context.Context, req domain.RefreshRequest) (token.Pair, error) {
	claims, err := s.issuer.Parse(req.RefreshToken)
	if err != nil || claims.TokenType != token.TypeRefresh {
		return token.Pair{}, domain.ErrInvalidToken
	}

	userID, err := snowflake.ParseString(claims.Subject)
	if err != nil {
		return token.Pair{}, domain.ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, s.db, userID)
	if err != nil {
		return token.Pair{}, err
	}
	if user == nil {
		return token.Pair{}, domain.ErrInvalidToken
	}
	if !user.IsActive {
		return token.Pair{}, domain.ErrInactiveUser
	}

	return s.issuer.IssuePair(user.ID, user.CompanyID, user.IsSuperuser, user.RoleNames())
}

func (s *Service) Authenticate(ctx context.Context, accessToken string) (tenantctx.Actor, error) {
	claims, err := s.issuer.Parse(accessToken)
	if err != nil || claims.TokenType != token.TypeAccess {
		return tenantctx.Actor{}, domain.ErrInvalidToken
	}

	userID, err := snowflake.ParseString(claims.Subject)
	if err != nil {
		return tenantctx.Actor{}, domain.ErrInvalidToken
	}

	actor := tenantctx.Actor{
		UserID:    userID,
		Superuser: claims.Superuser,
		Roles:     claims.Roles,
	}
	if claims.CompanyID != "" {
		companyID, err := snowflake.ParseString(claims.CompanyID)
		if err != nil {
			return tenantctx.Actor{}, domain.ErrInvalidToken
		}
		actor.CompanyID = companyID
	}
	return actor, nil
}
