package service

import (
	"context"
	"strings"
	"time"

	"github.com/MaverickDev-J/hrm/internal/auth/password"
	"github.com/MaverickDev-J/hrm/internal/tenantctx"
	"github.com/MaverickDev-J/hrm/internal/user/domain"
	"github.com/MaverickDev-J/hrm/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("user.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) CreateCompanyAdmin(ctx context.Context, req domain.CreateAdminRequest) (domain.User, error) {
	companyID, err := snowflake.ParseString(strings.TrimSpace(req.CompanyID))
	if err != nil || companyID == 0 {
		return domain.User{}, domain.ErrInvalidCompany
	}
	if exists, err := s.companyExists(ctx, companyID); err != nil {
		return domain.User{}, err
	} else if !exists {
		return domain.User{}, domain.ErrInvalidCompany
	}

	return s.createUser(ctx, req.Email, req.Password, req.FullName, companyID, domain.RoleCompanyAdmin)
}

func (s *Service) CreateEmployee(ctx context.Context, req domain.CreateEmployeeRequest) (domain.User, error) {
	companyID, ok := tenantctx.CompanyScope(ctx)
	if !ok {
		return domain.User{}, domain.ErrInvalidCompany
	}
	return s.createUser(ctx, req.Email, req.Password, req.FullName, companyID, domain.RoleEmployee)
}

func (s *Service) createUser(ctx context.Context, email, plaintext, fullName string, companyID snowflake.ID, roleName string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, domain.ErrInvalidEmail
	}
	if len(plaintext) < 8 {
		return domain.User{}, domain.ErrInvalidPassword
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return domain.User{}, domain.ErrInvalidName
	}

	existing, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return domain.User{}, err
	}
	if existing != nil {
		return domain.User{}, domain.ErrEmailTaken
	}

	hash, err := password.Hash(plaintext)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           s.genID.Generate(),
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		IsActive:     true,
		CompanyID:    &companyID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &user); err != nil {
			return err
		}
		role, err := s.repo.EnsureRole(ctx, tx, roleName, &companyID)
		if err != nil {
			return err
		}
		if err := s.repo.AssignRole(ctx, tx, user.ID, role.ID); err != nil {
			return err
		}
		user.Roles = []domain.Role{*role}
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	s.log.Info("user created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", roleName),
		zap.String("company_id", companyID.String()),
	)
	return user, nil
}

func (s *Service) List(ctx context.Context, req domain.ListUserRequest) (domain.ListUserResponse, error) {
	companyID, ok := tenantctx.CompanyScope(ctx)
	if !ok {
		return domain.ListUserResponse{}, domain.ErrInvalidCompany
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, companyID, domain.ListUserFilter{
		Role:     strings.TrimSpace(req.Role),
		IsActive: req.IsActive,
	}, pagination.Pagination{PageToken: req.PageToken, PageSize: pageSize})
	if err != nil {
		return domain.ListUserResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(user *domain.User) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        user.ID.String(),
			CreatedAt: user.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	users := make([]domain.User, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		users = append(users, *item)
	}

	resp := domain.ListUserResponse{Users: users}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.User, error) {
	userID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || userID == 0 {
		return domain.User{}, domain.ErrInvalidID
	}

	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil || !s.visible(ctx, user) {
		return domain.User{}, domain.ErrNotFound
	}
	return *user, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateUserRequest) (domain.User, error) {
	userID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || userID == 0 {
		return domain.User{}, domain.ErrInvalidID
	}

	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil || !s.visible(ctx, user) {
		return domain.User{}, domain.ErrNotFound
	}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return domain.User{}, domain.ErrInvalidName
		}
		user.FullName = name
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, user); err != nil {
		return domain.User{}, err
	}
	return *user, nil
}

// visible applies tenant scoping: cross-tenant rows look absent.
func (s *Service) visible(ctx context.Context, user *domain.User) bool {
	if tenantctx.IsSuperuser(ctx) {
		return true
	}
	companyID, ok := tenantctx.CompanyScope(ctx)
	if !ok || user.CompanyID == nil {
		return false
	}
	return *user.CompanyID == companyID
}

func (s *Service) companyExists(ctx context.Context, id snowflake.ID) (bool, error) {
	var found snowflake.ID
	err := s.db.WithContext(ctx).Raw(
		`SELECT id FROM companies WHERE id = ?`,
		id,
	).Scan(&found).Error
	if err != nil {
		return false, err
	}
	return found != 0, nil
}
