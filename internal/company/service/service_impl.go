package service

import (
	"context"
	"strings"
	"time"

	"github.com/MaverickDev-J/hrm/internal/company/domain"
	"github.com/MaverickDev-J/hrm/internal/tenantctx"
	"github.com/MaverickDev-J/hrm/pkg/db"
	"github.com/MaverickDev-J/hrm/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
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
		log:   p.Log.Named("company.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCompanyRequest) (domain.Company, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Company{}, domain.ErrInvalidName
	}

	subdomain := slug.Make(strings.TrimSpace(req.Subdomain))
	if subdomain == "" {
		return domain.Company{}, domain.ErrInvalidSubdomain
	}

	existing, err := s.repo.FindBySubdomain(ctx, s.db, subdomain)
	if err != nil {
		return domain.Company{}, err
	}
	if existing != nil {
		return domain.Company{}, domain.ErrSubdomainTaken
	}

	now := time.Now().UTC()
	company := domain.Company{
		ID:        s.genID.Generate(),
		Name:      name,
		Subdomain: subdomain,
		Tagline:   strings.TrimSpace(req.Tagline),
		Address:   strings.TrimSpace(req.Address),
		City:      strings.TrimSpace(req.City),
		State:     strings.TrimSpace(req.State),
		Pincode:   strings.TrimSpace(req.Pincode),
		PAN:       strings.ToUpper(strings.TrimSpace(req.PAN)),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &company); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Company{}, domain.ErrSubdomainTaken
		}
		return domain.Company{}, err
	}

	s.log.Info("company created",
		zap.String("company_id", company.ID.String()),
		zap.String("subdomain", company.Subdomain),
	)
	return company, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Company, error) {
	companyID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || companyID == 0 {
		return domain.Company{}, domain.ErrInvalidID
	}
	if !s.canAccess(ctx, companyID) {
		return domain.Company{}, domain.ErrNotFound
	}

	company, err := s.repo.FindByID(ctx, s.db, companyID)
	if err != nil {
		return domain.Company{}, err
	}
	if company == nil {
		return domain.Company{}, domain.ErrNotFound
	}
	return *company, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCompanyRequest) (domain.ListCompanyResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListCompanyResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(company *domain.Company) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        company.ID.String(),
			CreatedAt: company.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	companies := make([]domain.Company, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		companies = append(companies, *item)
	}

	resp := domain.ListCompanyResponse{Companies: companies}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateCompanyRequest) (domain.Company, error) {
	company, err := s.GetByID(ctx, req.ID)
	if err != nil {
		return domain.Company{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Company{}, domain.ErrInvalidName
		}
		company.Name = name
	}
	applyString(&company.Tagline, req.Tagline)
	applyString(&company.Address, req.Address)
	applyString(&company.City, req.City)
	applyString(&company.State, req.State)
	applyString(&company.Pincode, req.Pincode)
	if req.PAN != nil {
		company.PAN = strings.ToUpper(strings.TrimSpace(*req.PAN))
	}
	applyString(&company.BankName, req.BankName)
	applyString(&company.AccountHolder, req.AccountHolder)
	applyString(&company.AccountNumber, req.AccountNumber)
	if req.IFSCCode != nil {
		company.IFSCCode = strings.ToUpper(strings.TrimSpace(*req.IFSCCode))
	}
	if req.IsActive != nil {
		company.IsActive = *req.IsActive
	}
	company.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, &company); err != nil {
		return domain.Company{}, err
	}
	return company, nil
}

func (s *Service) SetBrandingImage(ctx context.Context, id string, kind domain.BrandingKind, locator string) (domain.Company, error) {
	company, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Company{}, err
	}

	switch kind {
	case domain.BrandingLogo:
		company.LogoPath = locator
	case domain.BrandingBanner:
		company.BannerPath = locator
	case domain.BrandingSignature:
		company.SignaturePath = locator
	case domain.BrandingStamp:
		company.StampPath = locator
	default:
		return domain.Company{}, domain.ErrInvalidBrandingKind
	}
	company.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, &company); err != nil {
		return domain.Company{}, err
	}
	return company, nil
}

// canAccess hides other tenants' companies from non-superusers.
func (s *Service) canAccess(ctx context.Context, id snowflake.ID) bool {
	if tenantctx.IsSuperuser(ctx) {
		return true
	}
	companyID, ok := tenantctx.CompanyScope(ctx)
	return ok && companyID == id
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
