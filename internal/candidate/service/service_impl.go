package service

import (
	"context"
	"strings"
	"time"

	"github.com/MaverickDev-J/hrm/internal/candidate/domain"
	clientdomain "github.com/MaverickDev-J/hrm/internal/client/domain"
	"github.com/MaverickDev-J/hrm/internal/tenantctx"
	"github.com/MaverickDev-J/hrm/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Clients clientdomain.Repository
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	clients clientdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("candidate.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		clients: p.Clients,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCandidateRequest) (domain.Candidate, error) {
	companyID, ok := tenantctx.CompanyScope(ctx)
	if !ok {
		return domain.Candidate{}, domain.ErrInvalidCompany
	}

	clientID, err := s.resolveClient(ctx, companyID, req.ClientID)
	if err != nil {
		return domain.Candidate{}, err
	}

	payload, err := domain.NewPayload(req.Data)
	if err != nil {
		return domain.Candidate{}, err
	}

	now := time.Now().UTC()
	candidate := domain.Candidate{
		ID:        s.genID.Generate(),
		CompanyID: companyID,
		ClientID:  clientID,
		Data:      payload.Data(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &candidate); err != nil {
		return domain.Candidate{}, err
	}
	return candidate, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Candidate, error) {
	candidate, err := s.load(ctx, id)
	if err != nil {
		return domain.Candidate{}, err
	}
	return *candidate, nil
}

func (s *Service) ListByClient(ctx context.Context, req domain.ListCandidateRequest) (domain.ListCandidateResponse, error) {
	companyID, ok := tenantctx.CompanyScope(ctx)
	if !ok {
		return domain.ListCandidateResponse{}, domain.ErrInvalidCompany
	}

	clientID, err := s.resolveClient(ctx, companyID, req.ClientID)
	if err != nil {
		return domain.ListCandidateResponse{}, err
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	items, err := s.repo.ListByClient(ctx, s.db, companyID, clientID, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListCandidateResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(candidate *domain.Candidate) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        candidate.ID.String(),
			CreatedAt: candidate.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	candidates := make([]domain.Candidate, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		candidates = append(candidates, *item)
	}

	resp := domain.ListCandidateResponse{Candidates: candidates}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateCandidateRequest) (domain.Candidate, error) {
	candidate, err := s.load(ctx, req.ID)
	if err != nil {
		return domain.Candidate{}, err
	}

	payload, err := domain.NewPayload(req.Data)
	if err != nil {
		return domain.Candidate{}, err
	}

	candidate.Data = payload.Data()
	candidate.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, candidate); err != nil {
		return domain.Candidate{}, err
	}
	return *candidate, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	candidate, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, candidate.ID)
}

func (s *Service) load(ctx context.Context, id string) (*domain.Candidate, error) {
	candidateID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || candidateID == 0 {
		return nil, domain.ErrInvalidID
	}

	candidate, err := s.repo.FindByID(ctx, s.db, candidateID)
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		return nil, domain.ErrNotFound
	}

	if !tenantctx.IsSuperuser(ctx) {
		companyID, ok := tenantctx.CompanyScope(ctx)
		if !ok || candidate.CompanyID != companyID {
			return nil, domain.ErrNotFound
		}
	}
	return candidate, nil
}

// resolveClient confirms the client exists inside the tenant before any
// ledger operation touches its rows.
func (s *Service) resolveClient(ctx context.Context, companyID snowflake.ID, id string) (snowflake.ID, error) {
	clientID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || clientID == 0 {
		return 0, clientdomain.ErrInvalidID
	}

	client, err := s.clients.FindByID(ctx, s.db, clientID)
	if err != nil {
		return 0, err
	}
	if client == nil || client.CompanyID != companyID {
		return 0, clientdomain.ErrNotFound
	}
	return clientID, nil
}
