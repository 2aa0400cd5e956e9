package service

import (
	"context"
	"strings"
	"time"

	"github.com/MaverickDev-J/hrm/internal/client/domain"
	"github.com/MaverickDev-J/hrm/internal/tenantctx"
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
		log:   p.Log.Named("client.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateClientRequest) (domain.Client, error) {
	companyID, ok := tenantctx.CompanyScope(ctx)
	if !ok {
		return domain.Client{}, domain.ErrInvalidCompany
	}

	name := strings.TrimSpace(req.ClientName)
	if name == "" {
		return domain.Client{}, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	client := domain.Client{
		ID:         s.genID.Generate(),
		CompanyID:  companyID,
		ClientName: name,
		Address:    strings.TrimSpace(req.Address),
		City:       strings.TrimSpace(req.City),
		State:      strings.TrimSpace(req.State),
		Pincode:    strings.TrimSpace(req.Pincode),
		GSTIN:      strings.ToUpper(strings.TrimSpace(req.GSTIN)),
		PAN:        strings.ToUpper(strings.TrimSpace(req.PAN)),
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Insert(ctx, s.db, &client); err != nil {
		return domain.Client{}, err
	}

	s.log.Info("client created",
		zap.String("client_id", client.ID.String()),
		zap.String("company_id", companyID.String()),
	)
	return client, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Client, error) {
	client, err := s.load(ctx, id)
	if err != nil {
		return domain.Client{}, err
	}
	return *client, nil
}

func (s *Service) List(ctx context.Context, req domain.ListClientRequest) (domain.ListClientResponse, error) {
	companyID, ok := tenantctx.CompanyScope(ctx)
	if !ok {
		return domain.ListClientResponse{}, domain.ErrInvalidCompany
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, companyID, req, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListClientResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(client *domain.Client) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        client.ID.String(),
			CreatedAt: client.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	clients := make([]domain.Client, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		clients = append(clients, *item)
	}

	resp := domain.ListClientResponse{Clients: clients}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateClientRequest) (domain.Client, error) {
	client, err := s.load(ctx, req.ID)
	if err != nil {
		return domain.Client{}, err
	}

	if req.ClientName != nil {
		name := strings.TrimSpace(*req.ClientName)
		if name == "" {
			return domain.Client{}, domain.ErrInvalidName
		}
		client.ClientName = name
	}
	applyString(&client.Address, req.Address)
	applyString(&client.City, req.City)
	applyString(&client.State, req.State)
	applyString(&client.Pincode, req.Pincode)
	if req.GSTIN != nil {
		client.GSTIN = strings.ToUpper(strings.TrimSpace(*req.GSTIN))
	}
	if req.PAN != nil {
		client.PAN = strings.ToUpper(strings.TrimSpace(*req.PAN))
	}
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}
	client.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, client); err != nil {
		return domain.Client{}, err
	}
	return *client, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	client, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !client.IsActive {
		return nil
	}

	client.IsActive = false
	client.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, s.db, client)
}

func (s *Service) GetColumnConfig(ctx context.Context, clientID string) (domain.ColumnConfig, error) {
	client, err := s.load(ctx, clientID)
	if err != nil {
		return domain.ColumnConfig{}, err
	}

	config, err := s.repo.FindColumnConfig(ctx, s.db, client.ID)
	if err != nil {
		return domain.ColumnConfig{}, err
	}
	if config == nil {
		return domain.ColumnConfig{}, domain.ErrNotFound
	}
	return *config, nil
}

func (s *Service) UpsertColumnConfig(ctx context.Context, req domain.UpsertColumnConfigRequest) (domain.ColumnConfig, error) {
	client, err := s.load(ctx, req.ClientID)
	if err != nil {
		return domain.ColumnConfig{}, err
	}

	columns, err := normalizeColumns(req.Columns)
	if err != nil {
		return domain.ColumnConfig{}, err
	}

	encoded, err := domain.EncodeColumns(columns)
	if err != nil {
		return domain.ColumnConfig{}, err
	}

	now := time.Now().UTC()
	config := domain.ColumnConfig{
		ID:        s.genID.Generate(),
		CompanyID: client.CompanyID,
		ClientID:  client.ID,
		Columns:   encoded,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.SaveColumnConfig(ctx, s.db, &config); err != nil {
		return domain.ColumnConfig{}, err
	}

	stored, err := s.repo.FindColumnConfig(ctx, s.db, client.ID)
	if err != nil {
		return domain.ColumnConfig{}, err
	}
	if stored == nil {
		return config, nil
	}
	return *stored, nil
}

// normalizeColumns validates the replacement column list and sorts it by
// the caller-supplied order, reassigning contiguous order values.
func normalizeColumns(columns []domain.ColumnDef) ([]domain.ColumnDef, error) {
	if len(columns) == 0 {
		return nil, domain.ErrNoColumns
	}

	seen := make(map[string]struct{}, len(columns))
	out := make([]domain.ColumnDef, 0, len(columns))
	gridded := 0
	for _, col := range columns {
		field := strings.TrimSpace(col.FieldName)
		if field == "" {
			return nil, domain.ErrInvalidColumn
		}
		key := strings.ToLower(field)
		if _, dup := seen[key]; dup {
			return nil, domain.ErrDuplicateColumn
		}
		seen[key] = struct{}{}

		// Serial synonyms are dropped at render time, so only the rest
		// occupy grid columns.
		if !domain.IsSerialField(field) {
			gridded++
			if gridded > domain.MaxColumns {
				return nil, domain.ErrTooManyColumns
			}
		}

		label := strings.TrimSpace(col.DisplayLabel)
		if label == "" {
			label = field
		}
		out = append(out, domain.ColumnDef{
			FieldName:    field,
			DisplayLabel: label,
			Width:        col.Width,
			IsRequired:   col.IsRequired,
			Order:        col.Order,
		})
	}

	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Order < out[j-1].Order; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	for i := range out {
		out[i].Order = i + 1
	}
	return out, nil
}

// load resolves a client id within the caller's tenant. Rows owned by
// other companies read as missing.
func (s *Service) load(ctx context.Context, id string) (*domain.Client, error) {
	clientID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || clientID == 0 {
		return nil, domain.ErrInvalidID
	}

	client, err := s.repo.FindByID(ctx, s.db, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}

	if !tenantctx.IsSuperuser(ctx) {
		companyID, ok := tenantctx.CompanyScope(ctx)
		if !ok || client.CompanyID != companyID {
			return nil, domain.ErrNotFound
		}
	}
	return client, nil
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
