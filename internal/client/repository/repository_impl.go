package repository

import (
	"context"
	"errors"
	"time"

	"github.com/MaverickDev-J/hrm/internal/client/domain"
	"github.com/MaverickDev-J/hrm/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, tx *gorm.DB, client *domain.Client) error {
	return tx.WithContext(ctx).Create(client).Error
}

func (r *repo) Update(ctx context.Context, tx *gorm.DB, client *domain.Client) error {
	return tx.WithContext(ctx).Save(client).Error
}

func (r *repo) FindByID(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*domain.Client, error) {
	var client domain.Client
	err := tx.WithContext(ctx).Where("id = ?", id).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &client, nil
}

func (r *repo) List(ctx context.Context, tx *gorm.DB, companyID snowflake.ID, filter domain.ListClientRequest, p pagination.Pagination) ([]*domain.Client, error) {
	query := tx.WithContext(ctx).
		Model(&domain.Client{}).
		Where("company_id = ?", companyID)

	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.SearchQuery != "" {
		query = query.Where("client_name LIKE ?", "%"+filter.SearchQuery+"%")
	}

	if p.PageToken != "" {
		cursor, err := pagination.DecodeCursor(p.PageToken)
		if err == nil {
			if ts, terr := time.Parse(time.RFC3339Nano, cursor.CreatedAt); terr == nil {
				// The id tie-breaker keeps rows sharing a timestamp from
				// being skipped across page boundaries.
				if id, perr := snowflake.ParseString(cursor.ID); perr == nil && id != 0 {
					query = query.Where("created_at < ? OR (created_at = ? AND id < ?)", ts, ts, id)
				} else {
					query = query.Where("created_at < ?", ts)
				}
			}
		}
	}

	var clients []*domain.Client
	err := query.Order("created_at DESC, id DESC").
		Limit(p.PageSize + 1).
		Find(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *repo) FindColumnConfig(ctx context.Context, tx *gorm.DB, clientID snowflake.ID) (*domain.ColumnConfig, error) {
	var config domain.ColumnConfig
	err := tx.WithContext(ctx).Where("client_id = ?", clientID).First(&config).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &config, nil
}

func (r *repo) SaveColumnConfig(ctx context.Context, tx *gorm.DB, config *domain.ColumnConfig) error {
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "client_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"columns", "updated_at"}),
	}).Create(config).Error
}
