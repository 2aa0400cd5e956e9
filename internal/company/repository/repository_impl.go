package repository

import (
	"context"
	"errors"
	"time"

	"github.com/MaverickDev-J/hrm/internal/company/domain"
	"github.com/MaverickDev-J/hrm/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, tx *gorm.DB, company *domain.Company) error {
	return tx.WithContext(ctx).Create(company).Error
}

func (r *repo) Update(ctx context.Context, tx *gorm.DB, company *domain.Company) error {
	return tx.WithContext(ctx).Save(company).Error
}

func (r *repo) FindByID(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*domain.Company, error) {
	var company domain.Company
	err := tx.WithContext(ctx).Where("id = ?", id).First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &company, nil
}

func (r *repo) FindBySubdomain(ctx context.Context, tx *gorm.DB, subdomain string) (*domain.Company, error) {
	var company domain.Company
	err := tx.WithContext(ctx).Where("subdomain = ?", subdomain).First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &company, nil
}

func (r *repo) List(ctx context.Context, tx *gorm.DB, p pagination.Pagination) ([]*domain.Company, error) {
	query := tx.WithContext(ctx).Model(&domain.Company{})

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

	var companies []*domain.Company
	err := query.Order("created_at DESC, id DESC").
		Limit(p.PageSize + 1).
		Find(&companies).Error
	if err != nil {
		return nil, err
	}
	return companies, nil
}
