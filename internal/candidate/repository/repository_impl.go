package repository

import (
	"context"
	"errors"
	"time"

	"github.com/MaverickDev-J/hrm/internal/candidate/domain"
	"github.com/MaverickDev-J/hrm/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, tx *gorm.DB, candidate *domain.Candidate) error {
	return tx.WithContext(ctx).Create(candidate).Error
}

func (r *repo) Update(ctx context.Context, tx *gorm.DB, candidate *domain.Candidate) error {
	return tx.WithContext(ctx).Save(candidate).Error
}

func (r *repo) Delete(ctx context.Context, tx *gorm.DB, id snowflake.ID) error {
	return tx.WithContext(ctx).Delete(&domain.Candidate{}, "id = ?", id).Error
}

func (r *repo) FindByID(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*domain.Candidate, error) {
	var candidate domain.Candidate
	err := tx.WithContext(ctx).Where("id = ?", id).First(&candidate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &candidate, nil
}

func (r *repo) FindByIDs(ctx context.Context, tx *gorm.DB, companyID, clientID snowflake.ID, ids []snowflake.ID) ([]domain.Candidate, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var candidates []domain.Candidate
	err := tx.WithContext(ctx).
		Where("company_id = ? AND client_id = ? AND id IN ?", companyID, clientID, ids).
		Order("created_at ASC, id ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

func (r *repo) ListByClient(ctx context.Context, tx *gorm.DB, companyID, clientID snowflake.ID, p pagination.Pagination) ([]*domain.Candidate, error) {
	query := tx.WithContext(ctx).
		Model(&domain.Candidate{}).
		Where("company_id = ? AND client_id = ?", companyID, clientID)

	if p.PageToken != "" {
		cursor, err := pagination.DecodeCursor(p.PageToken)
		if err == nil {
			if ts, terr := time.Parse(time.RFC3339Nano, cursor.CreatedAt); terr == nil {
				// The id tie-breaker keeps rows sharing a timestamp from
				// being skipped across page boundaries.
				if id, perr := snowflake.ParseString(cursor.ID); perr == nil && id != 0 {
					query = query.Where("created_at > ? OR (created_at = ? AND id > ?)", ts, ts, id)
				} else {
					query = query.Where("created_at > ?", ts)
				}
			}
		}
	}

	var candidates []*domain.Candidate
	err := query.Order("created_at ASC, id ASC").
		Limit(p.PageSize + 1).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}
	return candidates, nil
}
