package repository

import (
	"context"
	"errors"
	"time"

	"github.com/MaverickDev-J/hrm/internal/invoice/domain"
	"github.com/MaverickDev-J/hrm/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, tx *gorm.DB, invoice *domain.Invoice) error {
	return tx.WithContext(ctx).Create(invoice).Error
}

func (r *repo) Update(ctx context.Context, tx *gorm.DB, invoice *domain.Invoice) error {
	return tx.WithContext(ctx).Save(invoice).Error
}

func (r *repo) Delete(ctx context.Context, tx *gorm.DB, id snowflake.ID) error {
	return tx.WithContext(ctx).Delete(&domain.Invoice{}, "id = ?", id).Error
}

func (r *repo) FindByID(ctx context.Context, tx *gorm.DB, id snowflake.ID, forUpdate bool) (*domain.Invoice, error) {
	query := tx.WithContext(ctx)
	// Row locks are a postgres feature; sqlite serializes writes anyway.
	if forUpdate && query.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var invoice domain.Invoice
	err := query.Where("id = ?", id).First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) NumberExists(ctx context.Context, tx *gorm.DB, companyID snowflake.ID, number string, excludeID snowflake.ID) (bool, error) {
	query := tx.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("company_id = ? AND invoice_number = ?", companyID, number)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) List(ctx context.Context, tx *gorm.DB, companyID snowflake.ID, filter domain.ListFilter, p pagination.Pagination) ([]*domain.Invoice, error) {
	query := tx.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("company_id = ?", companyID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ClientID != 0 {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.DateFrom != nil {
		query = query.Where("invoice_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("invoice_date <= ?", *filter.DateTo)
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

	var invoices []*domain.Invoice
	err := query.Order("created_at DESC, id DESC").
		Limit(p.PageSize + 1).
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) FindLatestByClient(ctx context.Context, tx *gorm.DB, companyID, clientID snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := tx.WithContext(ctx).
		Where("company_id = ? AND client_id = ?", companyID, clientID).
		Order("invoice_date DESC, id DESC").
		First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}
