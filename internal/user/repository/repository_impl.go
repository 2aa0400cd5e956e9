package repository

import (
	"context"
	"strings"
	"time"

	"github.com/MaverickDev-J/hrm/internal/user/domain"
	"github.com/MaverickDev-J/hrm/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct {
	genID *snowflake.Node
}

func Provide(genID *snowflake.Node) domain.Repository {
	return &repo{genID: genID}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Omit("Roles").Create(user).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Omit("Roles").Save(user).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).Preload("Roles").Where("id = ?", id).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).Preload("Roles").Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListUserFilter, page pagination.Pagination) ([]*domain.User, error) {
	var users []*domain.User
	stmt := db.WithContext(ctx).
		Model(&domain.User{}).
		Preload("Roles").
		Where("company_id = ?", companyID)
	if filter.Role != "" {
		stmt = stmt.Where(
			"id IN (SELECT user_id FROM user_roles ur JOIN roles r ON r.id = ur.role_id WHERE r.name = ?)",
			filter.Role,
		)
	}
	if filter.IsActive != nil {
		stmt = stmt.Where("is_active = ?", *filter.IsActive)
	}
	if cursor, err := pagination.DecodeCursor(page.PageToken); err == nil && cursor != nil && cursor.CreatedAt != "" {
		if ts, parseErr := time.Parse(time.RFC3339Nano, cursor.CreatedAt); parseErr == nil {
			// The id tie-breaker keeps rows sharing a timestamp from
			// being skipped across page boundaries.
			if id, idErr := snowflake.ParseString(cursor.ID); idErr == nil && id != 0 {
				stmt = stmt.Where("created_at < ? OR (created_at = ? AND id < ?)", ts, ts, id)
			} else {
				stmt = stmt.Where("created_at < ?", ts)
			}
		}
	}
	err := stmt.
		Order("created_at desc, id desc").
		Limit(page.PageSize + 1).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repo) EnsureRole(ctx context.Context, db *gorm.DB, name string, companyID *snowflake.ID) (*domain.Role, error) {
	var role domain.Role
	stmt := db.WithContext(ctx).Where("name = ?", name)
	if companyID == nil {
		stmt = stmt.Where("company_id IS NULL")
	} else {
		stmt = stmt.Where("company_id = ?", *companyID)
	}
	err := stmt.First(&role).Error
	if err == nil {
		return &role, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	now := time.Now().UTC()
	role = domain.Role{
		ID:        r.genID.Generate(),
		Name:      name,
		CompanyID: companyID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.WithContext(ctx).Create(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *repo) AssignRole(ctx context.Context, db *gorm.DB, userID, roleID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)`,
		userID,
		roleID,
	).Error
}
