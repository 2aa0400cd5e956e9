package seed

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/MaverickDev-J/hrm/internal/auth/password"
	userdomain "github.com/MaverickDev-J/hrm/internal/user/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

const (
	defaultAdminEmail    = "admin@hrm.local"
	defaultAdminPassword = "changeme"
	defaultAdminName     = "Platform Admin"
)

// EnsureSuperAdmin seeds the bootstrap superuser so a fresh install is
// operable. Runs once; an existing superuser short-circuits.
func EnsureSuperAdmin(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	email := strings.ToLower(strings.TrimSpace(os.Getenv("SUPERADMIN_EMAIL")))
	if email == "" {
		email = defaultAdminEmail
	}
	plaintext := os.Getenv("SUPERADMIN_PASSWORD")
	if plaintext == "" {
		plaintext = defaultAdminPassword
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&userdomain.User{}).Where("is_superuser = ?", true).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		hash, err := password.Hash(plaintext)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		admin := userdomain.User{
			ID:           node.Generate(),
			Email:        email,
			PasswordHash: hash,
			FullName:     defaultAdminName,
			IsActive:     true,
			IsSuperuser:  true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Omit("Roles").Create(&admin).Error; err != nil {
			return err
		}

		role := userdomain.Role{
			ID:        node.Generate(),
			Name:      userdomain.RoleSuperAdmin,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Where("name = ? AND company_id IS NULL", userdomain.RoleSuperAdmin).
			FirstOrCreate(&role).Error; err != nil {
			return err
		}

		return tx.Exec(
			"INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)",
			admin.ID, role.ID,
		).Error
	})
}
