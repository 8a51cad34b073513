package daemon

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/campusdesk/campusdesk/internal/auth"
	"github.com/campusdesk/campusdesk/internal/authz"
	"github.com/campusdesk/campusdesk/internal/config"
	"github.com/campusdesk/campusdesk/internal/db/models"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminEmail    = "admin@localhost"
	defaultAdminPassword = "changeme"
)

// Seed ensures the role name index, the feature catalog and the system roles exist. When the users table
// is empty it also creates the bootstrap administrator holding the Admin role.
func Seed(ctx context.Context, cfg *config.Config, db *gorm.DB, svc *authz.Service) error {
	if err := svc.EnsureSchema(ctx); err != nil {
		return err
	}

	if err := svc.EnsureCatalog(ctx); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}

	if count > 0 {
		return nil
	}

	in := auth.NewUser{
		Username: cfg.Seed.AdminUsername,
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
	}

	if in.Username == "" {
		in.Username = defaultAdminUsername
	}

	if in.Email == "" {
		in.Email = defaultAdminEmail
	}

	if in.Password == "" {
		in.Password = defaultAdminPassword
	}

	provider, err := auth.NewLocalProvider(db)
	if err != nil {
		return err
	}

	admin, err := provider.CreateUser(ctx, in)
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	role, err := svc.RoleByName(ctx, authz.RoleAdmin)
	if err != nil {
		return err
	}

	if _, err = svc.AssignRole(ctx, admin.ID, role.ID, authz.AssignOptions{}); err != nil {
		return fmt.Errorf("failed to assign admin role: %w", err)
	}

	if in.Password == defaultAdminPassword {
		log.Warn().Str("username", in.Username).Msg("bootstrap admin uses the default password, change it")
	}

	log.Info().Str("username", in.Username).Msg("bootstrap admin created")

	return nil
}
