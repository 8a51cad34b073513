package authz

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/campusdesk/campusdesk/internal/db/models"
)

// RoleNameLowerIndex is the unique index on LOWER(role_name) backing case-insensitive role names.
const RoleNameLowerIndex = "idx_roles_role_name_lower"

// EnsureSchema creates the indexes gorm tags cannot express. With case-insensitive role
// names it adds a unique index on LOWER(role_name) so concurrent creates of "Editor" and
// "editor" can not both commit. MySQL is skipped: its default collation already compares
// the plain unique index case-insensitively.
func (s *Service) EnsureSchema(ctx context.Context) error {
	if s.opts.CaseSensitiveRoleNames || s.db.Dialector.Name() == "mysql" {
		return nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	db := s.db.WithContext(ctx)

	if db.Migrator().HasIndex(&models.Role{}, RoleNameLowerIndex) {
		return nil
	}

	stmt := fmt.Sprintf("CREATE UNIQUE INDEX %s ON roles (LOWER(role_name))", RoleNameLowerIndex)
	if err := db.Exec(stmt).Error; err != nil {
		return classify(fmt.Errorf("failed to create %s: %w", RoleNameLowerIndex, err))
	}

	log.Info().Str("index", RoleNameLowerIndex).Msg("role name index created")

	return nil
}
