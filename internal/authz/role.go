package authz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusdesk/campusdesk/internal/db/models"
)

// RoleInput carries the fields of a new role.
type RoleInput struct {
	Name         string
	Description  string
	IsSystemRole bool
	IsActive     bool
}

// RolePatch carries an update of a role. Nil fields are left unchanged.
// IsSystemRole is accepted only when it equals the stored flag.
type RolePatch struct {
	Name         *string
	Description  *string
	IsActive     *bool
	IsSystemRole *bool
}

// ListRoles returns every role ordered by name.
func (s *Service) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role

	err := s.read(ctx, func(db *gorm.DB) error {
		return db.Order("role_name").Find(&roles).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	return roles, nil
}

// GetRole returns the role with the given id.
func (s *Service) GetRole(ctx context.Context, id string) (*models.Role, error) {
	var role models.Role

	err := s.read(ctx, func(db *gorm.DB) error {
		return notFound(db.Where("id = ?", id).First(&role).Error, ErrRoleNotFound)
	})
	if err != nil {
		return nil, err
	}

	return &role, nil
}

// RoleByName returns the role with the given name, honouring the configured case sensitivity.
func (s *Service) RoleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role

	key := s.nameKey(strings.TrimSpace(name))

	err := s.read(ctx, func(db *gorm.DB) error {
		return notFound(db.Where(s.nameEquals("role_name"), key).First(&role).Error, ErrRoleNotFound)
	})
	if err != nil {
		return nil, err
	}

	return &role, nil
}

// CreateRole creates a role. The system flag is fixed from here on.
func (s *Service) CreateRole(ctx context.Context, in RoleInput) (*models.Role, error) {
	name, err := roleName(in.Name)
	if err != nil {
		return nil, err
	}

	role := models.Role{
		ID:           uuid.NewString(),
		Name:         name,
		Description:  strings.TrimSpace(in.Description),
		IsSystemRole: in.IsSystemRole,
		IsActive:     in.IsActive,
	}

	err = s.write(ctx, func(tx *gorm.DB) error {
		if err := s.ensureRoleNameFree(tx, name, ""); err != nil {
			return err
		}

		return tx.Create(&role).Error
	})
	if err != nil {
		return nil, roleNameConflict(err)
	}

	return &role, nil
}

// UpdateRole applies patch to the role with the given id.
func (s *Service) UpdateRole(ctx context.Context, id string, patch RolePatch) (*models.Role, error) {
	var role models.Role

	err := s.write(ctx, func(tx *gorm.DB) error {
		if err := forUpdate(tx).Where("id = ?", id).First(&role).Error; err != nil {
			return notFound(err, ErrRoleNotFound)
		}

		if patch.IsSystemRole != nil && *patch.IsSystemRole != role.IsSystemRole {
			return ErrSystemRoleFlag
		}

		updates := make(map[string]any)

		if patch.Name != nil {
			name, err := roleName(*patch.Name)
			if err != nil {
				return err
			}

			if name != role.Name {
				if err := s.ensureRoleNameFree(tx, name, role.ID); err != nil {
					return err
				}

				updates["role_name"] = name
			}
		}

		if patch.Description != nil {
			updates["description"] = strings.TrimSpace(*patch.Description)
		}

		if patch.IsActive != nil {
			updates["is_active"] = *patch.IsActive
		}

		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&role).Updates(updates).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", id).First(&role).Error
	})
	if err != nil {
		return nil, roleNameConflict(err)
	}

	return &role, nil
}

// SetRoleActive switches a role on or off without touching its bindings or assignments.
func (s *Service) SetRoleActive(ctx context.Context, id string, active bool) (*models.Role, error) {
	return s.UpdateRole(ctx, id, RolePatch{IsActive: &active})
}

// DeleteRole removes a custom role together with its bindings and assignments.
func (s *Service) DeleteRole(ctx context.Context, id string) error {
	return s.write(ctx, func(tx *gorm.DB) error {
		var role models.Role
		if err := forUpdate(tx).Where("id = ?", id).First(&role).Error; err != nil {
			return notFound(err, ErrRoleNotFound)
		}

		if role.IsSystemRole {
			return ErrSystemRoleDelete
		}

		if err := tx.Where("role_id = ?", id).Delete(&models.RoleFeature{}).Error; err != nil {
			return fmt.Errorf("failed to delete bindings of role %s: %w", role.Name, err)
		}

		if err := tx.Where("role_id = ?", id).Delete(&models.UserRoleAssignment{}).Error; err != nil {
			return fmt.Errorf("failed to delete assignments of role %s: %w", role.Name, err)
		}

		return tx.Delete(&role).Error
	})
}

// ensureRoleNameFree fails when a role other than exceptID already uses name.
func (s *Service) ensureRoleNameFree(tx *gorm.DB, name, exceptID string) error {
	q := tx.Model(&models.Role{}).Where(s.nameEquals("role_name"), s.nameKey(name))
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return ErrRoleNameTaken
	}

	return nil
}

func roleName(raw string) (string, error) {
	name := strings.TrimSpace(raw)

	switch {
	case name == "":
		return "", ErrRoleNameEmpty
	case len(name) > MaxNameLength:
		return "", ErrRoleNameTooLong
	default:
		return name, nil
	}
}

func roleNameConflict(err error) error {
	if errors.Is(err, ErrConflict) {
		return ErrRoleNameTaken
	}

	return err
}
