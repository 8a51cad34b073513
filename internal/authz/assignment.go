package authz

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campusdesk/campusdesk/internal/db/models"
)

// AssignOptions tunes AssignRole.
type AssignOptions struct {
	// ExpiresAt ends the assignment at the given time. Nil keeps it until removed.
	ExpiresAt *time.Time
}

// ListAssignments returns every assignment, oldest first.
func (s *Service) ListAssignments(ctx context.Context) ([]models.UserRoleAssignment, error) {
	var assignments []models.UserRoleAssignment

	err := s.read(ctx, func(db *gorm.DB) error {
		return db.Order("assigned_at, id").Find(&assignments).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	return assignments, nil
}

// AssignmentsForUser returns the assignments of one user, active or not.
func (s *Service) AssignmentsForUser(ctx context.Context, userID string) ([]models.UserRoleAssignment, error) {
	var assignments []models.UserRoleAssignment

	err := s.read(ctx, func(db *gorm.DB) error {
		return db.Where("user_id = ?", userID).Order("assigned_at, id").Find(&assignments).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments of user: %w", err)
	}

	return assignments, nil
}

// AssignRole gives a role to a user. An existing assignment for the same pair is
// reactivated and its expiry replaced; there is never more than one row per pair.
func (s *Service) AssignRole(
	ctx context.Context,
	userID, roleID string,
	opts AssignOptions,
) (*models.UserRoleAssignment, error) {
	if userID == "" {
		return nil, ErrUserIDEmpty
	}

	now := s.opts.Now().UTC()

	var expiresAt *time.Time

	if opts.ExpiresAt != nil {
		if !opts.ExpiresAt.After(now) {
			return nil, ErrExpiryInPast
		}

		utc := opts.ExpiresAt.UTC()
		expiresAt = &utc
	}

	lookupCtx, cancel := s.withTimeout(ctx)
	_, err := s.directory.LookupUser(lookupCtx, userID)

	cancel()

	if err != nil {
		return nil, classify(err)
	}

	var assignment models.UserRoleAssignment

	err = s.write(ctx, func(tx *gorm.DB) error {
		if err := lockRole(tx, roleID); err != nil {
			return err
		}

		row := models.UserRoleAssignment{
			ID:         uuid.NewString(),
			UserID:     userID,
			RoleID:     roleID,
			AssignedAt: now,
			IsActive:   true,
			ExpiresAt:  expiresAt,
		}

		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "role_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"is_active":  true,
				"expires_at": expiresAt,
			}),
		}).Omit(clause.Associations).Create(&row).Error
		if err != nil {
			return err
		}

		return tx.Where("user_id = ? AND role_id = ?", userID, roleID).First(&assignment).Error
	})
	if err != nil {
		return nil, err
	}

	return &assignment, nil
}

// RemoveAssignment deletes the assignment of roleID to userID. A missing assignment is a no-op.
func (s *Service) RemoveAssignment(ctx context.Context, userID, roleID string) error {
	return s.write(ctx, func(tx *gorm.DB) error {
		return tx.Where("user_id = ? AND role_id = ?", userID, roleID).
			Delete(&models.UserRoleAssignment{}).Error
	})
}

// SetAssignmentActive soft-enables or soft-disables an assignment.
func (s *Service) SetAssignmentActive(ctx context.Context, id string, active bool) (*models.UserRoleAssignment, error) {
	var assignment models.UserRoleAssignment

	err := s.write(ctx, func(tx *gorm.DB) error {
		if err := forUpdate(tx).Where("id = ?", id).First(&assignment).Error; err != nil {
			return notFound(err, ErrAssignmentNotFound)
		}

		if err := tx.Model(&assignment).Update("is_active", active).Error; err != nil {
			return err
		}

		assignment.IsActive = active

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &assignment, nil
}

// RolesForUser returns the active roles a user holds through active, unexpired assignments.
func (s *Service) RolesForUser(ctx context.Context, userID string) ([]models.Role, error) {
	var roles []models.Role

	now := s.opts.Now().UTC()

	err := s.read(ctx, func(db *gorm.DB) error {
		return db.Table("roles").
			Select("DISTINCT roles.*").
			Joins("JOIN user_role_assignments a ON a.role_id = roles.id").
			Where("a.user_id = ? AND a.is_active = ? AND roles.is_active = ?", userID, true, true).
			Where("a.expires_at IS NULL OR a.expires_at > ?", now).
			Order("roles.role_name").
			Find(&roles).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get roles of user: %w", err)
	}

	return roles, nil
}
