package authz

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campusdesk/campusdesk/internal/db/models"
)

// FeaturesForRole returns the features bound to a role. Unknown roles have no features.
func (s *Service) FeaturesForRole(ctx context.Context, roleID string) ([]models.Feature, error) {
	var features []models.Feature

	err := s.read(ctx, func(db *gorm.DB) error {
		return db.Table("features").
			Select("features.*").
			Joins("JOIN role_features ON role_features.feature_id = features.id").
			Where("role_features.role_id = ?", roleID).
			Order("features.category, features.name").
			Find(&features).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get features of role: %w", err)
	}

	return features, nil
}

// AssignFeature grants a feature to a role. Granting it twice is a no-op.
func (s *Service) AssignFeature(ctx context.Context, roleID, featureID string) error {
	return s.write(ctx, func(tx *gorm.DB) error {
		if err := lockRole(tx, roleID); err != nil {
			return err
		}

		if err := featureExists(tx, featureID); err != nil {
			return err
		}

		return bind(tx, roleID, featureID)
	})
}

// RemoveFeature revokes a feature from a role. Revoking a missing binding is a no-op.
func (s *Service) RemoveFeature(ctx context.Context, roleID, featureID string) error {
	return s.write(ctx, func(tx *gorm.DB) error {
		return tx.Where("role_id = ? AND feature_id = ?", roleID, featureID).
			Delete(&models.RoleFeature{}).Error
	})
}

// ToggleFeature removes the binding when present and creates it otherwise.
// It reports whether the feature is bound afterwards.
func (s *Service) ToggleFeature(ctx context.Context, roleID, featureID string) (bool, error) {
	var bound bool

	err := s.write(ctx, func(tx *gorm.DB) error {
		if err := lockRole(tx, roleID); err != nil {
			return err
		}

		if err := featureExists(tx, featureID); err != nil {
			return err
		}

		res := tx.Where("role_id = ? AND feature_id = ?", roleID, featureID).Delete(&models.RoleFeature{})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected > 0 {
			bound = false
			return nil
		}

		bound = true

		return bind(tx, roleID, featureID)
	})

	return bound, err
}

// SetRoleFeatures replaces the features of a role with featureIDs in one transaction.
func (s *Service) SetRoleFeatures(ctx context.Context, roleID string, featureIDs []string) error {
	ids := dedupe(featureIDs)

	return s.write(ctx, func(tx *gorm.DB) error {
		if err := lockRole(tx, roleID); err != nil {
			return err
		}

		if len(ids) > 0 {
			var count int64
			if err := tx.Model(&models.Feature{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
				return err
			}

			if int(count) != len(ids) {
				return ErrFeatureNotFound
			}
		}

		if err := tx.Where("role_id = ?", roleID).Delete(&models.RoleFeature{}).Error; err != nil {
			return fmt.Errorf("failed to clear bindings: %w", err)
		}

		if len(ids) == 0 {
			return nil
		}

		bindings := make([]models.RoleFeature, 0, len(ids))
		for _, id := range ids {
			bindings = append(bindings, models.RoleFeature{RoleID: roleID, FeatureID: id})
		}

		return tx.Omit(clause.Associations).Create(&bindings).Error
	})
}

// lockRole loads the role row for update so concurrent writers on the same role run one after another.
func lockRole(tx *gorm.DB, roleID string) error {
	var role models.Role

	err := forUpdate(tx).Select("id").Where("id = ?", roleID).First(&role).Error

	return notFound(err, ErrRoleNotFound)
}

func featureExists(tx *gorm.DB, featureID string) error {
	var count int64
	if err := tx.Model(&models.Feature{}).Where("id = ?", featureID).Count(&count).Error; err != nil {
		return err
	}

	if count == 0 {
		return ErrFeatureNotFound
	}

	return nil
}

func bind(tx *gorm.DB, roleID, featureID string) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(&models.RoleFeature{RoleID: roleID, FeatureID: featureID}).Error
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}
