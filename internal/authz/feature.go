package authz

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusdesk/campusdesk/internal/db/models"
)

// Uncategorized is the group of features without a category.
const Uncategorized = "Uncategorized"

// FeatureInput carries the fields of a new feature.
type FeatureInput struct {
	Name        string
	Category    string
	Description string
}

// ListFeatures returns every feature ordered by category, then name.
func (s *Service) ListFeatures(ctx context.Context) ([]models.Feature, error) {
	var features []models.Feature

	err := s.read(ctx, func(db *gorm.DB) error {
		return db.Order("category, name").Find(&features).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list features: %w", err)
	}

	return features, nil
}

// GetFeature returns the feature with the given id.
func (s *Service) GetFeature(ctx context.Context, id string) (*models.Feature, error) {
	var feature models.Feature

	err := s.read(ctx, func(db *gorm.DB) error {
		return notFound(db.Where("id = ?", id).First(&feature).Error, ErrFeatureNotFound)
	})
	if err != nil {
		return nil, err
	}

	return &feature, nil
}

// FeatureByName returns the feature with the given catalog name.
func (s *Service) FeatureByName(ctx context.Context, name string) (*models.Feature, error) {
	var feature models.Feature

	err := s.read(ctx, func(db *gorm.DB) error {
		return notFound(db.Where("name = ?", strings.TrimSpace(name)).First(&feature).Error, ErrFeatureNotFound)
	})
	if err != nil {
		return nil, err
	}

	return &feature, nil
}

// CreateFeature registers a new feature.
func (s *Service) CreateFeature(ctx context.Context, in FeatureInput) (*models.Feature, error) {
	name, err := featureName(in.Name)
	if err != nil {
		return nil, err
	}

	feature := models.Feature{
		ID:          uuid.NewString(),
		Name:        name,
		Category:    strings.TrimSpace(in.Category),
		Description: strings.TrimSpace(in.Description),
	}

	err = s.write(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Feature{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return ErrFeatureNameTaken
		}

		return tx.Create(&feature).Error
	})
	if err != nil {
		return nil, featureNameConflict(err)
	}

	return &feature, nil
}

// DeleteFeature removes a feature together with every role binding that grants it.
func (s *Service) DeleteFeature(ctx context.Context, id string) error {
	return s.write(ctx, func(tx *gorm.DB) error {
		var feature models.Feature
		if err := tx.Where("id = ?", id).First(&feature).Error; err != nil {
			return notFound(err, ErrFeatureNotFound)
		}

		if err := tx.Where("feature_id = ?", id).Delete(&models.RoleFeature{}).Error; err != nil {
			return fmt.Errorf("failed to delete bindings of feature %s: %w", feature.Name, err)
		}

		return tx.Delete(&feature).Error
	})
}

// GroupByCategory partitions features by category. Blank categories go to Uncategorized.
func GroupByCategory(features []models.Feature) map[string][]models.Feature {
	grouped := make(map[string][]models.Feature)

	for _, f := range features {
		category := strings.TrimSpace(f.Category)
		if category == "" {
			category = Uncategorized
		}

		grouped[category] = append(grouped[category], f)
	}

	return grouped
}

// Categories returns the sorted keys of a grouping.
func Categories(grouped map[string][]models.Feature) []string {
	keys := make([]string, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

func featureName(raw string) (string, error) {
	name := strings.TrimSpace(raw)

	switch {
	case name == "":
		return "", ErrFeatureNameEmpty
	case len(name) > MaxNameLength:
		return "", ErrFeatureNameTooLong
	default:
		return name, nil
	}
}

// featureNameConflict reports a lost insert race on the unique name as a validation error.
func featureNameConflict(err error) error {
	if errors.Is(err, ErrConflict) {
		return ErrFeatureNameTaken
	}

	return err
}
