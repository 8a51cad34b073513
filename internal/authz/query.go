package authz

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/campusdesk/campusdesk/internal/db/models"
)

// FeatureSet is the set of features a user holds at one moment.
type FeatureSet struct {
	byID   map[string]models.Feature
	byName map[string]string
}

func newFeatureSet(features []models.Feature) FeatureSet {
	set := FeatureSet{
		byID:   make(map[string]models.Feature, len(features)),
		byName: make(map[string]string, len(features)),
	}

	for _, f := range features {
		set.byID[f.ID] = f
		set.byName[f.Name] = f.ID
	}

	return set
}

// Has reports whether the set holds the feature with the given id.
func (fs FeatureSet) Has(featureID string) bool {
	_, ok := fs.byID[featureID]
	return ok
}

// HasNamed reports whether the set holds the feature with the given catalog name.
func (fs FeatureSet) HasNamed(name string) bool {
	_, ok := fs.byName[name]
	return ok
}

// Any reports whether the set holds at least one of featureIDs. An empty list holds nothing.
func (fs FeatureSet) Any(featureIDs []string) bool {
	for _, id := range featureIDs {
		if fs.Has(id) {
			return true
		}
	}

	return false
}

// All reports whether the set holds every one of featureIDs. An empty list is always held.
func (fs FeatureSet) All(featureIDs []string) bool {
	for _, id := range featureIDs {
		if !fs.Has(id) {
			return false
		}
	}

	return true
}

// Names returns the catalog names in the set.
func (fs FeatureSet) Names() []string {
	names := make([]string, 0, len(fs.byName))
	for name := range fs.byName {
		names = append(names, name)
	}

	return names
}

// Len returns the number of features in the set.
func (fs FeatureSet) Len() int {
	return len(fs.byID)
}

// UserFeatures returns the features a user holds: those bound to an active role that the user
// holds through an active, unexpired assignment. It reads the store in a single query.
func (s *Service) UserFeatures(ctx context.Context, userID string) (FeatureSet, error) {
	key := "features:" + userID

	if s.snapshot != nil {
		if cached, ok := s.snapshot.Get(key); ok {
			return cached.(FeatureSet), nil //nolint:forcetypeassert
		}
	}

	var features []models.Feature

	now := s.opts.Now().UTC()

	err := s.read(ctx, func(db *gorm.DB) error {
		return db.Table("features").
			Select("DISTINCT features.*").
			Joins("JOIN role_features ON role_features.feature_id = features.id").
			Joins("JOIN roles ON roles.id = role_features.role_id").
			Joins("JOIN user_role_assignments a ON a.role_id = roles.id").
			Where("a.user_id = ? AND a.is_active = ? AND roles.is_active = ?", userID, true, true).
			Where("a.expires_at IS NULL OR a.expires_at > ?", now).
			Find(&features).Error
	})
	if err != nil {
		return FeatureSet{}, fmt.Errorf("failed to get features of user: %w", err)
	}

	set := newFeatureSet(features)

	if s.snapshot != nil {
		s.snapshot.SetDefault(key, set)
	}

	return set, nil
}

// UserHasFeature reports whether the user holds the feature with the given id.
func (s *Service) UserHasFeature(ctx context.Context, userID, featureID string) (bool, error) {
	set, err := s.UserFeatures(ctx, userID)
	granted := err == nil && set.Has(featureID)

	countDecision("feature", granted, err)

	return granted, err
}

// UserHasFeatureNamed reports whether the user holds the feature with the given catalog name.
func (s *Service) UserHasFeatureNamed(ctx context.Context, userID, name string) (bool, error) {
	set, err := s.UserFeatures(ctx, userID)
	granted := err == nil && set.HasNamed(name)

	countDecision("named", granted, err)

	return granted, err
}

// UserHasAnyFeature reports whether the user holds at least one of featureIDs.
func (s *Service) UserHasAnyFeature(ctx context.Context, userID string, featureIDs []string) (bool, error) {
	if len(featureIDs) == 0 {
		countDecision("any", false, nil)
		return false, nil
	}

	set, err := s.UserFeatures(ctx, userID)
	granted := err == nil && set.Any(featureIDs)

	countDecision("any", granted, err)

	return granted, err
}

// UserHasAllFeatures reports whether the user holds every one of featureIDs.
func (s *Service) UserHasAllFeatures(ctx context.Context, userID string, featureIDs []string) (bool, error) {
	if len(featureIDs) == 0 {
		countDecision("all", true, nil)
		return true, nil
	}

	set, err := s.UserFeatures(ctx, userID)
	granted := err == nil && set.All(featureIDs)

	countDecision("all", granted, err)

	return granted, err
}
