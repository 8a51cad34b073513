package authz

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdesk/campusdesk/internal/db/models"
)

func TestAssignFeature(t *testing.T) {
	svc, db, _ := setupService(t)
	ctx := context.Background()

	role := seedRole(t, svc, "Editor", false, true)
	feature := seedFeature(t, svc, "documents.edit", "Documents")

	testCases := []struct {
		name          string
		roleID        string
		featureID     string
		expectedError error
	}{
		{name: "unknown role", roleID: "missing", featureID: feature.ID, expectedError: ErrRoleNotFound},
		{name: "unknown feature", roleID: role.ID, featureID: "missing", expectedError: ErrFeatureNotFound},
		{name: "first assign", roleID: role.ID, featureID: feature.ID},
		{name: "second assign is a no-op", roleID: role.ID, featureID: feature.ID},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.AssignFeature(ctx, tc.roleID, tc.featureID)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.ErrorIs(t, err, ErrNotFound)

				return
			}

			require.NoError(t, err)
			assert.EqualValues(t, 1, countRows(t, db, &models.RoleFeature{},
				"role_id = ? AND feature_id = ?", role.ID, feature.ID))
		})
	}
}

func TestRemoveFeatureIsIdempotent(t *testing.T) {
	svc, db, _ := setupService(t)
	ctx := context.Background()

	role := seedRole(t, svc, "Editor", false, true)
	feature := seedFeature(t, svc, "documents.edit", "Documents")
	require.NoError(t, svc.AssignFeature(ctx, role.ID, feature.ID))

	require.NoError(t, svc.RemoveFeature(ctx, role.ID, feature.ID))
	require.NoError(t, svc.RemoveFeature(ctx, role.ID, feature.ID))
	require.NoError(t, svc.RemoveFeature(ctx, "missing", "missing"))

	assert.Zero(t, countRows(t, db, &models.RoleFeature{}, "role_id = ?", role.ID))
}

func TestToggleFeature(t *testing.T) {
	svc, db, _ := setupService(t)
	ctx := context.Background()

	role := seedRole(t, svc, "Editor", false, true)
	feature := seedFeature(t, svc, "documents.edit", "Documents")

	bound, err := svc.ToggleFeature(ctx, role.ID, feature.ID)
	require.NoError(t, err)
	assert.True(t, bound)
	assert.EqualValues(t, 1, countRows(t, db, &models.RoleFeature{}, "role_id = ?", role.ID))

	bound, err = svc.ToggleFeature(ctx, role.ID, feature.ID)
	require.NoError(t, err)
	assert.False(t, bound)
	assert.Zero(t, countRows(t, db, &models.RoleFeature{}, "role_id = ?", role.ID))

	_, err = svc.ToggleFeature(ctx, "missing", feature.ID)
	require.ErrorIs(t, err, ErrRoleNotFound)

	_, err = svc.ToggleFeature(ctx, role.ID, "missing")
	require.ErrorIs(t, err, ErrFeatureNotFound)
}

func TestToggleTwiceRestoresState(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	role := seedRole(t, svc, "Editor", false, true)
	bound := seedFeature(t, svc, "documents.view", "Documents")
	unbound := seedFeature(t, svc, "documents.edit", "Documents")
	require.NoError(t, svc.AssignFeature(ctx, role.ID, bound.ID))

	before, err := svc.FeaturesForRole(ctx, role.ID)
	require.NoError(t, err)

	for _, f := range []*models.Feature{bound, unbound} {
		_, err = svc.ToggleFeature(ctx, role.ID, f.ID)
		require.NoError(t, err)
		_, err = svc.ToggleFeature(ctx, role.ID, f.ID)
		require.NoError(t, err)
	}

	after, err := svc.FeaturesForRole(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, featureIDs(before), featureIDs(after))
}

func TestConcurrentBindingWrites(t *testing.T) {
	svc, db, _ := setupService(t)
	ctx := context.Background()

	role := seedRole(t, svc, "Editor", false, true)
	assigned := seedFeature(t, svc, "documents.view", "Documents")
	toggled := seedFeature(t, svc, "documents.edit", "Documents")

	const workers = 8

	var wg sync.WaitGroup

	errs := make(chan error, 2*workers)

	for range workers {
		wg.Add(2)

		go func() {
			defer wg.Done()

			errs <- svc.AssignFeature(ctx, role.ID, assigned.ID)
		}()

		go func() {
			defer wg.Done()

			_, err := svc.ToggleFeature(ctx, role.ID, toggled.ID)
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	assert.EqualValues(t, 1, countRows(t, db, &models.RoleFeature{},
		"role_id = ? AND feature_id = ?", role.ID, assigned.ID))
	// an even number of toggles ends unbound
	assert.Zero(t, countRows(t, db, &models.RoleFeature{},
		"role_id = ? AND feature_id = ?", role.ID, toggled.ID))
}

func TestSetRoleFeatures(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	role := seedRole(t, svc, "Editor", false, true)
	view := seedFeature(t, svc, "documents.view", "Documents")
	edit := seedFeature(t, svc, "documents.edit", "Documents")
	upload := seedFeature(t, svc, "documents.upload", "Documents")

	require.NoError(t, svc.SetRoleFeatures(ctx, role.ID, []string{view.ID, edit.ID, view.ID}))

	features, err := svc.FeaturesForRole(ctx, role.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{view.ID, edit.ID}, featureIDs(features))

	// unknown feature leaves the previous set untouched
	err = svc.SetRoleFeatures(ctx, role.ID, []string{upload.ID, "missing"})
	require.ErrorIs(t, err, ErrFeatureNotFound)

	features, err = svc.FeaturesForRole(ctx, role.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{view.ID, edit.ID}, featureIDs(features))

	require.NoError(t, svc.SetRoleFeatures(ctx, role.ID, []string{upload.ID}))

	features, err = svc.FeaturesForRole(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{upload.ID}, featureIDs(features))

	require.NoError(t, svc.SetRoleFeatures(ctx, role.ID, nil))

	features, err = svc.FeaturesForRole(ctx, role.ID)
	require.NoError(t, err)
	assert.Empty(t, features)

	err = svc.SetRoleFeatures(ctx, "missing", nil)
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestFeaturesForRoleWithoutBindings(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	role := seedRole(t, svc, "Empty", false, true)

	features, err := svc.FeaturesForRole(ctx, role.ID)
	require.NoError(t, err)
	assert.Empty(t, features)

	features, err = svc.FeaturesForRole(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, features)
}

func featureIDs(features []models.Feature) []string {
	ids := make([]string, 0, len(features))
	for _, f := range features {
		ids = append(ids, f.ID)
	}

	return ids
}
