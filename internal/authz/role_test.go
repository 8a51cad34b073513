package authz

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campusdesk/campusdesk/internal/db/models"
)

func ptr[T any](v T) *T {
	return &v
}

func TestCreateRole(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	seedRole(t, svc, "Editor", false, true)

	testCases := []struct {
		name          string
		input         RoleInput
		expectedError error
	}{
		{
			name:          "empty name",
			input:         RoleInput{Name: ""},
			expectedError: ErrRoleNameEmpty,
		},
		{
			name:          "whitespace name",
			input:         RoleInput{Name: "  \t"},
			expectedError: ErrRoleNameEmpty,
		},
		{
			name:          "duplicate name",
			input:         RoleInput{Name: "Editor"},
			expectedError: ErrRoleNameTaken,
		},
		{
			name:          "duplicate name in other case",
			input:         RoleInput{Name: " editor "},
			expectedError: ErrRoleNameTaken,
		},
		{
			name:  "inactive custom role",
			input: RoleInput{Name: "Reviewer", Description: "Reads documents"},
		},
		{
			name:  "system role",
			input: RoleInput{Name: "Auditor", IsSystemRole: true, IsActive: true},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			role, err := svc.CreateRole(ctx, tc.input)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.ErrorIs(t, err, ErrValidation)

				return
			}

			require.NoError(t, err)

			stored, err := svc.GetRole(ctx, role.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.input.Name, stored.Name)
			assert.Equal(t, tc.input.IsSystemRole, stored.IsSystemRole)
			assert.Equal(t, tc.input.IsActive, stored.IsActive)
		})
	}
}

func TestCreateRoleCaseSensitive(t *testing.T) {
	db := setupTestDB(t)

	svc, err := NewService(db, nil, Options{CaseSensitiveRoleNames: true})
	require.NoError(t, err)

	seedRole(t, svc, "Editor", false, true)

	role, err := svc.CreateRole(context.Background(), RoleInput{Name: "editor"})
	require.NoError(t, err)
	assert.Equal(t, "editor", role.Name)

	_, err = svc.CreateRole(context.Background(), RoleInput{Name: "Editor"})
	assert.ErrorIs(t, err, ErrRoleNameTaken)
}

func TestRoleByName(t *testing.T) {
	svc, _, _ := setupService(t)

	role := seedRole(t, svc, "Editor", false, true)

	got, err := svc.RoleByName(context.Background(), "EDITOR")
	require.NoError(t, err)
	assert.Equal(t, role.ID, got.ID)

	_, err = svc.RoleByName(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestUpdateRole(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	editor := seedRole(t, svc, "Editor", false, true)
	seedRole(t, svc, "Viewer", false, true)

	testCases := []struct {
		name          string
		id            string
		patch         RolePatch
		expectedError error
		check         func(t *testing.T, r *models.Role)
	}{
		{
			name:          "unknown role",
			id:            "missing",
			patch:         RolePatch{IsActive: ptr(false)},
			expectedError: ErrNotFound,
		},
		{
			name:          "rename to taken name",
			id:            editor.ID,
			patch:         RolePatch{Name: ptr("viewer")},
			expectedError: ErrRoleNameTaken,
		},
		{
			name:          "rename to empty",
			id:            editor.ID,
			patch:         RolePatch{Name: ptr(" ")},
			expectedError: ErrRoleNameEmpty,
		},
		{
			name:          "promote to system role",
			id:            editor.ID,
			patch:         RolePatch{IsSystemRole: ptr(true)},
			expectedError: ErrForbidden,
		},
		{
			name:  "same system flag is ignored",
			id:    editor.ID,
			patch: RolePatch{IsSystemRole: ptr(false), Description: ptr(" Edits documents ")},
			check: func(t *testing.T, r *models.Role) {
				t.Helper()
				assert.False(t, r.IsSystemRole)
				assert.Equal(t, "Edits documents", r.Description)
			},
		},
		{
			name:  "rename keeps own name in other case",
			id:    editor.ID,
			patch: RolePatch{Name: ptr("EDITOR")},
			check: func(t *testing.T, r *models.Role) {
				t.Helper()
				assert.Equal(t, "EDITOR", r.Name)
			},
		},
		{
			name:  "deactivate",
			id:    editor.ID,
			patch: RolePatch{IsActive: ptr(false)},
			check: func(t *testing.T, r *models.Role) {
				t.Helper()
				assert.False(t, r.IsActive)
			},
		},
		{
			name:  "reactivate",
			id:    editor.ID,
			patch: RolePatch{IsActive: ptr(true)},
			check: func(t *testing.T, r *models.Role) {
				t.Helper()
				assert.True(t, r.IsActive)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			role, err := svc.UpdateRole(ctx, tc.id, tc.patch)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, role)

				return
			}

			require.NoError(t, err)

			stored, err := svc.GetRole(ctx, tc.id)
			require.NoError(t, err)
			tc.check(t, stored)
		})
	}
}

func TestSystemRoleFlagIsImmutable(t *testing.T) {
	svc, db, _ := setupService(t)
	ctx := context.Background()

	admin := seedRole(t, svc, "Admin", true, true)

	patches := []RolePatch{
		{IsSystemRole: ptr(false)},
		{IsSystemRole: ptr(false), IsActive: ptr(false)},
		{Name: ptr("Administrator"), IsSystemRole: ptr(false)},
	}

	for _, patch := range patches {
		_, err := svc.UpdateRole(ctx, admin.ID, patch)
		require.ErrorIs(t, err, ErrSystemRoleFlag)
	}

	// free fields still change
	_, err := svc.UpdateRole(ctx, admin.ID, RolePatch{Description: ptr("Everything")})
	require.NoError(t, err)

	// writes that bypass the service leave the column alone
	var loaded models.Role
	require.NoError(t, db.First(&loaded, "id = ?", admin.ID).Error)

	require.NoError(t, db.Model(&loaded).Updates(map[string]any{"is_system_role": false}).Error)
	require.NoError(t, db.Model(&loaded).Select("is_system_role").Updates(models.Role{IsSystemRole: false}).Error)
	require.NoError(t, db.Model(&loaded).Update("is_system_role", false).Error)

	stored, err := svc.GetRole(ctx, admin.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsSystemRole)
	assert.True(t, stored.IsActive)
}

func TestDeleteSystemRoleForbidden(t *testing.T) {
	svc, db, _ := setupService(t)
	ctx := context.Background()

	admin := seedRole(t, svc, "Admin", true, true)
	feature := seedFeature(t, svc, "admin.roles", "Administration")
	require.NoError(t, svc.AssignFeature(ctx, admin.ID, feature.ID))

	userID := seedUser(t, db, "root")
	_, err := svc.AssignRole(ctx, userID, admin.ID, AssignOptions{})
	require.NoError(t, err)

	err = svc.DeleteRole(ctx, admin.ID)
	require.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, err, ErrSystemRoleDelete)

	assert.EqualValues(t, 1, countRows(t, db, &models.Role{}, "id = ?", admin.ID))
	assert.EqualValues(t, 1, countRows(t, db, &models.RoleFeature{}, "role_id = ?", admin.ID))
	assert.EqualValues(t, 1, countRows(t, db, &models.UserRoleAssignment{}, "role_id = ?", admin.ID))
}

func TestDeleteRoleCascades(t *testing.T) {
	svc, db, _ := setupService(t)
	ctx := context.Background()

	editor := seedRole(t, svc, "Editor", false, true)
	other := seedRole(t, svc, "Viewer", false, true)
	edit := seedFeature(t, svc, "documents.edit", "Documents")
	view := seedFeature(t, svc, "documents.view", "Documents")

	require.NoError(t, svc.SetRoleFeatures(ctx, editor.ID, []string{edit.ID, view.ID}))
	require.NoError(t, svc.AssignFeature(ctx, other.ID, view.ID))

	userID := seedUser(t, db, "alice")
	_, err := svc.AssignRole(ctx, userID, editor.ID, AssignOptions{})
	require.NoError(t, err)
	_, err = svc.AssignRole(ctx, userID, other.ID, AssignOptions{})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRole(ctx, editor.ID))

	features, err := svc.FeaturesForRole(ctx, editor.ID)
	require.NoError(t, err)
	assert.Empty(t, features)

	assert.Zero(t, countRows(t, db, &models.RoleFeature{}, "role_id = ?", editor.ID))
	assert.Zero(t, countRows(t, db, &models.UserRoleAssignment{}, "role_id = ?", editor.ID))

	// unrelated rows survive
	assert.EqualValues(t, 1, countRows(t, db, &models.RoleFeature{}, "role_id = ?", other.ID))
	assert.EqualValues(t, 1, countRows(t, db, &models.UserRoleAssignment{}, "role_id = ?", other.ID))

	_, err = svc.GetRole(ctx, editor.ID)
	require.ErrorIs(t, err, ErrNotFound)

	err = svc.DeleteRole(ctx, editor.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRoleTimeoutIsTransient(t *testing.T) {
	svc, _, _ := setupService(t)

	role := seedRole(t, svc, "Editor", false, true)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()

	time.Sleep(time.Millisecond)

	err := svc.DeleteRole(ctx, role.ID)
	require.Error(t, err)
	assert.True(t, IsTransient(err), "expected transient error, got %v", err)

	_, err = svc.GetRole(context.Background(), role.ID)
	assert.NoError(t, err, "role must survive a failed delete")
}

func TestRoleNameLowerIndex(t *testing.T) {
	svc, db, _ := setupService(t)
	ctx := context.Background()

	assert.True(t, db.Migrator().HasIndex(&models.Role{}, RoleNameLowerIndex))
	require.NoError(t, svc.EnsureSchema(ctx), "second run must be a no-op")

	seedRole(t, svc, "Editor", false, true)

	// an insert that skips the service check still collides on the index
	err := db.Create(&models.Role{ID: uuid.NewString(), Name: "EDITOR", IsActive: true}).Error
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.ErrorIs(t, roleNameConflict(classify(err)), ErrRoleNameTaken)

	sensitive := setupTestDB(t)

	svcSensitive, err := NewService(sensitive, nil, Options{CaseSensitiveRoleNames: true})
	require.NoError(t, err)
	require.NoError(t, svcSensitive.EnsureSchema(ctx))
	assert.False(t, sensitive.Migrator().HasIndex(&models.Role{}, RoleNameLowerIndex))
}
