package daemon

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campusdesk/campusdesk/internal/authz"
	"github.com/campusdesk/campusdesk/internal/config"
	"github.com/campusdesk/campusdesk/internal/db/models"
)

func TestSeed(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))

	svc, err := authz.NewService(db, nil, authz.Options{})
	require.NoError(t, err)

	cfg := &config.Config{Seed: config.Seed{AdminUsername: "root", AdminPassword: "s3cret"}}
	ctx := context.Background()

	require.NoError(t, Seed(ctx, cfg, db, svc))
	require.NoError(t, Seed(ctx, cfg, db, svc), "seeding twice must be harmless")

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "root", users[0].Username)
	assert.Equal(t, defaultAdminEmail, users[0].Email)
	assert.True(t, users[0].VerifyPassword("s3cret"))

	ok, err := svc.UserHasFeatureNamed(ctx, users[0].ID, authz.FeatureAdminRoles)
	require.NoError(t, err)
	assert.True(t, ok)
}
