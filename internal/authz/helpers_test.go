package authz

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/campusdesk/campusdesk/internal/db/models"
)

// testClock is a settable time source for expiry tests.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to create test database")

	// one connection so every query sees the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...), "failed to migrate test database")

	return db
}

// setupService returns a service without snapshot caching and with a fixed clock.
func setupService(t *testing.T) (*Service, *gorm.DB, *testClock) {
	t.Helper()

	db := setupTestDB(t)
	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	svc, err := NewService(db, nil, Options{
		RequestTimeout: 5 * time.Second,
		RetryBackoff:   time.Millisecond,
		Now:            clock.Now,
	})
	require.NoError(t, err)
	require.NoError(t, svc.EnsureSchema(context.Background()))

	return svc, db, clock
}

// seedUser inserts a user into the local directory and returns its id.
func seedUser(t *testing.T, db *gorm.DB, username string) string {
	t.Helper()

	user := models.User{
		ID:       uuid.NewString(),
		Active:   true,
		Username: username,
		Email:    username + "@example.org",
	}
	require.NoError(t, db.Create(&user).Error, "failed to seed user")

	return user.ID
}

func seedRole(t *testing.T, svc *Service, name string, system, active bool) *models.Role {
	t.Helper()

	role, err := svc.CreateRole(context.Background(), RoleInput{
		Name:         name,
		IsSystemRole: system,
		IsActive:     active,
	})
	require.NoError(t, err, "failed to seed role")

	return role
}

func seedFeature(t *testing.T, svc *Service, name, category string) *models.Feature {
	t.Helper()

	feature, err := svc.CreateFeature(context.Background(), FeatureInput{Name: name, Category: category})
	require.NoError(t, err, "failed to seed feature")

	return feature
}

func countRows(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&count).Error)

	return count
}
