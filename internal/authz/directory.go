package authz

import (
	"context"

	"gorm.io/gorm"

	"github.com/campusdesk/campusdesk/internal/db/models"
)

// UserInfo is what the authorization model needs to know about a user.
type UserInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// Directory resolves user references. It is owned outside this package; lookups never write.
type Directory interface {
	// LookupUser returns ErrUserNotFound when the user does not exist.
	LookupUser(ctx context.Context, userID string) (*UserInfo, error)
}

// GormDirectory is the Directory backed by the local users table.
type GormDirectory struct {
	db *gorm.DB
}

// NewGormDirectory creates a Directory reading the users table.
func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

// LookupUser implements Directory.
func (d *GormDirectory) LookupUser(ctx context.Context, userID string) (*UserInfo, error) {
	var user models.User

	err := d.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		return nil, classify(notFound(err, ErrUserNotFound))
	}

	return userInfo(&user), nil
}

// LookupUsername resolves a login name.
func (d *GormDirectory) LookupUsername(ctx context.Context, username string) (*UserInfo, error) {
	var user models.User

	err := d.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, classify(notFound(err, ErrUserNotFound))
	}

	return userInfo(&user), nil
}

func userInfo(u *models.User) *UserInfo {
	return &UserInfo{ID: u.ID, DisplayName: u.DisplayName(), Email: u.Email}
}
