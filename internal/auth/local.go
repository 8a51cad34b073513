package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusdesk/campusdesk/internal/db/models"
)

// LocalProvider handles local database authentication.
type LocalProvider struct {
	db *gorm.DB
}

// NewUser carries the fields of a new local account.
type NewUser struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(db *gorm.DB) (*LocalProvider, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	return &LocalProvider{db: db}, nil
}

// Authenticate authenticates a user against the local database.
func (p *LocalProvider) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	var user models.User

	err := p.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidPassword
	}

	return &user, nil
}

// CreateUser creates a new, active local user.
func (p *LocalProvider) CreateUser(ctx context.Context, in NewUser) (*models.User, error) {
	db := p.db.WithContext(ctx)

	var count int64

	err := db.Model(&models.User{}).
		Where("username = ? OR email = ?", in.Username, in.Email).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	if count > 0 {
		return nil, ErrUserNameOrEmailExists
	}

	user := models.User{
		ID:        uuid.NewString(),
		Active:    true,
		Username:  in.Username,
		Email:     in.Email,
		Password:  models.HashPassword(in.Password),
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}

	if err := db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// SetActive activates or deactivates a user account.
func (p *LocalProvider) SetActive(ctx context.Context, userID string, active bool) error {
	res := p.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("active", active)
	if res.Error != nil {
		return fmt.Errorf("failed to update user: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// GetUserByID retrieves a user by ID.
func (p *LocalProvider) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User

	err := p.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// ListUsers lists users ordered by username with an optional active filter.
func (p *LocalProvider) ListUsers(
	ctx context.Context,
	active *bool,
	limit, offset int,
) ([]models.User, int64, error) {
	var (
		users []models.User
		total int64
	)

	query := p.db.WithContext(ctx).Model(&models.User{})

	if active != nil {
		query = query.Where("active = ?", *active)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	if err := query.Order("username").Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}
