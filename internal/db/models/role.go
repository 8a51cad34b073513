package models

import "time"

// Role represents a named bundle of feature grants.
// System roles are created by the seeder and can neither be deleted nor turned into custom roles.
type Role struct {
	// ID is the unique identifier (uuid string) of the role.
	ID string `gorm:"primaryKey;size:36" json:"id"`
	// Name is the unique name of the role (e.g. "Admin", "Editor").
	Name string `gorm:"column:role_name;uniqueIndex;size:100;not null" json:"name"`
	// Description provides a human-readable description of the role's purpose.
	Description string `gorm:"size:255" json:"description,omitempty"`
	// IsSystemRole is set at creation; gorm leaves the column out of every update.
	IsSystemRole bool `gorm:"column:is_system_role;not null;default:false;<-:create" json:"isSystemRole"`
	// IsActive soft-disables the role without losing its bindings and assignments.
	IsActive bool `gorm:"column:is_active;not null" json:"isActive"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the Role model.
func (Role) TableName() string {
	return "roles"
}
