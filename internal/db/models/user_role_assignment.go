package models

import "time"

// UserRoleAssignment binds a user of the user directory to a role.
// There is at most one row per (user, role) pair; re-assigning reactivates it.
type UserRoleAssignment struct {
	// ID is the unique identifier (uuid string) of the assignment.
	ID string `gorm:"primaryKey;size:36" json:"id"`
	// UserID references the user directory; this table never owns user records.
	UserID string `gorm:"column:user_id;size:36;not null;uniqueIndex:idx_user_role" json:"userId"`
	// RoleID is the ID of the assigned role.
	RoleID string `gorm:"column:role_id;size:36;not null;uniqueIndex:idx_user_role" json:"roleId"`
	// Role is the associated role; assignments go away with it.
	Role Role `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"-"`
	// AssignedAt is set when the row is created and never changed.
	AssignedAt time.Time `gorm:"column:assigned_at;not null;<-:create" json:"assignedAt"`
	// IsActive soft-disables the assignment.
	IsActive bool `gorm:"column:is_active;not null" json:"isActive"`
	// ExpiresAt optionally ends the assignment; nil means it never expires.
	ExpiresAt *time.Time `gorm:"column:expires_at" json:"expiresAt,omitempty"`
}

// TableName specifies the database table name for the UserRoleAssignment model.
func (UserRoleAssignment) TableName() string {
	return "user_role_assignments"
}

// Effective reports whether the assignment counts for authorization at the given time.
func (a *UserRoleAssignment) Effective(now time.Time) bool {
	if !a.IsActive {
		return false
	}

	return a.ExpiresAt == nil || a.ExpiresAt.After(now)
}
