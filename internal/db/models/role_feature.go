package models

import "time"

// RoleFeature is the many-to-many binding between roles and features.
// The composite primary key guarantees at most one row per (role, feature) pair.
type RoleFeature struct {
	// RoleID is the ID of the role in this binding.
	RoleID string `gorm:"primaryKey;column:role_id;size:36" json:"roleId"`
	// FeatureID is the ID of the feature in this binding.
	FeatureID string `gorm:"primaryKey;column:feature_id;size:36" json:"featureId"`
	// Role is the associated role; bindings go away with it.
	Role Role `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"-"`
	// Feature is the associated feature; bindings go away with it.
	Feature Feature `gorm:"foreignKey:FeatureID;constraint:OnDelete:CASCADE" json:"-"`
	// CreatedAt is the timestamp when the feature was granted (managed by GORM).
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the database table name for the RoleFeature model.
func (RoleFeature) TableName() string {
	return "role_features"
}
