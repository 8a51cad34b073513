package models

import "time"

// Feature is a gateable unit of application functionality.
// Features are the permission granularity: roles are granted features, never raw actions.
type Feature struct {
	// ID is the unique identifier (uuid string) of the feature.
	ID string `gorm:"primaryKey;size:36" json:"id"`
	// Name is the unique catalog name of the feature (e.g. "documents.edit").
	Name string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	// Category groups features for display (e.g. "Documents").
	Category string `gorm:"size:100" json:"category"`
	// Description explains what the feature unlocks.
	Description string `gorm:"size:255" json:"description,omitempty"`
	// CreatedAt is the timestamp when the feature was created (managed by GORM).
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the timestamp when the feature was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the Feature model.
func (Feature) TableName() string {
	return "features"
}
