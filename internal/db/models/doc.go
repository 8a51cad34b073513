// Package models contains the gorm model definitions of the authorization tables
// (features, roles, role_features, user_role_assignments) and the local user directory.
package models
