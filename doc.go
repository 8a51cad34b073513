// Package main provides the entry point for campusdesk, the role and feature
// authorization service of the school staff portal. It serves a JSON API built
// on fiber for managing features, roles and role assignments, and answers
// feature checks for signed-in users. Data is persisted through gorm.
package main
