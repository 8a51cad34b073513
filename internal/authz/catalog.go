package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/campusdesk/campusdesk/internal/db/models"
)

// Feature names of the built-in catalog.
const (
	FeatureDashboardView = "dashboard.view"

	FeatureHREmployeesView = "hr.employees.view"
	FeatureHREmployeesEdit = "hr.employees.edit"
	FeatureHRPayrollView   = "hr.payroll.view"

	FeatureStudentsView     = "education.students.view"
	FeatureStudentsRegister = "education.students.register"
	FeatureCoursesManage    = "education.courses.manage"

	FeatureDocumentsView   = "documents.view"
	FeatureDocumentsEdit   = "documents.edit"
	FeatureDocumentsUpload = "documents.upload"

	FeatureAdminUsers    = "admin.users"
	FeatureAdminRoles    = "admin.roles"
	FeatureAdminFeatures = "admin.features"

	FeatureBackupView = "backup.view"
)

// Catalog categories.
const (
	CategoryGeneral   = "General"
	CategoryHR        = "HR"
	CategoryEducation = "Education"
	CategoryDocuments = "Documents"
	CategoryAdmin     = "Administration"
	CategoryBackup    = "Backup"
)

// System role names.
const (
	RoleAdmin = "Admin"
	RoleStaff = "Staff"
)

// Catalog is the built-in feature list seeded at start-up.
var Catalog = []FeatureInput{ //nolint:gochecknoglobals
	{FeatureDashboardView, CategoryGeneral, "View the start page"},
	{FeatureHREmployeesView, CategoryHR, "View employee records"},
	{FeatureHREmployeesEdit, CategoryHR, "Create and edit employee records"},
	{FeatureHRPayrollView, CategoryHR, "View payroll summaries"},
	{FeatureStudentsView, CategoryEducation, "View student records"},
	{FeatureStudentsRegister, CategoryEducation, "Register new students"},
	{FeatureCoursesManage, CategoryEducation, "Manage courses"},
	{FeatureDocumentsView, CategoryDocuments, "View documents"},
	{FeatureDocumentsEdit, CategoryDocuments, "Edit documents"},
	{FeatureDocumentsUpload, CategoryDocuments, "Upload documents"},
	{FeatureAdminUsers, CategoryAdmin, "Assign roles to users"},
	{FeatureAdminRoles, CategoryAdmin, "Manage roles and their features"},
	{FeatureAdminFeatures, CategoryAdmin, "Manage the feature catalog"},
	{FeatureBackupView, CategoryBackup, "Open the backup screen"},
}

// staffFeatures are granted to the Staff system role.
var staffFeatures = []string{ //nolint:gochecknoglobals
	FeatureDashboardView,
	FeatureDocumentsView,
	FeatureStudentsView,
}

// EnsureCatalog inserts missing catalog features and the Admin and Staff system roles.
// Admin receives every catalog feature. Existing rows are left as they are, so
// running it again is harmless.
func (s *Service) EnsureCatalog(ctx context.Context) error {
	var created int

	err := s.write(ctx, func(tx *gorm.DB) error {
		ids := make(map[string]string, len(Catalog))

		for _, entry := range Catalog {
			var feature models.Feature

			res := tx.Where(models.Feature{Name: entry.Name}).
				Attrs(models.Feature{
					ID:          uuid.NewString(),
					Category:    entry.Category,
					Description: entry.Description,
				}).
				FirstOrCreate(&feature)
			if res.Error != nil {
				return fmt.Errorf("failed to seed feature %s: %w", entry.Name, res.Error)
			}

			created += int(res.RowsAffected)
			ids[entry.Name] = feature.ID
		}

		admin, err := s.ensureSystemRole(tx, RoleAdmin, "Full access to every module")
		if err != nil {
			return err
		}

		for _, id := range ids {
			if err := bind(tx, admin.ID, id); err != nil {
				return err
			}
		}

		staff, err := s.ensureSystemRole(tx, RoleStaff, "Default role for staff members")
		if err != nil {
			return err
		}

		for _, name := range staffFeatures {
			if err := bind(tx, staff.ID, ids[name]); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	log.Info().Int("created", created).Int("catalog", len(Catalog)).Msg("feature catalog ensured")

	return nil
}

func (s *Service) ensureSystemRole(tx *gorm.DB, name, description string) (*models.Role, error) {
	var role models.Role

	err := tx.Where(s.nameEquals("role_name"), s.nameKey(name)).First(&role).Error
	if err == nil {
		return &role, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role = models.Role{
		ID:           uuid.NewString(),
		Name:         name,
		Description:  description,
		IsSystemRole: true,
		IsActive:     true,
	}

	if err := tx.Create(&role).Error; err != nil {
		return nil, fmt.Errorf("failed to seed role %s: %w", name, err)
	}

	return &role, nil
}
