package authz

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"gorm.io/gorm"
)

// Error kinds. Every error returned by Service wraps exactly one of them.
var (
	// ErrValidation marks malformed or duplicate input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a reference to an unknown role, feature, user or assignment.
	ErrNotFound = errors.New("not found")
	// ErrForbidden marks an operation the authorization model never allows.
	ErrForbidden = errors.New("forbidden")
	// ErrTransient marks a timeout or connectivity failure of the database; safe to retry.
	ErrTransient = errors.New("temporarily unavailable")
	// ErrConflict marks a write that lost a uniqueness race against a concurrent caller.
	ErrConflict = errors.New("conflict")
)

var (
	// ErrDBNil is returned when the service is built without a database connection.
	ErrDBNil = errors.New("database connection is nil")

	// ErrRoleNameEmpty is returned when a role name is empty after trimming.
	ErrRoleNameEmpty = fmt.Errorf("%w: role name cannot be empty", ErrValidation)
	// ErrRoleNameTooLong is returned when a role name exceeds MaxNameLength.
	ErrRoleNameTooLong = fmt.Errorf("%w: role name is too long", ErrValidation)
	// ErrRoleNameTaken is returned when another role already uses the name.
	ErrRoleNameTaken = fmt.Errorf("%w: role name already in use", ErrValidation)
	// ErrFeatureNameEmpty is returned when a feature name is empty after trimming.
	ErrFeatureNameEmpty = fmt.Errorf("%w: feature name cannot be empty", ErrValidation)
	// ErrFeatureNameTooLong is returned when a feature name exceeds MaxNameLength.
	ErrFeatureNameTooLong = fmt.Errorf("%w: feature name is too long", ErrValidation)
	// ErrFeatureNameTaken is returned when another feature already uses the name.
	ErrFeatureNameTaken = fmt.Errorf("%w: feature name already in use", ErrValidation)
	// ErrExpiryInPast is returned when an assignment would be created already expired.
	ErrExpiryInPast = fmt.Errorf("%w: expiry must be in the future", ErrValidation)
	// ErrUserIDEmpty is returned when an assignment is requested without a user.
	ErrUserIDEmpty = fmt.Errorf("%w: user id cannot be empty", ErrValidation)

	// ErrRoleNotFound is returned for unknown role ids and names.
	ErrRoleNotFound = fmt.Errorf("role %w", ErrNotFound)
	// ErrFeatureNotFound is returned for unknown feature ids and names.
	ErrFeatureNotFound = fmt.Errorf("feature %w", ErrNotFound)
	// ErrUserNotFound is returned when the user directory does not know the user.
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
	// ErrAssignmentNotFound is returned for unknown assignment ids.
	ErrAssignmentNotFound = fmt.Errorf("assignment %w", ErrNotFound)

	// ErrSystemRoleDelete is returned when deleting a system role.
	ErrSystemRoleDelete = fmt.Errorf("%w: system roles cannot be deleted", ErrForbidden)
	// ErrSystemRoleFlag is returned when an update tries to flip is_system_role.
	ErrSystemRoleFlag = fmt.Errorf("%w: is_system_role cannot be changed after creation", ErrForbidden)
)

// IsTransient reports whether err is worth a retry.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// classify maps store errors onto the error kinds. Errors that already carry a kind pass through.
func classify(err error) error {
	if err == nil {
		return nil
	}

	for _, kind := range []error{ErrValidation, ErrNotFound, ErrForbidden, ErrTransient, ErrConflict} {
		if errors.Is(err, kind) {
			return err
		}
	}

	var netErr net.Error

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, driver.ErrBadConn),
		errors.As(err, &netErr):
		return fmt.Errorf("%w: %w", ErrTransient, err)
	default:
		return err
	}
}
