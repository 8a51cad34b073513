package authz

import (
	"errors"
	"fmt"
)

// Severity of a Status.
type Severity string

const (
	// SeverityInfo marks a successful operation.
	SeverityInfo Severity = "info"
	// SeverityError marks a failed operation.
	SeverityError Severity = "error"
)

// Status is the short notification shown to the operator after a mutating call.
type Status struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// StatusFor builds the notification for action ("create role") given the outcome err.
func StatusFor(action string, err error) Status {
	if err == nil {
		return Status{Message: action + " succeeded", Severity: SeverityInfo}
	}

	var hint string

	switch {
	case errors.Is(err, ErrTransient):
		hint = "please try again"
	case errors.Is(err, ErrForbidden):
		hint = "not allowed"
	case errors.Is(err, ErrNotFound):
		hint = "no longer exists"
	case errors.Is(err, ErrConflict):
		hint = "changed concurrently, reload and retry"
	}

	msg := fmt.Sprintf("%s failed: %v", action, err)
	if hint != "" {
		msg = fmt.Sprintf("%s failed (%s): %v", action, hint, err)
	}

	return Status{Message: msg, Severity: SeverityError}
}
