// Package assignment provides the user-role assignment endpoints of the admin API.
package assignment

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/campusdesk/campusdesk/internal/authz"
	"github.com/campusdesk/campusdesk/internal/web/handler"
	authmw "github.com/campusdesk/campusdesk/internal/web/middleware/auth"
)

// Path is the route of the assignments below the API group.
const Path = "/assignments"

// CreateRequest is the body of POST /assignments.
type CreateRequest struct {
	UserID    string     `json:"userId" validate:"required,max=36"`
	RoleID    string     `json:"roleId" validate:"required,max=36"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

// RemoveQuery names the assignment removed by DELETE /assignments.
type RemoveQuery struct {
	UserID string `query:"user_id" validate:"required"`
	RoleID string `query:"role_id" validate:"required"`
}

// ActiveRequest is the body of PATCH /assignments/:id.
type ActiveRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// Service serves user-role assignments.
type Service struct {
	handler.Service
	env *handler.Env
}

// Init registers routes.
func (s *Service) Init(router fiber.Router, env *handler.Env) error {
	if router == nil || !env.Valid() {
		return errors.New("router or env is nil")
	}

	s.env = env

	r := router.Group(Path, authmw.RequireFeature(env.Authz, authz.FeatureAdminUsers))
	r.Get(handler.RouterRootPath, s.List)
	r.Post(handler.RouterRootPath, s.Create)
	r.Delete(handler.RouterRootPath, s.Remove)
	r.Patch("/:id", s.SetActive)

	return nil
}

// List returns every assignment, or those of ?user_id= when given.
func (s *Service) List(c *fiber.Ctx) error {
	const action = "list assignments"

	if userID := c.Query("user_id"); userID != "" {
		assignments, err := s.env.Authz.AssignmentsForUser(c.UserContext(), userID)
		if err != nil {
			return handler.Fail(c, action, err)
		}

		return handler.Data(c, assignments)
	}

	assignments, err := s.env.Authz.ListAssignments(c.UserContext())
	if err != nil {
		return handler.Fail(c, action, err)
	}

	return handler.Data(c, assignments)
}

// Create assigns a role to a user, reactivating an existing assignment of the pair.
func (s *Service) Create(c *fiber.Ctx) error {
	const action = "assign role"

	req := new(CreateRequest)
	if err := handler.Bind(c, req); err != nil {
		return handler.Fail(c, action, err)
	}

	assignment, err := s.env.Authz.AssignRole(c.UserContext(), req.UserID, req.RoleID, authz.AssignOptions{
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		return handler.Fail(c, action, err)
	}

	return handler.Done(c, fiber.StatusCreated, action, assignment)
}

// Remove deletes the assignment of ?role_id= to ?user_id=.
func (s *Service) Remove(c *fiber.Ctx) error {
	const action = "remove assignment"

	q := new(RemoveQuery)
	if err := c.QueryParser(q); err != nil {
		return handler.Fail(c, action, fmt.Errorf("%w: %w", authz.ErrValidation, err))
	}

	if err := handler.Validate(q); err != nil {
		return handler.Fail(c, action, err)
	}

	if err := s.env.Authz.RemoveAssignment(c.UserContext(), q.UserID, q.RoleID); err != nil {
		return handler.Fail(c, action, err)
	}

	return handler.Done(c, fiber.StatusOK, action, nil)
}

// SetActive soft-enables or soft-disables an assignment.
func (s *Service) SetActive(c *fiber.Ctx) error {
	const action = "update assignment"

	req := new(ActiveRequest)
	if err := handler.Bind(c, req); err != nil {
		return handler.Fail(c, action, err)
	}

	assignment, err := s.env.Authz.SetAssignmentActive(c.UserContext(), c.Params("id"), *req.IsActive)
	if err != nil {
		return handler.Fail(c, action, err)
	}

	return handler.Done(c, fiber.StatusOK, action, assignment)
}
