// Package role provides the role and role-feature endpoints of the admin API.
package role

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/campusdesk/campusdesk/internal/authz"
	"github.com/campusdesk/campusdesk/internal/web/handler"
	authmw "github.com/campusdesk/campusdesk/internal/web/middleware/auth"
)

// Path is the route of the roles below the API group.
const Path = "/roles"

// CreateRequest is the body of POST /roles.
type CreateRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	Description  string `json:"description" validate:"max=255"`
	IsSystemRole bool   `json:"isSystemRole"`
	IsActive     *bool  `json:"isActive"`
}

// UpdateRequest is the body of PATCH /roles/:id. Absent fields stay unchanged.
type UpdateRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=100"`
	Description  *string `json:"description" validate:"omitempty,max=255"`
	IsActive     *bool   `json:"isActive"`
	IsSystemRole *bool   `json:"isSystemRole"`
}

// FeaturesRequest is the body of PUT /roles/:id/features.
type FeaturesRequest struct {
	FeatureIDs []string `json:"featureIds" validate:"dive,required"`
}

// ToggleReply tells whether the feature is bound after a toggle.
type ToggleReply struct {
	Bound bool `json:"bound"`
}

// Service serves roles and their features.
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

	r := router.Group(Path, authmw.RequireFeature(env.Authz, authz.FeatureAdminRoles))
	r.Get(handler.RouterRootPath, s.List)
	r.Post(handler.RouterRootPath, s.Create)
	r.Patch("/:id", s.Update)
	r.Delete("/:id", s.Delete)
	r.Get("/:id/features", s.Features)
	r.Put("/:id/features", s.SetFeatures)
	r.Post("/:id/features/:featureID/toggle", s.Toggle)

	return nil
}

// List returns every role.
func (s *Service) List(c *fiber.Ctx) error {
	roles, err := s.env.Authz.ListRoles(c.UserContext())
	if err != nil {
		return handler.Fail(c, "list roles", err)
	}

	return handler.Data(c, roles)
}

// Create creates a role. New roles are active unless isActive is false.
func (s *Service) Create(c *fiber.Ctx) error {
	const action = "create role"

	req := new(CreateRequest)
	if err := handler.Bind(c, req); err != nil {
		return handler.Fail(c, action, err)
	}

	active := req.IsActive == nil || *req.IsActive

	role, err := s.env.Authz.CreateRole(c.UserContext(), authz.RoleInput{
		Name:         req.Name,
		Description:  req.Description,
		IsSystemRole: req.IsSystemRole,
		IsActive:     active,
	})
	if err != nil {
		return handler.Fail(c, action, err)
	}

	return handler.Done(c, fiber.StatusCreated, action, role)
}

// Update patches a role.
func (s *Service) Update(c *fiber.Ctx) error {
	const action = "update role"

	req := new(UpdateRequest)
	if err := handler.Bind(c, req); err != nil {
		return handler.Fail(c, action, err)
	}

	role, err := s.env.Authz.UpdateRole(c.UserContext(), c.Params("id"), authz.RolePatch{
		Name:         req.Name,
		Description:  req.Description,
		IsActive:     req.IsActive,
		IsSystemRole: req.IsSystemRole,
	})
	if err != nil {
		return handler.Fail(c, action, err)
	}

	return handler.Done(c, fiber.StatusOK, action, role)
}

// Delete removes a custom role with its bindings and assignments.
func (s *Service) Delete(c *fiber.Ctx) error {
	const action = "delete role"

	if err := s.env.Authz.DeleteRole(c.UserContext(), c.Params("id")); err != nil {
		return handler.Fail(c, action, err)
	}

	return handler.Done(c, fiber.StatusOK, action, nil)
}

// Features returns the features bound to a role.
func (s *Service) Features(c *fiber.Ctx) error {
	features, err := s.env.Authz.FeaturesForRole(c.UserContext(), c.Params("id"))
	if err != nil {
		return handler.Fail(c, "list role features", err)
	}

	return handler.Data(c, features)
}

// SetFeatures replaces the features of a role.
func (s *Service) SetFeatures(c *fiber.Ctx) error {
	const action = "save role features"

	req := new(FeaturesRequest)
	if err := handler.Bind(c, req); err != nil {
		return handler.Fail(c, action, err)
	}

	if err := s.env.Authz.SetRoleFeatures(c.UserContext(), c.Params("id"), req.FeatureIDs); err != nil {
		return handler.Fail(c, action, err)
	}

	return handler.Done(c, fiber.StatusOK, action, nil)
}

// Toggle flips one binding of a role.
func (s *Service) Toggle(c *fiber.Ctx) error {
	const action = "toggle feature"

	bound, err := s.env.Authz.ToggleFeature(c.UserContext(), c.Params("id"), c.Params("featureID"))
	if err != nil {
		return handler.Fail(c, action, err)
	}

	return handler.Done(c, fiber.StatusOK, action, ToggleReply{Bound: bound})
}
