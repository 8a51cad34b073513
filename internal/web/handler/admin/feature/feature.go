// Package feature provides the feature catalog endpoints of the admin API.
package feature

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/campusdesk/campusdesk/internal/authz"
	"github.com/campusdesk/campusdesk/internal/db/models"
	"github.com/campusdesk/campusdesk/internal/web/handler"
	authmw "github.com/campusdesk/campusdesk/internal/web/middleware/auth"
)

// Path is the route of the feature catalog below the API group.
const Path = "/features"

// CreateRequest is the body of POST /features.
type CreateRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Category    string `json:"category" validate:"max=100"`
	Description string `json:"description" validate:"max=255"`
}

// Group is one category of the grouped catalog.
type Group struct {
	Category string           `json:"category"`
	Features []models.Feature `json:"features"`
}

// Service serves the feature catalog.
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

	r := router.Group(Path, authmw.RequireFeature(env.Authz, authz.FeatureAdminFeatures))
	r.Get(handler.RouterRootPath, s.List)
	r.Get("/grouped", s.Grouped)
	r.Post(handler.RouterRootPath, s.Create)
	r.Delete("/:id", s.Delete)

	return nil
}

// List returns the catalog ordered by category and name.
func (s *Service) List(c *fiber.Ctx) error {
	features, err := s.env.Authz.ListFeatures(c.UserContext())
	if err != nil {
		return handler.Fail(c, "list features", err)
	}

	return handler.Data(c, features)
}

// Grouped returns the catalog grouped by category, categories sorted.
func (s *Service) Grouped(c *fiber.Ctx) error {
	features, err := s.env.Authz.ListFeatures(c.UserContext())
	if err != nil {
		return handler.Fail(c, "list features", err)
	}

	grouped := authz.GroupByCategory(features)
	out := make([]Group, 0, len(grouped))

	for _, category := range authz.Categories(grouped) {
		out = append(out, Group{Category: category, Features: grouped[category]})
	}

	return handler.Data(c, out)
}

// Create registers a feature.
func (s *Service) Create(c *fiber.Ctx) error {
	const action = "create feature"

	req := new(CreateRequest)
	if err := handler.Bind(c, req); err != nil {
		return handler.Fail(c, action, err)
	}

	feature, err := s.env.Authz.CreateFeature(c.UserContext(), authz.FeatureInput{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		return handler.Fail(c, action, err)
	}

	return handler.Done(c, fiber.StatusCreated, action, feature)
}

// Delete removes a feature and its bindings.
func (s *Service) Delete(c *fiber.Ctx) error {
	const action = "delete feature"

	if err := s.env.Authz.DeleteFeature(c.UserContext(), c.Params("id")); err != nil {
		return handler.Fail(c, action, err)
	}

	return handler.Done(c, fiber.StatusOK, action, nil)
}
