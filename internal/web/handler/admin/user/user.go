// Package user provides the user directory endpoints used by the role assignment screen.
package user

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/campusdesk/campusdesk/internal/auth"
	"github.com/campusdesk/campusdesk/internal/authz"
	"github.com/campusdesk/campusdesk/internal/db/models"
	"github.com/campusdesk/campusdesk/internal/web/handler"
	authmw "github.com/campusdesk/campusdesk/internal/web/middleware/auth"
)

const (
	// Path is the route of the users below the API group.
	Path = "/users"

	// DefaultPageSize for pagination.
	DefaultPageSize = 25
)

// ErrInvalidQuery is returned for malformed limit, offset or active parameters.
var ErrInvalidQuery = fmt.Errorf("%w: invalid query parameter", authz.ErrValidation)

// CreateRequest is the body of POST /users.
type CreateRequest struct {
	Username  string `json:"username" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
}

// ActiveRequest is the body of PATCH /users/:id.
type ActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// Page is one page of users.
type Page struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
}

// Service serves the user directory.
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
	r.Patch("/:id", s.SetActive)
	r.Get("/:id/roles", s.Roles)

	return nil
}

// List returns a page of users (?limit=, ?offset=, ?active=).
func (s *Service) List(c *fiber.Ctx) error {
	const action = "list users"

	limit := c.QueryInt("limit", DefaultPageSize)
	offset := c.QueryInt("offset", 0)

	if limit <= 0 || offset < 0 {
		return handler.Fail(c, action, ErrInvalidQuery)
	}

	var active *bool

	if raw := c.Query("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return handler.Fail(c, action, fmt.Errorf("%w: active=%q", ErrInvalidQuery, raw))
		}

		active = &v
	}

	users, total, err := s.env.Users.ListUsers(c.UserContext(), active, limit, offset)
	if err != nil {
		return handler.Fail(c, action, err)
	}

	return handler.Data(c, Page{Users: users, Total: total})
}

// Create adds a local account.
func (s *Service) Create(c *fiber.Ctx) error {
	const action = "create user"

	req := new(CreateRequest)
	if err := handler.Bind(c, req); err != nil {
		return handler.Fail(c, action, err)
	}

	user, err := s.env.Users.CreateUser(c.UserContext(), auth.NewUser{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if errors.Is(err, auth.ErrUserNameOrEmailExists) {
		err = fmt.Errorf("%w: %w", authz.ErrValidation, err)
	}

	if err != nil {
		return handler.Fail(c, action, err)
	}

	return handler.Done(c, fiber.StatusCreated, action, user)
}

// SetActive enables or disables a local account.
func (s *Service) SetActive(c *fiber.Ctx) error {
	const action = "update user"

	req := new(ActiveRequest)
	if err := handler.Bind(c, req); err != nil {
		return handler.Fail(c, action, err)
	}

	err := s.env.Users.SetActive(c.UserContext(), c.Params("id"), *req.Active)
	if errors.Is(err, auth.ErrUserNotFound) {
		err = authz.ErrUserNotFound
	}

	if err != nil {
		return handler.Fail(c, action, err)
	}

	return handler.Done(c, fiber.StatusOK, action, nil)
}

// Roles returns the roles a user currently holds.
func (s *Service) Roles(c *fiber.Ctx) error {
	roles, err := s.env.Authz.RolesForUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return handler.Fail(c, "list user roles", err)
	}

	return handler.Data(c, roles)
}
