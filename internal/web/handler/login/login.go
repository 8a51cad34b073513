// Package login provides the login endpoint of the admin API.
package login

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/campusdesk/campusdesk/internal/authz"
	"github.com/campusdesk/campusdesk/internal/web/handler"
)

const (
	// Path is the path of the login endpoint.
	Path = handler.RootPath + "login"

	action = "login"
)

// Request is the login form.
type Request struct {
	Username string `json:"username" form:"username" validate:"required,max=100"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Reply is returned after a successful login.
type Reply struct {
	UserID      string   `json:"userId"`
	Username    string   `json:"username"`
	DisplayName string   `json:"displayName"`
	Features    []string `json:"features"`
}

// Service is the login handler service.
type Service struct {
	handler.Service
	env *handler.Env
}

// Init initializes the login handler.
func (s *Service) Init(router fiber.Router, env *handler.Env) error {
	if router == nil || !env.Valid() {
		return errors.New("router or env is nil")
	}

	s.env = env

	router.Post(Path, s.Post)

	return nil
}

// Post checks the credentials, starts a session and sets the session cookie.
func (s *Service) Post(c *fiber.Ctx) error {
	req := new(Request)
	if err := handler.Bind(c, req); err != nil {
		return handler.Fail(c, action, err)
	}

	user, err := s.env.Users.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		log.Warn().Err(err).Str("username", req.Username).Msg("login failed")

		status := authz.StatusFor(action, ErrInvalidCredentials)

		return c.Status(fiber.StatusUnauthorized).JSON(handler.Response{Status: &status})
	}

	features, err := s.env.Authz.UserFeatures(c.UserContext(), user.ID)
	if err != nil {
		return handler.Fail(c, action, err)
	}

	sess, err := s.env.Sessions.Create(user.ID, user.Username)
	if err != nil {
		log.Error().Err(err).Msg("failed to create session")

		status := authz.StatusFor(action, ErrInternalServerError)

		return c.Status(fiber.StatusInternalServerError).JSON(handler.Response{Status: &status})
	}

	cookieName := s.env.CookieName()

	c.Cookie(&fiber.Cookie{
		Name:     cookieName,
		Value:    sess.ID,
		Expires:  sess.ExpiresAt,
		Domain:   s.env.Config.Webserver.Domain,
		Secure:   !s.env.Config.DevMode,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user logged in")

	return handler.Done(c, fiber.StatusOK, action, Reply{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName(),
		Features:    features.Names(),
	})
}
