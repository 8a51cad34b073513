// Package logout provides the logout endpoint of the admin API.
package logout

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/campusdesk/campusdesk/internal/web/handler"
)

// Path is the path of the logout endpoint.
const Path = handler.RootPath + "logout"

// Service is the logout handler service.
type Service struct {
	handler.Service
	env *handler.Env
}

// Init initializes the logout handler.
func (s *Service) Init(router fiber.Router, env *handler.Env) error {
	if router == nil || !env.Valid() {
		return errors.New("router or env is nil")
	}

	s.env = env

	router.Post(Path, s.Logout)

	return nil
}

// Logout destroys the session named by the cookie and clears the cookie.
// Logging out without a session succeeds.
func (s *Service) Logout(c *fiber.Ctx) error {
	cookieName := s.env.CookieName()

	if sessionID := c.Cookies(cookieName); sessionID != "" {
		if err := s.env.Sessions.Destroy(sessionID); err != nil {
			log.Error().Err(err).Msg("failed to delete session")
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     cookieName,
		Value:    "",
		MaxAge:   -1,
		Domain:   s.env.Config.Webserver.Domain,
		Secure:   !s.env.Config.DevMode,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return handler.Done(c, fiber.StatusOK, "logout", nil)
}
