package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/campusdesk/campusdesk/internal/authz"
	accesslog "github.com/campusdesk/campusdesk/internal/logger/adapter/fiber"
	"github.com/campusdesk/campusdesk/internal/web/handler"
	"github.com/campusdesk/campusdesk/internal/web/session"
)

// LocalsSession is the fiber.Locals key holding the current *session.Session.
const LocalsSession = "currentSession"

var errUnauthenticated = errors.New("not logged in")

// Middleware loads the session named by the cookie and stores it in fiber.Locals.
// Requests without a valid session are answered with 401.
func Middleware(sessions *session.Manager, cookieName string) fiber.Handler {
	if cookieName == "" {
		cookieName = handler.DefaultCookieName
	}

	return func(c *fiber.Ctx) error {
		sess, err := sessions.Get(c.Cookies(cookieName))
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				log.Error().Err(err).Msg("failed to read session")
			}

			return unauthorized(c)
		}

		c.Locals(LocalsSession, sess)
		c.Locals(accesslog.LocalsUserID, sess.Username)

		return c.Next()
	}
}

// SessionFrom returns the session stored by Middleware, or nil.
func SessionFrom(c *fiber.Ctx) *session.Session {
	sess, _ := c.Locals(LocalsSession).(*session.Session)
	return sess
}

// RequireFeature lets the request through only when the session user holds the named feature.
func RequireFeature(svc *authz.Service, feature string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := SessionFrom(c)
		if sess == nil {
			return unauthorized(c)
		}

		ok, err := svc.UserHasFeatureNamed(c.UserContext(), sess.UserID, feature)
		if err != nil {
			log.Error().Err(err).Str("user_id", sess.UserID).Str("feature", feature).
				Msg("failed to check feature")

			return handler.Fail(c, "check access", err)
		}

		if !ok {
			log.Warn().Str("user_id", sess.UserID).Str("feature", feature).
				Msg("user lacks required feature")

			return handler.Fail(c, "access "+c.Path(), authz.ErrForbidden)
		}

		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx) error {
	status := authz.StatusFor("authenticate", errUnauthenticated)
	return c.Status(fiber.StatusUnauthorized).JSON(handler.Response{Status: &status})
}
