package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campusdesk/campusdesk/internal/auth"
	"github.com/campusdesk/campusdesk/internal/authz"
	"github.com/campusdesk/campusdesk/internal/config"
	"github.com/campusdesk/campusdesk/internal/web/session"
)

// Env bundles what handlers need to serve requests.
type Env struct {
	Config   *config.Config
	Authz    *authz.Service
	Users    *auth.LocalProvider
	Sessions *session.Manager
}

// Valid reports whether every dependency is set.
func (e *Env) Valid() bool {
	return e != nil && e.Config != nil && e.Authz != nil && e.Users != nil && e.Sessions != nil
}

// CookieName returns the configured session cookie name.
func (e *Env) CookieName() string {
	if e.Config.Webserver.Session.CookieName == "" {
		return DefaultCookieName
	}

	return e.Config.Webserver.Session.CookieName
}

// Service is the interface for a web handler service.
// Handlers register their routes on router, which may be the app or an API group.
type Service interface {
	Init(router fiber.Router, env *Env) error
}
