// Package auth provides the session and feature checks of the admin API.
//
// Middleware validates the session cookie and puts the session into fiber.Locals,
// where handlers read it with SessionFrom. RequireFeature gates a route on a
// catalog feature of the current user.
//
// Usage:
//
//	api := app.Group("/api", authmiddleware.Middleware(sessions, cfg.Webserver.Session.CookieName))
//	api.Get("/roles", authmiddleware.RequireFeature(svc, authz.FeatureAdminRoles), list)
package auth
