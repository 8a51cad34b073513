// Package me answers the current user's own authorization questions.
package me

import (
	"errors"
	"sort"

	"github.com/gofiber/fiber/v2"

	"github.com/campusdesk/campusdesk/internal/authz"
	"github.com/campusdesk/campusdesk/internal/web/handler"
	authmw "github.com/campusdesk/campusdesk/internal/web/middleware/auth"
)

// Path is the route below the API group.
const Path = "/me"

// Features lists the feature names the user holds.
type Features struct {
	UserID   string   `json:"userId"`
	Username string   `json:"username"`
	Features []string `json:"features"`
}

// Decision is the answer of /me/can.
type Decision struct {
	Feature string `json:"feature"`
	Allowed bool   `json:"allowed"`
}

// Service serves /me.
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

	r := router.Group(Path)
	r.Get("/features", s.Features)
	r.Get("/can", s.Can)

	return nil
}

// Features returns the sorted feature names of the session user.
func (s *Service) Features(c *fiber.Ctx) error {
	sess := authmw.SessionFrom(c)

	set, err := s.env.Authz.UserFeatures(c.UserContext(), sess.UserID)
	if err != nil {
		return handler.Fail(c, "list my features", err)
	}

	names := set.Names()
	sort.Strings(names)

	return handler.Data(c, Features{UserID: sess.UserID, Username: sess.Username, Features: names})
}

// Can answers whether the session user holds ?feature=.
func (s *Service) Can(c *fiber.Ctx) error {
	const action = "check feature"

	feature := c.Query("feature")
	if feature == "" {
		return handler.Fail(c, action, authz.ErrFeatureNameEmpty)
	}

	sess := authmw.SessionFrom(c)

	ok, err := s.env.Authz.UserHasFeatureNamed(c.UserContext(), sess.UserID, feature)
	if err != nil {
		return handler.Fail(c, action, err)
	}

	return handler.Data(c, Decision{Feature: feature, Allowed: ok})
}
