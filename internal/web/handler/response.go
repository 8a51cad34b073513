package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/campusdesk/campusdesk/internal/authz"
)

// Response is the body of every API reply.
type Response struct {
	Status *authz.Status `json:"status,omitempty"`
	Data   any           `json:"data,omitempty"`
}

// StatusCode maps an error kind onto an HTTP status.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, authz.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, authz.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, authz.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, authz.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, authz.ErrTransient):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// Fail answers a failed action with its status notification.
func Fail(c *fiber.Ctx, action string, err error) error {
	code := StatusCode(err)

	event := log.Warn()
	if code >= fiber.StatusInternalServerError {
		event = log.Error()
	}

	event.Err(err).Str("action", action).Int("status", code).Msg("request failed")

	status := authz.StatusFor(action, err)

	return c.Status(code).JSON(Response{Status: &status})
}

// Done answers a successful action with its status notification and payload.
func Done(c *fiber.Ctx, code int, action string, data any) error {
	status := authz.StatusFor(action, nil)

	return c.Status(code).JSON(Response{Status: &status, Data: data})
}

// Data answers a read with its payload only.
func Data(c *fiber.Ctx, data any) error {
	return c.JSON(Response{Data: data})
}
