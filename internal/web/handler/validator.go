package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/campusdesk/campusdesk/internal/authz"
)

var validate = validator.New() //nolint:gochecknoglobals

// Bind parses the request body into dst and validates its struct tags.
// Every failure wraps authz.ErrValidation.
func Bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fmt.Errorf("%w: malformed body: %w", authz.ErrValidation, err)
	}

	return Validate(dst)
}

// Validate checks the struct tags of data.
func Validate(data any) error {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", authz.ErrValidation, err)
	}

	failed := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		failed = append(failed, fe.Field()+" ("+fe.Tag()+")")
	}

	return fmt.Errorf("%w: invalid %s", authz.ErrValidation, strings.Join(failed, ", "))
}
