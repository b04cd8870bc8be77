package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateRequest checks a DTO against its `validate` tags. The returned
// error is a *fiber.Error carrying 400 so the error handler middleware maps
// it to the right status.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		messages := make([]string, 0, len(validationErrors))
		for _, fieldErr := range validationErrors {
			messages = append(messages, fmt.Sprintf("field '%s' failed on rule '%s'", fieldErr.Field(), fieldErr.Tag()))
		}
		return fiber.NewError(fiber.StatusBadRequest, strings.Join(messages, "; "))
	}

	return fiber.NewError(fiber.StatusBadRequest, err.Error())
}
