package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/makeasinger/fretboard/internal/service"
	"github.com/makeasinger/fretboard/pkg/response"
)

// formatValidationErrors maps each failing field to the rule it broke
func formatValidationErrors(err error) any {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make(map[string]string, len(validationErrors))
		for _, e := range validationErrors {
			fields[e.Field()] = e.Tag()
		}
		return fields
	}
	return nil
}

// serviceError writes the response envelope for an error from a service
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case service.IsTheoryError(err):
		return response.TheoryError(c, err.Error())
	case errors.Is(err, service.ErrJobNotFound):
		return response.NotFound(c, "Job not found")
	case errors.Is(err, service.ErrJobForbidden):
		return response.Forbidden(c, "Job belongs to another user")
	case errors.Is(err, service.ErrJobNotCompleted):
		return response.ValidationError(c, "Job not completed", nil)
	case errors.Is(err, service.ErrJobAlreadyCompleted):
		return response.ValidationError(c, "Job already completed", nil)
	case errors.Is(err, service.ErrStorage):
		return response.StorageError(c, err.Error())
	default:
		return response.ServiceError(c, err.Error())
	}
}
