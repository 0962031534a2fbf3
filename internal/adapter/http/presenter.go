package http

import (
	"errors"

	"resume-builder/internal/domain"
	"resume-builder/internal/export"
	"resume-builder/internal/pagination"
	"resume-builder/internal/usecase"
	"resume-builder/pkg/ai"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// fail maps a service error to its HTTP status. Unknown errors are logged and
// reported as 500 with a generic message.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return errorJSON(c, fiber.StatusNotFound, "resume not found")
	case errors.Is(err, usecase.ErrJobNotFound):
		return errorJSON(c, fiber.StatusNotFound, "export job not found")
	case errors.Is(err, usecase.ErrForbidden):
		return errorJSON(c, fiber.StatusForbidden, "forbidden")
	case errors.Is(err, usecase.ErrInvalidResume):
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ai.ErrInvalidRequest):
		return errorJSON(c, fiber.StatusBadRequest, "Missing required fields: jobTitle, experience, and skills.")
	case errors.Is(err, export.ErrNothingToExport):
		return errorJSON(c, fiber.StatusUnprocessableEntity, "resume has nothing to export")
	case errors.Is(err, pagination.ErrHostUnavailable):
		return errorJSON(c, fiber.StatusServiceUnavailable, "rendering is temporarily unavailable")
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
	return errorJSON(c, fiber.StatusInternalServerError, "internal error")
}
