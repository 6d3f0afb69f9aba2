package handlers

import (
	"errors"
	"foodia-handoff/domain"
	"foodia-handoff/internal/api/presenters"

	"github.com/gofiber/fiber/v2"
)

// errorStatus maps the error taxonomy onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotTransactionParty):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrPreconditionFailed):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrTransientIO):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func failure(c *fiber.Ctx, message string, err error) error {
	return presenters.ErrorResponse(c, errorStatus(err), message, err)
}
