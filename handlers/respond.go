package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"cyber-battleship/services"
)

// respondError maps the service error taxonomy onto HTTP statuses with a
// uniform {"error": ...} body.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	var validationErr *services.ValidationError
	var notFoundErr *services.NotFoundError
	var conflictErr *services.ConflictError
	switch {
	case errors.As(err, &validationErr):
		status = fiber.StatusBadRequest
	case errors.As(err, &notFoundErr):
		status = fiber.StatusNotFound
	case errors.As(err, &conflictErr):
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
