package handlers

import (
	"errors"
	"log"

	"chore-quest-system/services"

	"github.com/gofiber/fiber/v2"
)

// errorResponse maps the engine's error taxonomy onto HTTP statuses.
func errorResponse(c *fiber.Ctx, err error) error {
	var status int
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrUnauthenticated):
		status = fiber.StatusUnauthorized
	case errors.Is(err, services.ErrDuplicateEmail),
		errors.Is(err, services.ErrAlreadyLinked),
		errors.Is(err, services.ErrAlreadyCompleted),
		errors.Is(err, services.ErrAlreadyConfirmed),
		errors.Is(err, services.ErrInvalidState):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrInvalidDifficulty),
		errors.Is(err, services.ErrInsufficientGold):
		status = fiber.StatusBadRequest
	default:
		log.Printf("❌ [HTTP] internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func principalID(c *fiber.Ctx) string {
	id, _ := c.Locals("principal_id").(string)
	return id
}
