package handlers

import (
	"errors"
	"fmt"
	"log"

	"showtrack/internal/repositories"
	"showtrack/internal/services"

	"github.com/gofiber/fiber/v2"
)

// respondError maps a service error onto a JSON response. action names the
// failed operation in the generic 500 message, e.g. "inserting the show".
func respondError(c *fiber.Ctx, err error, action string) error {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "validation failed",
			"errors": validationErr.Fields,
		})
	case errors.Is(err, repositories.ErrShowNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "show not found",
		})
	default:
		log.Printf("Error %s in %s %s: %v", action, c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("An error occurred while %s", action),
		})
	}
}

func respondBadForm(c *fiber.Ctx, err error) error {
	log.Printf("Error parsing form in %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "invalid form submission",
	})
}

// ErrorHandler is the application-wide Fiber error handler. It renders router
// and framework errors as JSON and hides the details of anything unexpected.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"error": fiberErr.Message,
		})
	}

	log.Printf("Unhandled error in %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
	})
}
