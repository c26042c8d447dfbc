package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/medchart/internal/action"
	"github.com/Alijeyrad/medchart/internal/widget"
	"github.com/Alijeyrad/medchart/pkg/validate"
)

func ok(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"data": data})
}

func created(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": data})
}

func noContent(c fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func unauthorized(c fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
}

func notFound(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msg})
}

func conflict(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": msg})
}

func internalError(c fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

func validationFailed(c fiber.Ctx, verr *validate.Error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  "validation failed",
		"fields": verr.Fields,
	})
}

// actionResult writes a server action outcome: 200 on success, 422 with the
// failure message otherwise.
func actionResult(c fiber.Ctx, res action.Result) error {
	if !res.ActionSucceeded {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(res)
	}
	return c.JSON(res)
}

// mapInputError handles request bodies rejected before any action ran.
func mapInputError(c fiber.Ctx, err error) error {
	var verr *validate.Error
	var bad widget.ErrBadBody
	switch {
	case errors.As(err, &verr):
		return validationFailed(c, verr)
	case errors.As(err, &bad):
		return badRequest(c, "invalid request body")
	default:
		return internalError(c)
	}
}
