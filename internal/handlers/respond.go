package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/trentd187/golf-match-tracker/internal/events"
	"github.com/trentd187/golf-match-tracker/internal/middleware"
	"github.com/trentd187/golf-match-tracker/internal/validation"
)

// Publisher is the part of the event hub handlers need: announcing a change.
type Publisher interface {
	Publish(events.Event) bool
}

// data writes a success envelope: {"data": v}.
func data(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(fiber.Map{"data": v})
}

// badRequest writes a 400 for a request the handler couldn't even read.
func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// fail maps a service error onto the error envelope:
//   - validation.Errors         → 400 with the messages in "details"
//   - gorm.ErrRecordNotFound    → 404 "<noun> not found"
//   - anything else             → 500 "failed to <verb> <noun>", logged with the cause
func fail(c *fiber.Ctx, err error, verb, noun string) error {
	var verr validation.Errors
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "validation failed",
			"details": []string(verr),
		})
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": noun + " not found"})
	}

	msg := "failed to " + verb + " " + noun
	middleware.Logger(c, zap.L()).Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msg})
}

// paramID reads the :id route parameter.
func paramID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}

// publish announces a change. A nil Publisher is allowed so handlers can be used
// without a running hub.
func publish(p Publisher, topic, action string, id uuid.UUID) {
	if p == nil {
		return
	}
	p.Publish(events.Event{Topic: topic, Action: action, ID: id.String()})
}
