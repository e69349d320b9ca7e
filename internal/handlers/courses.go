// Package handlers contains the HTTP route handler functions for the Golf Match Tracker API.
//
// Each exported function follows the "handler factory" pattern: it takes the service it
// needs (and the event publisher, for writes) and returns a fiber.Handler. That keeps
// dependencies explicit without globals. Every response is wrapped in {"data": ...} on
// success or {"error": ..., "details": [...]} on failure.
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/golf-match-tracker/internal/events"
	"github.com/trentd187/golf-match-tracker/internal/models"
	"github.com/trentd187/golf-match-tracker/internal/services"
)

// GetCourses handles GET /api/v1/courses.
func GetCourses(svc *services.CourseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		courses, err := svc.List(c.UserContext())
		if err != nil {
			return fail(c, err, "list", "courses")
		}
		return data(c, fiber.StatusOK, courses)
	}
}

// GetCourse handles GET /api/v1/courses/:id and includes the 18 holes.
func GetCourse(svc *services.CourseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return badRequest(c, "invalid course id")
		}
		course, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return fail(c, err, "fetch", "course")
		}
		return data(c, fiber.StatusOK, course)
	}
}

// CreateCourse handles POST /api/v1/courses. The body carries the name and all 18 holes.
func CreateCourse(svc *services.CourseService, pub Publisher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in models.CourseInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid request body")
		}
		course, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return fail(c, err, "create", "course")
		}
		publish(pub, events.TopicCourses, events.ActionCreated, course.ID)
		return data(c, fiber.StatusCreated, course)
	}
}

// UpdateCourse handles PATCH /api/v1/courses/:id.
func UpdateCourse(svc *services.CourseService, pub Publisher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return badRequest(c, "invalid course id")
		}
		var in models.CourseInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid request body")
		}
		course, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return fail(c, err, "update", "course")
		}
		publish(pub, events.TopicCourses, events.ActionUpdated, id)
		return data(c, fiber.StatusOK, course)
	}
}

// DeleteCourse handles DELETE /api/v1/courses/:id.
func DeleteCourse(svc *services.CourseService, pub Publisher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return badRequest(c, "invalid course id")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return fail(c, err, "delete", "course")
		}
		publish(pub, events.TopicCourses, events.ActionDeleted, id)
		return c.SendStatus(fiber.StatusNoContent)
	}
}
