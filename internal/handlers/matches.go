package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/trentd187/golf-match-tracker/internal/events"
	"github.com/trentd187/golf-match-tracker/internal/models"
	"github.com/trentd187/golf-match-tracker/internal/services"
)

// HoleResultsRequest is the body of POST and PATCH /api/v1/matches/:id/holes.
type HoleResultsRequest struct {
	HoleResults []models.HoleResultInput `json:"hole_results"`
}

// GetMatches handles GET /api/v1/matches: newest first, with display names.
func GetMatches(svc *services.MatchService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		matches, err := svc.List(c.UserContext())
		if err != nil {
			return fail(c, err, "list", "matches")
		}
		return data(c, fiber.StatusOK, matches)
	}
}

// GetMatch handles GET /api/v1/matches/:id, including hole results.
func GetMatch(svc *services.MatchService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return badRequest(c, "invalid match id")
		}
		match, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return fail(c, err, "fetch", "match")
		}
		return data(c, fiber.StatusOK, match)
	}
}

// CreateMatch handles POST /api/v1/matches. Your players' ratings move with the result,
// so the players topic is notified as well.
func CreateMatch(svc *services.MatchService, pub Publisher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in models.MatchInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid request body")
		}
		match, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return fail(c, err, "create", "match")
		}
		publishMatch(pub, events.ActionCreated, match)
		return data(c, fiber.StatusCreated, match)
	}
}

func UpdateMatch(svc *services.MatchService, pub Publisher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return badRequest(c, "invalid match id")
		}
		var patch models.MatchPatch
		if err := c.BodyParser(&patch); err != nil {
			return badRequest(c, "invalid request body")
		}
		match, err := svc.Update(c.UserContext(), id, patch)
		if err != nil {
			return fail(c, err, "update", "match")
		}
		publishMatch(pub, events.ActionUpdated, match)
		return data(c, fiber.StatusOK, match)
	}
}

func DeleteMatch(svc *services.MatchService, pub Publisher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return badRequest(c, "invalid match id")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return fail(c, err, "delete", "match")
		}
		publish(pub, events.TopicMatches, events.ActionDeleted, id)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// AddMatchHoles handles POST /api/v1/matches/:id/holes.
func AddMatchHoles(svc *services.MatchService, pub Publisher) fiber.Handler {
	return holesHandler(pub, func(c *fiber.Ctx, id uuid.UUID, results []models.HoleResultInput) (*models.Match, error) {
		return svc.AddHoleResults(c.UserContext(), id, results)
	})
}

// ReplaceMatchHoles handles PATCH /api/v1/matches/:id/holes.
func ReplaceMatchHoles(svc *services.MatchService, pub Publisher) fiber.Handler {
	return holesHandler(pub, func(c *fiber.Ctx, id uuid.UUID, results []models.HoleResultInput) (*models.Match, error) {
		return svc.ReplaceHoleResults(c.UserContext(), id, results)
	})
}

func holesHandler(pub Publisher, apply func(*fiber.Ctx, uuid.UUID, []models.HoleResultInput) (*models.Match, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return badRequest(c, "invalid match id")
		}
		var req HoleResultsRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		match, err := apply(c, id, req.HoleResults)
		if err != nil {
			return fail(c, err, "save hole results for", "match")
		}
		publishMatch(pub, events.ActionUpdated, match)
		return data(c, fiber.StatusOK, match)
	}
}

func publishMatch(pub Publisher, action string, m *models.Match) {
	publish(pub, events.TopicMatches, action, m.ID)
	if m.RatingChange != 0 || action == events.ActionUpdated {
		publish(pub, events.TopicPlayers, events.ActionUpdated, m.YourPlayer1ID)
		publish(pub, events.TopicPlayers, events.ActionUpdated, m.YourPlayer2ID)
	}
}
