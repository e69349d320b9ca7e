package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/golf-match-tracker/internal/events"
	"github.com/trentd187/golf-match-tracker/internal/models"
	"github.com/trentd187/golf-match-tracker/internal/services"
)

// RatingRequest is the body of PATCH /api/v1/players/:id.
type RatingRequest struct {
	RecentRating *float64 `json:"recent_rating"`
}

func GetPlayers(svc *services.PlayerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		players, err := svc.List(c.UserContext())
		if err != nil {
			return fail(c, err, "list", "players")
		}
		return data(c, fiber.StatusOK, players)
	}
}

func GetPlayer(svc *services.PlayerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return badRequest(c, "invalid player id")
		}
		player, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return fail(c, err, "fetch", "player")
		}
		return data(c, fiber.StatusOK, player)
	}
}

func CreatePlayer(svc *services.PlayerService, pub Publisher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in models.PlayerInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid request body")
		}
		player, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return fail(c, err, "create", "player")
		}
		publish(pub, events.TopicPlayers, events.ActionCreated, player.ID)
		return data(c, fiber.StatusCreated, player)
	}
}

// UpdatePlayerRating handles PATCH /api/v1/players/:id. Only the rating can change;
// success is 204 with no body.
func UpdatePlayerRating(svc *services.PlayerService, pub Publisher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return badRequest(c, "invalid player id")
		}
		var req RatingRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		if req.RecentRating == nil {
			return badRequest(c, "recent_rating is required")
		}
		if err := svc.UpdateRating(c.UserContext(), id, *req.RecentRating); err != nil {
			return fail(c, err, "update", "player")
		}
		publish(pub, events.TopicPlayers, events.ActionUpdated, id)
		return c.SendStatus(fiber.StatusNoContent)
	}
}
