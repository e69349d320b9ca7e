package handlers

import (
	"math/rand/v2"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/trentd187/golf-match-tracker/internal/events"
	"github.com/trentd187/golf-match-tracker/internal/models"
	"github.com/trentd187/golf-match-tracker/internal/services"
)

// CheckNameRequest is the body of POST /api/v1/teams/check-name.
type CheckNameRequest struct {
	Name      string `json:"name"`
	ExcludeID string `json:"exclude_id,omitempty"` // Set when renaming, so a team doesn't clash with itself
}

func GetTeams(svc *services.TeamService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		teams, err := svc.List(c.UserContext())
		if err != nil {
			return fail(c, err, "list", "teams")
		}
		return data(c, fiber.StatusOK, teams)
	}
}

func GetTeam(svc *services.TeamService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return badRequest(c, "invalid team id")
		}
		team, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return fail(c, err, "fetch", "team")
		}
		return data(c, fiber.StatusOK, team)
	}
}

// GetTeamPlayers handles GET /api/v1/teams/:id/players.
func GetTeamPlayers(svc *services.TeamService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return badRequest(c, "invalid team id")
		}
		players, err := svc.Players(c.UserContext(), id)
		if err != nil {
			return fail(c, err, "fetch", "team")
		}
		return data(c, fiber.StatusOK, players)
	}
}

// CreateTeam handles POST /api/v1/teams. New players named in the body are created too,
// so both the teams and players topics are notified.
func CreateTeam(svc *services.TeamService, pub Publisher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in models.TeamInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid request body")
		}
		team, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return fail(c, err, "create", "team")
		}
		publish(pub, events.TopicTeams, events.ActionCreated, team.ID)
		existing := make(map[string]bool, len(in.Players))
		for _, p := range in.Players {
			existing[p.ID] = true
		}
		for _, m := range team.Members {
			if !existing[m.PlayerID.String()] {
				publish(pub, events.TopicPlayers, events.ActionCreated, m.PlayerID)
			}
		}
		return data(c, fiber.StatusCreated, team)
	}
}

func UpdateTeam(svc *services.TeamService, pub Publisher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return badRequest(c, "invalid team id")
		}
		var in models.TeamPatch
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid request body")
		}
		team, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return fail(c, err, "update", "team")
		}
		publish(pub, events.TopicTeams, events.ActionUpdated, id)
		return data(c, fiber.StatusOK, team)
	}
}

func DeleteTeam(svc *services.TeamService, pub Publisher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return badRequest(c, "invalid team id")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return fail(c, err, "delete", "team")
		}
		publish(pub, events.TopicTeams, events.ActionDeleted, id)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// CheckTeamName handles POST /api/v1/teams/check-name: {name} → {exists}.
func CheckTeamName(svc *services.TeamService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req CheckNameRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		if strings.TrimSpace(req.Name) == "" {
			return badRequest(c, "name is required")
		}
		exclude := uuid.Nil
		if req.ExcludeID != "" {
			id, err := uuid.Parse(req.ExcludeID)
			if err != nil {
				return badRequest(c, "invalid exclude_id")
			}
			exclude = id
		}
		exists, err := svc.NameExists(c.UserContext(), req.Name, exclude)
		if err != nil {
			return fail(c, err, "check", "team name")
		}
		return data(c, fiber.StatusOK, fiber.Map{"exists": exists})
	}
}

// GenerateTeamName handles GET /api/v1/teams/generate-name.
func GenerateTeamName(svc *services.TeamService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		name, err := svc.GenerateName(c.UserContext(), rng)
		if err != nil {
			return fail(c, err, "generate", "team name")
		}
		return data(c, fiber.StatusOK, fiber.Map{"name": name})
	}
}

// FindTeamByPlayers handles GET /api/v1/teams/find-by-players?playerIds=a,b and returns
// the team made up of exactly those two players.
func FindTeamByPlayers(svc *services.TeamService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		parts := strings.Split(c.Query("playerIds"), ",")
		if len(parts) != 2 {
			return badRequest(c, "playerIds must list exactly two player ids")
		}
		ids := make([]uuid.UUID, 2)
		for i, p := range parts {
			id, err := uuid.Parse(strings.TrimSpace(p))
			if err != nil {
				return badRequest(c, "invalid player id")
			}
			ids[i] = id
		}
		team, err := svc.FindByPlayers(c.UserContext(), ids[0], ids[1])
		if err != nil {
			return fail(c, err, "find", "team")
		}
		return data(c, fiber.StatusOK, team)
	}
}
