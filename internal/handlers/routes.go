package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/golf-match-tracker/internal/events"
	"github.com/trentd187/golf-match-tracker/internal/services"
)

// Register mounts every API route on r, which is expected to be the authenticated
// /api/v1 group. Fixed paths under /teams are registered before /teams/:id so they
// aren't taken for ids.
func Register(r fiber.Router, svc *services.Services, hub *events.Hub) {
	var pub Publisher
	if hub != nil {
		pub = hub
	}

	// Courses
	r.Get("/courses", GetCourses(svc.Courses))
	r.Post("/courses", CreateCourse(svc.Courses, pub))
	r.Get("/courses/:id", GetCourse(svc.Courses))
	r.Patch("/courses/:id", UpdateCourse(svc.Courses, pub))
	r.Delete("/courses/:id", DeleteCourse(svc.Courses, pub))

	// Teams
	r.Get("/teams", GetTeams(svc.Teams))
	r.Post("/teams", CreateTeam(svc.Teams, pub))
	r.Post("/teams/check-name", CheckTeamName(svc.Teams))
	r.Get("/teams/find-by-players", FindTeamByPlayers(svc.Teams))
	r.Get("/teams/generate-name", GenerateTeamName(svc.Teams))
	r.Get("/teams/:id", GetTeam(svc.Teams))
	r.Patch("/teams/:id", UpdateTeam(svc.Teams, pub))
	r.Delete("/teams/:id", DeleteTeam(svc.Teams, pub))
	r.Get("/teams/:id/players", GetTeamPlayers(svc.Teams))

	// Matches
	r.Get("/matches", GetMatches(svc.Matches))
	r.Post("/matches", CreateMatch(svc.Matches, pub))
	r.Get("/matches/:id", GetMatch(svc.Matches))
	r.Patch("/matches/:id", UpdateMatch(svc.Matches, pub))
	r.Delete("/matches/:id", DeleteMatch(svc.Matches, pub))
	r.Post("/matches/:id/holes", AddMatchHoles(svc.Matches, pub))
	r.Patch("/matches/:id/holes", ReplaceMatchHoles(svc.Matches, pub))

	// Players
	r.Get("/players", GetPlayers(svc.Players))
	r.Post("/players", CreatePlayer(svc.Players, pub))
	r.Get("/players/:id", GetPlayer(svc.Players))
	r.Patch("/players/:id", UpdatePlayerRating(svc.Players, pub))

	// Live change notifications
	if hub != nil {
		r.Get("/stream", Stream(hub))
	}
}
