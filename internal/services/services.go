// Package services implements the data access layer: one service per entity, each
// issuing a small fixed sequence of queries through GORM. Multi-row writes run as a saga
// so a failure part way through is compensated rather than left half applied.
//
// Services return validation.Errors for problems the caller can fix, and
// gorm.ErrRecordNotFound (unwrapped, so errors.Is works) when an id doesn't exist.
package services

import (
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/trentd187/golf-match-tracker/internal/validation"
)

// Services bundles every service so the server can be wired with a single value.
type Services struct {
	Courses *CourseService
	Teams   *TeamService
	Players *PlayerService
	Matches *MatchService
}

// New builds all services on one database handle.
func New(db *gorm.DB, log *zap.Logger) *Services {
	players := NewPlayerService(db, log)
	return &Services{
		Courses: NewCourseService(db, log),
		Teams:   NewTeamService(db, log, players),
		Players: players,
		Matches: NewMatchService(db, log, players),
	}
}

// invalid wraps a single message as a validation error.
func invalid(msg string) error {
	return validation.Errors{msg}
}

// parseID parses an id that has already passed validation. An empty string is uuid.Nil.
func parseID(s string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// notFound turns a write that matched no row into gorm.ErrRecordNotFound.
func notFound(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
