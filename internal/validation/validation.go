// Package validation checks user-supplied payloads before anything reaches the store.
//
// Every predicate returns "" when the value is acceptable and a human-readable message
// otherwise. The per-entity validators run all predicates and collect the messages in
// order, so a caller can show every problem at once instead of stopping at the first.
// Nothing in this package panics or touches the database; the same functions run in the
// API handlers and in the client repositories before a request is sent.
package validation

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/trentd187/golf-match-tracker/internal/models"
	"github.com/trentd187/golf-match-tracker/internal/scoring"
)

// Messages that callers (and tests) match on.
const (
	MsgTiedNeedsPlayoff      = "Match is tied - must go to playoffs"
	MsgPlayoffWinnerRequired = "Playoff winner is required"
	MsgCourseHoleCount       = "Course must have exactly 18 holes"
)

const (
	maxTags      = 10
	maxTagLength = 30
)

// Errors is an ordered list of validation messages. It implements error so services
// can return it directly; an empty list means valid.
type Errors []string

func (e Errors) Error() string {
	return "validation failed: " + strings.Join(e, "; ")
}

// Add appends msg when it is non-empty.
func (e *Errors) Add(msg string) {
	if msg != "" {
		*e = append(*e, msg)
	}
}

// Err returns nil for an empty list so the result can be returned as a plain error.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// --- Field predicates ---

func lengthBetween(label, value string, minLen, maxLen int) string {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	switch {
	case n == 0:
		return label + " is required"
	case n < minLen:
		return fmt.Sprintf("%s must be at least %d characters", label, minLen)
	case n > maxLen:
		return fmt.Sprintf("%s must be at most %d characters", label, maxLen)
	}
	return ""
}

// CourseName accepts 3 to 100 characters after trimming.
func CourseName(name string) string {
	return lengthBetween("Course name", name, 3, 100)
}

// TeamName accepts 3 to 50 characters after trimming.
func TeamName(name string) string {
	return lengthBetween("Team name", name, 3, 50)
}

// PlayerName only requires something other than whitespace.
func PlayerName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Player name is required"
	}
	return ""
}

// Rating rejects NaN and infinities, which JSON can't carry back out anyway.
func Rating(r float64) string {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return "Rating must be a number"
	}
	return ""
}

// HolePar requires an integer par from 2 to 6.
func HolePar(par *int) string {
	if par == nil {
		return "Par is required"
	}
	if *par < 2 || *par > 6 {
		return "Par must be between 2 and 6"
	}
	return ""
}

// HoleDistance requires a distance above 0 and at most 1000.
func HoleDistance(distance *float64) string {
	switch {
	case distance == nil:
		return "Distance is required"
	case math.IsNaN(*distance):
		return "Distance must be a number"
	case *distance <= 0:
		return "Distance must be greater than 0"
	case *distance > 1000:
		return "Distance must be at most 1000"
	}
	return ""
}

// HoleNumber requires 1 to 18.
func HoleNumber(n int) string {
	if n < 1 || n > models.HolesPerCourse {
		return "Hole number must be between 1 and 18"
	}
	return ""
}

// HoleResult accepts win, loss, tie, or nil for a hole not decided yet.
func HoleResult(r *models.Outcome) string {
	if r != nil && !r.Valid() {
		return "Result must be win, loss, or tie"
	}
	return ""
}

// ParseDate reads a match date as either YYYY-MM-DD or RFC 3339.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// MatchDate requires a parseable date that is not after now. A bare date is a calendar
// day, so it is compared with now's day in now's own location, not with UTC midnight.
func MatchDate(s string, now time.Time) string {
	if strings.TrimSpace(s) == "" {
		return "Date played is required"
	}
	t, err := ParseDate(s)
	if err != nil {
		return "Date played is not a valid date"
	}
	if isDateOnly(s) {
		y, m, d := now.Date()
		today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		if t.After(today) {
			return "Date played cannot be in the future"
		}
		return ""
	}
	if t.After(now) {
		return "Date played cannot be in the future"
	}
	return ""
}

func isDateOnly(s string) bool {
	_, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	return err == nil
}

// TeamID requires a non-empty, well-formed id. Whether the row exists is left to the store.
func TeamID(label, id string) string {
	return requiredID(label, id)
}

func requiredID(label, id string) string {
	if strings.TrimSpace(id) == "" {
		return label + " is required"
	}
	return optionalID(label, id)
}

func optionalID(label, id string) string {
	if id == "" {
		return ""
	}
	if _, err := uuid.Parse(id); err != nil {
		return label + " is not a valid id"
	}
	return ""
}

// Score requires a non-negative value.
func Score(label string, n int) string {
	if n < 0 {
		return label + " must be a non-negative number"
	}
	return ""
}

// WinnerID checks a declared winner against the tally. A nil winner is always accepted
// here; whether a level match needs one is TiedMatchNeedsPlayoff's concern.
func WinnerID(winner *string, yourTeamID, opponentTeamID string, s scoring.Summary, playoffs bool) string {
	if winner == nil {
		return ""
	}
	var mine, theirs int
	switch *winner {
	case yourTeamID:
		mine, theirs = s.YourScore, s.OpponentScore
	case opponentTeamID:
		mine, theirs = s.OpponentScore, s.YourScore
	default:
		return "Winner must be one of the two teams"
	}
	if !playoffs && mine <= theirs {
		return "Winner must have the higher score unless the match went to playoffs"
	}
	return ""
}

// TiedMatchNeedsPlayoff rejects a fully scored level match that isn't marked as a
// playoff, and a playoff that doesn't name its winner.
func TiedMatchNeedsPlayoff(s scoring.Summary, expectedHoles int, playoffs bool, winner *string) string {
	if !s.Complete(expectedHoles) || !s.Tied() {
		return ""
	}
	if !playoffs {
		return MsgTiedNeedsPlayoff
	}
	if winner == nil || *winner == "" {
		return MsgPlayoffWinnerRequired
	}
	return ""
}

// Tag accepts 1 to 30 characters after trimming.
func Tag(tag string) string {
	n := utf8.RuneCountInString(strings.TrimSpace(tag))
	if n == 0 {
		return "Tags cannot be empty"
	}
	if n > maxTagLength {
		return fmt.Sprintf("Tag %q must be at most %d characters", tag, maxTagLength)
	}
	return ""
}
