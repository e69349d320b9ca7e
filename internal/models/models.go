// Package models defines the data structures (models) that map to database tables.
// GORM uses these structs to generate SQL queries and map database rows back to Go values.
// The struct field tags (the backtick strings like `gorm:"..."`) tell GORM how to handle
// each field: its column type, constraints, and relationships. The json tags control how
// the same structs are serialised in API responses.
//
// The data model records two-player team matches:
//   - Courses own exactly 18 Holes (par + distance), with front/back/total sums stored
//     alongside the course so list views don't have to re-add them.
//   - Teams are two Players joined through TeamMember rows; one team is "your team".
//   - Matches reference a course, both teams and the four players, and own one
//     HoleResult per hole played (win/loss/tie from your team's perspective).
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- Enums ---
// Named string types plus constants give type safety while keeping the values
// human-readable in the database and in JSON.

// NinePlayed describes which holes a match covered.
type NinePlayed string

const (
	NineFront NinePlayed = "front" // Holes 1–9
	NineBack  NinePlayed = "back"  // Holes 10–18
	NineFull  NinePlayed = "full"  // All 18 holes
)

// Valid reports whether n is one of the known values.
func (n NinePlayed) Valid() bool {
	switch n {
	case NineFront, NineBack, NineFull:
		return true
	}
	return false
}

// Outcome is the result of a single hole from your team's perspective.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomeTie  Outcome = "tie"
)

// Valid reports whether o is one of the known values.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeWin, OutcomeLoss, OutcomeTie:
		return true
	}
	return false
}

// HolesPerCourse is the number of holes every course must carry.
const HolesPerCourse = 18

// --- Models ---

// Course represents a golf course. The par and distance sums are derived from the
// holes and rewritten every time the holes change.
type Course struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string    `gorm:"not null" json:"name"`
	FrontPar      int       `gorm:"not null;default:0" json:"front_par"`
	BackPar       int       `gorm:"not null;default:0" json:"back_par"`
	TotalPar      int       `gorm:"not null;default:0" json:"total_par"`
	FrontDistance float64   `gorm:"not null;default:0" json:"front_distance"`
	BackDistance  float64   `gorm:"not null;default:0" json:"back_distance"`
	TotalDistance float64   `gorm:"not null;default:0" json:"total_distance"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Holes         []Hole    `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"holes,omitempty"` // One-to-many: exactly 18 once created
}

// Hole stores the par and distance of one hole on a course.
// The unique index (idx_course_hole) prevents two rows for the same hole number.
type Hole struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_course_hole" json:"course_id"`
	HoleNumber int       `gorm:"not null;uniqueIndex:idx_course_hole" json:"hole_number"` // 1–18
	Par        int       `gorm:"not null" json:"par"`                                     // 2–6
	Distance   float64   `gorm:"not null" json:"distance"`                                // Yards; > 0 and ≤ 1000
}

// Player is an individual golfer. RecentRating moves by the rating delta recorded on
// each match the player's team plays as "your team".
type Player struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	RecentRating float64   `gorm:"not null;default:0" json:"recent_rating"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Team is a named pair of players. IsYourTeam marks the team matches are recorded
// for; at most one team is expected to carry it.
type Team struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string       `gorm:"not null" json:"name"`
	IsYourTeam bool         `gorm:"not null;default:false" json:"is_your_team"`
	IsActive   bool         `gorm:"not null;default:true" json:"is_active"` // Inactive teams no longer reserve their name
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
	Members    []TeamMember `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
}

// TeamMember is a join table placing a Player onto a Team.
// The composite primary key stops the same player joining a team twice.
type TeamMember struct {
	TeamID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"team_id"`
	PlayerID uuid.UUID `gorm:"type:uuid;primaryKey" json:"player_id"`
	Player   Player    `gorm:"foreignKey:PlayerID" json:"player"`
}

// Match records one match between your team and an opponent team.
//
// Scores are stored doubled (a won hole is 2, a tied hole is 1) so half points never
// need a float column. RatingChange is the signed delta that was applied to both of
// your team's players when the match was saved.
type Match struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	DatePlayed     time.Time  `gorm:"not null" json:"date_played"`
	CourseID       uuid.UUID  `gorm:"type:uuid;not null" json:"course_id"`
	YourTeamID     uuid.UUID  `gorm:"type:uuid;not null" json:"your_team_id"`
	OpponentTeamID uuid.UUID  `gorm:"type:uuid;not null" json:"opponent_team_id"`
	NinePlayed     NinePlayed `gorm:"type:varchar(5);not null;default:'front'" json:"nine_played"`

	// The four players and their ratings at the time the match was played.
	YourPlayer1ID         uuid.UUID `gorm:"type:uuid;not null" json:"your_player1_id"`
	YourPlayer2ID         uuid.UUID `gorm:"type:uuid;not null" json:"your_player2_id"`
	OpponentPlayer1ID     uuid.UUID `gorm:"type:uuid;not null" json:"opponent_player1_id"`
	OpponentPlayer2ID     uuid.UUID `gorm:"type:uuid;not null" json:"opponent_player2_id"`
	YourPlayer1Rating     float64   `gorm:"not null;default:0" json:"your_player1_rating"`
	YourPlayer2Rating     float64   `gorm:"not null;default:0" json:"your_player2_rating"`
	OpponentPlayer1Rating float64   `gorm:"not null;default:0" json:"opponent_player1_rating"`
	OpponentPlayer2Rating float64   `gorm:"not null;default:0" json:"opponent_player2_rating"`

	HolesWon      int        `gorm:"not null;default:0" json:"holes_won"`
	HolesTied     int        `gorm:"not null;default:0" json:"holes_tied"`
	HolesLost     int        `gorm:"not null;default:0" json:"holes_lost"`
	YourScore     int        `gorm:"not null;default:0" json:"your_score"`     // Doubled
	OpponentScore int        `gorm:"not null;default:0" json:"opponent_score"` // Doubled
	WinnerID      *uuid.UUID `gorm:"type:uuid" json:"winner_id"`               // nil = unresolved
	RatingChange  float64    `gorm:"not null;default:0" json:"rating_change"`
	Playoffs      bool       `gorm:"not null;default:false" json:"playoffs"`
	Notes         string     `gorm:"not null;default:''" json:"notes"`
	Tags          StringList `gorm:"type:text" json:"tags"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	HoleResults []HoleResult `gorm:"foreignKey:MatchID;constraint:OnDelete:CASCADE" json:"hole_results,omitempty"`
}

// MatchListItem is a match row flattened with the display names of everything it
// references. A reference whose row has gone missing yields an empty name.
type MatchListItem struct {
	Match
	CourseName          string `json:"course_name"`
	YourTeamName        string `json:"your_team_name"`
	OpponentTeamName    string `json:"opponent_team_name"`
	YourPlayer1Name     string `json:"your_player1_name"`
	YourPlayer2Name     string `json:"your_player2_name"`
	OpponentPlayer1Name string `json:"opponent_player1_name"`
	OpponentPlayer2Name string `json:"opponent_player2_name"`
}

// HoleResult is the outcome of one hole in a match.
type HoleResult struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MatchID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_match_hole" json:"match_id"`
	HoleNumber int       `gorm:"not null;uniqueIndex:idx_match_hole" json:"hole_number"`
	Result     Outcome   `gorm:"type:varchar(4);not null" json:"result"`
}

// --- ID hooks ---
// GORM calls BeforeCreate right before the INSERT. Generating the UUID here (instead of
// relying on the database default) means the ID is known to the caller straight away,
// which the compensation steps in the services rely on.

func (c *Course) BeforeCreate(*gorm.DB) error     { c.ID = ensureID(c.ID); return nil }
func (h *Hole) BeforeCreate(*gorm.DB) error       { h.ID = ensureID(h.ID); return nil }
func (p *Player) BeforeCreate(*gorm.DB) error     { p.ID = ensureID(p.ID); return nil }
func (t *Team) BeforeCreate(*gorm.DB) error       { t.ID = ensureID(t.ID); return nil }
func (m *Match) BeforeCreate(*gorm.DB) error      { m.ID = ensureID(m.ID); return nil }
func (r *HoleResult) BeforeCreate(*gorm.DB) error { r.ID = ensureID(r.ID); return nil }

func ensureID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}

// All lists every model in dependency order. Used by AutoMigrate in tests; production
// schema changes go through the SQL files in migrations/.
func All() []any {
	return []any{
		&Course{},
		&Hole{},
		&Player{},
		&Team{},
		&TeamMember{},
		&Match{},
		&HoleResult{},
	}
}
