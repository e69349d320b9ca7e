package models

// Input types are what API callers (and the client repositories) send. They are kept
// separate from the table structs because they allow values the database never
// stores: missing par/distance, a not-yet-decided hole, "create this player for me".

// HoleInput is one hole of a course form. Par and Distance are pointers so "missing"
// can be told apart from zero.
type HoleInput struct {
	HoleNumber int      `json:"hole_number"`
	Par        *int     `json:"par"`
	Distance   *float64 `json:"distance"`
}

// CourseInput is the payload for creating or updating a course.
type CourseInput struct {
	Name  string      `json:"name"`
	Holes []HoleInput `json:"holes"`
}

// PlayerInput is the payload for creating a player.
type PlayerInput struct {
	Name         string  `json:"name"`
	RecentRating float64 `json:"recent_rating"`
}

// TeamPlayerInput names one team member: either an existing player by ID, or a new
// player to create alongside the team.
type TeamPlayerInput struct {
	ID           string  `json:"id,omitempty"`
	Name         string  `json:"name,omitempty"`
	RecentRating float64 `json:"recent_rating,omitempty"`
}

// TeamInput is the payload for creating a team.
type TeamInput struct {
	Name       string            `json:"name"`
	IsYourTeam bool              `json:"is_your_team"`
	Players    []TeamPlayerInput `json:"players"`
}

// TeamPatch updates a team's scalar fields; nil fields are left alone.
type TeamPatch struct {
	Name       *string `json:"name,omitempty"`
	IsYourTeam *bool   `json:"is_your_team,omitempty"`
	IsActive   *bool   `json:"is_active,omitempty"`
}

// HoleResultInput is one hole outcome. A nil Result means the hole has not been
// decided yet (a match still being entered).
type HoleResultInput struct {
	HoleNumber int      `json:"hole_number"`
	Result     *Outcome `json:"result"`
}

// MatchInput is the payload for creating a match.
//
// Player IDs may be left empty: the service then takes them from the team's members.
// WinnerID is only needed for playoffs; otherwise it is derived from the hole results
// (a supplied value must agree with the tally).
type MatchInput struct {
	DatePlayed        string            `json:"date_played"`
	CourseID          string            `json:"course_id"`
	YourTeamID        string            `json:"your_team_id"`
	OpponentTeamID    string            `json:"opponent_team_id"`
	YourPlayer1ID     string            `json:"your_player1_id,omitempty"`
	YourPlayer2ID     string            `json:"your_player2_id,omitempty"`
	OpponentPlayer1ID string            `json:"opponent_player1_id,omitempty"`
	OpponentPlayer2ID string            `json:"opponent_player2_id,omitempty"`
	NinePlayed        NinePlayed        `json:"nine_played"`
	HoleResults       []HoleResultInput `json:"hole_results"`
	WinnerID          *string           `json:"winner_id,omitempty"`
	Playoffs          bool              `json:"playoffs"`
	RatingChange      float64           `json:"rating_change"`
	Notes             string            `json:"notes"`
	Tags              []string          `json:"tags"`
}

// MatchPatch updates a match. Nil fields are left alone; a non-nil HoleResults
// replaces the whole set of hole results.
type MatchPatch struct {
	DatePlayed   *string            `json:"date_played,omitempty"`
	CourseID     *string            `json:"course_id,omitempty"`
	NinePlayed   *NinePlayed        `json:"nine_played,omitempty"`
	HoleResults  *[]HoleResultInput `json:"hole_results,omitempty"`
	WinnerID     *string            `json:"winner_id,omitempty"`
	Playoffs     *bool              `json:"playoffs,omitempty"`
	RatingChange *float64           `json:"rating_change,omitempty"`
	Notes        *string            `json:"notes,omitempty"`
	Tags         *[]string          `json:"tags,omitempty"`
}
