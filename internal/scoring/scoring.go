// Package scoring holds the arithmetic behind a match: counting hole outcomes,
// turning them into doubled scores and a winner, signing the rating delta, and summing
// a course's par and distance.
//
// Scores are kept doubled (won hole = 2, tied hole = 1) so a 4.5 to 4.5 match is 9 to 9
// and never needs a float.
package scoring

import (
	"github.com/google/uuid"

	"github.com/trentd187/golf-match-tracker/internal/models"
)

// Summary is the tally of a set of hole outcomes.
type Summary struct {
	HolesWon      int `json:"holes_won"`
	HolesTied     int `json:"holes_tied"`
	HolesLost     int `json:"holes_lost"`
	YourScore     int `json:"your_score"`     // Doubled
	OpponentScore int `json:"opponent_score"` // Doubled
}

// Tally counts outcomes. Unknown values are ignored.
func Tally(outcomes []models.Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		switch o {
		case models.OutcomeWin:
			s.HolesWon++
		case models.OutcomeLoss:
			s.HolesLost++
		case models.OutcomeTie:
			s.HolesTied++
		}
	}
	s.YourScore = s.HolesWon*2 + s.HolesTied
	s.OpponentScore = s.HolesLost*2 + s.HolesTied
	return s
}

// TallyInputs tallies hole results as submitted; undecided holes don't count.
func TallyInputs(results []models.HoleResultInput) Summary {
	outcomes := make([]models.Outcome, 0, len(results))
	for _, r := range results {
		if r.Result != nil {
			outcomes = append(outcomes, *r.Result)
		}
	}
	return Tally(outcomes)
}

// TallyResults tallies stored hole results.
func TallyResults(results []models.HoleResult) Summary {
	outcomes := make([]models.Outcome, len(results))
	for i, r := range results {
		outcomes[i] = r.Result
	}
	return Tally(outcomes)
}

// Played is the number of holes with a decided outcome.
func (s Summary) Played() int {
	return s.HolesWon + s.HolesTied + s.HolesLost
}

// Complete reports whether every hole of the played segment has an outcome.
func (s Summary) Complete(expected int) bool {
	return expected > 0 && s.Played() == expected
}

// Tied reports whether the doubled scores are level.
func (s Summary) Tied() bool {
	return s.YourScore == s.OpponentScore
}

// Margin is the winning margin on the real (half point) scale.
func (s Summary) Margin() float64 {
	diff := s.YourScore - s.OpponentScore
	if diff < 0 {
		diff = -diff
	}
	return float64(diff) / 2
}

// Apply copies the tally onto a match row.
func (s Summary) Apply(m *models.Match) {
	m.HolesWon = s.HolesWon
	m.HolesTied = s.HolesTied
	m.HolesLost = s.HolesLost
	m.YourScore = s.YourScore
	m.OpponentScore = s.OpponentScore
}

// Winner derives the winning team. In a playoff the supplied winner stands regardless
// of the tally; otherwise the higher score wins and a level score has no winner.
func Winner(s Summary, yourTeam, opponentTeam uuid.UUID, playoffs bool, playoffWinner *uuid.UUID) *uuid.UUID {
	if playoffs && playoffWinner != nil {
		w := *playoffWinner
		return &w
	}
	switch {
	case s.YourScore > s.OpponentScore:
		return &yourTeam
	case s.OpponentScore > s.YourScore:
		return &opponentTeam
	}
	return nil
}

// AppliedRatingDelta signs a caller-supplied rating change for your team's players:
// positive when your team won, negative when it lost, zero with no winner. Only the
// magnitude of change is used; the caller's sign is not trusted.
func AppliedRatingDelta(change float64, winner *uuid.UUID, yourTeam uuid.UUID) float64 {
	if winner == nil || change == 0 {
		return 0
	}
	if change < 0 {
		change = -change
	}
	if *winner == yourTeam {
		return change
	}
	return -change
}

// HoleRange returns the first and last hole number of a played segment.
func HoleRange(nine models.NinePlayed) (first, last int) {
	switch nine {
	case models.NineBack:
		return 10, 18
	case models.NineFull:
		return 1, 18
	default:
		return 1, 9
	}
}

// ExpectedHoles is the number of holes in a played segment.
func ExpectedHoles(nine models.NinePlayed) int {
	first, last := HoleRange(nine)
	return last - first + 1
}
