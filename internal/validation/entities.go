package validation

import (
	"fmt"
	"time"

	"github.com/trentd187/golf-match-tracker/internal/models"
	"github.com/trentd187/golf-match-tracker/internal/scoring"
)

// HoleNumberAt returns the hole number a course form row stands for. Rows that leave
// hole_number out are numbered by position.
func HoleNumberAt(h models.HoleInput, index int) int {
	if h.HoleNumber == 0 {
		return index + 1
	}
	return h.HoleNumber
}

// Holes validates a full set of course holes. Messages about a single hole are
// prefixed with its 1-based position in the list.
func Holes(holes []models.HoleInput) Errors {
	var errs Errors
	if len(holes) != models.HolesPerCourse {
		errs.Add(MsgCourseHoleCount)
	}
	seen := make(map[int]bool, len(holes))
	for i, h := range holes {
		prefix := fmt.Sprintf("Hole %d: ", i+1)
		number := HoleNumberAt(h, i)
		if msg := HoleNumber(number); msg != "" {
			errs.Add(prefix + msg)
		} else if seen[number] {
			errs.Add(fmt.Sprintf("%shole number %d appears more than once", prefix, number))
		}
		seen[number] = true
		if msg := HolePar(h.Par); msg != "" {
			errs.Add(prefix + msg)
		}
		if msg := HoleDistance(h.Distance); msg != "" {
			errs.Add(prefix + msg)
		}
	}
	return errs
}

// Course validates a new course: a name and all 18 holes.
func Course(in models.CourseInput) Errors {
	var errs Errors
	errs.Add(CourseName(in.Name))
	errs = append(errs, Holes(in.Holes)...)
	return errs
}

// CourseUpdate validates a course edit. Holes are optional, but when present they must
// be the full set.
func CourseUpdate(in models.CourseInput) Errors {
	var errs Errors
	errs.Add(CourseName(in.Name))
	if in.Holes != nil {
		errs = append(errs, Holes(in.Holes)...)
	}
	return errs
}

// Player validates a new player.
func Player(in models.PlayerInput) Errors {
	var errs Errors
	errs.Add(PlayerName(in.Name))
	errs.Add(Rating(in.RecentRating))
	return errs
}

// Team validates a new team and its two members.
func Team(in models.TeamInput) Errors {
	var errs Errors
	errs.Add(TeamName(in.Name))
	if len(in.Players) != 2 {
		errs.Add("A team must have exactly two players")
	}
	ids := make(map[string]bool, len(in.Players))
	for i, p := range in.Players {
		prefix := fmt.Sprintf("Player %d: ", i+1)
		if p.ID != "" {
			if msg := optionalID("player id", p.ID); msg != "" {
				errs.Add(prefix + msg)
			} else if ids[p.ID] {
				errs.Add("A team cannot list the same player twice")
			}
			ids[p.ID] = true
			continue
		}
		if msg := PlayerName(p.Name); msg != "" {
			errs.Add(prefix + msg)
		}
		if msg := Rating(p.RecentRating); msg != "" {
			errs.Add(prefix + msg)
		}
	}
	return errs
}

// TeamPatch validates the fields a team edit sets.
func TeamPatch(in models.TeamPatch) Errors {
	var errs Errors
	if in.Name != nil {
		errs.Add(TeamName(*in.Name))
	}
	return errs
}

// HoleResults validates the per-hole outcomes of a match against the segment played.
func HoleResults(nine models.NinePlayed, results []models.HoleResultInput) Errors {
	var errs Errors
	first, last := scoring.HoleRange(nine)
	seen := make(map[int]bool, len(results))
	for _, r := range results {
		if msg := HoleNumber(r.HoleNumber); msg != "" {
			errs.Add(msg)
			continue
		}
		prefix := fmt.Sprintf("Hole %d: ", r.HoleNumber)
		if r.HoleNumber < first || r.HoleNumber > last {
			errs.Add(fmt.Sprintf("%soutside the %s nine", prefix, nine))
		}
		if seen[r.HoleNumber] {
			errs.Add(prefix + "recorded more than once")
		}
		seen[r.HoleNumber] = true
		if msg := HoleResult(r.Result); msg != "" {
			errs.Add(prefix + msg)
		}
	}
	return errs
}

// Match validates a complete match payload: references, date, hole results, tags, and
// the rules tying the tally to the declared winner.
func Match(in models.MatchInput, now time.Time) Errors {
	var errs Errors
	errs.Add(MatchDate(in.DatePlayed, now))
	errs.Add(requiredID("Course", in.CourseID))
	errs.Add(TeamID("Your team", in.YourTeamID))
	errs.Add(TeamID("Opponent team", in.OpponentTeamID))
	if in.YourTeamID != "" && in.YourTeamID == in.OpponentTeamID {
		errs.Add("Your team and opponent team must be different")
	}
	errs.Add(optionalID("Your player 1", in.YourPlayer1ID))
	errs.Add(optionalID("Your player 2", in.YourPlayer2ID))
	errs.Add(optionalID("Opponent player 1", in.OpponentPlayer1ID))
	errs.Add(optionalID("Opponent player 2", in.OpponentPlayer2ID))
	errs.Add(Rating(in.RatingChange))

	if !in.NinePlayed.Valid() {
		errs.Add("Nine played must be front, back, or full")
		return errs
	}
	errs = append(errs, HoleResults(in.NinePlayed, in.HoleResults)...)
	errs = append(errs, Tags(in.Tags)...)

	s := scoring.TallyInputs(in.HoleResults)
	errs.Add(Score("Your score", s.YourScore))
	errs.Add(Score("Opponent score", s.OpponentScore))
	errs.Add(WinnerID(in.WinnerID, in.YourTeamID, in.OpponentTeamID, s, in.Playoffs))
	errs.Add(TiedMatchNeedsPlayoff(s, scoring.ExpectedHoles(in.NinePlayed), in.Playoffs, in.WinnerID))
	return errs
}

// Tags validates a match's tag list.
func Tags(tags []string) Errors {
	var errs Errors
	if len(tags) > maxTags {
		errs.Add(fmt.Sprintf("A match can have at most %d tags", maxTags))
	}
	for _, t := range tags {
		errs.Add(Tag(t))
	}
	return errs
}
