package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trentd187/golf-match-tracker/internal/models"
	"github.com/trentd187/golf-match-tracker/internal/saga"
	"github.com/trentd187/golf-match-tracker/internal/scoring"
	"github.com/trentd187/golf-match-tracker/internal/validation"
)

// MatchService reads and writes matches, their hole results, and the rating changes
// they cause.
type MatchService struct {
	db      *gorm.DB
	log     *zap.Logger
	players *PlayerService
	now     func() time.Time
}

func NewMatchService(db *gorm.DB, log *zap.Logger, players *PlayerService) *MatchService {
	return &MatchService{db: db, log: log.Named("matches"), players: players, now: time.Now}
}

const matchListSelect = `matches.*,
	COALESCE(courses.name, '') AS course_name,
	COALESCE(yt.name, '') AS your_team_name,
	COALESCE(ot.name, '') AS opponent_team_name,
	COALESCE(yp1.name, '') AS your_player1_name,
	COALESCE(yp2.name, '') AS your_player2_name,
	COALESCE(op1.name, '') AS opponent_player1_name,
	COALESCE(op2.name, '') AS opponent_player2_name`

// List returns every match, newest first, with display names joined in.
func (s *MatchService) List(ctx context.Context) ([]models.MatchListItem, error) {
	items := []models.MatchListItem{}
	err := s.listQuery(ctx).
		Order("matches.date_played DESC, matches.created_at DESC").
		Scan(&items).Error
	return items, err
}

// Summary returns a single match in list form.
func (s *MatchService) Summary(ctx context.Context, id uuid.UUID) (*models.MatchListItem, error) {
	var items []models.MatchListItem
	if err := s.listQuery(ctx).Where("matches.id = ?", id).Limit(1).Scan(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &items[0], nil
}

func (s *MatchService) listQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Match{}).
		Select(matchListSelect).
		Joins("LEFT JOIN courses ON courses.id = matches.course_id").
		Joins("LEFT JOIN teams yt ON yt.id = matches.your_team_id").
		Joins("LEFT JOIN teams ot ON ot.id = matches.opponent_team_id").
		Joins("LEFT JOIN players yp1 ON yp1.id = matches.your_player1_id").
		Joins("LEFT JOIN players yp2 ON yp2.id = matches.your_player2_id").
		Joins("LEFT JOIN players op1 ON op1.id = matches.opponent_player1_id").
		Joins("LEFT JOIN players op2 ON op2.id = matches.opponent_player2_id")
}

// Get returns one match with its hole results in hole order.
func (s *MatchService) Get(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	var m models.Match
	err := s.db.WithContext(ctx).
		Preload("HoleResults", func(db *gorm.DB) *gorm.DB { return db.Order("hole_number ASC") }).
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create records a match with its hole results and applies the rating change to your
// team's two players. Player ids left empty are taken from the teams' members.
func (s *MatchService) Create(ctx context.Context, in models.MatchInput) (*models.Match, error) {
	if in.NinePlayed == "" {
		in.NinePlayed = models.NineFront
	}
	if err := validation.Match(in, s.now()).Err(); err != nil {
		return nil, err
	}
	if err := s.resolvePlayers(ctx, &in); err != nil {
		return nil, err
	}

	m := models.Match{
		CourseID:          parseID(in.CourseID),
		YourTeamID:        parseID(in.YourTeamID),
		OpponentTeamID:    parseID(in.OpponentTeamID),
		NinePlayed:        in.NinePlayed,
		YourPlayer1ID:     parseID(in.YourPlayer1ID),
		YourPlayer2ID:     parseID(in.YourPlayer2ID),
		OpponentPlayer1ID: parseID(in.OpponentPlayer1ID),
		OpponentPlayer2ID: parseID(in.OpponentPlayer2ID),
		Playoffs:          in.Playoffs,
		Notes:             strings.TrimSpace(in.Notes),
		Tags:              models.StringList(trimTags(in.Tags)),
	}
	m.DatePlayed, _ = validation.ParseDate(in.DatePlayed)
	if err := s.checkCourse(ctx, m.CourseID); err != nil {
		return nil, err
	}
	if err := s.snapshotRatings(ctx, &m); err != nil {
		return nil, err
	}

	summary := scoring.TallyInputs(in.HoleResults)
	summary.Apply(&m)
	m.WinnerID = scoring.Winner(summary, m.YourTeamID, m.OpponentTeamID, m.Playoffs, optionalUUID(in.WinnerID))
	m.RatingChange = scoring.AppliedRatingDelta(in.RatingChange, m.WinnerID, m.YourTeamID)

	db := s.db.WithContext(ctx)
	yours := []uuid.UUID{m.YourPlayer1ID, m.YourPlayer2ID}
	err := saga.Run(ctx, s.log,
		saga.Step{
			Name: "insert match",
			Do: func(context.Context) error {
				return db.Omit(clause.Associations).Create(&m).Error
			},
			Undo: func(ctx context.Context) error {
				return s.db.WithContext(ctx).Delete(&models.Match{}, "id = ?", m.ID).Error
			},
		},
		s.insertResultsStep(db, &m.ID, in.HoleResults),
		s.adjustRatingsStep(yours, m.RatingChange),
	)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, m.ID)
}

// Update patches a match. Supplying hole results replaces the whole set; the tally,
// the winner, and the rating change are then recomputed, and your players' ratings
// move by the difference from what the match applied before.
func (s *MatchService) Update(ctx context.Context, id uuid.UUID, patch models.MatchPatch) (*models.Match, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	in := matchInputFrom(current)
	if patch.DatePlayed != nil {
		in.DatePlayed = *patch.DatePlayed
	}
	if patch.CourseID != nil {
		in.CourseID = *patch.CourseID
	}
	if patch.NinePlayed != nil {
		in.NinePlayed = *patch.NinePlayed
	}
	if patch.HoleResults != nil {
		in.HoleResults = *patch.HoleResults
	}
	if patch.Playoffs != nil {
		in.Playoffs = *patch.Playoffs
	}
	if patch.Notes != nil {
		in.Notes = *patch.Notes
	}
	if patch.Tags != nil {
		in.Tags = *patch.Tags
	}
	switch {
	case patch.WinnerID != nil && *patch.WinnerID == "":
		in.WinnerID = nil
	case patch.WinnerID != nil:
		in.WinnerID = patch.WinnerID
	case !in.Playoffs:
		// Re-derived from the tally below.
		in.WinnerID = nil
	}
	magnitude := current.RatingChange
	if patch.RatingChange != nil {
		magnitude = *patch.RatingChange
	}
	in.RatingChange = magnitude

	if err := validation.Match(in, s.now()).Err(); err != nil {
		return nil, err
	}

	next := *current
	next.HoleResults = nil
	next.DatePlayed, _ = validation.ParseDate(in.DatePlayed)
	next.CourseID = parseID(in.CourseID)
	next.NinePlayed = in.NinePlayed
	next.Playoffs = in.Playoffs
	next.Notes = strings.TrimSpace(in.Notes)
	next.Tags = models.StringList(trimTags(in.Tags))
	if next.CourseID != current.CourseID {
		if err := s.checkCourse(ctx, next.CourseID); err != nil {
			return nil, err
		}
	}

	summary := scoring.TallyInputs(in.HoleResults)
	summary.Apply(&next)
	next.WinnerID = scoring.Winner(summary, next.YourTeamID, next.OpponentTeamID, next.Playoffs, optionalUUID(in.WinnerID))
	next.RatingChange = scoring.AppliedRatingDelta(magnitude, next.WinnerID, next.YourTeamID)

	db := s.db.WithContext(ctx)
	previous := *current
	previous.HoleResults = nil
	steps := []saga.Step{}
	if patch.HoleResults != nil {
		steps = append(steps, s.replaceResultsStep(db, id, current.HoleResults, in.HoleResults))
	}
	steps = append(steps,
		saga.Step{
			Name: "update match",
			Do: func(context.Context) error {
				return db.Model(&models.Match{}).Where("id = ?", id).Updates(matchColumns(&next)).Error
			},
			Undo: func(ctx context.Context) error {
				return s.db.WithContext(ctx).Model(&models.Match{}).Where("id = ?", id).
					Updates(matchColumns(&previous)).Error
			},
		},
		s.adjustRatingsStep([]uuid.UUID{next.YourPlayer1ID, next.YourPlayer2ID}, next.RatingChange-current.RatingChange),
	)
	if err := saga.Run(ctx, s.log, steps...); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// AddHoleResults records outcomes for holes that have none yet. A hole that already has
// a stored result is rejected; use ReplaceHoleResults to change one.
func (s *MatchService) AddHoleResults(ctx context.Context, id uuid.UUID, results []models.HoleResultInput) (*models.Match, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	stored := make(map[int]bool, len(current.HoleResults))
	merged := resultInputs(current.HoleResults)
	for _, r := range current.HoleResults {
		stored[r.HoleNumber] = true
	}
	var errs validation.Errors
	for _, r := range results {
		if stored[r.HoleNumber] {
			errs.Add(fmt.Sprintf("Hole %d: already recorded", r.HoleNumber))
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	merged = append(merged, results...)
	return s.Update(ctx, id, models.MatchPatch{HoleResults: &merged})
}

// ReplaceHoleResults swaps the whole set of hole results. Sending the same set twice
// leaves the same rows behind.
func (s *MatchService) ReplaceHoleResults(ctx context.Context, id uuid.UUID, results []models.HoleResultInput) (*models.Match, error) {
	if results == nil {
		results = []models.HoleResultInput{}
	}
	return s.Update(ctx, id, models.MatchPatch{HoleResults: &results})
}

// Delete takes back the rating change a match applied, then removes its hole results
// and the match itself.
func (s *MatchService) Delete(ctx context.Context, id uuid.UUID) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	db := s.db.WithContext(ctx)
	// Ratings go first: the match row is the last thing removed, so every earlier step
	// can still be undone against it.
	return saga.Run(ctx, s.log,
		s.adjustRatingsStep([]uuid.UUID{current.YourPlayer1ID, current.YourPlayer2ID}, -current.RatingChange),
		saga.Step{
			Name: "delete hole results",
			Do: func(context.Context) error {
				return db.Where("match_id = ?", id).Delete(&models.HoleResult{}).Error
			},
			Undo: func(ctx context.Context) error {
				if len(current.HoleResults) == 0 {
					return nil
				}
				return s.db.WithContext(ctx).Create(&current.HoleResults).Error
			},
		},
		saga.Step{
			Name: "delete match",
			Do: func(context.Context) error {
				return notFound(db.Delete(&models.Match{}, "id = ?", id))
			},
		},
	)
}

// --- steps ---

func (s *MatchService) insertResultsStep(db *gorm.DB, matchID *uuid.UUID, results []models.HoleResultInput) saga.Step {
	return saga.Step{
		Name: "insert hole results",
		Do: func(context.Context) error {
			rows := resultRows(*matchID, results)
			if len(rows) == 0 {
				return nil
			}
			return db.Create(&rows).Error
		},
		Undo: func(ctx context.Context) error {
			return s.db.WithContext(ctx).Where("match_id = ?", *matchID).Delete(&models.HoleResult{}).Error
		},
	}
}

func (s *MatchService) replaceResultsStep(db *gorm.DB, matchID uuid.UUID, old []models.HoleResult, results []models.HoleResultInput) saga.Step {
	restore := slices.Clone(old)
	return saga.Step{
		Name: "replace hole results",
		Do: func(context.Context) error {
			if err := db.Where("match_id = ?", matchID).Delete(&models.HoleResult{}).Error; err != nil {
				return err
			}
			rows := resultRows(matchID, results)
			if len(rows) == 0 {
				return nil
			}
			return db.Create(&rows).Error
		},
		Undo: func(ctx context.Context) error {
			undo := s.db.WithContext(ctx)
			if err := undo.Where("match_id = ?", matchID).Delete(&models.HoleResult{}).Error; err != nil {
				return err
			}
			if len(restore) == 0 {
				return nil
			}
			return undo.Create(&restore).Error
		},
	}
}

func (s *MatchService) adjustRatingsStep(players []uuid.UUID, delta float64) saga.Step {
	return saga.Step{
		Name: "adjust ratings",
		Do: func(ctx context.Context) error {
			return s.players.AdjustRatings(ctx, players, delta)
		},
		Undo: func(ctx context.Context) error {
			return s.players.AdjustRatings(ctx, players, -delta)
		},
	}
}

// --- helpers ---

// resolvePlayers fills in any empty player ids from the team's two members and checks
// that both teams exist.
func (s *MatchService) resolvePlayers(ctx context.Context, in *models.MatchInput) error {
	var errs validation.Errors
	sides := []struct {
		label  string
		teamID string
		p1, p2 *string
	}{
		{"Your team", in.YourTeamID, &in.YourPlayer1ID, &in.YourPlayer2ID},
		{"Opponent team", in.OpponentTeamID, &in.OpponentPlayer1ID, &in.OpponentPlayer2ID},
	}
	for _, side := range sides {
		var members []uuid.UUID
		err := s.db.WithContext(ctx).Model(&models.TeamMember{}).
			Joins("JOIN players ON players.id = team_members.player_id").
			Where("team_members.team_id = ?", parseID(side.teamID)).
			Order("players.name ASC").
			Pluck("team_members.player_id", &members).Error
		if err != nil {
			return err
		}
		if len(members) == 0 {
			if err := s.db.WithContext(ctx).Select("id").First(&models.Team{}, "id = ?", parseID(side.teamID)).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					errs.Add(side.label + " not found")
					continue
				}
				return err
			}
		}
		fill := func(dst *string, other string) {
			if *dst != "" {
				return
			}
			for _, m := range members {
				if m.String() != other {
					*dst = m.String()
					return
				}
			}
		}
		fill(side.p1, *side.p2)
		fill(side.p2, *side.p1)
		if *side.p1 == "" || *side.p2 == "" {
			errs.Add(side.label + " must have two players")
		} else if *side.p1 == *side.p2 {
			errs.Add(side.label + " cannot field the same player twice")
		}
	}
	return errs.Err()
}

func (s *MatchService) checkCourse(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Select("id").First(&models.Course{}, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return invalid("Course not found")
	}
	return err
}

// snapshotRatings copies each player's current rating onto the match.
func (s *MatchService) snapshotRatings(ctx context.Context, m *models.Match) error {
	ids := []uuid.UUID{m.YourPlayer1ID, m.YourPlayer2ID, m.OpponentPlayer1ID, m.OpponentPlayer2ID}
	var players []models.Player
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&players).Error; err != nil {
		return err
	}
	ratings := make(map[uuid.UUID]float64, len(players))
	for _, p := range players {
		ratings[p.ID] = p.RecentRating
	}
	var errs validation.Errors
	targets := []*float64{&m.YourPlayer1Rating, &m.YourPlayer2Rating, &m.OpponentPlayer1Rating, &m.OpponentPlayer2Rating}
	labels := []string{"Your player 1", "Your player 2", "Opponent player 1", "Opponent player 2"}
	for i, id := range ids {
		r, ok := ratings[id]
		if !ok {
			errs.Add(labels[i] + " not found")
			continue
		}
		*targets[i] = r
	}
	return errs.Err()
}

func matchInputFrom(m *models.Match) models.MatchInput {
	in := models.MatchInput{
		DatePlayed:        m.DatePlayed.Format(time.RFC3339),
		CourseID:          m.CourseID.String(),
		YourTeamID:        m.YourTeamID.String(),
		OpponentTeamID:    m.OpponentTeamID.String(),
		YourPlayer1ID:     m.YourPlayer1ID.String(),
		YourPlayer2ID:     m.YourPlayer2ID.String(),
		OpponentPlayer1ID: m.OpponentPlayer1ID.String(),
		OpponentPlayer2ID: m.OpponentPlayer2ID.String(),
		NinePlayed:        m.NinePlayed,
		HoleResults:       resultInputs(m.HoleResults),
		Playoffs:          m.Playoffs,
		RatingChange:      m.RatingChange,
		Notes:             m.Notes,
		Tags:              []string(m.Tags),
	}
	if m.WinnerID != nil {
		w := m.WinnerID.String()
		in.WinnerID = &w
	}
	return in
}

func matchColumns(m *models.Match) map[string]any {
	var winner any
	if m.WinnerID != nil {
		winner = *m.WinnerID
	}
	return map[string]any{
		"date_played":    m.DatePlayed,
		"course_id":      m.CourseID,
		"nine_played":    m.NinePlayed,
		"holes_won":      m.HolesWon,
		"holes_tied":     m.HolesTied,
		"holes_lost":     m.HolesLost,
		"your_score":     m.YourScore,
		"opponent_score": m.OpponentScore,
		"winner_id":      winner,
		"rating_change":  m.RatingChange,
		"playoffs":       m.Playoffs,
		"notes":          m.Notes,
		"tags":           m.Tags,
	}
}

func resultInputs(rows []models.HoleResult) []models.HoleResultInput {
	out := make([]models.HoleResultInput, len(rows))
	for i, r := range rows {
		res := r.Result
		out[i] = models.HoleResultInput{HoleNumber: r.HoleNumber, Result: &res}
	}
	return out
}

// resultRows converts decided hole results to rows; undecided holes aren't stored.
func resultRows(matchID uuid.UUID, in []models.HoleResultInput) []models.HoleResult {
	rows := make([]models.HoleResult, 0, len(in))
	for _, r := range in {
		if r.Result == nil {
			continue
		}
		rows = append(rows, models.HoleResult{MatchID: matchID, HoleNumber: r.HoleNumber, Result: *r.Result})
	}
	slices.SortFunc(rows, func(a, b models.HoleResult) int { return a.HoleNumber - b.HoleNumber })
	return rows
}

func optionalUUID(s *string) *uuid.UUID {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	id := parseID(*s)
	return &id
}

func trimTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, strings.TrimSpace(t))
	}
	return out
}
