package client

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/trentd187/golf-match-tracker/internal/models"
	"github.com/trentd187/golf-match-tracker/internal/validation"
)

// Courses reads and writes courses. The embedded Collection caches the list.
type Courses struct {
	*Collection[models.Course]
	c *Client
}

func NewCourses(c *Client) *Courses {
	return &Courses{
		c: c,
		Collection: newCollection(
			func(ctx context.Context) ([]models.Course, error) {
				return do[[]models.Course](ctx, c, fasthttp.MethodGet, "/courses", nil)
			},
			func(v models.Course) uuid.UUID { return v.ID },
			func(a, b models.Course) int { return strings.Compare(a.Name, b.Name) },
		),
	}
}

// Get fetches one course with its holes. It always goes to the server.
func (r *Courses) Get(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	return pointer(do[models.Course](ctx, r.c, fasthttp.MethodGet, "/courses/"+id.String(), nil))
}

func (r *Courses) Create(ctx context.Context, in models.CourseInput) (*models.Course, error) {
	if err := validation.Course(in).Err(); err != nil {
		return nil, err
	}
	course, err := do[models.Course](ctx, r.c, fasthttp.MethodPost, "/courses", in)
	if err != nil {
		return nil, err
	}
	r.upsert(listRow(course))
	return &course, nil
}

// Update renames a course and, when in.Holes is set, replaces its holes.
func (r *Courses) Update(ctx context.Context, id uuid.UUID, in models.CourseInput) (*models.Course, error) {
	if err := validation.CourseUpdate(in).Err(); err != nil {
		return nil, err
	}
	course, err := do[models.Course](ctx, r.c, fasthttp.MethodPatch, "/courses/"+id.String(), in)
	if err != nil {
		return nil, err
	}
	r.upsert(listRow(course))
	return &course, nil
}

// listRow drops the holes so a cached course looks like a row from the list endpoint.
func listRow(c models.Course) models.Course {
	c.Holes = nil
	return c
}

func (r *Courses) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := do[struct{}](ctx, r.c, fasthttp.MethodDelete, "/courses/"+id.String(), nil); err != nil {
		return err
	}
	r.remove(id)
	return nil
}

// Teams reads and writes teams.
type Teams struct {
	*Collection[models.Team]
	c *Client
}

func NewTeams(c *Client) *Teams {
	return &Teams{
		c: c,
		Collection: newCollection(
			func(ctx context.Context) ([]models.Team, error) {
				return do[[]models.Team](ctx, c, fasthttp.MethodGet, "/teams", nil)
			},
			func(v models.Team) uuid.UUID { return v.ID },
			func(a, b models.Team) int { return strings.Compare(a.Name, b.Name) },
		),
	}
}

func (r *Teams) Get(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	return pointer(do[models.Team](ctx, r.c, fasthttp.MethodGet, "/teams/"+id.String(), nil))
}

func (r *Teams) Create(ctx context.Context, in models.TeamInput) (*models.Team, error) {
	if err := validation.Team(in).Err(); err != nil {
		return nil, err
	}
	team, err := do[models.Team](ctx, r.c, fasthttp.MethodPost, "/teams", in)
	if err != nil {
		return nil, err
	}
	// Moving the "your team" flag changes other rows too.
	if team.IsYourTeam {
		r.Invalidate()
	} else {
		r.upsert(team)
	}
	return &team, nil
}

func (r *Teams) Update(ctx context.Context, id uuid.UUID, patch models.TeamPatch) (*models.Team, error) {
	if err := validation.TeamPatch(patch).Err(); err != nil {
		return nil, err
	}
	team, err := do[models.Team](ctx, r.c, fasthttp.MethodPatch, "/teams/"+id.String(), patch)
	if err != nil {
		return nil, err
	}
	if patch.IsYourTeam != nil && *patch.IsYourTeam {
		r.Invalidate()
	} else {
		r.upsert(team)
	}
	return &team, nil
}

func (r *Teams) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := do[struct{}](ctx, r.c, fasthttp.MethodDelete, "/teams/"+id.String(), nil); err != nil {
		return err
	}
	r.remove(id)
	return nil
}

// Players lists a team's members, sorted by name.
func (r *Teams) Players(ctx context.Context, id uuid.UUID) ([]models.Player, error) {
	return do[[]models.Player](ctx, r.c, fasthttp.MethodGet, "/teams/"+id.String()+"/players", nil)
}

// NameTaken reports whether an active team already uses name, ignoring case. Pass
// uuid.Nil as exclude unless renaming that team.
func (r *Teams) NameTaken(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
	body := map[string]string{"name": name}
	if exclude != uuid.Nil {
		body["exclude_id"] = exclude.String()
	}
	res, err := do[struct {
		Exists bool `json:"exists"`
	}](ctx, r.c, fasthttp.MethodPost, "/teams/check-name", body)
	return res.Exists, err
}

// GenerateName asks the server for an unused two-word team name.
func (r *Teams) GenerateName(ctx context.Context) (string, error) {
	res, err := do[struct {
		Name string `json:"name"`
	}](ctx, r.c, fasthttp.MethodGet, "/teams/generate-name", nil)
	return res.Name, err
}

// FindByPlayers returns the team made up of exactly a and b. A missing team is
// reported as (nil, nil).
func (r *Teams) FindByPlayers(ctx context.Context, a, b uuid.UUID) (*models.Team, error) {
	team, err := do[models.Team](ctx, r.c, fasthttp.MethodGet,
		"/teams/find-by-players?playerIds="+a.String()+","+b.String(), nil)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// Players reads players and updates their ratings.
type Players struct {
	*Collection[models.Player]
	c *Client
}

func NewPlayers(c *Client) *Players {
	return &Players{
		c: c,
		Collection: newCollection(
			func(ctx context.Context) ([]models.Player, error) {
				return do[[]models.Player](ctx, c, fasthttp.MethodGet, "/players", nil)
			},
			func(v models.Player) uuid.UUID { return v.ID },
			func(a, b models.Player) int { return strings.Compare(a.Name, b.Name) },
		),
	}
}

func (r *Players) Get(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	return pointer(do[models.Player](ctx, r.c, fasthttp.MethodGet, "/players/"+id.String(), nil))
}

func (r *Players) Create(ctx context.Context, in models.PlayerInput) (*models.Player, error) {
	if err := validation.Player(in).Err(); err != nil {
		return nil, err
	}
	p, err := do[models.Player](ctx, r.c, fasthttp.MethodPost, "/players", in)
	if err != nil {
		return nil, err
	}
	r.upsert(p)
	return &p, nil
}

// SetRating overwrites a player's recent rating. The server answers 204, so the cache
// is invalidated rather than patched.
func (r *Players) SetRating(ctx context.Context, id uuid.UUID, rating float64) error {
	if msg := validation.Rating(rating); msg != "" {
		return validation.Errors{msg}
	}
	body := map[string]float64{"recent_rating": rating}
	if _, err := do[struct{}](ctx, r.c, fasthttp.MethodPatch, "/players/"+id.String(), body); err != nil {
		return err
	}
	r.Invalidate()
	return nil
}

// Matches reads and writes matches. The cached list holds the flattened list rows, which
// carry display names a write response doesn't, so writes invalidate it instead of
// patching. onRatings runs after any write that can move player ratings.
type Matches struct {
	*Collection[models.MatchListItem]
	c         *Client
	now       func() time.Time
	onRatings func()
}

func NewMatches(c *Client) *Matches {
	return &Matches{
		c:   c,
		now: time.Now,
		Collection: newCollection(
			func(ctx context.Context) ([]models.MatchListItem, error) {
				return do[[]models.MatchListItem](ctx, c, fasthttp.MethodGet, "/matches", nil)
			},
			func(v models.MatchListItem) uuid.UUID { return v.ID },
			nil,
		),
	}
}

// Get fetches one match with its hole results.
func (r *Matches) Get(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	return pointer(do[models.Match](ctx, r.c, fasthttp.MethodGet, "/matches/"+id.String(), nil))
}

func (r *Matches) Create(ctx context.Context, in models.MatchInput) (*models.Match, error) {
	if in.NinePlayed == "" {
		in.NinePlayed = models.NineFront
	}
	if err := validation.Match(in, r.now()).Err(); err != nil {
		return nil, err
	}
	return r.write(ctx, fasthttp.MethodPost, "/matches", in)
}

// Update patches a match. Fields that need the stored match to check (the winner
// against the tally, for one) are left to the server.
func (r *Matches) Update(ctx context.Context, id uuid.UUID, patch models.MatchPatch) (*models.Match, error) {
	var errs validation.Errors
	if patch.DatePlayed != nil {
		errs.Add(validation.MatchDate(*patch.DatePlayed, r.now()))
	}
	if patch.Tags != nil {
		errs = append(errs, validation.Tags(*patch.Tags)...)
	}
	if patch.NinePlayed != nil && patch.HoleResults != nil {
		errs = append(errs, validation.HoleResults(*patch.NinePlayed, *patch.HoleResults)...)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return r.write(ctx, fasthttp.MethodPatch, "/matches/"+id.String(), patch)
}

// AddHoleResults records holes not yet stored on the match.
func (r *Matches) AddHoleResults(ctx context.Context, id uuid.UUID, results []models.HoleResultInput) (*models.Match, error) {
	return r.write(ctx, fasthttp.MethodPost, "/matches/"+id.String()+"/holes", map[string]any{"hole_results": results})
}

// ReplaceHoleResults swaps the match's whole set of hole results.
func (r *Matches) ReplaceHoleResults(ctx context.Context, id uuid.UUID, results []models.HoleResultInput) (*models.Match, error) {
	return r.write(ctx, fasthttp.MethodPatch, "/matches/"+id.String()+"/holes", map[string]any{"hole_results": results})
}

func (r *Matches) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := do[struct{}](ctx, r.c, fasthttp.MethodDelete, "/matches/"+id.String(), nil); err != nil {
		return err
	}
	r.remove(id)
	r.ratingsChanged()
	return nil
}

func (r *Matches) write(ctx context.Context, method, path string, body any) (*models.Match, error) {
	m, err := do[models.Match](ctx, r.c, method, path, body)
	if err != nil {
		return nil, err
	}
	r.Invalidate()
	r.ratingsChanged()
	return &m, nil
}

func (r *Matches) ratingsChanged() {
	if r.onRatings != nil {
		r.onRatings()
	}
}

func pointer[T any](v T, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	return &v, nil
}
