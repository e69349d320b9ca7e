package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trentd187/golf-match-tracker/internal/events"
	"github.com/trentd187/golf-match-tracker/internal/models"
	"github.com/trentd187/golf-match-tracker/internal/services"
	"github.com/trentd187/golf-match-tracker/internal/testutil"
)

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Details []string        `json:"details"`
}

type testServer struct {
	app     *fiber.App
	hub     *events.Hub
	stopHub context.CancelFunc
}

func newServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	hub := events.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.Done()
	})

	app := fiber.New()
	app.Get("/health", HealthCheck(db))
	Register(app.Group("/api/v1"), services.New(db, zap.NewNop()), hub)
	return &testServer{app: app, hub: hub, stopHub: cancel}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func courseBody(name string) map[string]any {
	holes := make([]map[string]any, 18)
	for i := range holes {
		par, dist := 4, 400
		if i >= 9 {
			par, dist = 5, 500
		}
		holes[i] = map[string]any{"hole_number": i + 1, "par": par, "distance": dist}
	}
	return map[string]any{"name": name, "holes": holes}
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCourseRoutes(t *testing.T) {
	s := newServer(t)

	status, env := s.do(t, "POST", "/api/v1/courses", courseBody("Augusta National"))
	require.Equal(t, fiber.StatusCreated, status, env.Error)
	course := decode[models.Course](t, env)
	assert.Equal(t, 81, course.TotalPar)
	assert.Equal(t, 8100.0, course.TotalDistance)

	status, env = s.do(t, "GET", "/api/v1/courses/"+course.ID.String(), nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[models.Course](t, env).Holes, 18)

	status, env = s.do(t, "GET", "/api/v1/courses", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]models.Course](t, env), 1)

	status, _ = s.do(t, "PATCH", "/api/v1/courses/"+course.ID.String(), map[string]any{"name": "Augusta"})
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = s.do(t, "DELETE", "/api/v1/courses/"+course.ID.String(), nil)
	assert.Equal(t, fiber.StatusNoContent, status)

	status, env = s.do(t, "GET", "/api/v1/courses/"+course.ID.String(), nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "course not found", env.Error)
}

func TestCourseValidationDetails(t *testing.T) {
	s := newServer(t)
	body := courseBody("Augusta National")
	holes := body["holes"].([]map[string]any)
	holes[2]["par"] = 7
	body["holes"] = holes[:17]

	status, env := s.do(t, "POST", "/api/v1/courses", body)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "validation failed", env.Error)
	assert.Equal(t, []string{"Course must have exactly 18 holes", "Hole 3: Par must be between 2 and 6"}, env.Details)
}

func TestMalformedRequests(t *testing.T) {
	s := newServer(t)

	status, env := s.do(t, "GET", "/api/v1/matches/not-a-uuid", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "invalid match id", env.Error)

	req := httptest.NewRequest("POST", "/api/v1/players", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	status, _ = s.do(t, "GET", "/api/v1/teams/find-by-players?playerIds=only-one", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestTeamAndMatchRoutes(t *testing.T) {
	s := newServer(t)

	_, env := s.do(t, "POST", "/api/v1/courses", courseBody("Augusta National"))
	course := decode[models.Course](t, env)

	status, env := s.do(t, "POST", "/api/v1/teams", map[string]any{
		"name": "Birdie Hunters", "is_your_team": true,
		"players": []map[string]any{{"name": "Ann", "recent_rating": 100}, {"name": "Bo", "recent_rating": 100}},
	})
	require.Equal(t, fiber.StatusCreated, status, env.Details)
	yours := decode[models.Team](t, env)

	_, env = s.do(t, "POST", "/api/v1/teams", map[string]any{
		"name":    "Bogey Men",
		"players": []map[string]any{{"name": "Cy"}, {"name": "Di"}},
	})
	theirs := decode[models.Team](t, env)

	status, env = s.do(t, "POST", "/api/v1/teams/check-name", map[string]any{"name": "birdie hunters"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, map[string]bool{"exists": true}, decode[map[string]bool](t, env))

	status, env = s.do(t, "GET", "/api/v1/teams/generate-name", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, decode[map[string]string](t, env)["name"])

	ids := yours.Members[0].PlayerID.String() + "," + yours.Members[1].PlayerID.String()
	status, env = s.do(t, "GET", "/api/v1/teams/find-by-players?playerIds="+ids, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, yours.ID, decode[models.Team](t, env).ID)

	status, _ = s.do(t, "GET", "/api/v1/teams/find-by-players?playerIds="+uuid.NewString()+","+uuid.NewString(), nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, env = s.do(t, "GET", "/api/v1/teams/"+yours.ID.String()+"/players", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]models.Player](t, env), 2)

	holes := func(win, tie, loss int) []map[string]any {
		var out []map[string]any
		for _, r := range []struct {
			n int
			o string
		}{{win, "win"}, {tie, "tie"}, {loss, "loss"}} {
			for i := 0; i < r.n; i++ {
				out = append(out, map[string]any{"hole_number": len(out) + 1, "result": r.o})
			}
		}
		return out
	}
	match := map[string]any{
		"date_played":      "2024-05-01",
		"course_id":        course.ID,
		"your_team_id":     yours.ID,
		"opponent_team_id": theirs.ID,
		"nine_played":      "front",
		"hole_results":     holes(4, 1, 4),
		"rating_change":    5,
	}

	status, env = s.do(t, "POST", "/api/v1/matches", match)
	require.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, []string{"Match is tied - must go to playoffs"}, env.Details)

	match["hole_results"] = holes(5, 2, 2)
	status, env = s.do(t, "POST", "/api/v1/matches", match)
	require.Equal(t, fiber.StatusCreated, status, env.Details)
	created := decode[models.Match](t, env)
	assert.Equal(t, 12, created.YourScore)
	assert.Equal(t, 5.0, created.RatingChange)

	status, env = s.do(t, "GET", "/api/v1/matches", nil)
	require.Equal(t, fiber.StatusOK, status)
	list := decode[[]models.MatchListItem](t, env)
	require.Len(t, list, 1)
	assert.Equal(t, "Augusta National", list[0].CourseName)
	assert.Equal(t, "Bogey Men", list[0].OpponentTeamName)

	status, env = s.do(t, "PATCH", "/api/v1/matches/"+created.ID.String()+"/holes",
		map[string]any{"hole_results": holes(2, 2, 5)})
	require.Equal(t, fiber.StatusOK, status, env.Details)
	assert.Equal(t, -5.0, decode[models.Match](t, env).RatingChange)

	status, env = s.do(t, "DELETE", "/api/v1/teams/"+theirs.ID.String(), nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.NotEmpty(t, env.Details)

	status, _ = s.do(t, "DELETE", "/api/v1/matches/"+created.ID.String(), nil)
	assert.Equal(t, fiber.StatusNoContent, status)
}

func TestPlayerRoutes(t *testing.T) {
	s := newServer(t)

	status, env := s.do(t, "POST", "/api/v1/players", map[string]any{"name": "Ann", "recent_rating": 88})
	require.Equal(t, fiber.StatusCreated, status)
	p := decode[models.Player](t, env)

	status, _ = s.do(t, "PATCH", "/api/v1/players/"+p.ID.String(), map[string]any{"recent_rating": 92.5})
	assert.Equal(t, fiber.StatusNoContent, status)

	status, env = s.do(t, "GET", "/api/v1/players/"+p.ID.String(), nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 92.5, decode[models.Player](t, env).RecentRating)

	status, _ = s.do(t, "PATCH", "/api/v1/players/"+p.ID.String(), map[string]any{})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = s.do(t, "PATCH", "/api/v1/players/"+uuid.NewString(), map[string]any{"recent_rating": 1})
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestStreamDeliversEvents(t *testing.T) {
	s := newServer(t)

	go func() {
		for s.hub.Len() == 0 {
			time.Sleep(5 * time.Millisecond)
		}
		s.hub.Publish(events.Event{Topic: events.TopicTeams, Action: events.ActionCreated, ID: "ignored"})
		s.hub.Publish(events.Event{Topic: events.TopicMatches, Action: events.ActionUpdated, ID: "m1"})
		s.hub.Publish(events.Event{Topic: events.TopicMatches, Action: events.ActionDeleted, ID: "m1"})
		// Stopping the hub closes the subscriber, which ends the response.
		time.Sleep(100 * time.Millisecond)
		s.stopHub()
	}()

	req := httptest.NewRequest("GET", "/api/v1/stream?topics=matches", nil)
	resp, err := s.app.Test(req, 5000)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), "event: matches\ndata: {\"topic\":\"matches\",\"action\":\"updated\",\"id\":\"m1\"}\n\n")
	assert.Contains(t, string(body), `"action":"deleted"`)
	assert.NotContains(t, string(body), "ignored")

	status, _ := s.do(t, "GET", "/api/v1/stream?topics=weather", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}
