package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/trentd187/golf-match-tracker/internal/models"
	"github.com/trentd187/golf-match-tracker/internal/testutil"
)

type fixture struct {
	ctx context.Context
	db  *gorm.DB
	svc *Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	svc := New(db, zap.NewNop())
	svc.Matches.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return &fixture{ctx: context.Background(), db: db, svc: svc}
}

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }

func strPtr(s string) *string { return &s }

// augustaHoles is par 4 / 400 yards on the front nine and par 5 / 500 on the back.
func augustaHoles() []models.HoleInput {
	holes := make([]models.HoleInput, 18)
	for i := range holes {
		par, dist := 4, 400.0
		if i >= 9 {
			par, dist = 5, 500.0
		}
		holes[i] = models.HoleInput{HoleNumber: i + 1, Par: intPtr(par), Distance: floatPtr(dist)}
	}
	return holes
}

func (f *fixture) course(t *testing.T, name string) *models.Course {
	t.Helper()
	c, err := f.svc.Courses.Create(f.ctx, models.CourseInput{Name: name, Holes: augustaHoles()})
	require.NoError(t, err)
	return c
}

func (f *fixture) team(t *testing.T, name string, yours bool, players ...string) *models.Team {
	t.Helper()
	in := models.TeamInput{Name: name, IsYourTeam: yours}
	for _, p := range players {
		in.Players = append(in.Players, models.TeamPlayerInput{Name: p, RecentRating: 100})
	}
	team, err := f.svc.Teams.Create(f.ctx, in)
	require.NoError(t, err)
	return team
}

func results(win, tie, loss int) []models.HoleResultInput {
	out := make([]models.HoleResultInput, 0, win+tie+loss)
	add := func(n int, o models.Outcome) {
		for i := 0; i < n; i++ {
			o := o
			out = append(out, models.HoleResultInput{HoleNumber: len(out) + 1, Result: &o})
		}
	}
	add(win, models.OutcomeWin)
	add(tie, models.OutcomeTie)
	add(loss, models.OutcomeLoss)
	return out
}

var errInjected = errors.New("injected failure")

// failWrites makes every create, update, or delete (op) on table fail while when
// returns true. A nil when fails them all. The hook is removed at the end of the test.
func (f *fixture) failWrites(t *testing.T, op, table string, when func(*gorm.DB) bool) {
	t.Helper()
	fail := func(tx *gorm.DB) {
		if tx.Statement.Table == table && (when == nil || when(tx)) {
			_ = tx.AddError(errInjected)
		}
	}
	name := "test:fail_" + op + "_" + table
	cb := f.db.Callback()
	switch op {
	case "create":
		require.NoError(t, cb.Create().Before("gorm:create").Register(name, fail))
		t.Cleanup(func() { _ = cb.Create().Remove(name) })
	case "update":
		require.NoError(t, cb.Update().Before("gorm:update").Register(name, fail))
		t.Cleanup(func() { _ = cb.Update().Remove(name) })
	case "delete":
		require.NoError(t, cb.Delete().Before("gorm:delete").Register(name, fail))
		t.Cleanup(func() { _ = cb.Delete().Remove(name) })
	default:
		t.Fatalf("unknown op %q", op)
	}
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}
