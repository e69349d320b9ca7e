package services

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/trentd187/golf-match-tracker/internal/models"
	"github.com/trentd187/golf-match-tracker/internal/validation"
)

func TestPlayerLifecycle(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Players.Create(f.ctx, models.PlayerInput{Name: "  Ann ", RecentRating: 88.5})
	require.NoError(t, err)
	assert.Equal(t, "Ann", p.Name)

	require.NoError(t, f.svc.Players.UpdateRating(f.ctx, p.ID, 91))
	got, err := f.svc.Players.Get(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 91.0, got.RecentRating)

	assert.ErrorIs(t, f.svc.Players.UpdateRating(f.ctx, uuid.New(), 91), gorm.ErrRecordNotFound)

	var verr validation.Errors
	assert.ErrorAs(t, f.svc.Players.UpdateRating(f.ctx, p.ID, math.NaN()), &verr)
	_, err = f.svc.Players.Create(f.ctx, models.PlayerInput{Name: " "})
	assert.ErrorAs(t, err, &verr)
}

func TestAdjustRatings(t *testing.T) {
	f := newFixture(t)
	a, err := f.svc.Players.Create(f.ctx, models.PlayerInput{Name: "Ann", RecentRating: 100})
	require.NoError(t, err)
	b, err := f.svc.Players.Create(f.ctx, models.PlayerInput{Name: "Bo", RecentRating: 80})
	require.NoError(t, err)

	require.NoError(t, f.svc.Players.AdjustRatings(f.ctx, []uuid.UUID{a.ID, b.ID}, -2.5))

	players, err := f.svc.Players.List(f.ctx)
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, 97.5, players[0].RecentRating)
	assert.Equal(t, 77.5, players[1].RecentRating)
}
