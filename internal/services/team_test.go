package services

import (
	"math/rand/v2"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/trentd187/golf-match-tracker/internal/models"
	"github.com/trentd187/golf-match-tracker/internal/validation"
)

func TestCreateTeamWithNewPlayers(t *testing.T) {
	f := newFixture(t)

	team := f.team(t, "Birdie Hunters", true, "Ann", "Bo")

	assert.True(t, team.IsActive)
	assert.True(t, team.IsYourTeam)
	require.Len(t, team.Members, 2)

	players, err := f.svc.Teams.Players(f.ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "Ann", players[0].Name)
	assert.Equal(t, "Bo", players[1].Name)
}

func TestCreateTeamWithExistingPlayer(t *testing.T) {
	f := newFixture(t)
	p, err := f.svc.Players.Create(f.ctx, models.PlayerInput{Name: "Ann", RecentRating: 90})
	require.NoError(t, err)

	team, err := f.svc.Teams.Create(f.ctx, models.TeamInput{
		Name:    "Eagle Crew",
		Players: []models.TeamPlayerInput{{ID: p.ID.String()}, {Name: "Bo"}},
	})
	require.NoError(t, err)
	require.Len(t, team.Members, 2)

	all, err := f.svc.Players.List(f.ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCreateTeamUnknownPlayerRollsBack(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Teams.Create(f.ctx, models.TeamInput{
		Name:    "Ghost Squad",
		Players: []models.TeamPlayerInput{{Name: "Real Person"}, {ID: uuid.NewString()}},
	})

	var verr validation.Errors
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, validation.Errors{"Player 2: player not found"}, verr)

	// Nothing is written when a referenced player is missing.
	players, err := f.svc.Players.List(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, players)
	teams, err := f.svc.Teams.List(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, teams)
}

func TestTeamNameUniqueAmongActiveTeams(t *testing.T) {
	f := newFixture(t)
	first := f.team(t, "Birdie Hunters", false, "Ann", "Bo")

	_, err := f.svc.Teams.Create(f.ctx, models.TeamInput{
		Name:    "  birdie HUNTERS ",
		Players: []models.TeamPlayerInput{{Name: "Cy"}, {Name: "Di"}},
	})
	var verr validation.Errors
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, validation.Errors{MsgTeamNameTaken}, verr)

	exists, err := f.svc.Teams.NameExists(f.ctx, "BIRDIE hunters", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = f.svc.Teams.NameExists(f.ctx, "Birdie Hunters", first.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	// Once the first team is retired the name is free again.
	_, err = f.svc.Teams.Update(f.ctx, first.ID, models.TeamPatch{IsActive: new(bool)})
	require.NoError(t, err)
	f.team(t, "Birdie Hunters", false, "Cy", "Di")
}

func TestTeamNameLengthBoundaries(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Teams.Create(f.ctx, models.TeamInput{
		Name:    "AB",
		Players: []models.TeamPlayerInput{{Name: "Cy"}, {Name: "Di"}},
	})
	require.Error(t, err)

	f.team(t, "ABC", false, "Cy", "Di")
}

func TestUpdateTeamMovesYourTeamFlag(t *testing.T) {
	f := newFixture(t)
	a := f.team(t, "Birdie Hunters", true, "Ann", "Bo")
	b := f.team(t, "Bogey Men", false, "Cy", "Di")

	yes := true
	got, err := f.svc.Teams.Update(f.ctx, b.ID, models.TeamPatch{IsYourTeam: &yes})
	require.NoError(t, err)
	assert.True(t, got.IsYourTeam)

	a2, err := f.svc.Teams.Get(f.ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, a2.IsYourTeam)

	name := "Bogey Men"
	_, err = f.svc.Teams.Update(f.ctx, a.ID, models.TeamPatch{Name: &name})
	assert.Error(t, err)

	_, err = f.svc.Teams.Update(f.ctx, uuid.New(), models.TeamPatch{})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteTeam(t *testing.T) {
	f := newFixture(t)
	team := f.team(t, "Birdie Hunters", false, "Ann", "Bo")

	require.NoError(t, f.svc.Teams.Delete(f.ctx, team.ID))

	var members int64
	require.NoError(t, f.svc.Teams.db.Model(&models.TeamMember{}).Where("team_id = ?", team.ID).Count(&members).Error)
	assert.Zero(t, members)
	assert.ErrorIs(t, f.svc.Teams.Delete(f.ctx, team.ID), gorm.ErrRecordNotFound)

	// Players outlive the team.
	players, err := f.svc.Players.List(f.ctx)
	require.NoError(t, err)
	assert.Len(t, players, 2)
}

func TestFindByPlayers(t *testing.T) {
	f := newFixture(t)
	team := f.team(t, "Birdie Hunters", false, "Ann", "Bo")
	other := f.team(t, "Bogey Men", false, "Cy", "Di")

	a, b := team.Members[0].PlayerID, team.Members[1].PlayerID

	got, err := f.svc.Teams.FindByPlayers(f.ctx, b, a)
	require.NoError(t, err)
	assert.Equal(t, team.ID, got.ID)

	// Half a match is no match.
	_, err = f.svc.Teams.FindByPlayers(f.ctx, a, other.Members[0].PlayerID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = f.svc.Teams.FindByPlayers(f.ctx, a, a)
	var verr validation.Errors
	assert.ErrorAs(t, err, &verr)
}

func TestGenerateNameAvoidsTakenNames(t *testing.T) {
	f := newFixture(t)

	name, err := f.svc.Teams.GenerateName(f.ctx, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	assert.Empty(t, validation.TeamName(name))

	f.team(t, name, false, "Ann", "Bo")
	again, err := f.svc.Teams.GenerateName(f.ctx, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	assert.NotEqual(t, name, again)
}

func TestReactivatingTeamChecksName(t *testing.T) {
	f := newFixture(t)
	old := f.team(t, "Birdie Bandits", false, "Ann", "Bo")
	_, err := f.svc.Teams.Update(f.ctx, old.ID, models.TeamPatch{IsActive: new(bool)})
	require.NoError(t, err)
	f.team(t, "Birdie Bandits", false, "Cy", "Di")

	yes := true
	_, err = f.svc.Teams.Update(f.ctx, old.ID, models.TeamPatch{IsActive: &yes})

	var verr validation.Errors
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, validation.Errors{MsgTeamNameTaken}, verr)
	got, err := f.svc.Teams.Get(f.ctx, old.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	// Reactivating under a free name works.
	name := "Birdie Bandits II"
	got, err = f.svc.Teams.Update(f.ctx, old.ID, models.TeamPatch{Name: &name, IsActive: &yes})
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Equal(t, name, got.Name)
}

func TestUpdateTeamRestoresYourTeamFlagOnFailure(t *testing.T) {
	f := newFixture(t)
	a := f.team(t, "Birdie Hunters", true, "Ann", "Bo")
	b := f.team(t, "Bogey Men", false, "Cy", "Di")
	// Only the team's own update fails; clearing and restoring the flag go through.
	f.failWrites(t, "update", "teams", func(tx *gorm.DB) bool {
		updates, ok := tx.Statement.Dest.(map[string]any)
		return ok && len(updates) > 1
	})

	yes := true
	name := "Bogey Men United"
	_, err := f.svc.Teams.Update(f.ctx, b.ID, models.TeamPatch{Name: &name, IsYourTeam: &yes})

	require.ErrorIs(t, err, errInjected)
	got, err := f.svc.Teams.Get(f.ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.IsYourTeam)
	got, err = f.svc.Teams.Get(f.ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, got.IsYourTeam)
	assert.Equal(t, "Bogey Men", got.Name)
}
