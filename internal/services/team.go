package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trentd187/golf-match-tracker/internal/models"
	"github.com/trentd187/golf-match-tracker/internal/saga"
	"github.com/trentd187/golf-match-tracker/internal/validation"
)

// MsgTeamNameTaken is returned when another active team already uses the name.
const MsgTeamNameTaken = "A team with this name already exists"

var (
	nameAdjectives = []string{
		"Birdie", "Eagle", "Bogey", "Fairway", "Bunker", "Chip", "Putt", "Albatross",
		"Dogleg", "Mulligan", "Links", "Back Nine", "Sand Trap", "Green", "Pin High",
	}
	nameNouns = []string{
		"Hunters", "Bandits", "Brothers", "Crew", "Kings", "Legends", "Warriors",
		"Squad", "Masters", "Swingers", "Grinders", "Rebels", "Pirates", "Rollers",
	}
)

// generateAttempts bounds how many random names GenerateName tries before accepting one
// that is already taken.
const generateAttempts = 10

// TeamService reads and writes teams and their memberships.
type TeamService struct {
	db      *gorm.DB
	log     *zap.Logger
	players *PlayerService
}

func NewTeamService(db *gorm.DB, log *zap.Logger, players *PlayerService) *TeamService {
	return &TeamService{db: db, log: log.Named("teams"), players: players}
}

func (s *TeamService) withMembers(db *gorm.DB) *gorm.DB {
	return db.Preload("Members.Player")
}

// List returns every team sorted by name, with both players resolved.
func (s *TeamService) List(ctx context.Context) ([]models.Team, error) {
	teams := []models.Team{}
	err := s.withMembers(s.db.WithContext(ctx)).Order("name ASC").Find(&teams).Error
	return teams, err
}

// Get returns one team with both players resolved.
func (s *TeamService) Get(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	var team models.Team
	if err := s.withMembers(s.db.WithContext(ctx)).First(&team, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// Players returns a team's two players, ordered by name.
func (s *TeamService) Players(ctx context.Context, id uuid.UUID) ([]models.Player, error) {
	db := s.db.WithContext(ctx)
	if err := db.Select("id").First(&models.Team{}, "id = ?", id).Error; err != nil {
		return nil, err
	}
	players := []models.Player{}
	err := db.Select("players.*").
		Joins("JOIN team_members ON team_members.player_id = players.id").
		Where("team_members.team_id = ?", id).
		Order("players.name ASC").
		Find(&players).Error
	return players, err
}

// NameExists reports whether an active team other than excludeID is called name,
// ignoring case and surrounding whitespace.
func (s *TeamService) NameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	q := s.db.WithContext(ctx).Model(&models.Team{}).
		Where("LOWER(name) = LOWER(?) AND is_active = ?", strings.TrimSpace(name), true)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts any new players, the team, and its two memberships. Every row written
// is removed again if a later step fails.
func (s *TeamService) Create(ctx context.Context, in models.TeamInput) (*models.Team, error) {
	if err := validation.Team(in).Err(); err != nil {
		return nil, err
	}
	taken, err := s.NameExists(ctx, in.Name, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, invalid(MsgTeamNameTaken)
	}

	db := s.db.WithContext(ctx)
	team := models.Team{Name: strings.TrimSpace(in.Name), IsYourTeam: in.IsYourTeam, IsActive: true}
	playerIDs := make([]uuid.UUID, len(in.Players))
	var errs validation.Errors
	var steps []saga.Step
	for i, p := range in.Players {
		if p.ID != "" {
			existing, err := s.players.Get(ctx, parseID(p.ID))
			if errors.Is(err, gorm.ErrRecordNotFound) {
				errs.Add(fmt.Sprintf("Player %d: player not found", i+1))
				continue
			}
			if err != nil {
				return nil, err
			}
			playerIDs[i] = existing.ID
			continue
		}
		steps = append(steps, saga.Step{
			Name: fmt.Sprintf("create player %d", i+1),
			Do: func(ctx context.Context) error {
				np, err := s.players.Create(ctx, models.PlayerInput{Name: p.Name, RecentRating: p.RecentRating})
				if err != nil {
					return err
				}
				playerIDs[i] = np.ID
				return nil
			},
			Undo: func(ctx context.Context) error {
				return s.db.WithContext(ctx).Delete(&models.Player{}, "id = ?", playerIDs[i]).Error
			},
		})
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if in.IsYourTeam {
		var previous []uuid.UUID
		steps = append(steps, saga.Step{
			Name: "clear your team",
			Do: func(context.Context) error {
				flagged := db.Model(&models.Team{}).Where("is_your_team = ?", true)
				if err := flagged.Pluck("id", &previous).Error; err != nil {
					return err
				}
				if len(previous) == 0 {
					return nil
				}
				return db.Model(&models.Team{}).Where("id IN ?", previous).Update("is_your_team", false).Error
			},
			Undo: func(ctx context.Context) error {
				if len(previous) == 0 {
					return nil
				}
				return s.db.WithContext(ctx).Model(&models.Team{}).Where("id IN ?", previous).
					Update("is_your_team", true).Error
			},
		})
	}
	steps = append(steps,
		saga.Step{
			Name: "insert team",
			Do: func(context.Context) error {
				return db.Omit(clause.Associations).Create(&team).Error
			},
			Undo: func(ctx context.Context) error {
				return s.db.WithContext(ctx).Delete(&models.Team{}, "id = ?", team.ID).Error
			},
		},
		saga.Step{
			Name: "insert memberships",
			Do: func(context.Context) error {
				members := make([]models.TeamMember, len(playerIDs))
				for i, pid := range playerIDs {
					members[i] = models.TeamMember{TeamID: team.ID, PlayerID: pid}
				}
				return db.Omit(clause.Associations).Create(&members).Error
			},
		},
	)

	if err := saga.Run(ctx, s.log, steps...); err != nil {
		return nil, err
	}
	return s.Get(ctx, team.ID)
}

// Update applies a patch to a team's name and flags. The name must be free among active
// teams whenever the team ends up active, which covers reactivating a team whose name
// was taken while it was inactive. Setting is_your_team moves the flag off the other
// teams; both writes run as a saga so a failed update puts the old flag back.
func (s *TeamService) Update(ctx context.Context, id uuid.UUID, in models.TeamPatch) (*models.Team, error) {
	if err := validation.TeamPatch(in).Err(); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	var current models.Team
	if err := db.First(&current, "id = ?", id).Error; err != nil {
		return nil, err
	}

	name, active := current.Name, current.IsActive
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
	}
	if in.IsActive != nil {
		active = *in.IsActive
	}
	if active && (name != current.Name || !current.IsActive) {
		taken, err := s.NameExists(ctx, name, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, invalid(MsgTeamNameTaken)
		}
	}

	updates := map[string]any{}
	if in.Name != nil {
		updates["name"] = name
	}
	if in.IsActive != nil {
		updates["is_active"] = active
	}
	var steps []saga.Step
	if in.IsYourTeam != nil {
		updates["is_your_team"] = *in.IsYourTeam
		if *in.IsYourTeam {
			var previous []uuid.UUID
			steps = append(steps, saga.Step{
				Name: "clear your team",
				Do: func(context.Context) error {
					flagged := db.Model(&models.Team{}).Where("is_your_team = ? AND id <> ?", true, id)
					if err := flagged.Pluck("id", &previous).Error; err != nil {
						return err
					}
					if len(previous) == 0 {
						return nil
					}
					return db.Model(&models.Team{}).Where("id IN ?", previous).Update("is_your_team", false).Error
				},
				Undo: func(ctx context.Context) error {
					if len(previous) == 0 {
						return nil
					}
					return s.db.WithContext(ctx).Model(&models.Team{}).Where("id IN ?", previous).
						Update("is_your_team", true).Error
				},
			})
		}
	}
	if len(updates) > 0 {
		steps = append(steps, saga.Step{
			Name: "update team",
			Do: func(context.Context) error {
				return db.Model(&models.Team{}).Where("id = ?", id).Updates(updates).Error
			},
			Undo: func(ctx context.Context) error {
				return s.db.WithContext(ctx).Model(&models.Team{}).Where("id = ?", id).Updates(map[string]any{
					"name":         current.Name,
					"is_active":    current.IsActive,
					"is_your_team": current.IsYourTeam,
				}).Error
			},
		})
	}

	if err := saga.Run(ctx, s.log, steps...); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a team's memberships and then the team. Teams that appear in recorded
// matches can't be deleted; deactivate them instead.
func (s *TeamService) Delete(ctx context.Context, id uuid.UUID) error {
	db := s.db.WithContext(ctx)
	if err := db.Select("id").First(&models.Team{}, "id = ?", id).Error; err != nil {
		return err
	}

	var used int64
	err := db.Model(&models.Match{}).
		Where("your_team_id = ? OR opponent_team_id = ?", id, id).
		Count(&used).Error
	if err != nil {
		return err
	}
	if used > 0 {
		return invalid(fmt.Sprintf("Team has played %d match(es) and cannot be deleted", used))
	}

	if err := db.Where("team_id = ?", id).Delete(&models.TeamMember{}).Error; err != nil {
		return err
	}
	return notFound(db.Delete(&models.Team{}, "id = ?", id))
}

// GenerateName suggests a random "<adjective> <noun>" team name, preferring one no
// active team already uses.
func (s *TeamService) GenerateName(ctx context.Context, rng *rand.Rand) (string, error) {
	var name string
	for range generateAttempts {
		name = nameAdjectives[rng.IntN(len(nameAdjectives))] + " " + nameNouns[rng.IntN(len(nameNouns))]
		taken, err := s.NameExists(ctx, name, uuid.Nil)
		if err != nil {
			return "", err
		}
		if !taken {
			return name, nil
		}
	}
	return name, nil
}

// FindByPlayers returns the team whose members are exactly the two given players.
func (s *TeamService) FindByPlayers(ctx context.Context, a, b uuid.UUID) (*models.Team, error) {
	if a == uuid.Nil || b == uuid.Nil || a == b {
		return nil, invalid("Two different player ids are required")
	}

	var teamIDs []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.TeamMember{}).
		Select("team_id").
		Group("team_id").
		Having("COUNT(*) = 2 AND SUM(CASE WHEN player_id IN ? THEN 1 ELSE 0 END) = 2", []uuid.UUID{a, b}).
		Pluck("team_id", &teamIDs).Error
	if err != nil {
		return nil, err
	}
	if len(teamIDs) == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var team models.Team
	err = s.withMembers(s.db.WithContext(ctx)).
		Where("id IN ?", teamIDs).
		Order("is_active DESC, created_at ASC").
		First(&team).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}
