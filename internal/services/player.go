package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/trentd187/golf-match-tracker/internal/models"
	"github.com/trentd187/golf-match-tracker/internal/validation"
)

// PlayerService reads and writes players and their ratings.
type PlayerService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewPlayerService(db *gorm.DB, log *zap.Logger) *PlayerService {
	return &PlayerService{db: db, log: log.Named("players")}
}

// List returns every player sorted by name.
func (s *PlayerService) List(ctx context.Context) ([]models.Player, error) {
	players := []models.Player{}
	err := s.db.WithContext(ctx).Order("name ASC").Find(&players).Error
	return players, err
}

func (s *PlayerService) Get(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	var p models.Player
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PlayerService) Create(ctx context.Context, in models.PlayerInput) (*models.Player, error) {
	if err := validation.Player(in).Err(); err != nil {
		return nil, err
	}
	p := models.Player{Name: strings.TrimSpace(in.Name), RecentRating: in.RecentRating}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateRating overwrites a player's recent rating.
func (s *PlayerService) UpdateRating(ctx context.Context, id uuid.UUID, rating float64) error {
	if msg := validation.Rating(rating); msg != "" {
		return invalid(msg)
	}
	return notFound(s.db.WithContext(ctx).Model(&models.Player{}).Where("id = ?", id).
		Update("recent_rating", rating))
}

// AdjustRatings adds delta to every listed player's rating in one statement.
func (s *PlayerService) AdjustRatings(ctx context.Context, ids []uuid.UUID, delta float64) error {
	if delta == 0 || len(ids) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(&models.Player{}).Where("id IN ?", ids).
		Update("recent_rating", gorm.Expr("recent_rating + ?", delta)).Error
}
