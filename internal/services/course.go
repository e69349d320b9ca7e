package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trentd187/golf-match-tracker/internal/models"
	"github.com/trentd187/golf-match-tracker/internal/saga"
	"github.com/trentd187/golf-match-tracker/internal/scoring"
	"github.com/trentd187/golf-match-tracker/internal/validation"
)

// CourseService reads and writes courses and their holes.
type CourseService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewCourseService(db *gorm.DB, log *zap.Logger) *CourseService {
	return &CourseService{db: db, log: log.Named("courses")}
}

// List returns every course sorted by name, without holes.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	courses := []models.Course{}
	err := s.db.WithContext(ctx).Order("name ASC").Find(&courses).Error
	return courses, err
}

// Get returns one course with its holes in hole order.
func (s *CourseService) Get(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	var course models.Course
	err := s.db.WithContext(ctx).
		Preload("Holes", func(db *gorm.DB) *gorm.DB { return db.Order("hole_number ASC") }).
		First(&course, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// Create inserts a course and its 18 holes. If the holes can't be inserted the course
// row is removed again.
func (s *CourseService) Create(ctx context.Context, in models.CourseInput) (*models.Course, error) {
	if err := validation.Course(in).Err(); err != nil {
		return nil, err
	}

	holes := holesFromInput(in.Holes)
	course := models.Course{Name: strings.TrimSpace(in.Name)}
	scoring.CourseTotals(holes).Apply(&course)

	db := s.db.WithContext(ctx)
	err := saga.Run(ctx, s.log,
		saga.Step{
			Name: "insert course",
			Do: func(context.Context) error {
				return db.Omit(clause.Associations).Create(&course).Error
			},
			Undo: func(ctx context.Context) error {
				return s.db.WithContext(ctx).Delete(&models.Course{}, "id = ?", course.ID).Error
			},
		},
		saga.Step{
			Name: "insert holes",
			Do: func(context.Context) error {
				for i := range holes {
					holes[i].CourseID = course.ID
				}
				return db.Create(&holes).Error
			},
		},
	)
	if err != nil {
		return nil, err
	}

	course.Holes = holes
	return &course, nil
}

// Update renames a course and, when holes are supplied, rewrites each hole's par and
// distance by hole number. The stored totals are recomputed from the resulting holes.
func (s *CourseService) Update(ctx context.Context, id uuid.UUID, in models.CourseInput) (*models.Course, error) {
	if err := validation.CourseUpdate(in).Err(); err != nil {
		return nil, err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := current.Holes
	if in.Holes != nil {
		next = holesFromInput(in.Holes)
	}
	totals := scoring.CourseTotals(next)

	db := s.db.WithContext(ctx)
	err = saga.Run(ctx, s.log,
		saga.Step{
			Name: "update holes",
			Do: func(context.Context) error {
				if in.Holes == nil {
					return nil
				}
				return s.writeHoles(db, id, next)
			},
			Undo: func(ctx context.Context) error {
				return s.writeHoles(s.db.WithContext(ctx), id, current.Holes)
			},
		},
		saga.Step{
			Name: "update course",
			Do: func(context.Context) error {
				return db.Model(&models.Course{}).Where("id = ?", id).Updates(map[string]any{
					"name":           strings.TrimSpace(in.Name),
					"front_par":      totals.FrontPar,
					"back_par":       totals.BackPar,
					"total_par":      totals.TotalPar,
					"front_distance": totals.FrontDistance,
					"back_distance":  totals.BackDistance,
					"total_distance": totals.TotalDistance,
				}).Error
			},
		},
	)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// writeHoles sets par and distance on each hole by number, inserting any hole row that
// is missing.
func (s *CourseService) writeHoles(db *gorm.DB, courseID uuid.UUID, holes []models.Hole) error {
	for _, h := range holes {
		res := db.Model(&models.Hole{}).
			Where("course_id = ? AND hole_number = ?", courseID, h.HoleNumber).
			Updates(map[string]any{"par": h.Par, "distance": h.Distance})
		if res.Error != nil {
			return fmt.Errorf("hole %d: %w", h.HoleNumber, res.Error)
		}
		if res.RowsAffected == 0 {
			row := models.Hole{CourseID: courseID, HoleNumber: h.HoleNumber, Par: h.Par, Distance: h.Distance}
			if err := db.Create(&row).Error; err != nil {
				return fmt.Errorf("hole %d: %w", h.HoleNumber, err)
			}
		}
	}
	return nil
}

// Delete removes a course's holes and then the course. A course that matches still
// refer to can't be deleted.
func (s *CourseService) Delete(ctx context.Context, id uuid.UUID) error {
	db := s.db.WithContext(ctx)
	if err := db.Select("id").First(&models.Course{}, "id = ?", id).Error; err != nil {
		return err
	}

	var used int64
	if err := db.Model(&models.Match{}).Where("course_id = ?", id).Count(&used).Error; err != nil {
		return err
	}
	if used > 0 {
		return invalid(fmt.Sprintf("Course is used by %d match(es) and cannot be deleted", used))
	}

	if err := db.Where("course_id = ?", id).Delete(&models.Hole{}).Error; err != nil {
		return err
	}
	return notFound(db.Delete(&models.Course{}, "id = ?", id))
}

func holesFromInput(in []models.HoleInput) []models.Hole {
	holes := make([]models.Hole, len(in))
	for i, h := range in {
		holes[i] = models.Hole{HoleNumber: validation.HoleNumberAt(h, i), Par: *h.Par, Distance: *h.Distance}
	}
	sort.Slice(holes, func(i, j int) bool { return holes[i].HoleNumber < holes[j].HoleNumber })
	return holes
}
