package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/lectoria/lectoria-api/internal/models"
)

// CourseRepository persists courses. Creator columns are written exactly
// once on Create; no update path in this repository touches them again.
type CourseRepository interface {
	GetByID(ctx context.Context, id uint) (models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	UpdateStatus(ctx context.Context, id uint, status string, publishedAt *time.Time) (models.Course, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (models.Course, error)
	DeleteCascade(ctx context.Context, id uint) error
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository instantiates a GORM-backed course repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return models.Course{}, err
	}

	return course, nil
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) UpdateStatus(ctx context.Context, id uint, status string, publishedAt *time.Time) (models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&course, id).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":       status,
			"published_at": publishedAt,
		}
		if err := tx.Model(&course).Updates(updates).Error; err != nil {
			return err
		}

		course.Status = status
		course.PublishedAt = publishedAt
		return nil
	})
	if err != nil {
		return models.Course{}, err
	}

	return course, nil
}

// UpdateFields applies the given column updates to a single course. Callers
// are responsible for restricting the column set; the creator columns must
// never appear here.
func (r *courseRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&course, id).Error; err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		if err := tx.Model(&models.Course{}).Where("id = ?", id).Updates(fields).Error; err != nil {
			return err
		}

		return tx.First(&course, id).Error
	})
	if err != nil {
		return models.Course{}, err
	}

	return course, nil
}

// DeleteCascade removes the course and every assignment referencing it in
// one transaction, so no orphaned assignment can outlive its course.
func (r *courseRepository) DeleteCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Course{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Where("course_id = ?", id).Delete(&models.CourseAssignment{}).Error
	})
}
