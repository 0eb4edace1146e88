package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lectoria/lectoria-api/internal/models"
)

// CourseAssignmentRepository persists teacher-to-course assignments and
// guards their structural invariants. Pair uniqueness is enforced by the
// composite unique index and surfaces as gorm.ErrDuplicatedKey; the
// single-primary invariant is enforced transactionally, so a concurrent
// reader never observes two primaries for the same course.
type CourseAssignmentRepository interface {
	FindByTeacherAndCourse(ctx context.Context, teacherID, courseID uint) (models.CourseAssignment, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]models.CourseAssignment, error)
	ListByCourse(ctx context.Context, courseID uint) ([]models.CourseAssignment, error)
	GetByID(ctx context.Context, id uint) (models.CourseAssignment, error)
	Insert(ctx context.Context, assignment *models.CourseAssignment) error
	UpdateFlags(ctx context.Context, id uint, flags models.AssignmentFlags) (models.CourseAssignment, error)
	Delete(ctx context.Context, id uint) error
}

type courseAssignmentRepository struct {
	db *gorm.DB
}

// NewCourseAssignmentRepository instantiates a GORM-backed assignment repository.
func NewCourseAssignmentRepository(db *gorm.DB) CourseAssignmentRepository {
	return &courseAssignmentRepository{db: db}
}

func (r *courseAssignmentRepository) FindByTeacherAndCourse(ctx context.Context, teacherID, courseID uint) (models.CourseAssignment, error) {
	var assignment models.CourseAssignment
	err := r.db.WithContext(ctx).
		Where("teacher_id = ? AND course_id = ?", teacherID, courseID).
		First(&assignment).Error
	if err != nil {
		return models.CourseAssignment{}, err
	}

	return assignment, nil
}

func (r *courseAssignmentRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]models.CourseAssignment, error) {
	var assignments []models.CourseAssignment
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("course_id ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *courseAssignmentRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.CourseAssignment, error) {
	var assignments []models.CourseAssignment
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("teacher_id ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *courseAssignmentRepository) GetByID(ctx context.Context, id uint) (models.CourseAssignment, error) {
	var assignment models.CourseAssignment
	if err := r.db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		return models.CourseAssignment{}, err
	}

	return assignment, nil
}

// Insert creates the assignment. When the new record is primary, any
// existing primary for the course is demoted inside the same transaction.
// A duplicate (course, teacher) pair returns gorm.ErrDuplicatedKey.
func (r *courseAssignmentRepository) Insert(ctx context.Context, assignment *models.CourseAssignment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if assignment.IsPrimaryTeacher {
			err := tx.Model(&models.CourseAssignment{}).
				Where("course_id = ? AND is_primary_teacher = ?", assignment.CourseID, true).
				Update("is_primary_teacher", false).Error
			if err != nil {
				return err
			}
		}

		return tx.Create(assignment).Error
	})
}

// UpdateFlags replaces the flag record of an assignment. Promotion to
// primary demotes the course's current primary in the same transaction.
func (r *courseAssignmentRepository) UpdateFlags(ctx context.Context, id uint, flags models.AssignmentFlags) (models.CourseAssignment, error) {
	var assignment models.CourseAssignment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&assignment, id).Error; err != nil {
			return err
		}

		if flags.IsPrimaryTeacher {
			err := tx.Model(&models.CourseAssignment{}).
				Where("course_id = ? AND id <> ? AND is_primary_teacher = ?", assignment.CourseID, assignment.ID, true).
				Update("is_primary_teacher", false).Error
			if err != nil {
				return err
			}
		}

		assignment.IsPrimaryTeacher = flags.IsPrimaryTeacher
		assignment.CanManageContent = flags.CanManageContent
		assignment.CanGrade = flags.CanGrade
		assignment.CanCommunicate = flags.CanCommunicate

		return tx.Save(&assignment).Error
	})
	if err != nil {
		return models.CourseAssignment{}, err
	}

	return assignment, nil
}

func (r *courseAssignmentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.CourseAssignment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
