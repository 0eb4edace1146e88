package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lectoria/lectoria-api/internal/models"
)

func setupCourseTestDB(t *testing.T, entities ...interface{}) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:repo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(entities...))

	return db
}

func TestCourseRepositoryUpdateStatusSetsAndClearsPublishedAt(t *testing.T) {
	db := setupCourseTestDB(t, &models.Course{})
	repo := NewCourseRepository(db)

	course := models.Course{Title: "Algebra I", Status: models.CourseStatusDraft, CreatedBy: 7, CreatedByRole: "admin"}
	require.NoError(t, repo.Create(context.Background(), &course))

	publishedAt := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	published, err := repo.UpdateStatus(context.Background(), course.ID, models.CourseStatusPublished, &publishedAt)
	require.NoError(t, err)
	require.Equal(t, models.CourseStatusPublished, published.Status)
	require.NotNil(t, published.PublishedAt)
	require.WithinDuration(t, publishedAt, *published.PublishedAt, time.Second)

	reverted, err := repo.UpdateStatus(context.Background(), course.ID, models.CourseStatusDraft, nil)
	require.NoError(t, err)
	require.Equal(t, models.CourseStatusDraft, reverted.Status)
	require.Nil(t, reverted.PublishedAt)

	var stored models.Course
	require.NoError(t, db.First(&stored, course.ID).Error)
	require.Equal(t, models.CourseStatusDraft, stored.Status)
	require.Nil(t, stored.PublishedAt)
}

func TestCourseRepositoryUpdateStatusMissingCourse(t *testing.T) {
	db := setupCourseTestDB(t, &models.Course{})
	repo := NewCourseRepository(db)

	_, err := repo.UpdateStatus(context.Background(), 404, models.CourseStatusPublished, nil)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCourseRepositoryUpdateFieldsLeavesOtherColumnsUntouched(t *testing.T) {
	db := setupCourseTestDB(t, &models.Course{})
	repo := NewCourseRepository(db)

	course := models.Course{
		Title:         "Chemistry",
		Status:        models.CourseStatusDraft,
		CreatedBy:     3,
		CreatedByRole: "super_admin",
		Description:   "old",
	}
	require.NoError(t, repo.Create(context.Background(), &course))

	updated, err := repo.UpdateFields(context.Background(), course.ID, map[string]interface{}{
		"description":   "new description",
		"prerequisites": "none",
	})
	require.NoError(t, err)
	require.Equal(t, "new description", updated.Description)
	require.Equal(t, "none", updated.Prerequisites)
	require.Equal(t, "Chemistry", updated.Title)
	require.Equal(t, uint(3), updated.CreatedBy)
	require.Equal(t, "super_admin", updated.CreatedByRole)
}

func TestCourseRepositoryDeleteCascadeRemovesAssignments(t *testing.T) {
	db := setupCourseTestDB(t, &models.Course{}, &models.CourseAssignment{})
	repo := NewCourseRepository(db)

	course := models.Course{Title: "Physics", Status: models.CourseStatusDraft, CreatedBy: 1, CreatedByRole: "admin"}
	require.NoError(t, repo.Create(context.Background(), &course))

	other := models.Course{Title: "Biology", Status: models.CourseStatusDraft, CreatedBy: 1, CreatedByRole: "admin"}
	require.NoError(t, repo.Create(context.Background(), &other))

	require.NoError(t, db.Create(&models.CourseAssignment{CourseID: course.ID, TeacherID: 11, IsPrimaryTeacher: true}).Error)
	require.NoError(t, db.Create(&models.CourseAssignment{CourseID: course.ID, TeacherID: 12, CanGrade: true}).Error)
	require.NoError(t, db.Create(&models.CourseAssignment{CourseID: other.ID, TeacherID: 11}).Error)

	require.NoError(t, repo.DeleteCascade(context.Background(), course.ID))

	var remaining int64
	require.NoError(t, db.Model(&models.CourseAssignment{}).Where("course_id = ?", course.ID).Count(&remaining).Error)
	require.Zero(t, remaining)

	var untouched int64
	require.NoError(t, db.Model(&models.CourseAssignment{}).Where("course_id = ?", other.ID).Count(&untouched).Error)
	require.Equal(t, int64(1), untouched)

	require.ErrorIs(t, db.First(&models.Course{}, course.ID).Error, gorm.ErrRecordNotFound)
}

func TestCourseRepositoryDeleteCascadeMissingCourse(t *testing.T) {
	db := setupCourseTestDB(t, &models.Course{}, &models.CourseAssignment{})
	repo := NewCourseRepository(db)

	require.ErrorIs(t, repo.DeleteCascade(context.Background(), 999), gorm.ErrRecordNotFound)
}
