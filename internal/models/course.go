package models

import (
	"time"

	"gorm.io/datatypes"
)

// Course lifecycle states. Transitions are draft -> published -> draft;
// both directions are admin-only.
const (
	CourseStatusDraft     = "draft"
	CourseStatusPublished = "published"
	CourseStatusArchived  = "archived"
)

// Course holds both the admin-managed metadata columns and the
// teacher-editable content columns. CreatedBy and CreatedByRole are set once
// at creation time and never overwritten afterwards.
type Course struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Metadata (admin-only).
	Title               string         `gorm:"size:255;not null" json:"title"`
	Price               float64        `json:"price"`
	Status              string         `gorm:"size:16;not null;default:draft" json:"status"`
	PublishedAt         *time.Time     `json:"published_at"`
	CreatedBy           uint           `gorm:"not null;index" json:"created_by"`
	CreatedByRole       string         `gorm:"size:16;not null" json:"created_by_role"`
	Subject             string         `gorm:"size:64" json:"subject"`
	GradeLevel          string         `gorm:"size:32" json:"grade_level"`
	DifficultyLevel     string         `gorm:"size:32" json:"difficulty_level"`
	EstimatedDurationMin int           `json:"estimated_duration_min"`
	CertificateTemplate string         `gorm:"size:255" json:"certificate_template"`
	EnrollmentLimit     int            `json:"enrollment_limit"`
	IsFeatured          bool           `json:"is_featured"`
	Tags                datatypes.JSON `json:"tags"`

	// Content (teacher-editable under content-management permission).
	Description        string         `gorm:"type:text" json:"description"`
	LearningObjectives string         `gorm:"type:text" json:"learning_objectives"`
	Prerequisites      string         `gorm:"type:text" json:"prerequisites"`
	Curriculum         datatypes.JSON `json:"curriculum"`
	Materials          datatypes.JSON `json:"materials"`
	Resources          datatypes.JSON `json:"resources"`
	Modules            datatypes.JSON `json:"modules"`
	Lessons            datatypes.JSON `json:"lessons"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsPublished reports whether the course is currently visible to learners.
func (c Course) IsPublished() bool {
	return c.Status == CourseStatusPublished
}
