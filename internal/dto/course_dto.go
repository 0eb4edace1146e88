package dto

import (
	"encoding/json"
	"time"

	"github.com/lectoria/lectoria-api/internal/models"
)

// CourseCreateRequest carries the admin-supplied course metadata. Any
// requested status is ignored: new courses always start as drafts.
type CourseCreateRequest struct {
	Title                string   `json:"title" validate:"required,max=255"`
	Price                float64  `json:"price" validate:"gte=0"`
	Status               string   `json:"status"`
	Subject              string   `json:"subject" validate:"max=64"`
	GradeLevel           string   `json:"grade_level" validate:"max=32"`
	DifficultyLevel      string   `json:"difficulty_level" validate:"max=32"`
	EstimatedDurationMin int      `json:"estimated_duration_min" validate:"gte=0"`
	EnrollmentLimit      int      `json:"enrollment_limit" validate:"gte=0"`
	Tags                 []string `json:"tags"`
	Description          string   `json:"description"`
}

// CourseResponse is the serialized course returned to callers.
type CourseResponse struct {
	ID                   uint            `json:"id"`
	Title                string          `json:"title"`
	Price                float64         `json:"price"`
	Status               string          `json:"status"`
	PublishedAt          *time.Time      `json:"published_at,omitempty"`
	CreatedBy            uint            `json:"created_by"`
	CreatedByRole        string          `json:"created_by_role"`
	Subject              string          `json:"subject,omitempty"`
	GradeLevel           string          `json:"grade_level,omitempty"`
	DifficultyLevel      string          `json:"difficulty_level,omitempty"`
	EstimatedDurationMin int             `json:"estimated_duration_min,omitempty"`
	CertificateTemplate  string          `json:"certificate_template,omitempty"`
	EnrollmentLimit      int             `json:"enrollment_limit,omitempty"`
	IsFeatured           bool            `json:"is_featured"`
	Tags                 json.RawMessage `json:"tags,omitempty"`
	Description          string          `json:"description,omitempty"`
	LearningObjectives   string          `json:"learning_objectives,omitempty"`
	Prerequisites        string          `json:"prerequisites,omitempty"`
	Curriculum           json.RawMessage `json:"curriculum,omitempty"`
	Materials            json.RawMessage `json:"materials,omitempty"`
	Resources            json.RawMessage `json:"resources,omitempty"`
	Modules              json.RawMessage `json:"modules,omitempty"`
	Lessons              json.RawMessage `json:"lessons,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// NewCourseResponse maps the course model to its response shape.
func NewCourseResponse(course models.Course) CourseResponse {
	return CourseResponse{
		ID:                   course.ID,
		Title:                course.Title,
		Price:                course.Price,
		Status:               course.Status,
		PublishedAt:          course.PublishedAt,
		CreatedBy:            course.CreatedBy,
		CreatedByRole:        course.CreatedByRole,
		Subject:              course.Subject,
		GradeLevel:           course.GradeLevel,
		DifficultyLevel:      course.DifficultyLevel,
		EstimatedDurationMin: course.EstimatedDurationMin,
		CertificateTemplate:  course.CertificateTemplate,
		EnrollmentLimit:      course.EnrollmentLimit,
		IsFeatured:           course.IsFeatured,
		Tags:                 json.RawMessage(course.Tags),
		Description:          course.Description,
		LearningObjectives:   course.LearningObjectives,
		Prerequisites:        course.Prerequisites,
		Curriculum:           json.RawMessage(course.Curriculum),
		Materials:            json.RawMessage(course.Materials),
		Resources:            json.RawMessage(course.Resources),
		Modules:              json.RawMessage(course.Modules),
		Lessons:              json.RawMessage(course.Lessons),
		CreatedAt:            course.CreatedAt,
		UpdatedAt:            course.UpdatedAt,
	}
}
