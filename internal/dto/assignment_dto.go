package dto

import (
	"time"

	"github.com/lectoria/lectoria-api/internal/models"
)

// AssignmentCreateRequest links a teacher to a course with an initial flag set.
type AssignmentCreateRequest struct {
	CourseID         uint `json:"course_id" validate:"required"`
	TeacherID        uint `json:"teacher_id" validate:"required"`
	IsPrimaryTeacher bool `json:"is_primary_teacher"`
	CanManageContent bool `json:"can_manage_content"`
	CanGrade         bool `json:"can_grade"`
	CanCommunicate   bool `json:"can_communicate"`
}

// Flags returns the requested flag record.
func (r AssignmentCreateRequest) Flags() models.AssignmentFlags {
	return models.AssignmentFlags{
		IsPrimaryTeacher: r.IsPrimaryTeacher,
		CanManageContent: r.CanManageContent,
		CanGrade:         r.CanGrade,
		CanCommunicate:   r.CanCommunicate,
	}
}

// AssignmentFlagsRequest replaces the full flag record of an assignment.
type AssignmentFlagsRequest struct {
	IsPrimaryTeacher bool `json:"is_primary_teacher"`
	CanManageContent bool `json:"can_manage_content"`
	CanGrade         bool `json:"can_grade"`
	CanCommunicate   bool `json:"can_communicate"`
}

// Flags returns the requested flag record.
func (r AssignmentFlagsRequest) Flags() models.AssignmentFlags {
	return models.AssignmentFlags{
		IsPrimaryTeacher: r.IsPrimaryTeacher,
		CanManageContent: r.CanManageContent,
		CanGrade:         r.CanGrade,
		CanCommunicate:   r.CanCommunicate,
	}
}

// AssignmentResponse is the serialized assignment returned to callers.
type AssignmentResponse struct {
	ID               uint      `json:"id"`
	CourseID         uint      `json:"course_id"`
	TeacherID        uint      `json:"teacher_id"`
	IsPrimaryTeacher bool      `json:"is_primary_teacher"`
	CanManageContent bool      `json:"can_manage_content"`
	CanGrade         bool      `json:"can_grade"`
	CanCommunicate   bool      `json:"can_communicate"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewAssignmentResponse maps the assignment model to its response shape.
func NewAssignmentResponse(assignment models.CourseAssignment) AssignmentResponse {
	return AssignmentResponse{
		ID:               assignment.ID,
		CourseID:         assignment.CourseID,
		TeacherID:        assignment.TeacherID,
		IsPrimaryTeacher: assignment.IsPrimaryTeacher,
		CanManageContent: assignment.CanManageContent,
		CanGrade:         assignment.CanGrade,
		CanCommunicate:   assignment.CanCommunicate,
		CreatedAt:        assignment.CreatedAt,
		UpdatedAt:        assignment.UpdatedAt,
	}
}
