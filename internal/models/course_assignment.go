package models

import "time"

// CourseAssignment links one teacher to one course with independent
// permission flags. At most one assignment exists per (course, teacher)
// pair, and at most one assignment per course carries IsPrimaryTeacher.
type CourseAssignment struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	CourseID         uint      `gorm:"not null;uniqueIndex:idx_course_teacher;index" json:"course_id"`
	TeacherID        uint      `gorm:"not null;uniqueIndex:idx_course_teacher;index" json:"teacher_id"`
	IsPrimaryTeacher bool      `gorm:"not null;default:false" json:"is_primary_teacher"`
	CanManageContent bool      `gorm:"not null;default:false" json:"can_manage_content"`
	CanGrade         bool      `gorm:"not null;default:false" json:"can_grade"`
	CanCommunicate   bool      `gorm:"not null;default:false" json:"can_communicate"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// AssignmentFlags carries the full flag set applied to an assignment. The
// flags are a fixed record, not an open map: each one gates exactly one
// capability and none implies another.
type AssignmentFlags struct {
	IsPrimaryTeacher bool `json:"is_primary_teacher"`
	CanManageContent bool `json:"can_manage_content"`
	CanGrade         bool `json:"can_grade"`
	CanCommunicate   bool `json:"can_communicate"`
}

// Flags returns the assignment's current flag record.
func (a CourseAssignment) Flags() AssignmentFlags {
	return AssignmentFlags{
		IsPrimaryTeacher: a.IsPrimaryTeacher,
		CanManageContent: a.CanManageContent,
		CanGrade:         a.CanGrade,
		CanCommunicate:   a.CanCommunicate,
	}
}
