package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit actions emitted by the course and assignment managers.
const (
	AuditCourseCreated           = "course_created"
	AuditCoursePublished         = "course_published"
	AuditCourseUnpublished       = "course_unpublished"
	AuditCourseDeleted           = "course_deleted"
	AuditCourseContentUpdated    = "course_content_updated"
	AuditMetadataUpdateRejected  = "metadata_update_rejected"
	AuditAssignmentCreated       = "assignment_created"
	AuditAssignmentUpdated       = "assignment_updated"
	AuditAssignmentDeleted       = "assignment_deleted"
)

// Audit resource types.
const (
	ResourceCourse           = "course"
	ResourceCourseAssignment = "course_assignment"
)

// AuditRecord is an append-only trail entry. Records are never mutated or
// deleted by this service.
type AuditRecord struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	ActorID      uint              `gorm:"not null;index" json:"actor_id"`
	ActorRole    string            `gorm:"size:32;not null" json:"actor_role"`
	Action       string            `gorm:"size:64;not null;index" json:"action"`
	ResourceType string            `gorm:"size:32;not null;index" json:"resource_type"`
	ResourceID   *uint             `json:"resource_id"`
	Details      datatypes.JSONMap `gorm:"type:json" json:"details"`
	CreatedAt    time.Time         `json:"created_at"`
}
