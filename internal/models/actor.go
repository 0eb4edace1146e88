package models

import "time"

// Platform roles as stored in the identity directory.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleParent  = "parent"
	RoleAdmin   = "admin"
)

// Role levels. The numeric level is the authoritative gate for admin-tier
// actions; the role string is informational and used for display/audit.
const (
	AdminRoleLevel      = 4
	SuperAdminRoleLevel = 5
)

// Actor is a read-only projection of the platform user directory. This
// service never creates or mutates actor records.
type Actor struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"size:32;not null;index" json:"role"`
	RoleLevel int       `gorm:"not null;default:1" json:"role_level"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName maps the actor projection onto the shared users table.
func (Actor) TableName() string {
	return "users"
}

// IsAdminTier reports whether the actor may perform admin-gated operations.
// Both the role string and the numeric level are checked independently.
func (a Actor) IsAdminTier() bool {
	return a.Role == RoleAdmin && a.RoleLevel >= AdminRoleLevel
}

// AuditRole returns the role label recorded in audit trails and on created
// courses: level 5 and above reports as super_admin, level 4 as admin.
func (a Actor) AuditRole() string {
	switch {
	case a.RoleLevel >= SuperAdminRoleLevel:
		return "super_admin"
	case a.RoleLevel >= AdminRoleLevel:
		return "admin"
	default:
		return a.Role
	}
}
