package dto

import (
	"time"

	"github.com/lectoria/lectoria-api/internal/models"
)

// AuditListRequest filters and paginates the audit trail.
type AuditListRequest struct {
	Page         int    `query:"page" json:"page"`
	PageSize     int    `query:"page_size" json:"page_size" validate:"gte=0,lte=200"`
	ActorID      uint   `query:"actor_id" json:"actor_id"`
	Action       string `query:"action" json:"action"`
	ResourceType string `query:"resource_type" json:"resource_type"`
}

// AuditRecordResponse is the serialized audit entry.
type AuditRecordResponse struct {
	ID           uint                   `json:"id"`
	ActorID      uint                   `json:"actor_id"`
	ActorRole    string                 `json:"actor_role"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   *uint                  `json:"resource_id,omitempty"`
	Details      map[string]interface{} `json:"details"`
	CreatedAt    time.Time              `json:"created_at"`
}

// NewAuditRecordResponse maps an audit record to its response shape.
func NewAuditRecordResponse(record models.AuditRecord) AuditRecordResponse {
	return AuditRecordResponse{
		ID:           record.ID,
		ActorID:      record.ActorID,
		ActorRole:    record.ActorRole,
		Action:       record.Action,
		ResourceType: record.ResourceType,
		ResourceID:   record.ResourceID,
		Details:      record.Details,
		CreatedAt:    record.CreatedAt,
	}
}

// AuditListResponse pages through audit entries.
type AuditListResponse struct {
	Items      []AuditRecordResponse `json:"items"`
	Pagination PaginationMeta        `json:"pagination"`
}
