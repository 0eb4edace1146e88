package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lectoria/lectoria-api/internal/models"
)

// AuditRecordFilter narrows audit trail queries.
type AuditRecordFilter struct {
	Page         int
	PageSize     int
	ActorID      *uint
	Action       string
	ResourceType string
}

// AuditRecordRepository appends and queries the audit trail. There is no
// update or single-delete path: the trail is append-only.
type AuditRecordRepository interface {
	Create(ctx context.Context, record *models.AuditRecord) error
	List(ctx context.Context, filter AuditRecordFilter) ([]models.AuditRecord, int64, error)
}

type auditRecordRepository struct {
	db *gorm.DB
}

// NewAuditRecordRepository constructs the audit trail repository.
func NewAuditRecordRepository(db *gorm.DB) AuditRecordRepository {
	return &auditRecordRepository{db: db}
}

func (r *auditRecordRepository) Create(ctx context.Context, record *models.AuditRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *auditRecordRepository) List(ctx context.Context, filter AuditRecordFilter) ([]models.AuditRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditRecord{})

	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}

	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}

	if filter.ResourceType != "" {
		query = query.Where("resource_type = ?", filter.ResourceType)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var records []models.AuditRecord
	if err := query.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}
