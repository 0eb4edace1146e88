package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/lectoria/lectoria-api/internal/dto"
	"github.com/lectoria/lectoria-api/internal/models"
	"github.com/lectoria/lectoria-api/internal/repository"
)

// AuditEntry captures the details required to persist one trail entry.
type AuditEntry struct {
	ActorID      uint
	ActorRole    string
	Action       string
	ResourceType string
	ResourceID   *uint
	Details      map[string]interface{}
}

// AuditRecorder appends audit trail entries. Recording is best-effort from
// the caller's perspective: mutations proceed even when the trail write
// fails, but failures are always logged, never silently dropped.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// AuditService exposes methods to append and query the audit trail.
type AuditService interface {
	AuditRecorder
	List(ctx context.Context, req dto.AuditListRequest) (dto.AuditListResponse, error)
}

type auditService struct {
	repo    repository.AuditRecordRepository
	nats    *nats.Conn
	subject string
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// NewAuditService constructs the audit trail service. When a NATS
// connection is provided, committed records are additionally published on
// the given subject for downstream consumers, fire-and-forget.
func NewAuditService(repo repository.AuditRecordRepository, natsConn *nats.Conn, subject string, logger zerolog.Logger) AuditService {
	return &auditService{
		repo:    repo,
		nats:    natsConn,
		subject: subject,
		logger:  logger.With().Str("component", "audit_service").Logger(),
		tracer:  otel.Tracer("github.com/lectoria/lectoria-api/internal/service/audit"),
	}
}

func (s *auditService) Record(ctx context.Context, entry AuditEntry) error {
	action := strings.ToLower(strings.TrimSpace(entry.Action))
	if action == "" {
		return fmt.Errorf("audit action is required")
	}
	resourceType := strings.ToLower(strings.TrimSpace(entry.ResourceType))
	if resourceType == "" {
		return fmt.Errorf("audit resource type is required")
	}

	spanCtx, span := s.tracer.Start(ctx, "audit.record", trace.WithAttributes(
		attribute.String("audit.action", action),
		attribute.String("audit.resource_type", resourceType),
	))
	defer span.End()

	record := models.AuditRecord{
		ActorID:      entry.ActorID,
		ActorRole:    normalizeActorRole(entry.ActorRole),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   entry.ResourceID,
		Details:      sanitizeDetails(entry.Details),
	}

	if err := s.repo.Create(spanCtx, &record); err != nil {
		s.logger.Error().Err(err).Str("action", action).Msg("failed to persist audit record")
		return err
	}

	s.publish(record)
	return nil
}

// publish fans the committed record out over NATS. Failures are logged and
// swallowed: the trail entry is already durable in the store.
func (s *auditService) publish(record models.AuditRecord) {
	if s.nats == nil || s.subject == "" {
		return
	}

	payload, err := json.Marshal(dto.NewAuditRecordResponse(record))
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode audit event")
		return
	}
	if err := s.nats.Publish(s.subject, payload); err != nil {
		s.logger.Warn().Err(err).Str("subject", s.subject).Msg("failed to publish audit event")
	}
}

func (s *auditService) List(ctx context.Context, req dto.AuditListRequest) (dto.AuditListResponse, error) {
	filter := repository.AuditRecordFilter{
		Page:         req.Page,
		PageSize:     req.PageSize,
		Action:       strings.TrimSpace(req.Action),
		ResourceType: strings.TrimSpace(req.ResourceType),
	}
	if req.ActorID > 0 {
		filter.ActorID = &req.ActorID
	}

	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.AuditListResponse{}, err
	}

	items := make([]dto.AuditRecordResponse, 0, len(records))
	for _, record := range records {
		items = append(items, dto.NewAuditRecordResponse(record))
	}

	pagination := dto.PaginationMeta{
		Page:       maxInt(req.Page, 1),
		PageSize:   req.PageSize,
		TotalItems: total,
	}
	if req.PageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(req.PageSize)))
	} else {
		pagination.TotalPages = 1
	}

	return dto.AuditListResponse{Items: items, Pagination: pagination}, nil
}

func sanitizeDetails(details map[string]interface{}) datatypes.JSONMap {
	if details == nil {
		return datatypes.JSONMap{}
	}

	sanitized := datatypes.JSONMap{}
	for key, value := range details {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "email") || strings.Contains(lower, "token") || strings.Contains(lower, "password") {
			sanitized[key] = "***"
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

func normalizeActorRole(role string) string {
	r := strings.ToLower(strings.TrimSpace(role))
	if r == "" {
		return "system"
	}
	return r
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
