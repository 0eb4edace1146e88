package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lectoria/lectoria-api/internal/dto"
	"github.com/lectoria/lectoria-api/internal/models"
	"github.com/lectoria/lectoria-api/internal/repository"
)

// ErrCourseNotFound indicates the course does not exist.
var ErrCourseNotFound = errors.New("course not found")

// ErrPermissionDenied indicates the actor failed the required permission gate.
var ErrPermissionDenied = errors.New("permission denied")

// ErrInvalidStatusTransition indicates a publish/unpublish call against the
// wrong current status.
var ErrInvalidStatusTransition = errors.New("invalid course status transition")

// CourseService orchestrates the course lifecycle and guarded content
// updates. Every successful mutation emits an audit record; audit failures
// never roll the mutation back.
type CourseService interface {
	Create(ctx context.Context, actorID uint, payload dto.CourseCreateRequest) (dto.CourseResponse, error)
	Get(ctx context.Context, courseID uint) (dto.CourseResponse, error)
	Publish(ctx context.Context, actorID, courseID uint) (dto.CourseResponse, error)
	Unpublish(ctx context.Context, actorID, courseID uint) (dto.CourseResponse, error)
	Delete(ctx context.Context, actorID, courseID uint) error
	ApplyContentUpdate(ctx context.Context, actorID, courseID uint, fields map[string]interface{}) (dto.CourseResponse, error)
}

type courseService struct {
	repo      repository.CourseRepository
	perms     PermissionService
	directory ActorDirectory
	guard     *ContentFieldGuard
	audit     AuditRecorder
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewCourseService constructs the course manager.
func NewCourseService(repo repository.CourseRepository, perms PermissionService, directory ActorDirectory, guard *ContentFieldGuard, audit AuditRecorder, validate *validator.Validate, logger zerolog.Logger) CourseService {
	return &courseService{
		repo:      repo,
		perms:     perms,
		directory: directory,
		guard:     guard,
		audit:     audit,
		validator: validate,
		logger:    logger.With().Str("component", "course_service").Logger(),
		now:       time.Now,
	}
}

func (s *courseService) Create(ctx context.Context, actorID uint, payload dto.CourseCreateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	decision, err := s.perms.CanCreateCourse(ctx, actorID)
	if err != nil {
		return dto.CourseResponse{}, err
	}
	if !decision.Allowed {
		return dto.CourseResponse{}, fmt.Errorf("%w: %s", ErrPermissionDenied, decision.Reason)
	}

	actor, err := s.directory.GetActor(ctx, actorID)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	course := models.Course{
		Title:                strings.TrimSpace(payload.Title),
		Price:                payload.Price,
		Status:               models.CourseStatusDraft,
		CreatedBy:            actor.ID,
		CreatedByRole:        actor.AuditRole(),
		Subject:              strings.TrimSpace(payload.Subject),
		GradeLevel:           strings.TrimSpace(payload.GradeLevel),
		DifficultyLevel:      strings.TrimSpace(payload.DifficultyLevel),
		EstimatedDurationMin: payload.EstimatedDurationMin,
		EnrollmentLimit:      payload.EnrollmentLimit,
		Description:          strings.TrimSpace(payload.Description),
	}
	if len(payload.Tags) > 0 {
		tags, marshalErr := json.Marshal(payload.Tags)
		if marshalErr != nil {
			return dto.CourseResponse{}, marshalErr
		}
		course.Tags = datatypes.JSON(tags)
	}

	if err := s.repo.Create(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	_ = s.audit.Record(ctx, AuditEntry{
		ActorID:      actor.ID,
		ActorRole:    actor.AuditRole(),
		Action:       models.AuditCourseCreated,
		ResourceType: models.ResourceCourse,
		ResourceID:   &course.ID,
		Details: map[string]interface{}{
			"title":           course.Title,
			"created_by_role": course.CreatedByRole,
		},
	})

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Get(ctx context.Context, courseID uint) (dto.CourseResponse, error) {
	course, err := s.repo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}
	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Publish(ctx context.Context, actorID, courseID uint) (dto.CourseResponse, error) {
	return s.transition(ctx, actorID, courseID, models.CourseStatusDraft, models.CourseStatusPublished)
}

func (s *courseService) Unpublish(ctx context.Context, actorID, courseID uint) (dto.CourseResponse, error) {
	return s.transition(ctx, actorID, courseID, models.CourseStatusPublished, models.CourseStatusDraft)
}

func (s *courseService) transition(ctx context.Context, actorID, courseID uint, from, to string) (dto.CourseResponse, error) {
	if courseID == 0 {
		return dto.CourseResponse{}, ErrInvalidArgument
	}

	var (
		decision Decision
		err      error
	)
	if to == models.CourseStatusPublished {
		decision, err = s.perms.CanPublishCourse(ctx, actorID, courseID)
	} else {
		decision, err = s.perms.CanUnpublishCourse(ctx, actorID, courseID)
	}
	if err != nil {
		return dto.CourseResponse{}, err
	}
	if !decision.Allowed {
		return dto.CourseResponse{}, fmt.Errorf("%w: %s", ErrPermissionDenied, decision.Reason)
	}

	course, err := s.repo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}
	if course.Status != from {
		return dto.CourseResponse{}, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, course.Status, to)
	}

	var publishedAt *time.Time
	action := models.AuditCourseUnpublished
	if to == models.CourseStatusPublished {
		now := s.now().UTC()
		publishedAt = &now
		action = models.AuditCoursePublished
	}

	updated, err := s.repo.UpdateStatus(ctx, courseID, to, publishedAt)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	s.recordCourseAudit(ctx, actorID, action, courseID, map[string]interface{}{
		"status": to,
	})

	return dto.NewCourseResponse(updated), nil
}

func (s *courseService) Delete(ctx context.Context, actorID, courseID uint) error {
	if courseID == 0 {
		return ErrInvalidArgument
	}

	decision, err := s.perms.CanDeleteCourse(ctx, actorID)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, decision.Reason)
	}

	if err := s.repo.DeleteCascade(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}

	s.recordCourseAudit(ctx, actorID, models.AuditCourseDeleted, courseID, map[string]interface{}{
		"cascade": "course_assignments",
	})

	return nil
}

// ApplyContentUpdate validates the payload against the field guard and
// applies it atomically. A payload touching any restricted field is
// rejected in full, and the rejection itself is written to the audit trail.
func (s *courseService) ApplyContentUpdate(ctx context.Context, actorID, courseID uint, fields map[string]interface{}) (dto.CourseResponse, error) {
	if actorID == 0 || courseID == 0 {
		return dto.CourseResponse{}, ErrInvalidArgument
	}
	if len(fields) == 0 {
		return dto.CourseResponse{}, fmt.Errorf("%w: empty update payload", ErrInvalidArgument)
	}

	actor, err := s.directory.GetActor(ctx, actorID)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	if _, err := s.repo.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	classification := s.guard.Classify(fields)

	restricted := append([]string{}, classification.Immutable...)
	if !actor.IsAdminTier() {
		restricted = append(restricted, classification.Metadata...)
	}
	if len(restricted) > 0 {
		_ = s.audit.Record(ctx, AuditEntry{
			ActorID:      actor.ID,
			ActorRole:    actor.AuditRole(),
			Action:       models.AuditMetadataUpdateRejected,
			ResourceType: models.ResourceCourse,
			ResourceID:   &courseID,
			Details: map[string]interface{}{
				"fields": restricted,
			},
		})
		return dto.CourseResponse{}, &RestrictedFieldsError{Fields: restricted}
	}

	if !actor.IsAdminTier() {
		decision, err := s.perms.CanManageCourseContent(ctx, actorID, courseID)
		if err != nil {
			return dto.CourseResponse{}, err
		}
		if !decision.Allowed {
			return dto.CourseResponse{}, fmt.Errorf("%w: %s", ErrPermissionDenied, decision.Reason)
		}
	}

	updates, err := s.guard.NormalizeContent(fields, classification.Content)
	if err != nil {
		return dto.CourseResponse{}, err
	}
	if actor.IsAdminTier() && len(classification.Metadata) > 0 {
		metadataUpdates, err := s.guard.NormalizeMetadata(fields, classification.Metadata)
		if err != nil {
			return dto.CourseResponse{}, err
		}
		for column, value := range metadataUpdates {
			updates[column] = value
		}
	}
	if len(updates) == 0 {
		return dto.CourseResponse{}, fmt.Errorf("%w: no applicable fields", ErrInvalidArgument)
	}

	course, err := s.repo.UpdateFields(ctx, courseID, updates)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	details := map[string]interface{}{
		"fields": classification.Content,
	}
	if len(classification.Metadata) > 0 {
		details["metadata_fields"] = classification.Metadata
	}
	_ = s.audit.Record(ctx, AuditEntry{
		ActorID:      actor.ID,
		ActorRole:    actor.AuditRole(),
		Action:       models.AuditCourseContentUpdated,
		ResourceType: models.ResourceCourse,
		ResourceID:   &courseID,
		Details:      details,
	})

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) recordCourseAudit(ctx context.Context, actorID uint, action string, courseID uint, details map[string]interface{}) {
	actorRole := ""
	if actor, err := s.directory.GetActor(ctx, actorID); err == nil {
		actorRole = actor.AuditRole()
	}

	_ = s.audit.Record(ctx, AuditEntry{
		ActorID:      actorID,
		ActorRole:    actorRole,
		Action:       action,
		ResourceType: models.ResourceCourse,
		ResourceID:   &courseID,
		Details:      details,
	})
}
