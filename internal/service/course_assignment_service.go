package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lectoria/lectoria-api/internal/dto"
	"github.com/lectoria/lectoria-api/internal/models"
	"github.com/lectoria/lectoria-api/internal/repository"
)

// ErrAssignmentNotFound indicates the assignment does not exist.
var ErrAssignmentNotFound = errors.New("assignment not found")

// ErrAssignmentConflict indicates an assignment already exists for the
// (course, teacher) pair.
var ErrAssignmentConflict = errors.New("assignment already exists for course and teacher")

// CourseAssignmentService orchestrates assignment creation, flag updates,
// primary-teacher reassignment and removal. All mutations are admin-gated
// and audited.
type CourseAssignmentService interface {
	Create(ctx context.Context, actorID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	UpdateFlags(ctx context.Context, actorID, assignmentID uint, payload dto.AssignmentFlagsRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, actorID, assignmentID uint) error
	ListForTeacher(ctx context.Context, teacherID uint) ([]dto.AssignmentResponse, error)
}

type courseAssignmentService struct {
	repo      repository.CourseAssignmentRepository
	courses   repository.CourseRepository
	perms     PermissionService
	directory ActorDirectory
	audit     AuditRecorder
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCourseAssignmentService constructs the assignment manager.
func NewCourseAssignmentService(repo repository.CourseAssignmentRepository, courses repository.CourseRepository, perms PermissionService, directory ActorDirectory, audit AuditRecorder, validate *validator.Validate, logger zerolog.Logger) CourseAssignmentService {
	return &courseAssignmentService{
		repo:      repo,
		courses:   courses,
		perms:     perms,
		directory: directory,
		audit:     audit,
		validator: validate,
		logger:    logger.With().Str("component", "course_assignment_service").Logger(),
	}
}

func (s *courseAssignmentService) Create(ctx context.Context, actorID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	admin, err := s.requireAdmin(ctx, actorID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if _, err := s.courses.GetByID(ctx, payload.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrCourseNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if _, err := s.directory.GetActor(ctx, payload.TeacherID); err != nil {
		return dto.AssignmentResponse{}, err
	}

	flags := applyPrimaryConvention(payload.Flags())
	assignment := models.CourseAssignment{
		CourseID:         payload.CourseID,
		TeacherID:        payload.TeacherID,
		IsPrimaryTeacher: flags.IsPrimaryTeacher,
		CanManageContent: flags.CanManageContent,
		CanGrade:         flags.CanGrade,
		CanCommunicate:   flags.CanCommunicate,
	}

	if err := s.repo.Insert(ctx, &assignment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.AssignmentResponse{}, ErrAssignmentConflict
		}
		return dto.AssignmentResponse{}, err
	}

	_ = s.audit.Record(ctx, AuditEntry{
		ActorID:      admin.ID,
		ActorRole:    admin.AuditRole(),
		Action:       models.AuditAssignmentCreated,
		ResourceType: models.ResourceCourseAssignment,
		ResourceID:   &assignment.ID,
		Details: map[string]interface{}{
			"course_id":          assignment.CourseID,
			"teacher_id":         assignment.TeacherID,
			"is_primary_teacher": assignment.IsPrimaryTeacher,
		},
	})

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *courseAssignmentService) UpdateFlags(ctx context.Context, actorID, assignmentID uint, payload dto.AssignmentFlagsRequest) (dto.AssignmentResponse, error) {
	if assignmentID == 0 {
		return dto.AssignmentResponse{}, ErrInvalidArgument
	}

	admin, err := s.requireAdmin(ctx, actorID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	flags := applyPrimaryConvention(payload.Flags())
	assignment, err := s.repo.UpdateFlags(ctx, assignmentID, flags)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	_ = s.audit.Record(ctx, AuditEntry{
		ActorID:      admin.ID,
		ActorRole:    admin.AuditRole(),
		Action:       models.AuditAssignmentUpdated,
		ResourceType: models.ResourceCourseAssignment,
		ResourceID:   &assignment.ID,
		Details: map[string]interface{}{
			"course_id":          assignment.CourseID,
			"teacher_id":         assignment.TeacherID,
			"is_primary_teacher": assignment.IsPrimaryTeacher,
			"can_manage_content": assignment.CanManageContent,
			"can_grade":          assignment.CanGrade,
			"can_communicate":    assignment.CanCommunicate,
		},
	})

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *courseAssignmentService) Delete(ctx context.Context, actorID, assignmentID uint) error {
	if assignmentID == 0 {
		return ErrInvalidArgument
	}

	admin, err := s.requireAdmin(ctx, actorID)
	if err != nil {
		return err
	}

	assignment, err := s.repo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	if err := s.repo.Delete(ctx, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	_ = s.audit.Record(ctx, AuditEntry{
		ActorID:      admin.ID,
		ActorRole:    admin.AuditRole(),
		Action:       models.AuditAssignmentDeleted,
		ResourceType: models.ResourceCourseAssignment,
		ResourceID:   &assignmentID,
		Details: map[string]interface{}{
			"course_id":  assignment.CourseID,
			"teacher_id": assignment.TeacherID,
		},
	})

	return nil
}

func (s *courseAssignmentService) ListForTeacher(ctx context.Context, teacherID uint) ([]dto.AssignmentResponse, error) {
	if teacherID == 0 {
		return nil, ErrInvalidArgument
	}

	assignments, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, dto.NewAssignmentResponse(assignment))
	}
	return responses, nil
}

// requireAdmin runs the create-course-equivalent admin gate and resolves
// the acting admin for audit attribution.
func (s *courseAssignmentService) requireAdmin(ctx context.Context, actorID uint) (models.Actor, error) {
	decision, err := s.perms.CanCreateCourse(ctx, actorID)
	if err != nil {
		return models.Actor{}, err
	}
	if !decision.Allowed {
		return models.Actor{}, fmt.Errorf("%w: %s", ErrPermissionDenied, decision.Reason)
	}

	return s.directory.GetActor(ctx, actorID)
}

// applyPrimaryConvention provisions a primary teacher with the full flag
// set. This is a convention applied at write time, not an invariant the
// repository enforces.
func applyPrimaryConvention(flags models.AssignmentFlags) models.AssignmentFlags {
	if flags.IsPrimaryTeacher {
		flags.CanManageContent = true
		flags.CanGrade = true
		flags.CanCommunicate = true
	}
	return flags
}
