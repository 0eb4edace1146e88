package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/lectoria/lectoria-api/internal/models"
	"github.com/lectoria/lectoria-api/internal/observability"
	"github.com/lectoria/lectoria-api/internal/repository"
)

// Actions understood by the evaluator.
const (
	ActionCreateCourse    = "course.create"
	ActionDeleteCourse    = "course.delete"
	ActionPublishCourse   = "course.publish"
	ActionUnpublishCourse = "course.unpublish"
	ActionManageContent   = "course.manage_content"
	ActionGradeCourse     = "course.grade"
	ActionCommunicate     = "course.communicate"
)

// ErrInvalidArgument indicates a missing or empty identifier, rejected
// before any lookup.
var ErrInvalidArgument = errors.New("missing or invalid identifier")

// ErrUnknownAction indicates an action the evaluator does not recognise.
var ErrUnknownAction = errors.New("unknown action")

// Decision is the outcome of a single permission check.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

func allow(reason string) Decision {
	return Decision{Allowed: true, Reason: reason}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// PermissionService answers, for any (actor, action, course) triple, whether
// the action is permitted. All checks are synchronous reads with no side
// effects on the backing state; infrastructure failures deny (fail-closed).
type PermissionService interface {
	CanCreateCourse(ctx context.Context, actorID uint) (Decision, error)
	CanDeleteCourse(ctx context.Context, actorID uint) (Decision, error)
	CanPublishCourse(ctx context.Context, actorID, courseID uint) (Decision, error)
	CanUnpublishCourse(ctx context.Context, actorID, courseID uint) (Decision, error)
	CanManageCourseContent(ctx context.Context, actorID, courseID uint) (Decision, error)
	CanGradeCourse(ctx context.Context, actorID, courseID uint) (Decision, error)
	CanCommunicateWithStudents(ctx context.Context, actorID, courseID uint) (Decision, error)
	Evaluate(ctx context.Context, action string, actorID, courseID uint) (Decision, error)
}

type permissionService struct {
	directory   ActorDirectory
	assignments repository.CourseAssignmentRepository
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewPermissionService constructs the permission evaluator.
func NewPermissionService(directory ActorDirectory, assignments repository.CourseAssignmentRepository, logger zerolog.Logger) PermissionService {
	return &permissionService{
		directory:   directory,
		assignments: assignments,
		logger:      logger.With().Str("component", "permission_service").Logger(),
		tracer:      otel.Tracer("github.com/lectoria/lectoria-api/internal/service/permission"),
	}
}

func (s *permissionService) CanCreateCourse(ctx context.Context, actorID uint) (Decision, error) {
	return s.observe(ActionCreateCourse)(s.adminGate(ctx, actorID))
}

func (s *permissionService) CanDeleteCourse(ctx context.Context, actorID uint) (Decision, error) {
	return s.observe(ActionDeleteCourse)(s.adminGate(ctx, actorID))
}

// CanPublishCourse is a pure function of the actor: no assignment flag,
// including is_primary_teacher, ever satisfies it.
func (s *permissionService) CanPublishCourse(ctx context.Context, actorID, _ uint) (Decision, error) {
	return s.observe(ActionPublishCourse)(s.adminGate(ctx, actorID))
}

func (s *permissionService) CanUnpublishCourse(ctx context.Context, actorID, _ uint) (Decision, error) {
	return s.observe(ActionUnpublishCourse)(s.adminGate(ctx, actorID))
}

func (s *permissionService) CanManageCourseContent(ctx context.Context, actorID, courseID uint) (Decision, error) {
	return s.observe(ActionManageContent)(s.flagGate(ctx, actorID, courseID,
		func(a models.CourseAssignment) bool { return a.CanManageContent },
		"lacks content management permission",
		"content management permission granted",
	))
}

func (s *permissionService) CanGradeCourse(ctx context.Context, actorID, courseID uint) (Decision, error) {
	return s.observe(ActionGradeCourse)(s.flagGate(ctx, actorID, courseID,
		func(a models.CourseAssignment) bool { return a.CanGrade },
		"lacks grading permission",
		"grading permission granted",
	))
}

func (s *permissionService) CanCommunicateWithStudents(ctx context.Context, actorID, courseID uint) (Decision, error) {
	return s.observe(ActionCommunicate)(s.flagGate(ctx, actorID, courseID,
		func(a models.CourseAssignment) bool { return a.CanCommunicate },
		"lacks communication permission",
		"communication permission granted",
	))
}

func (s *permissionService) Evaluate(ctx context.Context, action string, actorID, courseID uint) (Decision, error) {
	spanCtx, span := s.tracer.Start(ctx, "authz.evaluate", trace.WithAttributes(
		attribute.String("authz.action", action),
		attribute.Int64("authz.actor_id", int64(actorID)),
	))
	defer span.End()

	switch action {
	case ActionCreateCourse:
		return s.CanCreateCourse(spanCtx, actorID)
	case ActionDeleteCourse:
		return s.CanDeleteCourse(spanCtx, actorID)
	case ActionPublishCourse:
		return s.CanPublishCourse(spanCtx, actorID, courseID)
	case ActionUnpublishCourse:
		return s.CanUnpublishCourse(spanCtx, actorID, courseID)
	case ActionManageContent:
		return s.CanManageCourseContent(spanCtx, actorID, courseID)
	case ActionGradeCourse:
		return s.CanGradeCourse(spanCtx, actorID, courseID)
	case ActionCommunicate:
		return s.CanCommunicateWithStudents(spanCtx, actorID, courseID)
	default:
		return deny("unknown action"), fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}

// adminGate requires role == admin and role_level >= 4; both fields are
// checked. A missing actor is a denial, not an error.
func (s *permissionService) adminGate(ctx context.Context, actorID uint) (Decision, error) {
	if actorID == 0 {
		return deny("missing actor id"), ErrInvalidArgument
	}

	actor, err := s.directory.GetActor(ctx, actorID)
	if err != nil {
		if errors.Is(err, ErrActorNotFound) {
			return deny("actor not found"), nil
		}
		s.logger.Error().Err(err).Uint("actor_id", actorID).Msg("directory lookup failed, denying")
		return deny("internal error"), err
	}

	if !actor.IsAdminTier() {
		return deny("requires admin privileges"), nil
	}
	return allow("admin privileges granted"), nil
}

// flagGate requires an existing assignment for the pair carrying the
// requested flag. The flags are independent: none implies another, and
// is_primary_teacher is never consulted.
func (s *permissionService) flagGate(ctx context.Context, actorID, courseID uint, flag func(models.CourseAssignment) bool, lackReason, grantReason string) (Decision, error) {
	if actorID == 0 || courseID == 0 {
		return deny("missing actor or course id"), ErrInvalidArgument
	}

	assignment, err := s.assignments.FindByTeacherAndCourse(ctx, actorID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return deny("not assigned to course"), nil
		}
		s.logger.Error().Err(err).Uint("actor_id", actorID).Uint("course_id", courseID).Msg("assignment lookup failed, denying")
		return deny("internal error"), fmt.Errorf("assignment lookup: %w", err)
	}

	if !flag(assignment) {
		return deny(lackReason), nil
	}
	return allow(grantReason), nil
}

// observe counts the decision outcome without altering it.
func (s *permissionService) observe(action string) func(Decision, error) (Decision, error) {
	return func(d Decision, err error) (Decision, error) {
		outcome := "deny"
		switch {
		case err != nil:
			outcome = "error"
		case d.Allowed:
			outcome = "allow"
		}
		observability.AuthzDecisions().WithLabelValues(action, outcome).Inc()
		return d, err
	}
}
