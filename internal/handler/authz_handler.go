package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lectoria/lectoria-api/internal/dto"
	"github.com/lectoria/lectoria-api/internal/service"
	"github.com/lectoria/lectoria-api/internal/utils"
)

// AuthzHandler exposes the permission evaluator over HTTP.
type AuthzHandler struct {
	permissions service.PermissionService
	assignments service.CourseAssignmentService
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewAuthzHandler constructs the handler.
func NewAuthzHandler(permissions service.PermissionService, assignments service.CourseAssignmentService, validate *validator.Validate, logger zerolog.Logger) *AuthzHandler {
	return &AuthzHandler{
		permissions: permissions,
		assignments: assignments,
		validator:   validate,
		logger:      logger.With().Str("component", "authz_handler").Logger(),
	}
}

// Register attaches the authorization routes to the router group.
func (h *AuthzHandler) Register(router fiber.Router) {
	router.Post("/evaluate", h.evaluate)
	router.Get("/assignments", h.listAssignments)
}

func (h *AuthzHandler) evaluate(c *fiber.Ctx) error {
	var payload dto.EvaluateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", nil)
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	decision, err := h.permissions.Evaluate(c.Context(), payload.Action, payload.ActorID, payload.CourseID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownAction), errors.Is(err, service.ErrInvalidArgument):
			return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("evaluation failed")
			return utils.Fail(c, fiber.StatusInternalServerError, "failed to evaluate permission", nil)
		}
	}

	return utils.OK(c, dto.EvaluateResponse{
		Action:  payload.Action,
		Allowed: decision.Allowed,
		Reason:  decision.Reason,
	}, "permission evaluated", nil)
}

// listAssignments returns the calling teacher's own course assignments.
func (h *AuthzHandler) listAssignments(c *fiber.Ctx) error {
	teacherID := userIDFromContext(c)
	if teacherID == 0 {
		return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
	}

	assignments, err := h.assignments.ListForTeacher(c.Context(), teacherID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list assignments")
		return utils.Fail(c, fiber.StatusInternalServerError, "failed to list assignments", nil)
	}

	return utils.OK(c, assignments, "assignments listed", nil)
}
