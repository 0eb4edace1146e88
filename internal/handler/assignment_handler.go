package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lectoria/lectoria-api/internal/dto"
	"github.com/lectoria/lectoria-api/internal/service"
	"github.com/lectoria/lectoria-api/internal/utils"
)

// AssignmentHandler wires the admin assignment endpoints.
type AssignmentHandler struct {
	service service.CourseAssignmentService
	logger  zerolog.Logger
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(service service.CourseAssignmentService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches assignment admin routes to the router group.
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Patch("/:id", h.updateFlags)
	router.Delete("/:id", h.delete)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	var payload dto.AssignmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", nil)
	}

	assignment, err := h.service.Create(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.fail(c, err, "failed to create assignment")
	}

	return utils.Created(c, assignment, "assignment created")
}

func (h *AssignmentHandler) updateFlags(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid identifier", nil)
	}

	var payload dto.AssignmentFlagsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", nil)
	}

	assignment, err := h.service.UpdateFlags(c.Context(), userIDFromContext(c), id, payload)
	if err != nil {
		return h.fail(c, err, "failed to update assignment")
	}

	return utils.OK(c, assignment, "assignment updated", nil)
}

func (h *AssignmentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid identifier", nil)
	}

	if err := h.service.Delete(c.Context(), userIDFromContext(c), id); err != nil {
		return h.fail(c, err, "failed to delete assignment")
	}

	return utils.OK(c, fiber.Map{"id": id}, "assignment deleted", nil)
}

func (h *AssignmentHandler) fail(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, service.ErrAssignmentConflict):
		return utils.Fail(c, fiber.StatusConflict, err.Error(), nil)
	case errors.Is(err, service.ErrPermissionDenied):
		return utils.Fail(c, fiber.StatusForbidden, err.Error(), nil)
	case errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrActorNotFound):
		return utils.Fail(c, fiber.StatusNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrInvalidArgument), isValidationError(err):
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(message)
		return utils.Fail(c, fiber.StatusInternalServerError, message, nil)
	}
}
