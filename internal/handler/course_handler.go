package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lectoria/lectoria-api/internal/dto"
	"github.com/lectoria/lectoria-api/internal/service"
	"github.com/lectoria/lectoria-api/internal/utils"
)

// CourseHandler wires the course lifecycle endpoints.
type CourseHandler struct {
	service service.CourseService
	logger  zerolog.Logger
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(service service.CourseService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		service: service,
		logger:  logger.With().Str("component", "course_handler").Logger(),
	}
}

// RegisterAdmin attaches the admin-gated course routes.
func (h *CourseHandler) RegisterAdmin(router fiber.Router) {
	router.Post("", h.create)
	router.Post("/:id/publish", h.publish)
	router.Post("/:id/unpublish", h.unpublish)
	router.Delete("/:id", h.delete)
}

// Register attaches the routes shared by admins and assigned teachers.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Get("/:id", h.get)
	router.Patch("/:id/content", h.updateContent)
}

func (h *CourseHandler) create(c *fiber.Ctx) error {
	var payload dto.CourseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", nil)
	}

	course, err := h.service.Create(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.fail(c, err, "failed to create course")
	}

	return utils.Created(c, course, "course created")
}

func (h *CourseHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid identifier", nil)
	}

	course, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.fail(c, err, "failed to fetch course")
	}

	return utils.OK(c, course, "course fetched", nil)
}

func (h *CourseHandler) publish(c *fiber.Ctx) error {
	return h.transition(c, h.service.Publish, "course published")
}

func (h *CourseHandler) unpublish(c *fiber.Ctx) error {
	return h.transition(c, h.service.Unpublish, "course unpublished")
}

func (h *CourseHandler) transition(c *fiber.Ctx, op func(ctx context.Context, actorID, courseID uint) (dto.CourseResponse, error), message string) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid identifier", nil)
	}

	course, err := op(c.Context(), userIDFromContext(c), id)
	if err != nil {
		return h.fail(c, err, "failed to change course status")
	}

	return utils.OK(c, course, message, nil)
}

func (h *CourseHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid identifier", nil)
	}

	if err := h.service.Delete(c.Context(), userIDFromContext(c), id); err != nil {
		return h.fail(c, err, "failed to delete course")
	}

	return utils.OK(c, fiber.Map{"id": id}, "course deleted", nil)
}

func (h *CourseHandler) updateContent(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid identifier", nil)
	}

	var fields map[string]interface{}
	if err := c.BodyParser(&fields); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", nil)
	}

	course, err := h.service.ApplyContentUpdate(c.Context(), userIDFromContext(c), id, fields)
	if err != nil {
		return h.fail(c, err, "failed to update course content")
	}

	return utils.OK(c, course, "course content updated", nil)
}

func (h *CourseHandler) fail(c *fiber.Ctx, err error, message string) error {
	var restricted *service.RestrictedFieldsError
	switch {
	case errors.As(err, &restricted):
		return utils.Fail(c, fiber.StatusConflict, restricted.Error(), fiber.Map{"fields": restricted.Fields})
	case errors.Is(err, service.ErrPermissionDenied):
		return utils.Fail(c, fiber.StatusForbidden, err.Error(), nil)
	case errors.Is(err, service.ErrCourseNotFound), errors.Is(err, service.ErrActorNotFound):
		return utils.Fail(c, fiber.StatusNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrInvalidStatusTransition):
		return utils.Fail(c, fiber.StatusConflict, err.Error(), nil)
	case errors.Is(err, service.ErrInvalidArgument), isValidationError(err):
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(message)
		return utils.Fail(c, fiber.StatusInternalServerError, message, nil)
	}
}
