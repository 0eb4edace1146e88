package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lectoria/lectoria-api/internal/dto"
	"github.com/lectoria/lectoria-api/internal/service"
	"github.com/lectoria/lectoria-api/internal/utils"
)

// AuditHandler exposes the audit trail to admins.
type AuditHandler struct {
	service service.AuditService
	logger  zerolog.Logger
}

func NewAuditHandler(service service.AuditService, logger zerolog.Logger) *AuditHandler {
	return &AuditHandler{
		service: service,
		logger:  logger.With().Str("component", "audit_handler").Logger(),
	}
}

// Register attaches audit routes to the router group.
func (h *AuditHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func (h *AuditHandler) list(c *fiber.Ctx) error {
	var query dto.AuditListRequest
	if err := c.QueryParser(&query); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid query parameters", nil)
	}

	result, err := h.service.List(c.Context(), query)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list audit records")
		return utils.Fail(c, fiber.StatusInternalServerError, "failed to list audit records", nil)
	}

	return utils.OK(c, result.Items, "audit records retrieved", &result.Pagination)
}
