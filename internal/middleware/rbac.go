package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/lectoria/lectoria-api/internal/models"
	"github.com/lectoria/lectoria-api/internal/utils"
)

// RequireRole ensures the authenticated user carries one of the allowed roles.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		normalized := strings.ToLower(strings.TrimSpace(role))
		if normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		role := normalizeRoleValue(c.Locals("user_role"))
		if _, ok := allowed[role]; !ok {
			return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
		}
		return c.Next()
	}
}

// RequireAdminTier is a coarse route guard for the admin groups: the role
// claim must be admin and the role level claim must meet the admin
// threshold. Services re-verify against the directory; this only keeps
// obviously unauthorized traffic off the admin routes.
func RequireAdminTier() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := normalizeRoleValue(c.Locals("user_role"))
		level := roleLevelFromLocals(c)
		if role != models.RoleAdmin || level < models.AdminRoleLevel {
			return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
		}
		return c.Next()
	}
}

func roleLevelFromLocals(c *fiber.Ctx) int {
	switch v := c.Locals("user_role_level").(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func normalizeRoleValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case fmt.Stringer:
		return strings.ToLower(strings.TrimSpace(v.String()))
	default:
		if value == nil {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", value)))
	}
}
