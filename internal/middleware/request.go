package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/josanv1n/DIZA-FOOD/internal/logging"
)

// RequestContext copies the request id set by the requestid middleware into
// the request's user context, where slog picks it up.
func RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, ok := c.Locals("requestid").(string); ok && id != "" {
			c.SetUserContext(logging.WithRequestID(c.UserContext(), id))
		}
		return c.Next()
	}
}
