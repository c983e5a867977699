// internal/middleware/logging.go
package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger logs one line per request once the error handler has settled the
// response status.
func RequestLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		attrs := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration", time.Since(start),
			"ip", GetIPAddressFromContext(c.UserContext()),
		}
		if identity, ok := CurrentIdentity(c); ok {
			attrs = append(attrs, "user_id", identity.UserID.String())
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Error("request failed", attrs...)
		case status >= fiber.StatusBadRequest:
			logger.Warn("request rejected", attrs...)
		default:
			logger.Info("request completed", attrs...)
		}

		return nil
	}
}
