// internal/api/errors.go
package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/gurkanbulca/taskapproval/internal/errors"
	"github.com/gurkanbulca/taskapproval/internal/middleware"
)

const internalErrorMessage = "internal server error"

// errorHandler is the single place core errors become HTTP responses
func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, msg := statusFor(err)
		if status >= fiber.StatusInternalServerError {
			logger.Error("request error", "method", c.Method(), "path", c.Path(), "error", err)
		}
		return c.Status(status).JSON(middleware.ErrorResponse{Error: msg})
	}
}

func statusFor(err error) (int, string) {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		if fiberErr.Code >= fiber.StatusInternalServerError {
			return fiberErr.Code, internalErrorMessage
		}
		return fiberErr.Code, fiberErr.Message
	}

	appErr, ok := apperrors.As(err)
	if !ok {
		return fiber.StatusInternalServerError, internalErrorMessage
	}

	switch appErr.Kind {
	case apperrors.KindUnauthenticated:
		return fiber.StatusUnauthorized, appErr.Message
	case apperrors.KindInternal:
		return fiber.StatusInternalServerError, internalErrorMessage
	case apperrors.KindValidation, apperrors.KindNotFound, apperrors.KindForbidden,
		apperrors.KindDuplicateUsername, apperrors.KindAuth, apperrors.KindConflict:
		return fiber.StatusBadRequest, appErr.Message
	default:
		return fiber.StatusInternalServerError, internalErrorMessage
	}
}
