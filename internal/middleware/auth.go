// internal/middleware/auth.go
package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/gurkanbulca/taskapproval/internal/errors"
	"github.com/gurkanbulca/taskapproval/internal/models"
	"github.com/gurkanbulca/taskapproval/pkg/auth"
)

const (
	// IdentityLocalsKey is the key used to store the caller in the Fiber locals
	IdentityLocalsKey = "identity"
	// TokenLocalsKey holds the raw bearer token for handlers such as logout
	TokenLocalsKey = "token"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// IdentityResolver turns a bearer token into the caller's identity
type IdentityResolver interface {
	CurrentIdentity(ctx context.Context, token string) (*models.Identity, error)
}

// AuthMiddleware requires a valid bearer token and stores the resolved identity in both
// the Fiber locals and the user context.
func AuthMiddleware(resolver IdentityResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return unauthorized(c, "authorization header is required")
		}

		// Extract token from header
		token, err := auth.ExtractTokenFromHeader(header)
		if err != nil {
			return unauthorized(c, err.Error())
		}

		identity, err := resolver.CurrentIdentity(c.UserContext(), token)
		if err != nil {
			switch apperrors.KindOf(err) {
			case apperrors.KindUnauthenticated:
				appErr, _ := apperrors.As(err)
				return unauthorized(c, appErr.Message)
			case apperrors.KindInternal:
				// store failures are answered by the app's error handler
				return err
			default:
				return unauthorized(c, "invalid or expired token")
			}
		}

		c.Locals(IdentityLocalsKey, identity)
		c.Locals(TokenLocalsKey, token)
		c.SetUserContext(WithIdentity(c.UserContext(), identity))

		return c.Next()
	}
}

// RequireRole rejects callers whose role is not listed. Must run after AuthMiddleware.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(c *fiber.Ctx) error {
		identity, ok := CurrentIdentity(c)
		if !ok {
			return unauthorized(c, "user not authenticated")
		}

		if !allowed[identity.Role] {
			return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{Error: "insufficient permissions"})
		}

		return c.Next()
	}
}

// CurrentIdentity returns the caller stored by AuthMiddleware
func CurrentIdentity(c *fiber.Ctx) (*models.Identity, bool) {
	identity, ok := c.Locals(IdentityLocalsKey).(*models.Identity)
	return identity, ok && identity != nil
}

// CurrentToken returns the bearer token stored by AuthMiddleware
func CurrentToken(c *fiber.Ctx) string {
	token, _ := c.Locals(TokenLocalsKey).(string)
	return token
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: msg})
}
