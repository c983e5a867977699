// internal/middleware/context_extractor.go
package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/gurkanbulca/taskapproval/internal/models"
)

// ContextKeys for storing request metadata
type ContextKey string

const (
	ContextKeyIPAddress ContextKey = "ip_address"
	ContextKeyUserAgent ContextKey = "user_agent"
	ContextKeyIdentity  ContextKey = "identity"
)

// ClientInfoExtractor copies the client address and user agent of the request into the
// user context so services can attach them to emitted events.
func ClientInfoExtractor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		if ip := extractIPAddress(c); ip != "" {
			ctx = context.WithValue(ctx, ContextKeyIPAddress, ip)
		}

		if ua := extractUserAgent(c); ua != "" {
			ctx = context.WithValue(ctx, ContextKeyUserAgent, ua)
		}

		c.SetUserContext(ctx)
		return c.Next()
	}
}

// extractIPAddress prefers the first forwarded address over the socket peer
func extractIPAddress(c *fiber.Ctx) string {
	if ips := c.IPs(); len(ips) > 0 && ips[0] != "" {
		return ips[0]
	}
	return c.IP()
}

func extractUserAgent(c *fiber.Ctx) string {
	// Check common user agent headers
	for _, header := range []string{fiber.HeaderUserAgent, "X-User-Agent"} {
		if v := c.Get(header); v != "" {
			return v
		}
	}
	return ""
}

// Helper functions to extract values from context

// GetIPAddressFromContext extracts IP address from context
func GetIPAddressFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyIPAddress).(string); ok {
		return ip
	}
	return ""
}

// GetUserAgentFromContext extracts user agent from context
func GetUserAgentFromContext(ctx context.Context) string {
	if ua, ok := ctx.Value(ContextKeyUserAgent).(string); ok {
		return ua
	}
	return ""
}

// WithIdentity returns a copy of ctx carrying the authenticated caller
func WithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, ContextKeyIdentity, identity)
}

// GetIdentityFromContext returns the authenticated caller, if any
func GetIdentityFromContext(ctx context.Context) (*models.Identity, bool) {
	identity, ok := ctx.Value(ContextKeyIdentity).(*models.Identity)
	return identity, ok && identity != nil
}

// ClientInfo groups the request metadata attached to events
type ClientInfo struct {
	IPAddress string
	UserAgent string
	UserID    string
	Username  string
	UserRole  string
}

// GetClientInfoFromContext extracts all client information from context
func GetClientInfoFromContext(ctx context.Context) *ClientInfo {
	info := &ClientInfo{
		IPAddress: GetIPAddressFromContext(ctx),
		UserAgent: GetUserAgentFromContext(ctx),
	}

	if identity, ok := GetIdentityFromContext(ctx); ok {
		info.UserID = identity.UserID.String()
		info.Username = identity.Username
		info.UserRole = string(identity.Role)
	}

	return info
}
