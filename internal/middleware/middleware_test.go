package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/gurkanbulca/taskapproval/internal/errors"
	"github.com/gurkanbulca/taskapproval/internal/models"
)

type stubResolver struct {
	identities map[string]*models.Identity
}

func (s *stubResolver) CurrentIdentity(_ context.Context, token string) (*models.Identity, error) {
	if identity, ok := s.identities[token]; ok {
		return identity, nil
	}
	if token == "revoked" {
		return nil, apperrors.NewUnauthenticatedError("token has been revoked")
	}
	if token == "malformed" {
		return nil, apperrors.NewValidationError("token is malformed")
	}
	return nil, apperrors.NewInternalError("resolve token", io.ErrUnexpectedEOF)
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Error
}

func TestAuthMiddleware(t *testing.T) {
	manager := &models.Identity{UserID: uuid.New(), Username: "manager", Name: "Manager User", Role: models.RoleManager}
	resolver := &stubResolver{identities: map[string]*models.Identity{"good": manager}}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantError  string
	}{
		{name: "missing header", wantStatus: http.StatusUnauthorized, wantError: "authorization header is required"},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantError: "invalid authorization header format"},
		{name: "revoked token", header: "Bearer revoked", wantStatus: http.StatusUnauthorized, wantError: "token has been revoked"},
		{name: "rejected token", header: "Bearer malformed", wantStatus: http.StatusUnauthorized, wantError: "invalid or expired token"},
		{name: "store failure", header: "Bearer broken", wantStatus: http.StatusInternalServerError},
		{name: "valid token", header: "Bearer good", wantStatus: http.StatusOK},
		{name: "lowercase scheme", header: "bearer good", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(AuthMiddleware(resolver))
			app.Get("/me", func(c *fiber.Ctx) error {
				identity, ok := CurrentIdentity(c)
				assert.True(t, ok)
				fromCtx, ok := GetIdentityFromContext(c.UserContext())
				assert.True(t, ok)
				assert.Equal(t, identity, fromCtx)
				assert.Equal(t, "good", CurrentToken(c))
				return c.JSON(identity)
			})

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decodeError(t, resp))
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	admin := &models.Identity{UserID: uuid.New(), Username: "admin", Role: models.RoleAdmin}
	user := &models.Identity{UserID: uuid.New(), Username: "user", Role: models.RoleUser}
	resolver := &stubResolver{identities: map[string]*models.Identity{"admin": admin, "user": user}}

	app := fiber.New()
	app.Post("/users", AuthMiddleware(resolver), RequireRole(models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	tests := []struct {
		token      string
		wantStatus int
	}{
		{"admin", http.StatusCreated},
		{"user", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/users", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestClientInfoExtractor(t *testing.T) {
	app := fiber.New()
	app.Use(ClientInfoExtractor())
	app.Get("/info", func(c *fiber.Ctx) error {
		info := GetClientInfoFromContext(c.UserContext())
		return c.JSON(fiber.Map{"ip": info.IPAddress, "ua": info.UserAgent, "user": info.UserID})
	})

	req := httptest.NewRequest(http.MethodGet, "/info", nil)
	req.Header.Set("User-Agent", "task-client/1.0")
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "203.0.113.7", body["ip"])
	assert.Equal(t, "task-client/1.0", body["ua"])
	assert.Empty(t, body["user"])
}

func TestGetClientInfoFromContext_WithIdentity(t *testing.T) {
	id := uuid.New()
	ctx := WithIdentity(context.Background(), &models.Identity{UserID: id, Username: "manager", Role: models.RoleManager})
	ctx = context.WithValue(ctx, ContextKeyIPAddress, "198.51.100.1")

	info := GetClientInfoFromContext(ctx)
	assert.Equal(t, id.String(), info.UserID)
	assert.Equal(t, "manager", info.Username)
	assert.Equal(t, "MANAGER", info.UserRole)
	assert.Equal(t, "198.51.100.1", info.IPAddress)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	app := fiber.New()
	app.Use(RequestLogger(logger))
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "request rejected", record["msg"])
	assert.Equal(t, "/boom", record["path"])
	assert.EqualValues(t, fiber.StatusTeapot, record["status"])
}
