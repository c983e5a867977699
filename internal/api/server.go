// Package api exposes the task approval core over HTTP.
package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/gurkanbulca/taskapproval/internal/middleware"
	"github.com/gurkanbulca/taskapproval/internal/models"
	"github.com/gurkanbulca/taskapproval/internal/service"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the services the HTTP layer calls
type Dependencies struct {
	Tasks  *service.TaskService
	Users  *service.UserService
	Auth   *service.AuthService
	Health Pinger // nil when there is no external store
	Logger *slog.Logger
}

// Server wraps the fiber application
type Server struct {
	app    *fiber.App
	logger *slog.Logger
}

func NewServer(deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	app := fiber.New(fiber.Config{
		AppName:               "taskapproval",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(middleware.ClientInfoExtractor())
	app.Use(middleware.RequestLogger(logger))

	h := &handlers{
		tasks:  deps.Tasks,
		users:  deps.Users,
		auth:   deps.Auth,
		health: deps.Health,
	}
	registerRoutes(app, h, middleware.AuthMiddleware(deps.Auth))

	return &Server{app: app, logger: logger}
}

func registerRoutes(app *fiber.App, h *handlers, requireAuth fiber.Handler) {
	app.Get("/health", h.Health)

	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/login", h.Login)
	authRoutes.Post("/refresh", h.Refresh)
	authRoutes.Post("/logout", requireAuth, h.Logout)
	authRoutes.Get("/current-user", requireAuth, h.CurrentUser)

	users := api.Group("/users", requireAuth)
	users.Get("/", h.ListUsers)
	users.Get("/:id", h.GetUser)
	users.Post("/", middleware.RequireRole(models.RoleAdmin), h.CreateUser)

	tasks := api.Group("/tasks")
	tasks.Get("/", h.ListTasks)
	tasks.Post("/", requireAuth, h.CreateTask)
	tasks.Get("/calendar", h.Calendar)
	tasks.Get("/export/csv", h.ExportCSV)
	tasks.Get("/:id", h.GetTask)
	tasks.Put("/:id/approve", requireAuth, h.ApproveTask)
	tasks.Put("/:id/reject", requireAuth, h.RejectTask)
}

// App returns the underlying fiber application, mainly for tests
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks serving HTTP on addr
func (s *Server) Listen(addr string) error {
	s.logger.Info("HTTP server listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
