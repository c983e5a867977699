// internal/api/handlers.go
package api

import (
	"bytes"
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	apperrors "github.com/gurkanbulca/taskapproval/internal/errors"
	"github.com/gurkanbulca/taskapproval/internal/middleware"
	"github.com/gurkanbulca/taskapproval/internal/models"
	"github.com/gurkanbulca/taskapproval/internal/service"
)

const healthTimeout = 2 * time.Second

type handlers struct {
	tasks  *service.TaskService
	users  *service.UserService
	auth   *service.AuthService
	health Pinger
}

// Health answers liveness probes; it fails when the database does not answer a ping
func (h *handlers) Health(c *fiber.Ctx) error {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()

		if err := h.health.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
				Status: "DOWN",
				Error:  "database unavailable",
			})
		}
	}
	return c.JSON(HealthResponse{Status: "UP"})
}

// Auth

func (h *handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body")
	}

	result, err := h.auth.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *handlers) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body")
	}

	result, err := h.auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *handlers) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.UserContext(), middleware.CurrentToken(c)); err != nil {
		return err
	}
	return c.JSON(MessageResponse{Message: "Logout successful"})
}

func (h *handlers) CurrentUser(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return err
	}
	return c.JSON(identity)
}

// Users

func (h *handlers) ListUsers(c *fiber.Ctx) error {
	users, err := h.users.ListUsers(c.UserContext())
	if err != nil {
		return err
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	return c.JSON(resp)
}

func (h *handlers) GetUser(c *fiber.Ctx) error {
	id, err := pathID(c, "user")
	if err != nil {
		return err
	}

	user, err := h.users.GetUser(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(toUserResponse(user))
}

func (h *handlers) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body")
	}

	in := service.CreateUserInput{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}
	if req.Role != "" {
		role, err := models.ParseRole(req.Role)
		if err != nil {
			return apperrors.NewValidationError(err.Error())
		}
		in.Role = role
	}

	user, err := h.users.CreateUser(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toUserResponse(user))
}

// Tasks

func (h *handlers) CreateTask(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return err
	}

	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body: " + err.Error())
	}

	in := service.CreateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		ScheduledDate: req.ScheduledDate.Time,
	}
	if req.Priority != "" {
		priority, perr := models.ParsePriority(req.Priority)
		if perr != nil {
			return apperrors.NewValidationError(perr.Error())
		}
		in.Priority = priority
	}
	if req.AssignedUserID != "" {
		assignee, perr := uuid.Parse(req.AssignedUserID)
		if perr != nil {
			return apperrors.NewValidationError("invalid assigned user id")
		}
		in.AssignedUserID = assignee
	}

	view, err := h.tasks.CreateTask(c.UserContext(), in, identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (h *handlers) ListTasks(c *fiber.Ctx) error {
	var filter models.TaskFilter

	if s := c.Query("status"); s != "" {
		status, err := models.ParseStatus(s)
		if err != nil {
			return apperrors.NewValidationError(err.Error())
		}
		filter.Status = &status
	}
	if s := c.Query("assignedUserId"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return apperrors.NewValidationError("invalid assignedUserId")
		}
		filter.AssignedUserID = &id
	}
	if s := c.Query("createdBy"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return apperrors.NewValidationError("invalid createdBy")
		}
		filter.CreatedBy = &id
	}

	views, err := h.tasks.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(views)
}

func (h *handlers) Calendar(c *fiber.Ctx) error {
	start, err := queryTime(c, "start")
	if err != nil {
		return err
	}
	end, err := queryTime(c, "end")
	if err != nil {
		return err
	}

	views, err := h.tasks.ListScheduledBetween(c.UserContext(), start, end)
	if err != nil {
		return err
	}
	return c.JSON(views)
}

func (h *handlers) ExportCSV(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.tasks.Export(c.UserContext(), &buf); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="tasks.csv"`)
	return c.Send(buf.Bytes())
}

func (h *handlers) GetTask(c *fiber.Ctx) error {
	id, err := pathID(c, "task")
	if err != nil {
		return err
	}

	view, err := h.tasks.GetTask(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (h *handlers) ApproveTask(c *fiber.Ctx) error {
	return h.decide(c, h.tasks.ApproveTask)
}

func (h *handlers) RejectTask(c *fiber.Ctx) error {
	return h.decide(c, h.tasks.RejectTask)
}

func (h *handlers) decide(c *fiber.Ctx, fn func(context.Context, uuid.UUID, uuid.UUID) (*models.TaskView, error)) error {
	identity, err := identityOf(c)
	if err != nil {
		return err
	}

	id, err := pathID(c, "task")
	if err != nil {
		return err
	}

	view, err := fn(c.UserContext(), id, identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func identityOf(c *fiber.Ctx) (*models.Identity, error) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return nil, apperrors.NewUnauthenticatedError("Not authenticated")
	}
	return identity, nil
}

func pathID(c *fiber.Ctx, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperrors.NewValidationError("invalid " + resource + " id")
	}
	return id, nil
}

func queryTime(c *fiber.Ctx, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, apperrors.NewFieldError(name, "is required")
	}

	t, err := ParseTime(raw)
	if err != nil {
		return time.Time{}, apperrors.NewFieldError(name, "must be an ISO-8601 timestamp")
	}
	return t, nil
}
