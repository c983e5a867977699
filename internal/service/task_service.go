// internal/service/task_service.go
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/gurkanbulca/taskapproval/internal/errors"
	"github.com/gurkanbulca/taskapproval/internal/export"
	"github.com/gurkanbulca/taskapproval/internal/models"
	"github.com/gurkanbulca/taskapproval/internal/repository"
	"github.com/gurkanbulca/taskapproval/internal/validation"
)

// Renderer writes enriched tasks to w
type Renderer interface {
	Render(w io.Writer, views []models.TaskView) error
}

// TaskService owns the task lifecycle: creation, approval, rejection and queries
type TaskService struct {
	tasks          repository.TaskRepository
	users          repository.UserRepository
	views          *ViewBuilder
	emitter        *EventEmitter
	validator      *validation.Validator
	renderer       Renderer
	logger         *slog.Logger
	now            func() time.Time
	requirePending bool
}

// TaskOption configures a TaskService
type TaskOption func(*TaskService)

// WithRequirePending rejects decisions on tasks that already left PENDING
func WithRequirePending(require bool) TaskOption {
	return func(s *TaskService) { s.requirePending = require }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) TaskOption {
	return func(s *TaskService) { s.now = now }
}

func WithValidator(v *validation.Validator) TaskOption {
	return func(s *TaskService) { s.validator = v }
}

func WithRenderer(r Renderer) TaskOption {
	return func(s *TaskService) { s.renderer = r }
}

func NewTaskService(
	tasks repository.TaskRepository,
	users repository.UserRepository,
	emitter *EventEmitter,
	logger *slog.Logger,
	opts ...TaskOption,
) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}

	s := &TaskService{
		tasks:     tasks,
		users:     users,
		views:     NewViewBuilder(users, logger),
		emitter:   emitter,
		validator: validation.New(nil),
		renderer:  export.NewCSVRenderer(),
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTaskInput carries the caller-supplied fields of a new task
type CreateTaskInput struct {
	Title          string
	Description    string
	Priority       models.Priority
	AssignedUserID uuid.UUID
	ScheduledDate  time.Time
}

// CreateTask stores a new PENDING task created by creatorID
func (s *TaskService) CreateTask(ctx context.Context, in CreateTaskInput, creatorID uuid.UUID) (*models.TaskView, error) {
	if err := s.validator.ValidateTask(validation.TaskFields{
		Title:          in.Title,
		Description:    in.Description,
		Priority:       in.Priority,
		AssignedUserID: in.AssignedUserID,
		ScheduledDate:  in.ScheduledDate,
	}); err != nil {
		return nil, err
	}

	task, err := s.tasks.Create(ctx, &models.Task{
		Title:          in.Title,
		Description:    in.Description,
		Status:         models.StatusPending,
		Priority:       in.Priority,
		AssignedUserID: in.AssignedUserID,
		CreatedBy:      creatorID,
		CreatedDate:    s.now().UTC(),
		ScheduledDate:  in.ScheduledDate.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.logger.Info("task created", "task_id", task.ID.String(), "created_by", creatorID.String())
	s.emitter.TaskCreated(ctx, task, creatorID)

	view := s.views.Enrich(ctx, task)
	return &view, nil
}

// ApproveTask marks a task APPROVED on behalf of actorID
func (s *TaskService) ApproveTask(ctx context.Context, taskID, actorID uuid.UUID) (*models.TaskView, error) {
	return s.decide(ctx, taskID, actorID, models.StatusApproved)
}

// RejectTask marks a task REJECTED on behalf of actorID
func (s *TaskService) RejectTask(ctx context.Context, taskID, actorID uuid.UUID) (*models.TaskView, error) {
	return s.decide(ctx, taskID, actorID, models.StatusRejected)
}

func (s *TaskService) decide(ctx context.Context, taskID, actorID uuid.UUID, target models.Status) (*models.TaskView, error) {
	verb := "approve"
	if target == models.StatusRejected {
		verb = "reject"
	}

	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.NewNotFoundError("Approver", actorID.String())
		}
		return nil, err
	}

	allowed, err := actor.Role.CanDecideTasks()
	if err != nil {
		return nil, apperrors.NewInternalError("resolve actor role", err)
	}
	if !allowed {
		s.logger.Warn("task decision denied",
			"task_id", taskID.String(), "actor_id", actorID.String(), "role", string(actor.Role))
		return nil, apperrors.NewForbiddenError(fmt.Sprintf("Only managers and admins can %s tasks", verb))
	}

	decided, err := task.Status.IsDecided()
	if err != nil {
		return nil, apperrors.NewInternalError("read task status", err)
	}
	if decided {
		if s.requirePending {
			return nil, apperrors.NewConflictError(fmt.Sprintf("task already %s", task.Status)).
				WithContext("task_id", taskID.String())
		}
		s.logger.Warn("task decided again",
			"task_id", taskID.String(), "from", string(task.Status), "to", string(target))
	}

	now := s.now().UTC()
	task.Status = target
	task.ApprovedBy = &actor.ID
	task.ApprovalDate = &now

	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("%s task: %w", verb, err)
	}

	s.logger.Info("task decided",
		"task_id", task.ID.String(), "status", string(task.Status), "actor_id", actor.ID.String())
	s.emitter.TaskDecided(ctx, task, actor)

	view := s.views.Enrich(ctx, task)
	return &view, nil
}

// GetTask returns one enriched task
func (s *TaskService) GetTask(ctx context.Context, id uuid.UUID) (*models.TaskView, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := s.views.Enrich(ctx, task)
	return &view, nil
}

// List runs exactly one query: by status, else assignee, else creator, else all
func (s *TaskService) List(ctx context.Context, filter models.TaskFilter) ([]models.TaskView, error) {
	var (
		tasks []*models.Task
		err   error
	)

	switch {
	case filter.Status != nil:
		if !filter.Status.Valid() {
			return nil, apperrors.NewValidationError(fmt.Sprintf("invalid status %q", string(*filter.Status)))
		}
		tasks, err = s.tasks.FindByStatus(ctx, *filter.Status)
	case filter.AssignedUserID != nil:
		tasks, err = s.tasks.FindByAssignee(ctx, *filter.AssignedUserID)
	case filter.CreatedBy != nil:
		tasks, err = s.tasks.FindByCreator(ctx, *filter.CreatedBy)
	default:
		tasks, err = s.tasks.FindAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return s.views.EnrichAll(ctx, tasks), nil
}

// ListScheduledBetween returns tasks scheduled within [start, end]
func (s *TaskService) ListScheduledBetween(ctx context.Context, start, end time.Time) ([]models.TaskView, error) {
	if end.Before(start) {
		return nil, apperrors.NewValidationError("end date must not be before start date")
	}

	tasks, err := s.tasks.FindByScheduledRange(ctx, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("list scheduled tasks: %w", err)
	}
	return s.views.EnrichAll(ctx, tasks), nil
}

// Export renders every task, newest first
func (s *TaskService) Export(ctx context.Context, w io.Writer) error {
	tasks, err := s.tasks.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("export tasks: %w", err)
	}

	if err := s.renderer.Render(w, s.views.EnrichAll(ctx, tasks)); err != nil {
		return apperrors.NewInternalError("render export", err)
	}
	return nil
}
