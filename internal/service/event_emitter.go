// internal/service/event_emitter.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gurkanbulca/taskapproval/internal/middleware"
	"github.com/gurkanbulca/taskapproval/internal/models"
	"github.com/gurkanbulca/taskapproval/pkg/events"
)

// DefaultNotifyTimeout bounds a single delivery attempt
const DefaultNotifyTimeout = 2 * time.Second

// EventEmitter stamps events with request metadata and hands them to a Notifier. Delivery
// is bounded by a timeout and failures are only logged, never returned.
type EventEmitter struct {
	notifier Notifier
	logger   *slog.Logger
	timeout  time.Duration
	now      func() time.Time
}

// NewEventEmitter creates an emitter; a nil notifier drops events
func NewEventEmitter(notifier Notifier, logger *slog.Logger, timeout time.Duration) *EventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultNotifyTimeout
	}
	return &EventEmitter{
		notifier: notifier,
		logger:   logger,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Emit delivers ev synchronously. Cancellation of ctx does not abort delivery; only the
// emitter's own timeout does.
func (e *EventEmitter) Emit(ctx context.Context, ev events.Event) {
	if e == nil || e.notifier == nil {
		return
	}

	clientInfo := middleware.GetClientInfoFromContext(ctx)
	if ev.IPAddress == "" {
		ev.IPAddress = clientInfo.IPAddress
	}
	if ev.UserAgent == "" {
		ev.UserAgent = clientInfo.UserAgent
	}
	if ev.Severity == "" {
		ev.Severity = events.DefaultSeverity(ev.Type)
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = e.now().UTC()
	}

	deliverCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	defer cancel()

	if err := e.notifier.Notify(deliverCtx, ev); err != nil {
		e.logger.Warn("event delivery failed", "event", string(ev.Type), "task_id", ev.TaskID, "error", err)
	}
}

// Convenience methods for common events

func (e *EventEmitter) TaskCreated(ctx context.Context, t *models.Task, creator uuid.UUID) {
	e.Emit(ctx, events.Event{
		Type:      events.TypeTaskCreated,
		TaskID:    t.ID.String(),
		TaskTitle: t.Title,
		Status:    string(t.Status),
		ActorID:   creator.String(),
		Message:   fmt.Sprintf("Task '%s' (ID: %s) has been created", t.Title, t.ID),
	})
}

func (e *EventEmitter) TaskDecided(ctx context.Context, t *models.Task, actor *models.User) {
	eventType := events.TypeTaskApproved
	if t.Status == models.StatusRejected {
		eventType = events.TypeTaskRejected
	}

	e.Emit(ctx, events.Event{
		Type:      eventType,
		TaskID:    t.ID.String(),
		TaskTitle: t.Title,
		Status:    string(t.Status),
		ActorID:   actor.ID.String(),
		ActorName: actor.Name,
		ActorRole: string(actor.Role),
		Message: fmt.Sprintf("Task '%s' (ID: %s) has been %s by %s (%s)",
			t.Title, t.ID, t.Status, actor.Name, actor.Role),
	})
}

func (e *EventEmitter) LoginSucceeded(ctx context.Context, u *models.User) {
	e.Emit(ctx, events.Event{
		Type:      events.TypeLoginSuccess,
		ActorID:   u.ID.String(),
		ActorName: u.Name,
		ActorRole: string(u.Role),
		Message:   "User successfully logged in",
	})
}

func (e *EventEmitter) LoginFailed(ctx context.Context, username, reason string) {
	e.Emit(ctx, events.Event{
		Type:     events.TypeLoginFailed,
		Message:  "Login failed for " + username + ": " + reason,
		Metadata: map[string]string{"username": username},
	})
}

func (e *EventEmitter) LoggedOut(ctx context.Context, identity *models.Identity) {
	e.Emit(ctx, events.Event{
		Type:      events.TypeLogout,
		ActorID:   identity.UserID.String(),
		ActorName: identity.Name,
		ActorRole: string(identity.Role),
		Message:   "User logged out",
	})
}

func (e *EventEmitter) UserCreated(ctx context.Context, u *models.User) {
	ev := events.Event{
		Type:     events.TypeUserCreated,
		Message:  fmt.Sprintf("User '%s' created with role %s", u.Username, u.Role),
		Metadata: map[string]string{"user_id": u.ID.String(), "username": u.Username},
	}
	if identity, ok := middleware.GetIdentityFromContext(ctx); ok {
		ev.ActorID = identity.UserID.String()
		ev.ActorName = identity.Name
		ev.ActorRole = string(identity.Role)
	}
	e.Emit(ctx, ev)
}
