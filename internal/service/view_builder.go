// internal/service/view_builder.go
package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gurkanbulca/taskapproval/internal/models"
	"github.com/gurkanbulca/taskapproval/internal/repository"
)

// ViewBuilder resolves the user names referenced by a task. Lookup failures leave the
// name empty; they never fail the call.
type ViewBuilder struct {
	users  repository.UserRepository
	logger *slog.Logger
}

func NewViewBuilder(users repository.UserRepository, logger *slog.Logger) *ViewBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &ViewBuilder{users: users, logger: logger}
}

// Enrich builds the view of a single task
func (b *ViewBuilder) Enrich(ctx context.Context, t *models.Task) models.TaskView {
	return b.enrich(ctx, t, make(nameCache))
}

// EnrichAll builds views in order, resolving each distinct user once
func (b *ViewBuilder) EnrichAll(ctx context.Context, tasks []*models.Task) []models.TaskView {
	cache := make(nameCache)
	views := make([]models.TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, b.enrich(ctx, t, cache))
	}
	return views
}

type nameCache map[uuid.UUID]string

func (b *ViewBuilder) enrich(ctx context.Context, t *models.Task, cache nameCache) models.TaskView {
	view := models.TaskView{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         t.Status,
		Priority:       t.Priority,
		AssignedUserID: t.AssignedUserID,
		CreatedBy:      t.CreatedBy,
		CreatedDate:    t.CreatedDate,
		ScheduledDate:  t.ScheduledDate,
		Version:        t.Version,
	}
	if t.ApprovedBy != nil {
		id := *t.ApprovedBy
		view.ApprovedBy = &id
	}
	if t.ApprovalDate != nil {
		ts := *t.ApprovalDate
		view.ApprovalDate = &ts
	}

	view.AssignedUserName = b.name(ctx, t.AssignedUserID, cache)
	view.CreatedByName = b.name(ctx, t.CreatedBy, cache)
	if t.ApprovedBy != nil {
		view.ApprovedByName = b.name(ctx, *t.ApprovedBy, cache)
	}

	return view
}

func (b *ViewBuilder) name(ctx context.Context, id uuid.UUID, cache nameCache) string {
	if id == uuid.Nil {
		return ""
	}
	if name, ok := cache[id]; ok {
		return name
	}

	u, err := b.users.FindByID(ctx, id)
	if err != nil {
		b.logger.Debug("user lookup failed during enrichment", "user_id", id.String(), "error", err)
		cache[id] = ""
		return ""
	}

	cache[id] = u.Name
	return u.Name
}
