// internal/repository/repository.go
package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gurkanbulca/taskapproval/internal/models"
)

// UserRepository persists user records. Lookups that match nothing return an
// apperrors NotFound error.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	Save(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	FindAll(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
}

// TaskRepository persists tasks. Save is a full replace guarded by the task's version.
type TaskRepository interface {
	Create(ctx context.Context, t *models.Task) (*models.Task, error)
	Save(ctx context.Context, t *models.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Task, error)

	// FindAll orders by creation date, newest first
	FindAll(ctx context.Context) ([]*models.Task, error)
	// FindByStatus orders by priority rank descending, ties in insertion order
	FindByStatus(ctx context.Context, status models.Status) ([]*models.Task, error)
	FindByAssignee(ctx context.Context, userID uuid.UUID) ([]*models.Task, error)
	FindByCreator(ctx context.Context, userID uuid.UUID) ([]*models.Task, error)
	// FindByScheduledRange matches start <= scheduled <= end, ordered by scheduled date
	FindByScheduledRange(ctx context.Context, start, end time.Time) ([]*models.Task, error)
}

// NormalizeUsername is the stored form of a username
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
