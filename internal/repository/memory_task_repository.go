// internal/repository/memory_task_repository.go
package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/gurkanbulca/taskapproval/internal/errors"
	"github.com/gurkanbulca/taskapproval/internal/models"
)

type memoryTask struct {
	seq  int64
	task *models.Task
}

// MemoryTaskRepository keeps tasks in a map guarded by a RWMutex. Records are copied on
// the way in and out.
type MemoryTaskRepository struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*memoryTask
	seq   int64
}

func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{
		tasks: make(map[uuid.UUID]*memoryTask),
	}
}

func (r *MemoryTaskRepository) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stored := prepareNewTask(t)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[stored.ID]; exists {
		return nil, apperrors.NewConflictError("task id already exists")
	}

	r.seq++
	r.tasks[stored.ID] = &memoryTask{seq: r.seq, task: stored}
	return stored.Clone(), nil
}

func (r *MemoryTaskRepository) Save(ctx context.Context, t *models.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.tasks[t.ID]
	if !ok {
		return apperrors.NewNotFoundError("Task", t.ID.String())
	}
	if entry.task.Version != t.Version {
		return staleVersionError(t.ID)
	}

	stored := t.Clone()
	stored.CreatedDate = entry.task.CreatedDate
	stored.Version = t.Version + 1
	entry.task = stored

	t.Version = stored.Version
	return nil
}

func (r *MemoryTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.tasks[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("Task", id.String())
	}
	return entry.task.Clone(), nil
}

func (r *MemoryTaskRepository) FindAll(ctx context.Context) ([]*models.Task, error) {
	entries, err := r.collect(ctx, func(*models.Task) bool { return true })
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].task, entries[j].task
		if !a.CreatedDate.Equal(b.CreatedDate) {
			return a.CreatedDate.After(b.CreatedDate)
		}
		return entries[i].seq < entries[j].seq
	})
	return unwrap(entries), nil
}

func (r *MemoryTaskRepository) FindByStatus(ctx context.Context, status models.Status) ([]*models.Task, error) {
	entries, err := r.collect(ctx, func(t *models.Task) bool { return t.Status == status })
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := entries[i].task.Priority.Rank(), entries[j].task.Priority.Rank()
		if ri != rj {
			return ri > rj
		}
		return entries[i].seq < entries[j].seq
	})
	return unwrap(entries), nil
}

func (r *MemoryTaskRepository) FindByAssignee(ctx context.Context, userID uuid.UUID) ([]*models.Task, error) {
	entries, err := r.collect(ctx, func(t *models.Task) bool { return t.AssignedUserID == userID })
	if err != nil {
		return nil, err
	}
	return unwrap(entries), nil
}

func (r *MemoryTaskRepository) FindByCreator(ctx context.Context, userID uuid.UUID) ([]*models.Task, error) {
	entries, err := r.collect(ctx, func(t *models.Task) bool { return t.CreatedBy == userID })
	if err != nil {
		return nil, err
	}
	return unwrap(entries), nil
}

func (r *MemoryTaskRepository) FindByScheduledRange(ctx context.Context, start, end time.Time) ([]*models.Task, error) {
	entries, err := r.collect(ctx, func(t *models.Task) bool {
		return !t.ScheduledDate.Before(start) && !t.ScheduledDate.After(end)
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].task.ScheduledDate, entries[j].task.ScheduledDate
		if !a.Equal(b) {
			return a.Before(b)
		}
		return entries[i].seq < entries[j].seq
	})
	return unwrap(entries), nil
}

// collect returns clones of the matching tasks in insertion order
func (r *MemoryTaskRepository) collect(ctx context.Context, match func(*models.Task) bool) ([]memoryTask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	result := make([]memoryTask, 0, len(r.tasks))
	for _, entry := range r.tasks {
		if match(entry.task) {
			result = append(result, memoryTask{seq: entry.seq, task: entry.task.Clone()})
		}
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].seq < result[j].seq })
	return result, nil
}

func unwrap(entries []memoryTask) []*models.Task {
	tasks := make([]*models.Task, len(entries))
	for i := range entries {
		tasks[i] = entries[i].task
	}
	return tasks
}

// prepareNewTask fills the fields the store owns on insert
func prepareNewTask(t *models.Task) *models.Task {
	stored := t.Clone()
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	if stored.CreatedDate.IsZero() {
		stored.CreatedDate = time.Now().UTC()
	}
	if stored.Status == "" {
		stored.Status = models.StatusPending
	}
	stored.Version = 1
	return stored
}

func staleVersionError(id uuid.UUID) error {
	return apperrors.NewConflictError("task was modified concurrently").
		WithContext("task_id", id.String())
}
