// internal/repository/sql_task_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/gurkanbulca/taskapproval/internal/database"
	apperrors "github.com/gurkanbulca/taskapproval/internal/errors"
	"github.com/gurkanbulca/taskapproval/internal/models"
)

var taskColumns = []string{
	"seq", "id", "title", "description", "status", "priority", "assigned_user_id", "created_by",
	"created_date", "scheduled_date", "approved_by", "approval_date", "version",
}

// priorityRank orders HIGH before MEDIUM before LOW
const priorityRank = "CASE priority WHEN 'HIGH' THEN 3 WHEN 'MEDIUM' THEN 2 WHEN 'LOW' THEN 1 ELSE 0 END DESC"

type taskRow struct {
	Seq            int64          `db:"seq"`
	ID             uuid.UUID      `db:"id"`
	Title          string         `db:"title"`
	Description    sql.NullString `db:"description"`
	Status         string         `db:"status"`
	Priority       string         `db:"priority"`
	AssignedUserID uuid.UUID      `db:"assigned_user_id"`
	CreatedBy      uuid.UUID      `db:"created_by"`
	CreatedDate    time.Time      `db:"created_date"`
	ScheduledDate  time.Time      `db:"scheduled_date"`
	ApprovedBy     uuid.NullUUID  `db:"approved_by"`
	ApprovalDate   sql.NullTime   `db:"approval_date"`
	Version        int64          `db:"version"`
}

func (r taskRow) toModel() *models.Task {
	t := &models.Task{
		ID:             r.ID,
		Title:          r.Title,
		Description:    r.Description.String,
		Status:         models.Status(r.Status),
		Priority:       models.Priority(r.Priority),
		AssignedUserID: r.AssignedUserID,
		CreatedBy:      r.CreatedBy,
		CreatedDate:    r.CreatedDate.UTC(),
		ScheduledDate:  r.ScheduledDate.UTC(),
		Version:        r.Version,
	}
	if r.ApprovedBy.Valid {
		id := r.ApprovedBy.UUID
		t.ApprovedBy = &id
	}
	if r.ApprovalDate.Valid {
		ts := r.ApprovalDate.Time.UTC()
		t.ApprovalDate = &ts
	}
	return t
}

// SQLTaskRepository stores tasks in the tasks table. The seq column records insertion
// order and breaks ordering ties.
type SQLTaskRepository struct {
	db *database.DB
}

func NewSQLTaskRepository(db *database.DB) *SQLTaskRepository {
	return &SQLTaskRepository{db: db}
}

func (r *SQLTaskRepository) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	stored := prepareNewTask(t)
	stored.CreatedDate = dbTime(stored.CreatedDate)
	stored.ScheduledDate = dbTime(stored.ScheduledDate)
	if stored.ApprovalDate != nil {
		ts := dbTime(*stored.ApprovalDate)
		stored.ApprovalDate = &ts
	}

	query, args := entsql.Dialect(r.db.Dialect).
		Insert(database.TasksTable).
		Columns(taskColumns[1:]...).
		Values(
			stored.ID.String(),
			stored.Title,
			nullString(stored.Description),
			string(stored.Status),
			string(stored.Priority),
			stored.AssignedUserID.String(),
			stored.CreatedBy.String(),
			stored.CreatedDate,
			stored.ScheduledDate,
			nullableID(stored.ApprovedBy),
			nullableTime(stored.ApprovalDate),
			stored.Version,
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflictError("task id already exists")
		}
		return nil, apperrors.NewInternalError("create task", err)
	}

	return stored, nil
}

// Save replaces every mutable column when the stored version matches t.Version and
// bumps the version. created_date is never rewritten.
func (r *SQLTaskRepository) Save(ctx context.Context, t *models.Task) error {
	update := entsql.Dialect(r.db.Dialect).
		Update(database.TasksTable).
		Set("title", t.Title).
		Set("description", nullString(t.Description)).
		Set("status", string(t.Status)).
		Set("priority", string(t.Priority)).
		Set("assigned_user_id", t.AssignedUserID.String()).
		Set("created_by", t.CreatedBy.String()).
		Set("scheduled_date", dbTime(t.ScheduledDate)).
		Set("version", t.Version+1)

	if t.ApprovedBy != nil {
		update.Set("approved_by", t.ApprovedBy.String())
	} else {
		update.SetNull("approved_by")
	}
	if t.ApprovalDate != nil {
		update.Set("approval_date", dbTime(*t.ApprovalDate))
	} else {
		update.SetNull("approval_date")
	}

	query, args := update.
		Where(entsql.And(
			entsql.EQ("id", t.ID.String()),
			entsql.EQ("version", t.Version),
		)).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("save task", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("save task", err)
	}
	if affected == 0 {
		// Either the task is gone or another writer got there first
		if _, err := r.FindByID(ctx, t.ID); err != nil {
			return err
		}
		return staleVersionError(t.ID)
	}

	t.Version++
	return nil
}

func (r *SQLTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	query, args := r.selectTasks().
		Where(entsql.EQ("id", id.String())).
		Query()

	var row taskRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("Task", id.String())
		}
		return nil, apperrors.NewInternalError("find task", err)
	}
	return row.toModel(), nil
}

func (r *SQLTaskRepository) FindAll(ctx context.Context) ([]*models.Task, error) {
	return r.list(ctx, "list tasks", r.selectTasks().
		OrderBy(entsql.Desc("created_date"), entsql.Asc("seq")))
}

func (r *SQLTaskRepository) FindByStatus(ctx context.Context, status models.Status) ([]*models.Task, error) {
	return r.list(ctx, "list tasks by status", r.selectTasks().
		Where(entsql.EQ("status", string(status))).
		OrderExpr(entsql.Expr(priorityRank)).
		OrderBy(entsql.Asc("seq")))
}

func (r *SQLTaskRepository) FindByAssignee(ctx context.Context, userID uuid.UUID) ([]*models.Task, error) {
	return r.list(ctx, "list tasks by assignee", r.selectTasks().
		Where(entsql.EQ("assigned_user_id", userID.String())).
		OrderBy(entsql.Asc("seq")))
}

func (r *SQLTaskRepository) FindByCreator(ctx context.Context, userID uuid.UUID) ([]*models.Task, error) {
	return r.list(ctx, "list tasks by creator", r.selectTasks().
		Where(entsql.EQ("created_by", userID.String())).
		OrderBy(entsql.Asc("seq")))
}

func (r *SQLTaskRepository) FindByScheduledRange(ctx context.Context, start, end time.Time) ([]*models.Task, error) {
	return r.list(ctx, "list tasks by schedule", r.selectTasks().
		Where(entsql.And(
			entsql.GTE("scheduled_date", dbTime(start)),
			entsql.LTE("scheduled_date", dbTime(end)),
		)).
		OrderBy(entsql.Asc("scheduled_date"), entsql.Asc("seq")))
}

func (r *SQLTaskRepository) selectTasks() *entsql.Selector {
	return entsql.Dialect(r.db.Dialect).
		Select(taskColumns...).
		From(entsql.Table(database.TasksTable))
}

func (r *SQLTaskRepository) list(ctx context.Context, op string, selector *entsql.Selector) ([]*models.Task, error) {
	query, args := selector.Query()

	var rows []taskRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.NewInternalError(op, err)
	}

	tasks := make([]*models.Task, len(rows))
	for i := range rows {
		tasks[i] = rows[i].toModel()
	}
	return tasks, nil
}

func nullableID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return dbTime(*t)
}
