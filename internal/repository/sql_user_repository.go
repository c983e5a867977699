// internal/repository/sql_user_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/gurkanbulca/taskapproval/internal/database"
	apperrors "github.com/gurkanbulca/taskapproval/internal/errors"
	"github.com/gurkanbulca/taskapproval/internal/models"
)

var userColumns = []string{"id", "username", "name", "email", "password_hash", "role", "created_at"}

type userRow struct {
	ID           uuid.UUID `db:"id"`
	Username     string    `db:"username"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r userRow) toModel() *models.User {
	return &models.User{
		ID:           r.ID,
		Username:     r.Username,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         models.Role(r.Role),
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

// SQLUserRepository stores users through sqlx, with statements built by ent's
// dialect-aware builder.
type SQLUserRepository struct {
	db *database.DB
}

func NewSQLUserRepository(db *database.DB) *SQLUserRepository {
	return &SQLUserRepository{db: db}
}

func (r *SQLUserRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	stored := u.Clone()
	stored.Username = NormalizeUsername(stored.Username)
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	stored.CreatedAt = dbTime(stored.CreatedAt)

	query, args := entsql.Dialect(r.db.Dialect).
		Insert(database.UsersTable).
		Columns(userColumns...).
		Values(stored.ID.String(), stored.Username, stored.Name, stored.Email,
			stored.PasswordHash, string(stored.Role), stored.CreatedAt).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewDuplicateUsernameError(stored.Username)
		}
		return nil, apperrors.NewInternalError("create user", err)
	}

	return stored, nil
}

func (r *SQLUserRepository) Save(ctx context.Context, u *models.User) error {
	query, args := entsql.Dialect(r.db.Dialect).
		Update(database.UsersTable).
		Set("username", NormalizeUsername(u.Username)).
		Set("name", u.Name).
		Set("email", u.Email).
		Set("password_hash", u.PasswordHash).
		Set("role", string(u.Role)).
		Where(entsql.EQ("id", u.ID.String())).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewDuplicateUsernameError(u.Username)
		}
		return apperrors.NewInternalError("save user", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("save user", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("User", u.ID.String())
	}
	return nil
}

func (r *SQLUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, entsql.EQ("id", id.String()), id.String())
}

func (r *SQLUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, entsql.EQ("username", NormalizeUsername(username)), username)
}

func (r *SQLUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query, args := entsql.Dialect(r.db.Dialect).
		Select(entsql.Count("*")).
		From(entsql.Table(database.UsersTable)).
		Where(entsql.EQ("username", NormalizeUsername(username))).
		Query()

	var n int
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return false, apperrors.NewInternalError("check username", err)
	}
	return n > 0, nil
}

func (r *SQLUserRepository) FindAll(ctx context.Context) ([]*models.User, error) {
	query, args := r.selectUsers().
		OrderBy(entsql.Asc("username")).
		Query()

	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.NewInternalError("list users", err)
	}

	users := make([]*models.User, len(rows))
	for i := range rows {
		users[i] = rows[i].toModel()
	}
	return users, nil
}

func (r *SQLUserRepository) Count(ctx context.Context) (int, error) {
	query, args := entsql.Dialect(r.db.Dialect).
		Select(entsql.Count("*")).
		From(entsql.Table(database.UsersTable)).
		Query()

	var n int
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, apperrors.NewInternalError("count users", err)
	}
	return n, nil
}

func (r *SQLUserRepository) selectUsers() *entsql.Selector {
	return entsql.Dialect(r.db.Dialect).
		Select(userColumns...).
		From(entsql.Table(database.UsersTable))
}

func (r *SQLUserRepository) getOne(ctx context.Context, where *entsql.Predicate, key string) (*models.User, error) {
	query, args := r.selectUsers().Where(where).Query()

	var row userRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("User", key)
		}
		return nil, apperrors.NewInternalError(fmt.Sprintf("find user %s", key), err)
	}
	return row.toModel(), nil
}
