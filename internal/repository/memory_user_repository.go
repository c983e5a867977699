// internal/repository/memory_user_repository.go
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

type MemoryUserRepository struct {
	mu         sync.RWMutex
	users      map[uuid.UUID]*models.User
	byUsername map[string]uuid.UUID
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:      make(map[uuid.UUID]*models.User),
		byUsername: make(map[string]uuid.UUID),
	}
}

func (r *MemoryUserRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stored := u.Clone()
	stored.Username = NormalizeUsername(stored.Username)
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byUsername[stored.Username]; taken {
		return nil, apperrors.NewDuplicateUsernameError(stored.Username)
	}
	if _, taken := r.users[stored.ID]; taken {
		return nil, apperrors.NewConflictError("user id already exists")
	}

	r.users[stored.ID] = stored
	r.byUsername[stored.Username] = stored.ID
	return stored.Clone(), nil
}

func (r *MemoryUserRepository) Save(ctx context.Context, u *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := u.Clone()
	stored.Username = NormalizeUsername(stored.Username)

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[stored.ID]
	if !ok {
		return apperrors.NewNotFoundError("User", stored.ID.String())
	}
	if owner, taken := r.byUsername[stored.Username]; taken && owner != stored.ID {
		return apperrors.NewDuplicateUsernameError(stored.Username)
	}

	delete(r.byUsername, existing.Username)
	stored.CreatedAt = existing.CreatedAt
	r.users[stored.ID] = stored
	r.byUsername[stored.Username] = stored.ID
	return nil
}

func (r *MemoryUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("User", id.String())
	}
	return u.Clone(), nil
}

func (r *MemoryUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[NormalizeUsername(username)]
	if !ok {
		return nil, apperrors.NewNotFoundError("User", username)
	}
	return r.users[id].Clone(), nil
}

func (r *MemoryUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byUsername[NormalizeUsername(username)]
	return ok, nil
}

func (r *MemoryUserRepository) FindAll(ctx context.Context) ([]*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	result := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		result = append(result, u.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].Username < result[j].Username
	})
	return result, nil
}

func (r *MemoryUserRepository) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}
