// internal/service/test_helpers_test.go
package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gurkanbulca/taskapproval/internal/logging"
	"github.com/gurkanbulca/taskapproval/internal/models"
	"github.com/gurkanbulca/taskapproval/internal/repository"
	"github.com/gurkanbulca/taskapproval/pkg/auth"
	"github.com/gurkanbulca/taskapproval/pkg/events"
)

const testPassword = "password123"

// recordingNotifier keeps every delivered event
type recordingNotifier struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, ev events.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}

func (n *recordingNotifier) Events() []events.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]events.Event(nil), n.events...)
}

func (n *recordingNotifier) OfType(t events.Type) []events.Event {
	var out []events.Event
	for _, ev := range n.Events() {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// TestHelpers provides common test utilities
type TestHelpers struct {
	t               *testing.T
	Users           *repository.MemoryUserRepository
	Tasks           *repository.MemoryTaskRepository
	PasswordManager *auth.PasswordManager
	Notifier        *recordingNotifier
	Emitter         *EventEmitter
	Now             time.Time
}

// NewTestHelpers creates a new test helper instance backed by memory stores
func NewTestHelpers(t *testing.T) *TestHelpers {
	notifier := &recordingNotifier{}
	return &TestHelpers{
		t:               t,
		Users:           repository.NewMemoryUserRepository(),
		Tasks:           repository.NewMemoryTaskRepository(),
		PasswordManager: auth.NewPasswordManagerWithPolicy(auth.DefaultPasswordPolicy(), bcrypt.MinCost),
		Notifier:        notifier,
		Emitter:         NewEventEmitter(notifier, logging.Discard(), time.Second),
		Now:             time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (h *TestHelpers) Clock() time.Time {
	return h.Now
}

// TaskService builds a service over the helper's stores with a fixed clock
func (h *TestHelpers) TaskService(opts ...TaskOption) *TaskService {
	opts = append([]TaskOption{WithClock(h.Clock)}, opts...)
	return NewTaskService(h.Tasks, h.Users, h.Emitter, logging.Discard(), opts...)
}

func (h *TestHelpers) createUser(username, name string, role models.Role) *models.User {
	hash, err := h.PasswordManager.HashPassword(testPassword)
	require.NoError(h.t, err)

	u, err := h.Users.Create(context.Background(), &models.User{
		Username:     username,
		Name:         name,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         role,
	})
	require.NoError(h.t, err)
	return u
}

// CreateTestUser creates a standard test user
func (h *TestHelpers) CreateTestUser(username string) *models.User {
	return h.createUser(username, "Regular "+username, models.RoleUser)
}

// CreateManagerUser creates a manager test user
func (h *TestHelpers) CreateManagerUser(username string) *models.User {
	return h.createUser(username, "Manager "+username, models.RoleManager)
}

// CreateAdminUser creates an admin test user
func (h *TestHelpers) CreateAdminUser(username string) *models.User {
	return h.createUser(username, "Admin "+username, models.RoleAdmin)
}

// CreatePendingTask stores a PENDING task directly, bypassing the service
func (h *TestHelpers) CreatePendingTask(title string, priority models.Priority, assignee, creator uuid.UUID) *models.Task {
	task, err := h.Tasks.Create(context.Background(), &models.Task{
		Title:          title,
		Status:         models.StatusPending,
		Priority:       priority,
		AssignedUserID: assignee,
		CreatedBy:      creator,
		CreatedDate:    h.Now,
		ScheduledDate:  h.Now.Add(48 * time.Hour),
	})
	require.NoError(h.t, err)
	return task
}

// AssertTaskUnchanged verifies the stored task still matches before
func (h *TestHelpers) AssertTaskUnchanged(before *models.Task) {
	after, err := h.Tasks.FindByID(context.Background(), before.ID)
	require.NoError(h.t, err)
	require.Equal(h.t, before, after)
}
